package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/flow"
	pkgio "github.com/matzehuels/agentflow/pkg/io"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags       agentFlags
		asJSON      bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Show the parsed nodes of an agent",
		Long: `Show the parsed nodes of an agent.

By default, prints a table of nodes in execution order with their kind,
shape, model, retry count and the files found in their node directory.

Use --json to print the parsed graph for other tools, or --interactive to
browse nodes and their instructions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON && interactive {
				return fmt.Errorf("--json and --interactive are mutually exclusive")
			}
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), dirArg(args), flags, asJSON, interactive)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed graph as JSON")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse nodes interactively")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, dir string, flags agentFlags, asJSON, interactive bool) error {
	def, _, err := flags.loadAgent(ctx, dir)
	if err != nil {
		return err
	}

	switch {
	case asJSON:
		return pkgio.WriteJSON(def.Graph, w)
	case interactive:
		_, err := tea.NewProgram(NewNodeListModel(def), tea.WithContext(ctx)).Run()
		return err
	}

	cfg := def.Config.Normalized()
	printKeyValue("Agent", cfg.Name+" v"+cfg.Version)
	printKeyValue("Start", orNone(def.Graph.Start()))
	printKeyValue("Terminals", orNone(strings.Join(def.Graph.Terminals(), ", ")))
	printNewline()
	fmt.Fprintln(w, nodeTable(def).Render())
	printStats(def.Graph.NodeCount(), def.Graph.EdgeCount(), countNested(def))
	return nil
}

// =============================================================================
// Node Rows
// =============================================================================

// nodeRow is one node as shown by inspect.
type nodeRow struct {
	node    flow.Node
	content *agent.NodeContent
}

// nodeRows lists the graph's nodes in execution order.
func nodeRows(def *agent.Definition) []nodeRow {
	var rows []nodeRow
	for _, id := range flow.TopologicalSort(def.Graph) {
		n, _ := def.Graph.Node(id)
		content, _ := def.Content(id)
		rows = append(rows, nodeRow{node: n, content: content})
	}
	return rows
}

func (r nodeRow) cells() []string {
	model := r.node.Model
	if model == "" {
		model = "—"
	}
	return []string{
		r.node.ID,
		r.node.DisplayName(),
		r.node.Kind.String(),
		r.node.Shape.String(),
		model,
		strconv.Itoa(r.node.Retry),
		contentSummary(r.content),
	}
}

// contentSummary lists what a node directory provides.
func contentSummary(c *agent.NodeContent) string {
	if c == nil {
		return "—"
	}
	var parts []string
	if strings.TrimSpace(c.Instructions) != "" {
		parts = append(parts, "index")
	}
	if n := len(c.Tools); n > 0 {
		parts = append(parts, fmt.Sprintf("tools(%d)", n))
	}
	if !c.Guardrails.Empty() {
		parts = append(parts, "guardrails")
	}
	if n := len(c.References); n > 0 {
		parts = append(parts, fmt.Sprintf("refs(%d)", n))
	}
	if c.Sub != nil {
		parts = append(parts, "nested")
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, ", ")
}

var nodeHeaders = []string{"ID", "Name", "Kind", "Shape", "Model", "Retry", "Content"}

func nodeTable(def *agent.Definition) *table.Table {
	var rows [][]string
	for _, r := range nodeRows(def) {
		rows = append(rows, r.cells())
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(nodeHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col >= 3:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
}

func countNested(def *agent.Definition) int {
	n := 0
	for _, c := range def.Nodes {
		if c.Sub != nil {
			n += 1 + countNested(c.Sub)
		}
	}
	return n
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/flow"
	"github.com/matzehuels/agentflow/pkg/render/nodelink"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	detailStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	detailHeadStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// instructionPreviewLines bounds the instructions shown in the detail pane.
const instructionPreviewLines = 8

// =============================================================================
// NodeListModel - Interactive node browser
// =============================================================================

// NodeListModel is the bubbletea model for browsing an agent's nodes.
type NodeListModel struct {
	Title      string
	Graph      *flow.Graph
	Rows       []nodeRow
	Cursor     int
	Height     int
	Offset     int
	HideDetail bool
}

// NewNodeListModel creates a node browser for def.
func NewNodeListModel(def *agent.Definition) NodeListModel {
	cfg := def.Config.Normalized()
	return NodeListModel{
		Title:  fmt.Sprintf("%s v%s", cfg.Name, cfg.Version),
		Graph:  def.Graph,
		Rows:   nodeRows(def),
		Height: 10,
	}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "tab":
			m.HideDetail = !m.HideDetail
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, help line and detail pane.
		m.Height = msg.Height - 20
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle details  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no nodes"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		r := m.Rows[i]
		rows = append(rows, []string{cursor, nodelink.Icon(r.node.Kind), r.node.ID, r.node.DisplayName(), r.node.Kind.String(), contentSummary(r.content)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "ID", "Name", "Kind", "Content").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	if !m.HideDetail {
		b.WriteString("\n")
		b.WriteString(detailStyle.Render(m.detail(m.Rows[m.Cursor])))
	}
	return b.String()
}

// detail renders the selected node's parameters, transitions and an
// instructions preview.
func (m NodeListModel) detail(r nodeRow) string {
	n := r.node
	lines := []string{detailHeadStyle.Render(fmt.Sprintf("%s %s", nodelink.Icon(n.Kind), n.DisplayName()))}

	add := func(key, value string) {
		if value != "" {
			lines = append(lines, StyleDim.Render(key+": ")+StyleValue.Render(value))
		}
	}
	add("model", n.Model)
	if n.Retry > 1 {
		add("retry", fmt.Sprint(n.Retry))
	}
	add("timeout", n.Timeout)
	add("tools", n.Tools)
	add("strategy", n.Strategy)
	add("channel", n.Channel)

	for _, e := range m.Graph.Outgoing(n.ID) {
		lines = append(lines, StyleHighlight.Render(iconArrow+" ")+transitionText(m.Graph, e))
	}

	if r.content != nil && strings.TrimSpace(r.content.Instructions) != "" {
		preview := strings.Split(strings.TrimSpace(r.content.Instructions), "\n")
		if len(preview) > instructionPreviewLines {
			preview = append(preview[:instructionPreviewLines], "…")
		}
		lines = append(lines, "", StyleDim.Render(strings.Join(preview, "\n")))
	}
	return strings.Join(lines, "\n")
}

// transitionText describes an edge for the detail pane.
func transitionText(g *flow.Graph, e flow.Edge) string {
	target := g.DisplayName(e.To)
	switch {
	case e.Condition != "":
		return fmt.Sprintf("if %s: %s", e.Condition, target)
	case e.OnError:
		return "on error: " + target
	case e.Fallback:
		return "otherwise: " + target
	}
	return target
}

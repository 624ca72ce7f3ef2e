package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/errors"
	"github.com/matzehuels/agentflow/pkg/flow"
	pkgio "github.com/matzehuels/agentflow/pkg/io"
	"github.com/matzehuels/agentflow/pkg/mermaid"
	"github.com/matzehuels/agentflow/pkg/observability"
	"github.com/matzehuels/agentflow/pkg/render/nodelink"
	"github.com/matzehuels/agentflow/pkg/settings"
)

// defaultImageBase is the file name stem for rendered images.
const defaultImageBase = "agent-flow"

// visualizeOptions holds the flags of the visualize command.
type visualizeOptions struct {
	agentFlags
	format    string
	output    string
	detailed  bool
	direction string
}

// visualizeCommand creates the visualize command.
func (c *CLI) visualizeCommand() *cobra.Command {
	var opts visualizeOptions

	cmd := &cobra.Command{
		Use:   "visualize [dir|diagram.md|graph.json]",
		Short: "Draw an agent flow",
		Long: `Draw an agent flow.

The input is an agent directory, a diagram file, or a graph exported with
'inspect --json'. Formats:

  text  tree in execution order (default)
  dot   Graphviz source
  svg   rendered with Graphviz
  png   rendered with Graphviz

Text and DOT go to stdout unless --output is set. SVG and PNG default to
agent-flow.svg or agent-flow.png next to the input.`,
		Example: `  agentflow visualize ./research-agent
  agentflow visualize -f svg -o flow.svg ./research-agent
  agentflow inspect --json > graph.json && agentflow visualize -f dot graph.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVisualize(cmd, dirArg(args), opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(settings.Formats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node parameters in DOT labels")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "layout direction: TB, BT, LR, RL")

	return cmd
}

func (c *CLI) runVisualize(cmd *cobra.Command, input string, opts visualizeOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	title, g, s, err := opts.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	v := s.Visualize
	if opts.format != "" {
		v.Format = opts.format
	}
	if opts.direction != "" {
		v.Direction = strings.ToUpper(opts.direction)
	}
	if cmd.Flags().Changed("detailed") {
		v.Detailed = opts.detailed
	}
	if !slices.Contains(settings.Formats, v.Format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", v.Format, strings.Join(settings.Formats, ", "))
	}

	logger.Debug("visualizing", "input", input, "format", v.Format, "nodes", g.NodeCount())

	var data []byte
	switch v.Format {
	case settings.FormatText:
		data = []byte(nodelink.ToTree(title, g) + "\n")
	case settings.FormatDOT:
		data = []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: v.Detailed, Direction: v.Direction}))
	case settings.FormatSVG, settings.FormatPNG:
		data, err = renderImage(ctx, g, v)
		if err != nil {
			return err
		}
		if opts.output == "" {
			opts.output = filepath.Join(baseDir(input), defaultImageBase+"."+v.Format)
		}
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "write %s", opts.output)
	}
	printSuccess("Rendered %s", StyleHighlight.Render(v.Format))
	printFile(opts.output)
	return nil
}

// renderImage runs Graphviz behind a spinner.
func renderImage(ctx context.Context, g *flow.Graph, v settings.Visualize) ([]byte, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: v.Detailed, Direction: v.Direction})

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", v.Format))
	spinner.Start()

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, v.Format, g.NodeCount())
	start := time.Now()

	var (
		data []byte
		err  error
	)
	if v.Format == settings.FormatPNG {
		data, err = nodelink.RenderPNG(ctx, dot)
	} else {
		data, err = nodelink.RenderSVG(ctx, dot)
	}
	hooks.OnRenderComplete(ctx, v.Format, time.Since(start), err)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", v.Format)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d nodes", g.NodeCount()))
	return data, nil
}

// loadGraph reads a graph from an agent directory, a diagram file or a
// JSON export, along with the settings that apply to it.
func (f *visualizeOptions) loadGraph(ctx context.Context, input string) (string, *flow.Graph, settings.Settings, error) {
	s, err := f.loadSettings(ctx, baseDir(input))
	if err != nil {
		return "", nil, s, err
	}

	info, err := os.Stat(input)
	if err != nil {
		return "", nil, s, errors.New(errors.ErrCodeFileNotFound, "%s does not exist", input)
	}

	switch {
	case info.IsDir():
		def, err := agent.Load(input, s.LoadOptions())
		if err != nil {
			return "", nil, s, err
		}
		return def.Config.Normalized().Name, def.Graph, s, nil
	case strings.EqualFold(filepath.Ext(input), ".json"):
		g, err := pkgio.ImportJSON(input)
		if err != nil {
			return "", nil, s, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read graph %s", input)
		}
		return filepath.Base(input), g, s, nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", nil, s, errors.Wrap(errors.ErrCodeInternal, err, "read %s", input)
	}
	return filepath.Base(input), mermaid.Parse(string(data)), s, nil
}

// baseDir is input itself for directories and its parent for files.
func baseDir(input string) string {
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return input
	}
	return filepath.Dir(input)
}

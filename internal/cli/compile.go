package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/compiler"
)

// compileOptions holds the flags of the compile command.
type compileOptions struct {
	agentFlags
	outputName string
	stdout     bool
	quiet      bool
}

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "compile [dir]",
		Short: "Compile an agent directory into system prompts",
		Long: `Compile an agent directory into system prompts.

The compile command reads agent-mermaid.md, agent-config.yaml, index.md and
the nodes/ directory, and writes SYSTEM_PROMPT.md next to them. Nested
agents (node directories with their own agent-mermaid.md) are compiled
first, each into its own directory.

Structural findings are logged as warnings; run 'validate' to see them all.`,
		Example: `  agentflow compile ./research-agent
  agentflow compile --stdout | less`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd.Context(), cmd.OutOrStdout(), dirArg(args), opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.outputName, "output-name", "", "document file name (default: settings output_name)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the root document instead of writing files")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "skip structural warnings")

	return cmd
}

// runCompile loads the agent tree and writes one document per agent.
func (c *CLI) runCompile(ctx context.Context, w io.Writer, dir string, opts compileOptions) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	def, s, err := opts.loadAgent(ctx, dir)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !opts.quiet {
		logDiagnostics(logger, agent.Check(def))
	}

	copts := s.CompileOptions()
	if opts.outputName != "" {
		copts.OutputName = opts.outputName
	}

	if opts.stdout {
		_, err := io.WriteString(w, compiler.Compile(def, copts))
		return err
	}

	b := &compiler.Builder{Options: copts, Logger: logger}
	artifacts, err := b.Build(ctx, def)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compiled %d documents", len(artifacts)))

	printSuccess("Compiled %s", StyleHighlight.Render(def.Config.Normalized().Name))
	for _, a := range artifacts {
		printArtifact(a)
	}
	printStats(def.Graph.NodeCount(), def.Graph.EdgeCount(), len(artifacts)-1)
	printNewline()
	printNextStep("Visualize the flow", appName+" visualize "+dir)
	return nil
}

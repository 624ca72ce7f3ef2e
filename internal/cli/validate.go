package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/errors"
	"github.com/matzehuels/agentflow/pkg/flow"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		flags  agentFlags
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check an agent directory for structural problems",
		Long: `Check an agent directory for structural problems.

Reports a missing start node, missing terminals, disconnected nodes,
unguarded loops, missing agent-config.yaml or index.md, and node
directories that are missing or match no node. Nested agents are checked
too.

Only missing files are errors. With --strict, warnings fail as well.
Nothing is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), dirArg(args), flags, strict)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, dir string, flags agentFlags, strict bool) error {
	def, _, err := flags.loadAgent(ctx, dir)
	if err != nil {
		return err
	}

	diags := agent.Check(def)
	if len(diags) == 0 {
		printSuccess("%s is valid", StyleHighlight.Render(def.Config.Normalized().Name))
		printStats(def.Graph.NodeCount(), def.Graph.EdgeCount(), 0)
		printNewline()
		printNextStep("Compile it", appName+" compile "+dir)
		return nil
	}

	var nErr, nWarn int
	for _, d := range diags {
		printDiagnostic(d)
		if d.Severity == flow.SeverityError {
			nErr++
		} else {
			nWarn++
		}
	}
	printNewline()
	printInfo("%d errors, %d warnings", nErr, nWarn)

	if nErr > 0 || (strict && nWarn > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "validation failed for %s", dir)
	}
	return nil
}

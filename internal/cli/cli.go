// Package cli implements the agentflow command-line interface.
//
// # Commands
//
//   - compile: write SYSTEM_PROMPT.md for an agent and every nested agent
//   - validate: report structural findings without writing anything
//   - inspect: list the parsed nodes as a table, JSON, or an interactive browser
//   - visualize: draw the flow as a text tree, DOT, SVG or PNG
//   - completion: generate shell completion scripts
//
// Every command takes an agent directory (default ".") and reads
// agentflow.toml from it unless --config points elsewhere.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/buildinfo"
	"github.com/matzehuels/agentflow/pkg/observability"
	"github.com/matzehuels/agentflow/pkg/settings"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "agentflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Agentflow compiles agent flow diagrams into system prompts",
		Long: `Agentflow turns an annotated Mermaid flowchart plus per-node instructions,
tools, guardrails and references into a single SYSTEM_PROMPT.md per agent.

Nodes whose directory holds its own diagram are compiled as nested agents.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Loading
// =============================================================================

// agentFlags are the flags every agent-directory command accepts.
type agentFlags struct {
	config string
}

func (f *agentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.config, "config", "", "settings file (default: <dir>/"+settings.FileName+")")
}

// dirArg returns the agent directory argument, defaulting to ".".
func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// loadSettings reads the explicit settings file, or discovers one in dir.
func (f *agentFlags) loadSettings(ctx context.Context, dir string) (settings.Settings, error) {
	logger := loggerFromContext(ctx)
	if f.config != "" {
		logger.Debug("loading settings", "path", f.config)
		return settings.Load(f.config)
	}
	s, path, err := settings.Discover(dir)
	if err == nil && path != "" {
		logger.Debug("loaded settings", "path", path)
	}
	return s, err
}

// loadAgent reads settings and the agent tree in dir.
func (f *agentFlags) loadAgent(ctx context.Context, dir string) (*agent.Definition, settings.Settings, error) {
	s, err := f.loadSettings(ctx, dir)
	if err != nil {
		return nil, s, err
	}
	start := time.Now()
	def, err := agent.Load(dir, s.LoadOptions())
	nodes := 0
	if def != nil {
		nodes = def.Graph.NodeCount()
	}
	observability.Pipeline().OnLoadComplete(ctx, dir, nodes, time.Since(start), err)
	if err != nil {
		return nil, s, err
	}
	loggerFromContext(ctx).Debug("loaded agent",
		"dir", dir,
		"nodes", def.Graph.NodeCount(),
		"edges", def.Graph.EdgeCount(),
		"node_dirs", len(def.Nodes))
	return def, s, nil
}

package agent

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/agentflow/pkg/flow"
)

// Defaults applied by [Config.Normalized] when a key is missing.
const (
	DefaultName          = "Unnamed Agent"
	DefaultVersion       = "0.1.0"
	DefaultErrorStrategy = "log_and_continue"
)

// Config is the top-level agent configuration (agent-config.yaml).
type Config struct {
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Description  string         `yaml:"description"`
	Defaults     ModelDefaults  `yaml:"defaults"`
	Execution    Execution      `yaml:"execution"`
	Context      map[string]any `yaml:"context,omitempty"`
	MCPServers   []Tool         `yaml:"mcp_servers"`
	InputSchema  map[string]any `yaml:"input_schema,omitempty"`
	OutputSchema map[string]any `yaml:"output_schema,omitempty"`
}

// ModelDefaults are the model parameters nodes inherit unless they
// override the model.
type ModelDefaults struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

// IsZero reports whether no default was configured.
func (d ModelDefaults) IsZero() bool {
	return d.Model == "" && d.Temperature == nil && d.MaxTokens == 0
}

// Execution holds run-level settings. Values are opaque to the compiler.
type Execution struct {
	Mode          string `yaml:"mode"`
	MaxTotalTime  string `yaml:"max_total_time"`
	ErrorStrategy string `yaml:"error_strategy"`
}

// Normalized returns c with defaults filled in for the name, version and
// error strategy.
func (c Config) Normalized() Config {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultName
	}
	if strings.TrimSpace(c.Version) == "" {
		c.Version = DefaultVersion
	}
	if strings.TrimSpace(c.Execution.ErrorStrategy) == "" {
		c.Execution.ErrorStrategy = DefaultErrorStrategy
	}
	return c
}

// Tool types recognized by the compiler. Anything that is not an MCP
// server is rendered as a callable function.
const (
	ToolTypeMCPServer = "mcp_server"
	ToolTypeFunction  = "function"
)

// Tool describes an MCP server or a callable function. Keys beyond the
// known ones are kept in Extra.
type Tool struct {
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type,omitempty"`
	Description string         `yaml:"description,omitempty"`
	URL         string         `yaml:"url,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// IsServer reports whether t is an MCP server descriptor.
func (t Tool) IsServer() bool { return t.Type == ToolTypeMCPServer }

// Guardrails lists rules checked on a node's input and output.
type Guardrails struct {
	Input  []Rule `yaml:"input"`
	Output []Rule `yaml:"output"`
}

// Empty reports whether g holds no rules.
func (g *Guardrails) Empty() bool {
	return g == nil || (len(g.Input) == 0 && len(g.Output) == 0)
}

// Rule is a single guardrail. Rules are usually plain strings, but
// structured YAML rules are accepted and kept in flow style.
type Rule string

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = Rule(value.Value)
		return nil
	}
	flowStyle := *value
	flowStyle.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&flowStyle)
	if err != nil {
		return err
	}
	*r = Rule(strings.TrimSpace(string(out)))
	return nil
}

// Reference is a document attached to a node. Oversize references carry
// a placeholder instead of their content.
type Reference struct {
	Name     string
	Content  string
	Oversize bool
}

// NodeContent is everything stored in a node directory.
type NodeContent struct {
	Dir          string
	Instructions string
	Tools        []Tool
	Guardrails   *Guardrails
	References   []Reference

	// Sub is the nested agent when the node directory holds its own diagram.
	Sub *Definition
}

// Definition is a loaded agent: its graph, configuration, top-level
// instructions and per-node content keyed by node directory name.
type Definition struct {
	Dir          string
	Graph        *flow.Graph
	Config       Config
	Instructions string
	Nodes        map[string]*NodeContent
}

// Content returns the content for node id. Node directories may use
// dashes where IDs use underscores, so "web_search" also finds
// "nodes/web-search".
func (d *Definition) Content(id string) (*NodeContent, bool) {
	if c, ok := d.Nodes[id]; ok {
		return c, true
	}
	if alt := strings.ReplaceAll(id, "_", "-"); alt != id {
		if c, ok := d.Nodes[alt]; ok {
			return c, true
		}
	}
	return nil, false
}

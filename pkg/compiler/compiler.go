package compiler

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/flow"
)

// DefaultOutputName is the file name of a compiled document.
const DefaultOutputName = "SYSTEM_PROMPT.md"

const sectionSeparator = "\n\n---\n\n"

// documentNamespace seeds the name-based UUIDs used as document IDs.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/agentflow/document"))

// Options controls compilation. The zero value is usable.
type Options struct {
	// OutputName is the file name written for each agent and referenced
	// from parent documents. Defaults to [DefaultOutputName].
	OutputName string

	// Now returns the generation timestamp. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.OutputName == "" {
		o.OutputName = DefaultOutputName
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Compile renders def as a Markdown system prompt. It never fails: missing
// configuration falls back to defaults and missing content is rendered
// as a placeholder.
func Compile(def *agent.Definition, opts Options) string {
	c := newCompilation(def, opts.withDefaults())

	var sections []string
	for _, render := range []func() string{
		c.identity,
		c.executionFlow,
		c.nodeInstructions,
		c.tools,
		c.dataContracts,
		c.guardrails,
		c.errorHandling,
		c.subAgents,
	} {
		if s := render(); s != "" {
			sections = append(sections, s)
		}
	}
	body := strings.Join(sections, sectionSeparator)
	return body + sectionSeparator + c.footer(body) + "\n"
}

// DocumentID returns the stable identifier of a compiled document body.
func DocumentID(body string) uuid.UUID {
	return uuid.NewSHA1(documentNamespace, []byte(body))
}

// compilation holds the derived views one Compile call shares between
// sections.
type compilation struct {
	def   *agent.Definition
	cfg   agent.Config
	g     *flow.Graph
	opts  Options
	order []string
	nodes []entry
}

// entry is one block of per-node output: a graph node with its content,
// if any, or a node directory that matches no node (node is nil).
type entry struct {
	id      string
	node    *flow.Node
	content *agent.NodeContent
}

func newCompilation(def *agent.Definition, opts Options) *compilation {
	c := &compilation{
		def:  def,
		cfg:  def.Config.Normalized(),
		g:    def.Graph,
		opts: opts,
	}
	if c.g == nil {
		c.g = flow.New()
	}
	c.order = flow.TopologicalSort(c.g)
	c.nodes = c.entries()
	return c
}

// entries lists every node in execution order, followed by node
// directories that match no node in name order.
func (c *compilation) entries() []entry {
	var out []entry
	claimed := make(map[*agent.NodeContent]bool)
	for _, id := range c.order {
		n, _ := c.g.Node(id)
		content, ok := c.def.Content(id)
		if ok {
			claimed[content] = true
		}
		out = append(out, entry{id: id, node: &n, content: content})
	}
	for _, name := range slices.Sorted(maps.Keys(c.def.Nodes)) {
		if content := c.def.Nodes[name]; !claimed[content] {
			out = append(out, entry{id: name, content: content})
		}
	}
	return out
}

// displayName is the node's declared name, or its ID when the node is
// unknown.
func (c *compilation) displayName(id string) string {
	return c.g.DisplayName(id)
}

// serverUsers maps each MCP server name to the IDs of the nodes that use
// it. A node uses a server when its tools annotation names it or its
// tools.yaml declares it. Users keep execution order.
func (c *compilation) serverUsers() map[string][]string {
	users := make(map[string][]string)
	add := func(server, id string) {
		if server != "" && !slices.Contains(users[server], id) {
			users[server] = append(users[server], id)
		}
	}
	for _, id := range c.order {
		n, _ := c.g.Node(id)
		for _, name := range splitList(n.Tools) {
			add(name, id)
		}
	}
	for _, e := range c.nodes {
		if e.content == nil {
			continue
		}
		for _, t := range e.content.Tools {
			if t.IsServer() {
				add(t.Name, e.id)
			}
		}
	}
	return users
}

// splitList splits a comma separated annotation value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package compiler

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/buildinfo"
	"github.com/matzehuels/agentflow/pkg/flow"
)

// Generator is the tag written into every document footer.
const Generator = "agentflow compiler"

// paragraphs joins the non-empty parts with blank lines.
func paragraphs(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// =============================================================================
// 1. Identity
// =============================================================================

func (c *compilation) identity() string {
	var defaults string
	if d := c.cfg.Defaults; !d.IsZero() {
		temp, tokens := "default", "default"
		if d.Temperature != nil {
			temp = strconv.FormatFloat(*d.Temperature, 'f', -1, 64)
		}
		if d.MaxTokens > 0 {
			tokens = strconv.Itoa(d.MaxTokens)
		}
		defaults = fmt.Sprintf("### Default Configuration\n\n- **Model**: %s\n- **Temperature**: %s\n- **Max Tokens**: %s",
			orDefault(d.Model, "not specified"), temp, tokens)
	}

	return paragraphs(
		fmt.Sprintf("# %s (v%s)", c.cfg.Name, c.cfg.Version),
		"## Identity & Purpose",
		c.cfg.Description,
		c.def.Instructions,
		defaults,
	)
}

// =============================================================================
// 2. Execution Flow
// =============================================================================

func (c *compilation) executionFlow() string {
	if c.g.NodeCount() == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Execution Flow\n\n")
	b.WriteString("You operate as a graph-based agent. Your reasoning follows this flow:\n\n")
	b.WriteString("### Step-by-Step Flow\n")
	for i, id := range c.order {
		n, _ := c.g.Node(id)
		fmt.Fprintf(&b, "\n%d. **Step %d: %s** (`%s`) [type: %s]", i+1, i+1, n.DisplayName(), id, n.Kind)
		for _, e := range c.g.Outgoing(id) {
			b.WriteString("\n   - " + c.transition(e))
			if e.PassFields != "" {
				fmt.Fprintf(&b, "\n     - Pass: `%s`", e.PassFields)
			}
		}
	}

	b.WriteString("\n\n### Execution Rules\n\n")
	fmt.Fprintf(&b, "- **Mode**: %s\n", orDefault(c.cfg.Execution.Mode, "sequential"))
	if start := c.g.Start(); start != "" {
		fmt.Fprintf(&b, "- **Entry Point**: **%s**\n", c.displayName(start))
	}
	if terms := c.g.Terminals(); len(terms) > 0 {
		names := make([]string, len(terms))
		for i, id := range terms {
			names[i] = "**" + c.displayName(id) + "**"
		}
		fmt.Fprintf(&b, "- **Exit Points**: %s\n", strings.Join(names, ", "))
	}
	if t := c.cfg.Execution.MaxTotalTime; t != "" {
		fmt.Fprintf(&b, "- **Max Total Time**: %s\n", t)
	}
	fmt.Fprintf(&b, "- **Error Strategy**: %s", c.cfg.Execution.ErrorStrategy)
	return b.String()
}

// transition phrases one outgoing edge. Conditions win over error routes,
// error routes over fallbacks.
func (c *compilation) transition(e flow.Edge) string {
	target := c.displayName(e.To)
	var s string
	switch {
	case e.Condition != "":
		s = fmt.Sprintf("If `%s` → go to **%s**", e.Condition, target)
	case e.OnError:
		s = fmt.Sprintf("On error → go to **%s**", target)
	case e.Fallback:
		s = fmt.Sprintf("Otherwise → go to **%s**", target)
	default:
		s = fmt.Sprintf("Then → **%s**", target)
	}
	if e.MaxIterations > 0 {
		s += fmt.Sprintf(" (at most %d times)", e.MaxIterations)
	}
	return s
}

// =============================================================================
// 3. Node Instructions
// =============================================================================

func (c *compilation) nodeInstructions() string {
	if len(c.nodes) == 0 {
		return ""
	}

	blocks := []string{
		"## Node Instructions",
		"Each step below describes what to do when execution reaches that node.",
	}
	for _, e := range c.nodes {
		blocks = append(blocks, c.nodeBlock(e))
	}
	return strings.Join(blocks, "\n\n")
}

func (c *compilation) nodeBlock(e entry) string {
	name := e.id
	if e.node != nil {
		name = e.node.DisplayName()
	}
	header := fmt.Sprintf("### 🔹 %s (`%s`)", name, e.id)

	var meta []string
	if n := e.node; n != nil {
		meta = append(meta, "- **Type**: "+n.Kind.String())
		if n.Model != "" {
			meta = append(meta, "- **Model Override**: "+n.Model)
		}
		if n.Retry > 1 {
			meta = append(meta, fmt.Sprintf("- **Retry**: up to %d times", n.Retry))
		}
		if n.Timeout != "" {
			meta = append(meta, "- **Timeout**: "+n.Timeout)
		}
		if n.Tools != "" {
			meta = append(meta, fmt.Sprintf("- **Tools**: `%s`", n.Tools))
		}
		if n.Threshold != nil {
			meta = append(meta, "- **Threshold**: "+strconv.FormatFloat(*n.Threshold, 'f', -1, 64))
		}
		if n.Strategy != "" {
			meta = append(meta, "- **Strategy**: "+n.Strategy)
		}
		if n.Channel != "" {
			meta = append(meta, "- **Channel**: "+n.Channel)
		}
		if n.MaxIterations > 0 {
			meta = append(meta, fmt.Sprintf("- **Max Iterations**: %d", n.MaxIterations))
		}
	}

	instructions := fmt.Sprintf("*No specific instructions defined for `%s`. Use the node type and graph context to determine behavior.*", e.id)
	var refs string
	if e.content != nil {
		instructions = orDefault(strings.TrimSpace(e.content.Instructions), instructions)
		refs = references(e.content.References)
	}
	return paragraphs(header, strings.Join(meta, "\n"), instructions, refs)
}

func references(refs []agent.Reference) string {
	if len(refs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("**Reference Materials:**")
	for _, r := range refs {
		fmt.Fprintf(&b, "\n\n<reference name=%q>\n%s\n</reference>", r.Name, strings.TrimRight(r.Content, "\n"))
	}
	return b.String()
}

// =============================================================================
// 4. Available Tools
// =============================================================================

func (c *compilation) tools() string {
	users := c.serverUsers()

	servers := slices.Clone(c.cfg.MCPServers)
	var functions []string
	for _, e := range c.nodes {
		if e.content == nil {
			continue
		}
		for _, t := range e.content.Tools {
			if !t.IsServer() {
				functions = append(functions, fmt.Sprintf("- **%s**: %s", t.Name, orDefault(t.Description, "no description")))
				continue
			}
			if !slices.ContainsFunc(servers, func(s agent.Tool) bool { return s.Name == t.Name }) {
				servers = append(servers, t)
			}
		}
	}
	if len(servers) == 0 && len(functions) == 0 {
		return ""
	}

	parts := []string{"## Available Tools"}
	if len(servers) > 0 {
		var b strings.Builder
		b.WriteString("### MCP Servers\n")
		for _, s := range servers {
			fmt.Fprintf(&b, "\n- **%s**: `%s`", s.Name, orDefault(s.URL, "no url"))
			if s.Description != "" {
				b.WriteString(" " + s.Description)
			}
			for _, id := range users[s.Name] {
				fmt.Fprintf(&b, "\n  - Used by node: `%s`", id)
			}
		}
		parts = append(parts, b.String())
	}
	if len(functions) > 0 {
		parts = append(parts, "### Functions\n\n"+strings.Join(functions, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// =============================================================================
// 5. Data Contracts
// =============================================================================

func (c *compilation) dataContracts() string {
	edges := c.g.Edges()
	if len(edges) == 0 {
		return ""
	}

	blocks := []string{
		"## Data Contracts Between Nodes",
		"These define what data flows between nodes along each edge:",
	}
	for _, e := range edges {
		lines := []string{fmt.Sprintf("**%s** → **%s**", c.displayName(e.From), c.displayName(e.To))}
		if e.Condition != "" {
			lines = append(lines, fmt.Sprintf("  - Condition: `%s`", e.Condition))
		}
		if e.PassFields != "" {
			lines = append(lines, fmt.Sprintf("  - Data passed: `%s`", e.PassFields))
		}
		if e.Transform != "" {
			lines = append(lines, fmt.Sprintf("  - Transform: `%s`", e.Transform))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// =============================================================================
// 6. Guardrails
// =============================================================================

func (c *compilation) guardrails() string {
	blocks := []string{"## Guardrails & Validation"}
	for _, e := range c.nodes {
		if e.content == nil || e.content.Guardrails.Empty() {
			continue
		}
		g := e.content.Guardrails
		parts := []string{"### " + e.id}
		if len(g.Input) > 0 {
			parts = append(parts, "**Input Validation:**\n"+ruleList(g.Input))
		}
		if len(g.Output) > 0 {
			parts = append(parts, "**Output Validation:**\n"+ruleList(g.Output))
		}
		blocks = append(blocks, strings.Join(parts, "\n\n"))
	}
	if len(blocks) == 1 {
		return ""
	}
	return strings.Join(blocks, "\n\n")
}

func ruleList(rules []agent.Rule) string {
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = "  - " + string(r)
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// 7. Error Handling
// =============================================================================

func (c *compilation) errorHandling() string {
	parts := []string{
		"## Error Handling",
		"**Default Strategy**: " + c.cfg.Execution.ErrorStrategy,
	}

	var routes []string
	for _, e := range c.g.Edges() {
		if e.OnError {
			routes = append(routes, fmt.Sprintf("- If `%s` fails → route to `%s`", c.displayName(e.From), c.displayName(e.To)))
		}
	}
	if len(routes) > 0 {
		parts = append(parts, "**Error Routes:**\n"+strings.Join(routes, "\n"))
	}

	var retries []string
	for _, id := range c.order {
		if n, _ := c.g.Node(id); n.Retry > 1 {
			retries = append(retries, fmt.Sprintf("- `%s`: up to %d retries", n.DisplayName(), n.Retry))
		}
	}
	if len(retries) > 0 {
		parts = append(parts, "**Retry-enabled Nodes:**\n"+strings.Join(retries, "\n"))
	}

	parts = append(parts, "**General Rules:**\n"+
		"- If no explicit error route exists, apply the default strategy\n"+
		"- Always log error context (node, input, error message)\n"+
		"- Never silently swallow errors; the user should know what happened")
	return strings.Join(parts, "\n\n")
}

// =============================================================================
// 8. Sub-Agent References
// =============================================================================

func (c *compilation) subAgents() string {
	blocks := []string{
		"## Sub-Agent References",
		"Some nodes are complete agents with their own flow. When execution reaches one, follow its compiled system prompt and return its result to this flow.",
	}
	for _, e := range c.nodes {
		if e.content == nil || e.content.Sub == nil {
			continue
		}
		sub := e.content.Sub
		dir := sub.Dir
		// Paths are relative to the parent so the document does not depend
		// on the directory the compiler was invoked from.
		if rel, err := filepath.Rel(c.def.Dir, sub.Dir); err == nil {
			dir = rel
		}
		dir = filepath.ToSlash(dir)
		nodes := 0
		if sub.Graph != nil {
			nodes = sub.Graph.NodeCount()
		}
		blocks = append(blocks, fmt.Sprintf(
			"### Sub-Agent: %s\n\n- **Name**: %s\n- **Path**: `%s`\n- **Complexity**: %d nodes\n- **System Prompt**: See `%s/%s`",
			e.id, sub.Config.Normalized().Name, dir, nodes, dir, c.opts.OutputName))
	}
	if len(blocks) == 2 {
		return ""
	}
	return strings.Join(blocks, "\n\n")
}

// =============================================================================
// 9. Footer
// =============================================================================

func (c *compilation) footer(body string) string {
	return fmt.Sprintf("## Meta\n\n"+
		"- **Agent Directory**: `%s`\n"+
		"- **Document ID**: `%s`\n"+
		"- **Generated At**: %s\n"+
		"- **Generator**: %s %s\n\n"+
		"> This file is auto-generated. Do not edit manually.\n"+
		"> To update, modify the source files and re-run the compiler.",
		filepath.ToSlash(c.def.Dir), DocumentID(body), c.opts.Now().UTC().Format(time.RFC3339), Generator, buildinfo.Short())
}

package compiler

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/mermaid"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

const supportDiagram = `graph TD
    start(("START
    @type: terminal"))
    classify{"Classify ticket
    @type: router
    @retry: 3
    @model: claude-sonnet
    @tools: zendesk"}
    answer["Answer"]
    escalate[["Escalate
    @type: subagent"]]
    done(("DONE
    @type: terminal"))
    start --> classify
    classify -->|"@cond: simple
    @pass: ticket_id, summary"| answer
    classify -->|"@on_error: true"| escalate
    answer --> done
    escalate --> done
`

func supportAgent() *agent.Definition {
	temp := 0.2
	return &agent.Definition{
		Dir:   "agents/support",
		Graph: mermaid.Parse(supportDiagram),
		Config: agent.Config{
			Name:        "Support Agent",
			Version:     "1.2.0",
			Description: "Answers customer tickets.",
			Defaults:    agent.ModelDefaults{Model: "claude-haiku", Temperature: &temp},
			Execution:   agent.Execution{MaxTotalTime: "5m", ErrorStrategy: "escalate"},
			MCPServers: []agent.Tool{
				{Name: "zendesk", Type: agent.ToolTypeMCPServer, URL: "http://localhost:3001"},
				{Name: "slack", Type: agent.ToolTypeMCPServer},
			},
		},
		Instructions: "Be concise.",
		Nodes: map[string]*agent.NodeContent{
			"classify": {
				Instructions: "Pick a queue.",
				Tools: []agent.Tool{
					{Name: "lookup_customer", Type: agent.ToolTypeFunction, Description: "Fetch the customer record"},
				},
				Guardrails: &agent.Guardrails{
					Input:  []agent.Rule{"ticket must have a body"},
					Output: []agent.Rule{"queue must be known"},
				},
				References: []agent.Reference{{Name: "queues.md", Content: "billing, tech\n"}},
			},
			"answer": {
				Tools: []agent.Tool{{Name: "github", Type: agent.ToolTypeMCPServer, URL: "http://localhost:3002"}},
			},
		},
	}
}

func section(t *testing.T, doc, heading string) string {
	t.Helper()
	for _, s := range strings.Split(doc, sectionSeparator) {
		if strings.HasPrefix(s, heading+"\n") || strings.Contains(s, "\n"+heading+"\n") {
			return s
		}
	}
	t.Fatalf("section %q not found in:\n%s", heading, doc)
	return ""
}

func TestCompileDeterministic(t *testing.T) {
	a := Compile(supportAgent(), Options{Now: fixedNow})
	b := Compile(supportAgent(), Options{Now: fixedNow})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Compile() not deterministic (-first +second):\n%s", diff)
	}

	later := Compile(supportAgent(), Options{Now: func() time.Time { return fixedNow().Add(time.Hour) }})
	stamp := regexp.MustCompile(`(?m)^- \*\*Generated At\*\*: .*$`)
	if stamp.ReplaceAllString(a, "") != stamp.ReplaceAllString(later, "") {
		t.Error("Compile() output differs beyond the timestamp")
	}
}

func TestCompileSectionOrder(t *testing.T) {
	doc := Compile(supportAgent(), Options{Now: fixedNow})
	headings := []string{
		"# Support Agent (v1.2.0)",
		"## Execution Flow",
		"## Node Instructions",
		"## Available Tools",
		"## Data Contracts Between Nodes",
		"## Guardrails & Validation",
		"## Error Handling",
		"## Meta",
	}
	last := -1
	for _, h := range headings {
		i := strings.Index(doc, h)
		if i < 0 {
			t.Fatalf("heading %q missing", h)
		}
		if i <= last {
			t.Errorf("heading %q out of order", h)
		}
		last = i
	}
	if !strings.HasSuffix(doc, "re-run the compiler.\n") {
		t.Errorf("document does not end with the footer notice")
	}
}

func TestCompileSectionOmission(t *testing.T) {
	def := &agent.Definition{Dir: "a", Graph: mermaid.Parse("a --> b")}
	doc := Compile(def, Options{Now: fixedNow})

	for _, absent := range []string{"## Guardrails", "## Available Tools", "## Sub-Agent References", "### Default Configuration"} {
		if strings.Contains(doc, absent) {
			t.Errorf("Compile() contains %q, want it omitted", absent)
		}
	}
	for _, present := range []string{"# Unnamed Agent (v0.1.0)", "## Error Handling", "**Default Strategy**: log_and_continue"} {
		if !strings.Contains(doc, present) {
			t.Errorf("Compile() missing %q", present)
		}
	}
}

func TestCompileNilGraph(t *testing.T) {
	doc := Compile(&agent.Definition{Dir: "empty"}, Options{Now: fixedNow})
	if strings.Contains(doc, "## Execution Flow") {
		t.Error("empty graph rendered an execution flow")
	}
	if !strings.Contains(doc, "## Error Handling") {
		t.Error("Error Handling section missing")
	}
}

func TestCompileIdentity(t *testing.T) {
	got := section(t, Compile(supportAgent(), Options{Now: fixedNow}), "## Identity & Purpose")
	want := "# Support Agent (v1.2.0)\n\n## Identity & Purpose\n\nAnswers customer tickets.\n\nBe concise.\n\n" +
		"### Default Configuration\n\n- **Model**: claude-haiku\n- **Temperature**: 0.2\n- **Max Tokens**: default"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("identity mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileExecutionFlow(t *testing.T) {
	got := section(t, Compile(supportAgent(), Options{Now: fixedNow}), "## Execution Flow")

	for _, want := range []string{
		"1. **Step 1: START** (`start`) [type: terminal]",
		"2. **Step 2: Classify ticket** (`classify`) [type: router]",
		"   - If `simple` → go to **Answer**\n     - Pass: `ticket_id, summary`",
		"   - On error → go to **Escalate**",
		"   - Then → **DONE**",
		"- **Mode**: sequential",
		"- **Entry Point**: **START**",
		"- **Exit Points**: **DONE**",
		"- **Max Total Time**: 5m",
		"- **Error Strategy**: escalate",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("execution flow missing %q:\n%s", want, got)
		}
	}
}

func TestCompileTransitionWording(t *testing.T) {
	tests := []struct {
		edge string
		want string
	}{
		{"a -->|\"@cond: attempts > 2\n@on_error: true\"| b", "If `attempts > 2` → go to **b**"},
		{"a -->|\"@on_error: true\n@fallback: true\"| b", "On error → go to **b**"},
		{"a -->|\"@fallback: true\"| b", "Otherwise → go to **b**"},
		{"a -->|\"@max_iterations: 3\"| b", "Then → **b** (at most 3 times)"},
	}
	for _, tt := range tests {
		def := &agent.Definition{Dir: "a", Graph: mermaid.Parse("graph TD\n" + tt.edge)}
		got := section(t, Compile(def, Options{Now: fixedNow}), "## Execution Flow")
		if !strings.Contains(got, "   - "+tt.want) {
			t.Errorf("Compile(%q) execution flow missing %q:\n%s", tt.edge, tt.want, got)
		}
	}
}

func TestCompileNodeInstructions(t *testing.T) {
	got := section(t, Compile(supportAgent(), Options{Now: fixedNow}), "## Node Instructions")

	classify := "### 🔹 Classify ticket (`classify`)\n\n" +
		"- **Type**: router\n- **Model Override**: claude-sonnet\n- **Retry**: up to 3 times\n- **Tools**: `zendesk`\n\n" +
		"Pick a queue.\n\n" +
		"**Reference Materials:**\n\n<reference name=\"queues.md\">\nbilling, tech\n</reference>"
	if !strings.Contains(got, classify) {
		t.Errorf("classify block mismatch:\n%s", got)
	}
	if !strings.Contains(got, "*No specific instructions defined for `answer`.") {
		t.Error("missing placeholder for node without instructions")
	}
	if strings.Contains(got, "- **Retry**: up to 1 times") {
		t.Error("retry rendered for a single attempt")
	}
	if strings.Index(got, "(`start`)") > strings.Index(got, "(`classify`)") {
		t.Error("node blocks not in topological order")
	}
}

func TestCompileUnmatchedNodeDirectory(t *testing.T) {
	def := &agent.Definition{
		Dir:   "a",
		Graph: mermaid.Parse("a --> b"),
		Nodes: map[string]*agent.NodeContent{
			"zeta":  {Instructions: "orphan z"},
			"alpha": {Instructions: "orphan a"},
		},
	}
	got := section(t, Compile(def, Options{Now: fixedNow}), "## Node Instructions")
	if i, j := strings.Index(got, "orphan a"), strings.Index(got, "orphan z"); i < 0 || j < i {
		t.Errorf("unmatched directories not rendered in name order:\n%s", got)
	}
}

func TestCompileTools(t *testing.T) {
	got := section(t, Compile(supportAgent(), Options{Now: fixedNow}), "## Available Tools")
	want := "## Available Tools\n\n" +
		"### MCP Servers\n\n" +
		"- **zendesk**: `http://localhost:3001`\n  - Used by node: `classify`\n" +
		"- **slack**: `no url`\n" +
		"- **github**: `http://localhost:3002`\n  - Used by node: `answer`\n\n" +
		"### Functions\n\n" +
		"- **lookup_customer**: Fetch the customer record"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileDataContractsKeepDeclarationOrder(t *testing.T) {
	// b --> c is declared first but a comes first in topological order.
	def := &agent.Definition{
		Dir:   "a",
		Graph: mermaid.Parse("b[\"B\"] -->|\"@pass: x\"| c[\"C\"]\na[\"A\"] -->|\"@cond: ready @transform: upper\"| b"),
	}
	doc := Compile(def, Options{Now: fixedNow})

	flow := section(t, doc, "## Execution Flow")
	if !strings.Contains(flow, "**Step 1: A**") {
		t.Fatalf("expected A first in topological order:\n%s", flow)
	}

	got := section(t, doc, "## Data Contracts Between Nodes")
	want := "## Data Contracts Between Nodes\n\n" +
		"These define what data flows between nodes along each edge:\n\n" +
		"**B** → **C**\n  - Data passed: `x`\n\n" +
		"**A** → **B**\n  - Condition: `ready`\n  - Transform: `upper`"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("data contracts mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileGuardrails(t *testing.T) {
	got := section(t, Compile(supportAgent(), Options{Now: fixedNow}), "## Guardrails & Validation")
	want := "## Guardrails & Validation\n\n### classify\n\n" +
		"**Input Validation:**\n  - ticket must have a body\n\n" +
		"**Output Validation:**\n  - queue must be known"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("guardrails mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileErrorHandling(t *testing.T) {
	got := section(t, Compile(supportAgent(), Options{Now: fixedNow}), "## Error Handling")
	for _, want := range []string{
		"**Default Strategy**: escalate",
		"**Error Routes:**\n- If `Classify ticket` fails → route to `Escalate`",
		"**Retry-enabled Nodes:**\n- `Classify ticket`: up to 3 retries",
		"- Never silently swallow errors",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("error handling missing %q:\n%s", want, got)
		}
	}
}

func TestCompileSubAgents(t *testing.T) {
	def := supportAgent()
	def.Nodes["escalate"] = &agent.NodeContent{
		Sub: &agent.Definition{
			Dir:    "agents/support/nodes/escalate",
			Graph:  mermaid.Parse("triage --> page --> close"),
			Config: agent.Config{Name: "Escalation"},
		},
	}
	got := section(t, Compile(def, Options{Now: fixedNow, OutputName: "PROMPT.md"}), "## Sub-Agent References")
	want := "### Sub-Agent: escalate\n\n- **Name**: Escalation\n- **Path**: `nodes/escalate`\n" +
		"- **Complexity**: 3 nodes\n- **System Prompt**: See `nodes/escalate/PROMPT.md`"
	if !strings.HasSuffix(got, want) {
		t.Errorf("sub-agent block mismatch:\n%s", got)
	}
}

func TestCompileIndependentOfWorkingDirectory(t *testing.T) {
	rel := filepath.Join("..", "..", "examples", "research-agent")
	abs, err := filepath.Abs(rel)
	if err != nil {
		t.Fatalf("Abs(%q) error = %v", rel, err)
	}

	var docs []string
	for _, dir := range []string{rel, abs} {
		def, err := agent.Load(dir, agent.LoadOptions{})
		if err != nil {
			t.Fatalf("Load(%q) error = %v", dir, err)
		}
		docs = append(docs, Compile(def, Options{Now: fixedNow}))
	}

	if got := section(t, docs[0], "## Sub-Agent References"); !strings.Contains(got, "- **Path**: `nodes/write-report`") {
		t.Errorf("sub-agent path not relative to the parent:\n%s", got)
	}
	source := regexp.MustCompile(`(?m)^- \*\*Agent Directory\*\*: .*$`)
	if diff := cmp.Diff(source.ReplaceAllString(docs[0], ""), source.ReplaceAllString(docs[1], "")); diff != "" {
		t.Errorf("Compile() depends on how the directory was named (-relative +absolute):\n%s", diff)
	}
}

func TestCompileFooter(t *testing.T) {
	doc := Compile(supportAgent(), Options{Now: fixedNow})
	i := strings.LastIndex(doc, sectionSeparator)
	body, footer := doc[:i], doc[i:]

	if !strings.Contains(footer, "- **Document ID**: `"+DocumentID(body).String()+"`") {
		t.Errorf("footer does not carry the body's document ID:\n%s", footer)
	}
	if !strings.Contains(footer, "- **Generated At**: 2026-03-01T12:00:00Z") {
		t.Errorf("footer timestamp mismatch:\n%s", footer)
	}
	if !strings.Contains(footer, "- **Generator**: "+Generator) {
		t.Errorf("footer generator mismatch:\n%s", footer)
	}

	changed := supportAgent()
	changed.Instructions = "Be thorough."
	if DocumentID(body) == DocumentID(strings.Split(Compile(changed, Options{Now: fixedNow}), "\n\n---\n\n## Meta")[0]) {
		t.Error("DocumentID() unchanged after content change")
	}
}

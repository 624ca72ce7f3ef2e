package mermaid

import (
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/agentflow/pkg/flow"
)

// StartMarker is the display-name prefix (case-insensitive) that makes a
// terminal node the start of the flow.
const StartMarker = "START"

var (
	fenceOpenRe  = regexp.MustCompile("^\\s*```\\s*mermaid\\b")
	fenceRe      = regexp.MustCompile("^\\s*```")
	directionRe  = regexp.MustCompile(`(?i)^\s*(graph|flowchart)(\s+(TD|TB|BT|RL|LR))?\s*;?\s*$`)
	commentRe    = regexp.MustCompile(`^\s*%%`)
	directiveRe  = regexp.MustCompile(`^\s*((classDef|class|style|linkStyle|click|subgraph|direction)\s|end\s*$)`)
	connectorAny = regexp.MustCompile(`--|==`)
)

// parser owns the graph under construction for a single Parse call.
type parser struct {
	g *flow.Graph
}

// Parse builds an agent graph from diagram text. It never fails: lines it
// cannot make sense of are skipped, unknown annotation keys are dropped,
// and edge endpoints that were never declared become default nodes.
func Parse(text string) *flow.Graph {
	p := &parser{g: flow.New()}

	decls, edgeText := scanDeclarations(joinLines(stripPresentation(text)))
	for _, d := range decls {
		// A redeclared ID keeps its first declaration.
		_ = p.g.AddNode(d.node())
	}
	p.scanEdges(edgeText)
	p.resolveEntryPoints()
	return p.g
}

// stripPresentation keeps only the diagram body: the first mermaid fence if
// there is one, minus the direction line, comments, and styling directives.
func stripPresentation(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if i := slices.IndexFunc(lines, fenceOpenRe.MatchString); i >= 0 {
		lines = lines[i+1:]
		if j := slices.IndexFunc(lines, fenceRe.MatchString); j >= 0 {
			lines = lines[:j]
		}
	}

	var kept []string
	for _, line := range lines {
		switch {
		case fenceRe.MatchString(line),
			directionRe.MatchString(line),
			commentRe.MatchString(line),
			directiveRe.MatchString(line) && !connectorAny.MatchString(line):
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// joinLines folds annotation lines into the logical line before them so a
// multi-line label is scanned as one unit. Blank lines are dropped.
func joinLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "@") && len(out) > 0:
			out[len(out)-1] += "\n" + line
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// ensure registers id as a default node unless it is already known.
func (p *parser) ensure(id string) {
	if !p.g.Has(id) {
		_ = p.g.AddNode(flow.NewNode(id))
	}
}

// resolveEntryPoints picks the start node and the terminals. The first
// terminal whose name carries the start marker is the start; every other
// terminal is an end. Without such a node the start falls back to the
// first declared node with no incoming edges, preferring one that has
// outgoing edges.
func (p *parser) resolveEntryPoints() {
	var start string
	var terminals []string
	for _, n := range p.g.Nodes() {
		if n.Kind != flow.KindTerminal {
			continue
		}
		if start == "" && hasStartMarker(n.DisplayName()) {
			start = n.ID
			continue
		}
		terminals = append(terminals, n.ID)
	}

	if start == "" {
		start = p.inferStart()
		terminals = slices.DeleteFunc(terminals, func(id string) bool { return id == start })
	}
	_ = p.g.SetEntryPoints(start, terminals)
}

func (p *parser) inferStart() string {
	var isolated string
	for _, id := range p.g.IDs() {
		if p.g.InDegree(id) > 0 {
			continue
		}
		if p.g.OutDegree(id) > 0 {
			return id
		}
		if isolated == "" {
			isolated = id
		}
	}
	return isolated
}

func hasStartMarker(name string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(name)), StartMarker)
}

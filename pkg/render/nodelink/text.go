package nodelink

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/agentflow/pkg/flow"
)

var (
	rootStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	enumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Icon returns the glyph used for a node kind in text output.
func Icon(k flow.Kind) string {
	switch k {
	case flow.KindExecutor:
		return "⚙"
	case flow.KindTerminal:
		return "◉"
	case flow.KindRouter:
		return "◆"
	case flow.KindValidator:
		return "✓"
	case flow.KindAggregator:
		return "Σ"
	case flow.KindHumanInput:
		return "✋"
	case flow.KindTransformer:
		return "⇄"
	case flow.KindSubagent:
		return "⧉"
	case flow.KindFork:
		return "⑂"
	}
	panic(fmt.Sprintf("nodelink: unhandled kind %d", k))
}

// ToTree renders the graph as a terminal tree: one branch per node in
// topological order, with its outgoing transitions as leaves.
func ToTree(title string, g *flow.Graph) string {
	t := tree.Root(title).
		RootStyle(rootStyle).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)

	for i, id := range flow.TopologicalSort(g) {
		n, _ := g.Node(id)
		step := tree.Root(stepStyle.Render(fmt.Sprintf("%d. %s %s (%s) [%s]", i+1, Icon(n.Kind), n.DisplayName(), id, n.Kind))).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(enumStyle)
		for _, e := range g.Outgoing(id) {
			step.Child(branchStyle.Render(branchLabel(g, e)))
		}
		t.Child(step)
	}
	return t.String()
}

func branchLabel(g *flow.Graph, e flow.Edge) string {
	target := g.DisplayName(e.To)
	var s string
	switch {
	case e.Condition != "":
		s = fmt.Sprintf("if %s → %s", e.Condition, target)
	case e.OnError:
		s = "on error → " + target
	case e.Fallback:
		s = "otherwise → " + target
	default:
		s = "→ " + target
	}
	if e.PassFields != "" {
		s += fmt.Sprintf(" (pass: %s)", e.PassFields)
	}
	return s
}

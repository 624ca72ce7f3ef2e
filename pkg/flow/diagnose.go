package flow

import "fmt"

// Severity ranks a [Diagnostic]. Graph-level findings are always warnings;
// callers that inspect files on disk may raise errors of their own.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// Diagnostic codes reported by [Diagnose].
const (
	CodeMissingStart     = "missing-start"
	CodeMissingTerminals = "missing-terminals"
	CodeDisconnected     = "disconnected-node"
	CodeLoopRisk         = "loop-risk"
)

// Diagnostic is one advisory finding about an agent definition.
type Diagnostic struct {
	Severity Severity
	Code     string
	NodeID   string // empty for graph-wide findings
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
}

// Diagnose runs the structural checks over g. It never fails: a graph that
// triggers every check is still compilable.
func Diagnose(g *Graph) []Diagnostic {
	var out []Diagnostic

	if g.start == "" {
		out = append(out, Diagnostic{
			Code:    CodeMissingStart,
			Message: `no start node (expected a terminal node named "START")`,
		})
	}
	if len(g.terminals) == 0 {
		out = append(out, Diagnostic{
			Code:    CodeMissingTerminals,
			Message: "no terminal nodes besides the start node",
		})
	}

	if g.NodeCount() > 1 {
		for _, id := range g.order {
			if g.InDegree(id) == 0 && g.OutDegree(id) == 0 {
				out = append(out, Diagnostic{
					Code:    CodeDisconnected,
					NodeID:  id,
					Message: fmt.Sprintf("node %q has no edges", id),
				})
			}
		}
	}

	for _, e := range LoopRisks(g, TopologicalSort(g)) {
		out = append(out, Diagnostic{
			Code:    CodeLoopRisk,
			NodeID:  e.From,
			Message: fmt.Sprintf("edge %s -> %s loops back without @max_iterations or @cond", e.From, e.To),
		})
	}
	return out
}

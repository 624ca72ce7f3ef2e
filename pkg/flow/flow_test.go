package flow

import (
	"errors"
	"slices"
	"testing"
)

func chain(t *testing.T, ids ...string) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		if err := g.AddNode(NewNode(id)); err != nil {
			t.Fatalf("AddNode(%q) error = %v", id, err)
		}
	}
	for i := 1; i < len(ids); i++ {
		if err := g.AddEdge(Edge{From: ids[i-1], To: ids[i]}); err != nil {
			t.Fatalf("AddEdge error = %v", err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{"valid", NewNode("a"), nil},
		{"empty id", Node{}, ErrInvalidNodeID},
		{"punctuation", Node{ID: "a-b"}, ErrInvalidNodeID},
		{"duplicate", NewNode("dup"), ErrDuplicateNodeID},
	}

	g := New()
	_ = g.AddNode(NewNode("dup"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddNode(tt.node); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddNodeDefaultsRetry(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "x"})
	n, _ := g.Node("x")
	if n.Retry != 1 {
		t.Errorf("Retry = %d, want 1", n.Retry)
	}
}

func TestAddEdgeUnknownEndpoints(t *testing.T) {
	g := chain(t, "a")
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge() = %v, want %v", err, ErrUnknownSourceNode)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge() = %v, want %v", err, ErrUnknownTargetNode)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestMultigraphEdges(t *testing.T) {
	g := chain(t, "a", "b")
	_ = g.AddEdge(Edge{From: "a", To: "b", Condition: "retry"})

	out := g.Outgoing("a")
	if len(out) != 2 {
		t.Fatalf("Outgoing() len = %d, want 2", len(out))
	}
	if out[1].Condition != "retry" {
		t.Errorf("Outgoing()[1].Condition = %q, want %q", out[1].Condition, "retry")
	}
	if g.InDegree("b") != 2 {
		t.Errorf("InDegree(b) = %d, want 2", g.InDegree("b"))
	}
}

func TestSetEntryPoints(t *testing.T) {
	g := chain(t, "start", "end")
	if err := g.SetEntryPoints("missing", nil); !errors.Is(err, ErrInvalidStart) {
		t.Errorf("SetEntryPoints() = %v, want %v", err, ErrInvalidStart)
	}
	if err := g.SetEntryPoints("start", []string{"end"}); err != nil {
		t.Fatalf("SetEntryPoints() error = %v", err)
	}
	if g.Start() != "start" {
		t.Errorf("Start() = %q, want %q", g.Start(), "start")
	}
	if got := g.Terminals(); !slices.Equal(got, []string{"end"}) {
		t.Errorf("Terminals() = %v, want [end]", got)
	}
}

func TestNodesReturnsCopies(t *testing.T) {
	g := chain(t, "a")
	nodes := g.Nodes()
	nodes[0].Name = "mutated"
	if n, _ := g.Node("a"); n.Name != "a" {
		t.Errorf("Name = %q, want %q", n.Name, "a")
	}
}

func TestTopologicalSort(t *testing.T) {
	t.Run("chain from start", func(t *testing.T) {
		g := chain(t, "start", "work", "done")
		_ = g.SetEntryPoints("start", []string{"done"})
		want := []string{"start", "work", "done"}
		if got := TopologicalSort(g); !slices.Equal(got, want) {
			t.Errorf("TopologicalSort() = %v, want %v", got, want)
		}
	})

	t.Run("start declared last", func(t *testing.T) {
		g := New()
		for _, id := range []string{"b", "c", "a"} {
			_ = g.AddNode(NewNode(id))
		}
		_ = g.AddEdge(Edge{From: "a", To: "b"})
		_ = g.AddEdge(Edge{From: "b", To: "c"})
		_ = g.SetEntryPoints("a", nil)
		want := []string{"a", "b", "c"}
		if got := TopologicalSort(g); !slices.Equal(got, want) {
			t.Errorf("TopologicalSort() = %v, want %v", got, want)
		}
	})

	t.Run("cycle terminates", func(t *testing.T) {
		g := chain(t, "a", "b", "c")
		_ = g.AddEdge(Edge{From: "c", To: "a"})
		got := TopologicalSort(g)
		if len(got) != 3 {
			t.Fatalf("TopologicalSort() = %v, want 3 nodes", got)
		}
		if got[0] != "a" {
			t.Errorf("TopologicalSort()[0] = %q, want %q", got[0], "a")
		}
	})

	t.Run("unreachable nodes included", func(t *testing.T) {
		g := chain(t, "a", "b")
		_ = g.AddNode(NewNode("island"))
		_ = g.SetEntryPoints("a", nil)
		got := TopologicalSort(g)
		if !slices.Contains(got, "island") || len(got) != 3 {
			t.Errorf("TopologicalSort() = %v, want all 3 nodes", got)
		}
	})

	t.Run("diamond respects edges", func(t *testing.T) {
		g := New()
		for _, id := range []string{"s", "l", "r", "j"} {
			_ = g.AddNode(NewNode(id))
		}
		for _, e := range [][2]string{{"s", "l"}, {"s", "r"}, {"l", "j"}, {"r", "j"}} {
			_ = g.AddEdge(Edge{From: e[0], To: e[1]})
		}
		pos := PosMap(TopologicalSort(g))
		for _, e := range g.Edges() {
			if pos[e.From] >= pos[e.To] {
				t.Errorf("edge %s -> %s out of order", e.From, e.To)
			}
		}
	})
}

func TestLoopRisks(t *testing.T) {
	tests := []struct {
		name string
		back Edge
		want int
	}{
		{"unguarded", Edge{From: "b", To: "a"}, 1},
		{"bounded", Edge{From: "b", To: "a", MaxIterations: 3}, 0},
		{"conditional", Edge{From: "b", To: "a", Condition: "needs_revision"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chain(t, "a", "b")
			_ = g.AddEdge(tt.back)
			got := LoopRisks(g, TopologicalSort(g))
			if len(got) != tt.want {
				t.Errorf("LoopRisks() = %v, want %d edges", got, tt.want)
			}
		})
	}
}

func TestLoopRisksIgnoresUnorderedNodes(t *testing.T) {
	g := chain(t, "a", "b")
	_ = g.AddEdge(Edge{From: "b", To: "a"})
	if got := LoopRisks(g, []string{"a"}); len(got) != 0 {
		t.Errorf("LoopRisks() = %v, want none", got)
	}
}

func TestDiagnose(t *testing.T) {
	g := chain(t, "start", "work", "done")
	_ = g.AddEdge(Edge{From: "done", To: "work"})
	_ = g.AddNode(NewNode("orphan"))
	_ = g.SetEntryPoints("start", []string{"done"})

	var codes []string
	for _, d := range Diagnose(g) {
		if d.Severity != SeverityWarning {
			t.Errorf("Severity = %v, want %v", d.Severity, SeverityWarning)
		}
		codes = append(codes, d.Code)
	}
	want := []string{CodeDisconnected, CodeLoopRisk}
	if !slices.Equal(codes, want) {
		t.Errorf("Diagnose() codes = %v, want %v", codes, want)
	}
}

func TestKindString(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v, want %v, true", k.String(), got, ok, k)
		}
	}
	if _, ok := ParseKind("wizard"); ok {
		t.Error("ParseKind(wizard) ok = true, want false")
	}
	if got, _ := ParseKind(" Human_Input "); got != KindHumanInput {
		t.Errorf("ParseKind() = %v, want %v", got, KindHumanInput)
	}
}

func TestShapeString(t *testing.T) {
	for _, s := range Shapes {
		got, ok := ParseShape(s.String())
		if !ok || got != s {
			t.Errorf("ParseShape(%q) = %v, %v, want %v, true", s.String(), got, ok, s)
		}
	}
	if got, ok := ParseShape("blob"); ok || got != ShapeRectangle {
		t.Errorf("ParseShape(blob) = %v, %v, want rectangle, false", got, ok)
	}
}

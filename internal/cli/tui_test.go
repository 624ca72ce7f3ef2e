package cli

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/flow"
)

func loadTriage(t *testing.T) *agent.Definition {
	t.Helper()
	def, err := agent.Load(writeAgent(t, nil), agent.LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return def
}

func press(m NodeListModel, keys ...tea.KeyMsg) NodeListModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(NodeListModel)
	}
	return m
}

var (
	keyDown = tea.KeyMsg{Type: tea.KeyDown}
	keyUp   = tea.KeyMsg{Type: tea.KeyUp}
	keyJ    = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	keyQ    = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	keyTab  = tea.KeyMsg{Type: tea.KeyTab}
)

func TestNodeListModelRows(t *testing.T) {
	m := NewNodeListModel(loadTriage(t))

	if m.Title != "Triage Agent v2.0.0" {
		t.Errorf("Title = %q, want %q", m.Title, "Triage Agent v2.0.0")
	}
	var ids []string
	for _, r := range m.Rows {
		ids = append(ids, r.node.ID)
	}
	if want := []string{"start", "classify", "answer", "escalate", "done"}; !slices.Equal(ids, want) {
		t.Errorf("rows = %v, want %v", ids, want)
	}
}

func TestNodeListModelCursor(t *testing.T) {
	m := NewNodeListModel(loadTriage(t))

	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"up at top stays", []tea.KeyMsg{keyUp}, 0},
		{"down", []tea.KeyMsg{keyDown}, 1},
		{"vim keys", []tea.KeyMsg{keyJ, keyJ}, 2},
		{"down then up", []tea.KeyMsg{keyDown, keyDown, keyUp}, 1},
		{"clamped at bottom", []tea.KeyMsg{keyDown, keyDown, keyDown, keyDown, keyDown, keyDown}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := press(m, tt.keys...).Cursor; got != tt.want {
				t.Errorf("Cursor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNodeListModelScroll(t *testing.T) {
	m := NewNodeListModel(loadTriage(t))
	m.Height = 2

	m = press(m, keyDown, keyDown, keyDown)
	if m.Cursor != 3 || m.Offset != 2 {
		t.Errorf("Cursor, Offset = %d, %d, want 3, 2", m.Cursor, m.Offset)
	}

	m = press(m, keyUp, keyUp, keyUp)
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0", m.Offset)
	}
}

func TestNodeListModelWindowSize(t *testing.T) {
	m := NewNodeListModel(loadTriage(t))

	tests := []struct {
		height int
		want   int
	}{
		{40, 20},
		{10, 5},
	}
	for _, tt := range tests {
		next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: tt.height})
		if got := next.(NodeListModel).Height; got != tt.want {
			t.Errorf("Height after resize to %d = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestNodeListModelQuit(t *testing.T) {
	_, cmd := NewNodeListModel(loadTriage(t)).Update(keyQ)
	if cmd == nil {
		t.Fatal("Update(q) returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Update(q) command = %T, want tea.QuitMsg", cmd())
	}
}

func TestNodeListModelView(t *testing.T) {
	m := press(NewNodeListModel(loadTriage(t)), keyDown)

	view := m.View()
	for _, want := range []string{
		"Triage Agent v2.0.0",
		"[2/5]",
		"Decide whether the ticket is simple.",
		"if simple: Answer directly",
		"otherwise: Escalate",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q in:\n%s", want, view)
		}
	}

	if hidden := press(m, keyTab).View(); strings.Contains(hidden, "Decide whether the ticket is simple.") {
		t.Error("View() shows instructions after the detail pane was toggled off")
	}
}

func TestNodeListModelEmpty(t *testing.T) {
	m := NodeListModel{Title: "empty", Graph: flow.New(), Height: 10}
	if view := m.View(); !strings.Contains(view, "no nodes") {
		t.Errorf("View() = %q, want empty notice", view)
	}
}

func TestTransitionText(t *testing.T) {
	g := flow.New()
	n := flow.NewNode("b")
	n.Name = "Bee"
	if err := g.AddNode(n); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		edge flow.Edge
		want string
	}{
		{flow.Edge{From: "a", To: "b"}, "Bee"},
		{flow.Edge{From: "a", To: "b", Condition: "ok"}, "if ok: Bee"},
		{flow.Edge{From: "a", To: "b", Fallback: true}, "otherwise: Bee"},
		{flow.Edge{From: "a", To: "b", OnError: true}, "on error: Bee"},
		{flow.Edge{From: "a", To: "b", OnError: true, Condition: "ok"}, "if ok: Bee"},
		{flow.Edge{From: "a", To: "missing"}, "missing"},
	}
	for _, tt := range tests {
		if got := transitionText(g, tt.edge); got != tt.want {
			t.Errorf("transitionText(%+v) = %q, want %q", tt.edge, got, tt.want)
		}
	}
}

package flow

import (
	"errors"
	"regexp"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the ID is empty or
	// contains characters other than letters, digits and underscores.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID was already added.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when From is not a
	// registered node.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when To is not a
	// registered node.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidStart is returned by [Graph.SetEntryPoints] when the start or
	// a terminal ID does not name a registered node.
	ErrInvalidStart = errors.New("entry point is not a registered node")
)

var idPattern = regexp.MustCompile(`^\w+$`)

// ValidID reports whether id is a legal node identifier.
func ValidID(id string) bool { return idPattern.MatchString(id) }

// Node is one step of an agent flow.
//
// Optional fields use their zero value for "unset", except Threshold which
// is a pointer because zero is a meaningful threshold.
type Node struct {
	ID    string // unique join key
	Name  string // first line of the declared label
	Kind  Kind
	Shape Shape

	Model         string
	Retry         int // attempts, at least 1
	Timeout       string
	Tools         string
	Threshold     *float64
	Strategy      string
	Channel       string
	MaxIterations int
}

// NewNode returns a node with default kind, shape and retry count, named
// after its own ID. This is what edge-only references resolve to.
func NewNode(id string) Node {
	return Node{ID: id, Name: id, Kind: KindExecutor, Shape: ShapeRectangle, Retry: 1}
}

// DisplayName returns Name, or ID when the label was empty.
func (n Node) DisplayName() string {
	if n.Name == "" {
		return n.ID
	}
	return n.Name
}

// Edge is a transition between two nodes. Several edges may join the same
// ordered pair; each one is a distinct branch.
type Edge struct {
	From string
	To   string

	Condition     string // opaque boolean expression
	PassFields    string // opaque field list
	Transform     string
	OnError       bool
	Fallback      bool
	MaxIterations int

	// Label is the verbatim label text the fields were extracted from.
	Label string
	// Undirected is set for edges declared with an undirected connector.
	Undirected bool
}

// Guarded reports whether the edge carries an iteration bound or a
// condition, marking any cycle through it as intentional.
func (e Edge) Guarded() bool { return e.MaxIterations > 0 || e.Condition != "" }

// Graph is a directed multigraph of agent steps. Nodes keep their
// insertion order and edges keep their declaration order.
//
// A Graph is built by the parser and read by everyone else; callers must
// treat a returned graph as immutable. The zero value is not usable, use
// [New].
type Graph struct {
	nodes     map[string]*Node
	order     []string
	edges     []Edge
	outgoing  map[string][]int // node ID -> indices into edges
	incoming  map[string][]int
	start     string
	terminals []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
	}
}

// AddNode registers n. It returns [ErrInvalidNodeID] or
// [ErrDuplicateNodeID] and leaves the graph unchanged on failure.
func (g *Graph) AddNode(n Node) error {
	if !ValidID(n.ID) {
		return ErrInvalidNodeID
	}
	if _, ok := g.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	if n.Retry < 1 {
		n.Retry = 1
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge appends e. Both endpoints must already be registered.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], idx)
	g.incoming[e.To] = append(g.incoming[e.To], idx)
	return nil
}

// SetEntryPoints records the start node (may be empty) and the terminal
// nodes. Every non-empty ID must be registered.
func (g *Graph) SetEntryPoints(start string, terminals []string) error {
	if start != "" && !g.Has(start) {
		return ErrInvalidStart
	}
	for _, id := range terminals {
		if !g.Has(id) {
			return ErrInvalidStart
		}
	}
	g.start = start
	g.terminals = slices.Clone(terminals)
	return nil
}

// Has reports whether id is a registered node.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// DisplayName returns the display name of id, falling back to id itself
// for unknown nodes.
func (g *Graph) DisplayName(id string) string {
	if n, ok := g.nodes[id]; ok {
		return n.DisplayName()
	}
	return id
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = *g.nodes[id]
	}
	return out
}

// IDs returns node IDs in insertion order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Edges returns all edges in declaration order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Outgoing returns the edges leaving id in declaration order.
func (g *Graph) Outgoing(id string) []Edge { return g.pick(g.outgoing[id]) }

// Incoming returns the edges entering id in declaration order.
func (g *Graph) Incoming(id string) []Edge { return g.pick(g.incoming[id]) }

func (g *Graph) pick(idx []int) []Edge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// InDegree returns the number of edges entering id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Start returns the start node ID, or "" when none was resolved.
func (g *Graph) Start() string { return g.start }

// Terminals returns the terminal node IDs, excluding the start node.
func (g *Graph) Terminals() []string { return slices.Clone(g.terminals) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

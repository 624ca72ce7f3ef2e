package flow

import "slices"

// TopologicalSort linearizes g for narration.
//
// It runs a depth-first search from the start node, then from every
// unvisited node in insertion order, appending each node once its outgoing
// edges are exhausted, and returns the reversed post-order. Cycles cannot
// cause non-termination: an edge into an already visited node is skipped.
// For acyclic graphs the result is a valid topological order; for cyclic
// graphs it is a valid order of the acyclic projection.
func TopologicalSort(g *Graph) []string {
	visited := make(map[string]bool, g.NodeCount())
	post := make([]string, 0, g.NodeCount())

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		for _, idx := range g.outgoing[id] {
			if next := g.edges[idx].To; !visited[next] {
				visit(next)
			}
		}
		post = append(post, id)
	}

	if g.start != "" {
		visit(g.start)
	}
	for _, id := range g.order {
		if !visited[id] {
			visit(id)
		}
	}

	slices.Reverse(post)
	return post
}

// PosMap creates a position lookup map from a slice of node IDs.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// LoopRisks returns the edges of g that probably form an unbounded loop
// with respect to order: the source sits after the target and the edge has
// neither a condition nor an iteration bound. Edges with an endpoint
// missing from order are ignored. The result is advisory only.
func LoopRisks(g *Graph, order []string) []Edge {
	pos := PosMap(order)
	var risky []Edge
	for _, e := range g.edges {
		src, okSrc := pos[e.From]
		dst, okDst := pos[e.To]
		if !okSrc || !okDst || src <= dst {
			continue
		}
		if !e.Guarded() {
			risky = append(risky, e)
		}
	}
	return risky
}

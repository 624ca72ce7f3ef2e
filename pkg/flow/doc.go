// Package flow provides the graph model for agent flows: typed steps joined
// by annotated transitions.
//
// # Overview
//
// An agent flow is a directed multigraph. Each [Node] is a step with a
// closed [Kind] (executor, router, terminal, ...) and a presentation
// [Shape]. Each [Edge] is a transition that may carry a condition, a list
// of fields to pass along, a transform, and error or fallback markers.
// Two edges between the same pair of nodes are distinct branches.
//
// Graphs are normally produced by the mermaid package, but can be built
// directly:
//
//	g := flow.New()
//	_ = g.AddNode(flow.NewNode("fetch"))
//	_ = g.AddNode(flow.NewNode("summarize"))
//	_ = g.AddEdge(flow.Edge{From: "fetch", To: "summarize", PassFields: "pages"})
//
// Nodes keep insertion order and edges keep declaration order. Every
// consumer relies on that to produce stable output.
//
// # Ordering
//
// Agent flows are allowed to loop, so a strict topological order does not
// always exist. [TopologicalSort] returns the reversed depth-first
// post-order starting at the start node, which is a topological order of
// the graph with its back edges removed. [LoopRisks] then reports back
// edges that carry neither a condition nor an iteration bound.
//
// # Diagnostics
//
// [Diagnose] collects advisory findings: a missing start node, missing
// terminals, disconnected nodes, and loop risks. None of them prevents a
// graph from being compiled.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Once built it is only read,
// and concurrent reads are safe.
package flow

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/agentflow/pkg/flow"
)

// ReadJSON decodes a JSON graph written by [WriteJSON] from r.
//
// Each node must have an "id"; kind and shape default to executor and
// rectangle. Each edge must have "from" and "to" fields that reference
// node IDs. Unlike diagram parsing, ReadJSON is strict: malformed JSON,
// an unknown kind or shape, a duplicate or invalid node ID, an edge to an
// unknown node, or an entry point that is not a node is an error.
//
// Errors are wrapped with context describing which node or edge caused
// the problem. Use errors.Is to check for the [flow] sentinel errors.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*flow.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := flow.New()
	for _, n := range data.Nodes {
		nd := flow.Node{
			ID:            n.ID,
			Name:          n.Name,
			Kind:          n.Kind,
			Shape:         n.Shape,
			Model:         n.Model,
			Retry:         n.Retry,
			Timeout:       n.Timeout,
			Tools:         n.Tools,
			Threshold:     n.Threshold,
			Strategy:      n.Strategy,
			Channel:       n.Channel,
			MaxIterations: n.MaxIterations,
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(flow.Edge(e)); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	if err := g.SetEntryPoints(data.Start, data.Terminals); err != nil {
		return nil, fmt.Errorf("entry points: %w", err)
	}

	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// It returns the same errors as [ReadJSON], plus open failures wrapped
// with the path.
func ImportJSON(path string) (*flow.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

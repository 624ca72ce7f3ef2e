package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/agentflow/pkg/flow"
)

type graph struct {
	Start     string   `json:"start,omitempty"`
	Terminals []string `json:"terminals,omitempty"`
	Nodes     []node   `json:"nodes"`
	Edges     []edge   `json:"edges"`
}

type node struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Kind          flow.Kind  `json:"kind"`
	Shape         flow.Shape `json:"shape"`
	Model         string     `json:"model,omitempty"`
	Retry         int        `json:"retry,omitempty"`
	Timeout       string     `json:"timeout,omitempty"`
	Tools         string     `json:"tools,omitempty"`
	Threshold     *float64   `json:"threshold,omitempty"`
	Strategy      string     `json:"strategy,omitempty"`
	Channel       string     `json:"channel,omitempty"`
	MaxIterations int        `json:"max_iterations,omitempty"`
}

type edge struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Condition     string `json:"condition,omitempty"`
	PassFields    string `json:"pass,omitempty"`
	Transform     string `json:"transform,omitempty"`
	OnError       bool   `json:"on_error,omitempty"`
	Fallback      bool   `json:"fallback,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
	Label         string `json:"label,omitempty"`
	Undirected    bool   `json:"undirected,omitempty"`
}

// WriteJSON encodes an agent graph as JSON and writes it to w.
// Nodes keep insertion order and edges keep declaration order. The output
// can be read back with [ReadJSON].
func WriteJSON(g *flow.Graph, w io.Writer) error {
	out := graph{
		Start:     g.Start(),
		Terminals: g.Terminals(),
		Nodes:     make([]node, 0, g.NodeCount()),
		Edges:     make([]edge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, node{
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
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes an agent graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *flow.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

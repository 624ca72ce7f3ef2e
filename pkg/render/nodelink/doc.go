// Package nodelink renders agent graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// For terminals, [ToTree] draws the flow as an indented tree in
// topological order.
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG] or [RenderPNG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// Node shapes mirror the diagram syntax: a router declared with braces is
// a diamond, a terminal declared with double parentheses is a double
// circle. Edge styles mark error routes, fallbacks and undirected
// connectors.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering and [github.com/charmbracelet/lipgloss] for the tree.
package nodelink

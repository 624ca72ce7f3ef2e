package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/agentflow/pkg/flow"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node kind and execution parameters to node labels.
	// When false, only the display name is shown.
	Detailed bool

	// Direction is the Graphviz rankdir. Defaults to "TB".
	Direction string
}

// ToDOT converts an agent graph to Graphviz DOT format. The resulting DOT
// string can be rendered using [RenderSVG] or [RenderPNG].
//
// Node shapes follow the diagram's delimiters. The start node is drawn with
// a bold outline. Error routes are dashed red, fallbacks dotted, and
// undirected connectors have no arrowhead; conditions become edge labels.
func ToDOT(g *flow.Graph, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == g.Start())
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if attrs := edgeAttrs(e); len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n flow.Node, detailed bool) string {
	if !detailed {
		return n.DisplayName()
	}

	parts := []string{"type: " + n.Kind.String()}
	if n.Model != "" {
		parts = append(parts, "model: "+n.Model)
	}
	if n.Retry > 1 {
		parts = append(parts, fmt.Sprintf("retry: %d", n.Retry))
	}
	if n.Timeout != "" {
		parts = append(parts, "timeout: "+n.Timeout)
	}
	if n.Tools != "" {
		parts = append(parts, "tools: "+n.Tools)
	}
	return n.DisplayName() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n flow.Node, label string, start bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	shape, style := dotShape(n.Shape)
	attrs = append(attrs, "shape="+shape)
	if start {
		style += ",bold"
	}
	attrs = append(attrs, fmt.Sprintf("style=%q", style))
	if n.Kind == flow.KindTerminal {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// dotShape maps a diagram shape to a Graphviz shape and base style.
func dotShape(s flow.Shape) (shape, style string) {
	switch s {
	case flow.ShapeRectangle:
		return "box", "filled"
	case flow.ShapeDiamond:
		return "diamond", "filled"
	case flow.ShapeDiamondAlt:
		return "Mdiamond", "filled"
	case flow.ShapeCircle:
		return "circle", "filled"
	case flow.ShapeDoubleCircle:
		return "doublecircle", "filled"
	case flow.ShapeStadium:
		return "box", "rounded,filled"
	case flow.ShapeHexagon:
		return "hexagon", "filled"
	case flow.ShapeSubroutine:
		return "component", "filled"
	case flow.ShapeFlag:
		return "cds", "filled"
	}
	panic(fmt.Sprintf("nodelink: unhandled shape %d", s))
}

func edgeAttrs(e flow.Edge) []string {
	var attrs []string
	if e.Condition != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Condition))
	}
	switch {
	case e.OnError:
		attrs = append(attrs, `style="dashed"`, "color=firebrick")
	case e.Fallback:
		attrs = append(attrs, `style="dotted"`)
	}
	if e.Undirected {
		attrs = append(attrs, "arrowhead=none")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the drawing scales from
// its viewBox instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

package mermaid

import (
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/agentflow/pkg/flow"
)

type shapePattern struct {
	shape flow.Shape
	re    *regexp.Regexp
}

// shapePatterns are tried in order. Quoted labels may span lines and come
// first; bare labels follow, longest delimiters before shorter ones, so
// "((x))" is never read as a circle wrapping "(x)". Text claimed by one
// pattern is masked before the next one runs.
var shapePatterns = []shapePattern{
	{flow.ShapeDoubleCircle, regexp.MustCompile(`(\w+)\(\("([^"]*)"\)\)`)},
	{flow.ShapeSubroutine, regexp.MustCompile(`(\w+)\[\["([^"]*)"\]\]`)},
	{flow.ShapeHexagon, regexp.MustCompile(`(\w+)\{\{"([^"]*)"\}\}`)},
	{flow.ShapeStadium, regexp.MustCompile(`(\w+)\("([^"]*)"\)`)},
	{flow.ShapeRectangle, regexp.MustCompile(`(\w+)\["([^"]*)"\]`)},
	{flow.ShapeDiamond, regexp.MustCompile(`(\w+)\{"([^"]*)"\}`)},
	{flow.ShapeFlag, regexp.MustCompile(`(\w+)>"([^"]*)"\]`)},

	{flow.ShapeDoubleCircle, regexp.MustCompile(`(\w+)\(\(([^()"]+)\)\)`)},
	{flow.ShapeSubroutine, regexp.MustCompile(`(\w+)\[\[([^\[\]"]+)\]\]`)},
	{flow.ShapeHexagon, regexp.MustCompile(`(\w+)\{\{([^{}"]+)\}\}`)},
	{flow.ShapeCircle, regexp.MustCompile(`(\w+)\(([^()"]+)\)`)},
	{flow.ShapeRectangle, regexp.MustCompile(`(\w+)\[([^\[\]"]+)\]`)},
	{flow.ShapeDiamondAlt, regexp.MustCompile(`(\w+)\{([^{}"]+)\}`)},
	{flow.ShapeFlag, regexp.MustCompile(`(\w+)>([^\]">]+)\]`)},
}

// Edge labels are hidden from shape matching so that "|len(x) > 0|" does
// not declare a node.
var edgeLabelRe = regexp.MustCompile(`\|"[^"]*"\||\|[^|"\n]*\|`)

// declaration is one shape match in the joined diagram text.
type declaration struct {
	id         string
	shape      flow.Shape
	body       string
	start, end int
}

// scanDeclarations finds every node declaration in text, in text order.
// It also returns text with each declaration reduced to its bare ID, which
// is what the edge scanner reads.
func scanDeclarations(text string) ([]declaration, string) {
	work := []byte(text)
	for _, m := range edgeLabelRe.FindAllIndex(work, -1) {
		blank(work, m[0], m[1])
	}

	var decls []declaration
	for _, sp := range shapePatterns {
		matches := sp.re.FindAllSubmatchIndex(work, -1)
		for _, m := range matches {
			decls = append(decls, declaration{
				id:    text[m[2]:m[3]],
				shape: sp.shape,
				body:  text[m[4]:m[5]],
				start: m[0],
				end:   m[1],
			})
		}
		for _, m := range matches {
			blank(work, m[0], m[1])
		}
	}
	slices.SortFunc(decls, func(a, b declaration) int { return a.start - b.start })

	var b strings.Builder
	last := 0
	for _, d := range decls {
		b.WriteString(text[last:d.start])
		b.WriteString(d.id)
		last = d.end
	}
	b.WriteString(text[last:])
	return decls, b.String()
}

func blank(buf []byte, from, to int) {
	for i := from; i < to; i++ {
		if buf[i] != '\n' {
			buf[i] = ' '
		}
	}
}

// node builds the node a declaration describes: the first body line is
// the display name and later lines are annotations.
func (d declaration) node() flow.Node {
	n := flow.NewNode(d.id)
	n.Shape = d.shape

	lines := strings.Split(d.body, "\n")
	if name := strings.TrimSpace(lines[0]); name != "" {
		n.Name = name
	}
	for _, line := range lines[1:] {
		if a, ok := scanNodeAnnotation(line); ok {
			applyToNode(&n, a)
		}
	}
	return n
}

package mermaid

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/agentflow/pkg/flow"
)

var (
	// A node label line holding a single "@key: value".
	nodeAnnotationRe = regexp.MustCompile(`^@(\w+):\s*(.+)$`)
	// Edge labels may hold several pairs on one line.
	edgeAnnotationRe = regexp.MustCompile(`@(\w+):\s*([^\n@]+)`)
)

// Keys whose values are coerced to numbers. Every other key keeps its text,
// and a case-insensitive "true"/"false" additionally reads as a boolean.
var (
	intKeys   = map[string]bool{"retry": true, "max_iterations": true}
	floatKeys = map[string]bool{"threshold": true}
)

type valueKind uint8

const (
	valueText valueKind = iota
	valueInt
	valueFloat
	valueBool
)

// annotation is one tokenized "@key: value" pair. The raw text is always
// kept; the typed fields are valid only for the matching kind.
type annotation struct {
	key  string
	raw  string
	kind valueKind
	i    int
	f    float64
	b    bool
}

func newAnnotation(key, raw string) annotation {
	a := annotation{key: key, raw: strings.TrimSpace(raw)}
	switch {
	case intKeys[key]:
		if n, err := strconv.Atoi(a.raw); err == nil {
			a.kind, a.i = valueInt, n
		}
		return a
	case floatKeys[key]:
		if f, err := strconv.ParseFloat(a.raw, 64); err == nil {
			a.kind, a.f = valueFloat, f
		}
		return a
	}
	switch strings.ToLower(a.raw) {
	case "true":
		a.kind, a.b = valueBool, true
	case "false":
		a.kind, a.b = valueBool, false
	}
	return a
}

// scanNodeAnnotation tokenizes one label line. It reports false when the
// line is not an annotation; that is never an error.
func scanNodeAnnotation(line string) (annotation, bool) {
	m := nodeAnnotationRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return annotation{}, false
	}
	a := newAnnotation(m[1], m[2])
	if a.raw == "" {
		return annotation{}, false
	}
	return a, true
}

// scanEdgeAnnotations tokenizes every annotation in an edge label.
func scanEdgeAnnotations(label string) []annotation {
	var out []annotation
	for _, m := range edgeAnnotationRe.FindAllStringSubmatch(label, -1) {
		if a := newAnnotation(m[1], m[2]); a.raw != "" {
			out = append(out, a)
		}
	}
	return out
}

// applyToNode stores a on n. Unknown keys and values of the wrong type are
// dropped.
func applyToNode(n *flow.Node, a annotation) {
	switch a.key {
	case "type":
		if k, ok := flow.ParseKind(a.raw); ok {
			n.Kind = k
		}
	case "model":
		n.Model = a.raw
	case "timeout":
		n.Timeout = a.raw
	case "tools":
		n.Tools = a.raw
	case "strategy":
		n.Strategy = a.raw
	case "channel":
		n.Channel = a.raw
	case "retry":
		if a.kind == valueInt && a.i >= 1 {
			n.Retry = a.i
		}
	case "max_iterations":
		if a.kind == valueInt && a.i >= 1 {
			n.MaxIterations = a.i
		}
	case "threshold":
		if a.kind == valueFloat {
			f := a.f
			n.Threshold = &f
		}
	}
}

// applyToEdge stores a on e using the edge field names.
func applyToEdge(e *flow.Edge, a annotation) {
	switch a.key {
	case "cond":
		e.Condition = a.raw
	case "pass":
		e.PassFields = a.raw
	case "transform":
		e.Transform = a.raw
	case "on_error":
		if a.kind == valueBool {
			e.OnError = a.b
		}
	case "fallback":
		if a.kind == valueBool {
			e.Fallback = a.b
		}
	case "max_iterations":
		if a.kind == valueInt && a.i >= 1 {
			e.MaxIterations = a.i
		}
	}
}

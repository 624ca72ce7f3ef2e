package flow

import (
	"fmt"
	"strings"
)

// Kind classifies the role a node plays when the graph is executed.
// It is a closed enumeration: every switch over Kind in this module
// lists all values explicitly.
type Kind uint8

const (
	// KindExecutor performs a unit of work. It is the default for nodes
	// declared without an @type annotation.
	KindExecutor Kind = iota
	// KindTerminal marks the beginning or end of the flow.
	KindTerminal
	// KindRouter picks one outgoing branch.
	KindRouter
	// KindValidator checks data against rules before it flows on.
	KindValidator
	// KindAggregator merges results of parallel branches.
	KindAggregator
	// KindHumanInput waits for a person.
	KindHumanInput
	// KindTransformer reshapes data without side effects.
	KindTransformer
	// KindSubagent delegates to a nested agent graph.
	KindSubagent
	// KindFork starts parallel branches.
	KindFork
)

// Kinds lists every node kind in declaration order.
var Kinds = []Kind{
	KindExecutor, KindTerminal, KindRouter, KindValidator, KindAggregator,
	KindHumanInput, KindTransformer, KindSubagent, KindFork,
}

// String returns the annotation spelling of the kind, e.g. "human_input".
func (k Kind) String() string {
	switch k {
	case KindExecutor:
		return "executor"
	case KindTerminal:
		return "terminal"
	case KindRouter:
		return "router"
	case KindValidator:
		return "validator"
	case KindAggregator:
		return "aggregator"
	case KindHumanInput:
		return "human_input"
	case KindTransformer:
		return "transformer"
	case KindSubagent:
		return "subagent"
	case KindFork:
		return "fork"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown node kind %q", text)
	}
	*k = parsed
	return nil
}

// ParseKind resolves an annotation value to a Kind, ignoring case and
// surrounding whitespace.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return KindExecutor, false
}

// Shape is the presentation shape a node was declared with. It is derived
// purely from the delimiter syntax and carries no execution meaning.
type Shape uint8

const (
	ShapeRectangle Shape = iota
	ShapeDiamond
	ShapeDiamondAlt
	ShapeCircle
	ShapeDoubleCircle
	ShapeStadium
	ShapeHexagon
	ShapeSubroutine
	ShapeFlag
)

func (s Shape) String() string {
	switch s {
	case ShapeRectangle:
		return "rectangle"
	case ShapeDiamond:
		return "diamond"
	case ShapeDiamondAlt:
		return "diamond_alt"
	case ShapeCircle:
		return "circle"
	case ShapeDoubleCircle:
		return "double_circle"
	case ShapeStadium:
		return "stadium"
	case ShapeHexagon:
		return "hexagon"
	case ShapeSubroutine:
		return "subroutine"
	case ShapeFlag:
		return "flag"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// MarshalText encodes the shape by name.
func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a shape name.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, ok := ParseShape(string(text))
	if !ok {
		return fmt.Errorf("unknown node shape %q", text)
	}
	*s = parsed
	return nil
}

// Shapes lists every shape in declaration order.
var Shapes = []Shape{
	ShapeRectangle, ShapeDiamond, ShapeDiamondAlt, ShapeCircle, ShapeDoubleCircle,
	ShapeStadium, ShapeHexagon, ShapeSubroutine, ShapeFlag,
}

// ParseShape resolves a shape name as produced by [Shape.String].
func ParseShape(s string) (Shape, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sh := range Shapes {
		if sh.String() == s {
			return sh, true
		}
	}
	return ShapeRectangle, false
}

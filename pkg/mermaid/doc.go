// Package mermaid parses annotated Mermaid flowcharts into agent graphs.
//
// # Diagram Format
//
// A diagram is an ordinary Mermaid flowchart, optionally wrapped in a
// ```mermaid fence. Node labels carry typed annotations on the lines
// after the display name:
//
//	flowchart TD
//	    start(("START
//	    @type: terminal"))
//	    research["Research topic
//	    @model: claude-sonnet
//	    @retry: 2"]
//	    start --> research
//	    research -->|"@cond: sources < 3
//	    @max_iterations: 3"| research
//
// The delimiter around a label picks the node [flow.Shape]; the @type
// annotation picks its [flow.Kind]. Node annotations are model, retry,
// timeout, tools, threshold, strategy, channel and max_iterations. Edge
// labels accept cond, pass, transform, on_error, fallback and
// max_iterations. Any other key is ignored.
//
// Both sides of a connector may list several nodes separated by "&":
// "a & b --> c" declares two edges. Connectors may be chained on one line.
// A label may also sit on the link itself, as in "a -- yes --> b" or
// "a -. retry .-> b"; it is read exactly like "a -->|yes| b".
//
// # Leniency
//
// [Parse] has no error return. Hand-edited diagrams are expected to contain
// mistakes, and a half-understood diagram is more useful than none:
// malformed annotations are dropped, redeclared nodes keep their first
// declaration, and nodes referenced only by edges are created with default
// settings. Use [flow.Diagnose] to surface structural problems.
package mermaid

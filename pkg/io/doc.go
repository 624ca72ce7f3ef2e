// Package io provides JSON import and export for parsed agent graphs.
//
// # Overview
//
// The JSON form is what `agentflow inspect --json` prints. It is meant
// for external tools that want the parsed graph without reimplementing
// the diagram parser, and it can be read back for visualization.
//
// # JSON Format
//
//	{
//	  "start": "start",
//	  "terminals": ["done"],
//	  "nodes": [
//	    {"id": "start", "name": "START", "kind": "terminal", "shape": "double_circle", "retry": 1},
//	    {"id": "classify", "name": "Classify", "kind": "router", "shape": "diamond", "retry": 3}
//	  ],
//	  "edges": [
//	    {"from": "start", "to": "classify"},
//	    {"from": "classify", "to": "done", "condition": "resolved", "pass": "ticket_id"}
//	  ]
//	}
//
// Kinds and shapes are encoded by name. Optional node and edge fields are
// omitted when unset. Node order and edge order are preserved, so the
// export is stable for diffing.
//
// # Import
//
// [ReadJSON] and [ImportJSON] rebuild a graph, validating node IDs, edge
// endpoints and entry points. The diagram parser is forgiving; the JSON
// reader is not.
package io

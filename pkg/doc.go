// Package pkg provides the libraries behind agentflow.
//
// # Overview
//
// Agentflow turns an agent directory into one system prompt document per
// agent. The directory holds an annotated Mermaid flowchart, a YAML
// configuration, top-level instructions and a nodes/ tree with per-node
// instructions, tools, guardrails and references. A node directory that
// carries its own flowchart is a nested agent and gets its own document.
//
// # Architecture
//
//	agent-mermaid.md
//	       ↓
//	  [mermaid] package (tolerant flowchart parser)
//	       ↓
//	  [flow] package (graph model, ordering, diagnostics)
//	       ↓
//	  [agent] package (directory loader, nested agents)
//	       ↓
//	  [compiler] package (document sections, atomic writes)
//	       ↓
//	  SYSTEM_PROMPT.md
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/agentflow/pkg/agent"
//	    "github.com/matzehuels/agentflow/pkg/compiler"
//	)
//
//	def, err := agent.Load("./research-agent", agent.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	b := &compiler.Builder{}
//	artifacts, err := b.Build(context.Background(), def)
//
// # Main Packages
//
// ## Core
//
// [mermaid] - Line-oriented parser for Mermaid flowcharts with @key: value
// annotations on nodes and edges. Never fails; malformed lines are skipped.
//
// [flow] - Agent graph with typed nodes and annotated edges, stable
// topological ordering, loop-risk detection and structural diagnostics.
//
// [agent] - Loads an agent directory into a [agent.Definition], recursing
// into nested agents with cycle and depth guards.
//
// [compiler] - Renders a definition into its markdown document and writes
// whole agent trees, nested agents first.
//
// ## Supporting
//
// [render/nodelink] - Text trees, Graphviz DOT, SVG and PNG views of a flow.
//
// [io] - JSON import and export of flow graphs.
//
// [settings] - agentflow.toml settings shared by every command.
//
// [errors] - Coded errors with user-facing messages.
//
// [observability] - Optional hooks for load, compile and render timings.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/compiler/...   # Specific package
//	go test -run Example ./...   # Examples only
//
// [mermaid]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/mermaid
// [flow]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/flow
// [agent]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/agent
// [agent.Definition]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/agent#Definition
// [compiler]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/compiler
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/render/nodelink
// [io]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/io
// [settings]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/settings
// [errors]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/agentflow/pkg/buildinfo
package pkg

// Package compiler turns a loaded agent definition into a single Markdown
// system prompt.
//
// # Document Layout
//
// [Compile] renders up to nine sections, joined by horizontal rules:
//
//  1. Identity: name, version, description, top-level instructions and
//     model defaults
//  2. Execution Flow: the steps in topological order with their outgoing
//     transitions (omitted for an empty graph)
//  3. Node Instructions: per-node metadata, instructions and references
//  4. Available Tools: MCP servers and the nodes that use them, then
//     functions (omitted when there are none)
//  5. Data Contracts: one entry per edge in declaration order
//  6. Guardrails & Validation (omitted when no node has rules)
//  7. Error Handling: the default strategy, error routes and retry counts
//  8. Sub-Agent References (omitted without nested agents)
//  9. Meta: a generated-file notice and a document ID
//
// Given the same definition and the same clock, Compile returns the same
// bytes. All iteration follows graph order or sorted keys.
//
// # Nested Agents
//
// A node whose directory holds its own diagram is a nested agent. The
// parent document only references it; [Builder.Build] compiles and writes
// every nested document before the parent, so a parent is never written
// when one of its children fails.
package compiler

// Package agent loads agent definitions from disk.
//
// An agent lives in a directory:
//
//	research-agent/
//	├── agent-mermaid.md      diagram (required)
//	├── agent-config.yaml     name, version, defaults, execution, mcp_servers
//	├── index.md              top-level instructions
//	└── nodes/
//	    └── web-search/       content for node "web_search" or "web-search"
//	        ├── index.md
//	        ├── tools.yaml
//	        ├── guardrails.yaml
//	        ├── references/
//	        └── agent-mermaid.md   makes the node a nested agent
//
// [Load] reads the whole tree into a [Definition]. Node directories that
// hold their own diagram are loaded recursively into [NodeContent.Sub];
// the recursion is bounded and refuses to revisit a directory.
//
// [Check] reports advisory findings about a loaded definition. Findings
// never prevent compilation.
package agent

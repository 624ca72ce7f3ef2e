package agent

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/agentflow/pkg/flow"
)

// Diagnostic codes reported by [Check] on top of the graph checks.
const (
	CodeMissingFile      = "missing-file"
	CodeMissingNodeDir   = "missing-node-dir"
	CodeMissingNodeIndex = "missing-node-index"
	CodeUnusedNodeDir    = "unused-node-dir"
)

// Check runs [flow.Diagnose] on the graph and adds findings about the
// agent directory: missing top-level files are errors, missing or unused
// node directories are warnings. Nested agents are checked too, with their
// findings prefixed by the nested directory.
func Check(def *Definition) []flow.Diagnostic {
	out := flow.Diagnose(def.Graph)

	for _, name := range []string{ConfigFile, IndexFile} {
		if _, err := os.Stat(filepath.Join(def.Dir, name)); err != nil {
			out = append(out, flow.Diagnostic{
				Severity: flow.SeverityError,
				Code:     CodeMissingFile,
				Message:  fmt.Sprintf("missing %s", name),
			})
		}
	}

	claimed := make(map[*NodeContent]bool)
	for _, n := range def.Graph.Nodes() {
		c, ok := def.Content(n.ID)
		switch {
		case ok:
			claimed[c] = true
			if strings.TrimSpace(c.Instructions) == "" {
				out = append(out, flow.Diagnostic{
					Code:    CodeMissingNodeIndex,
					NodeID:  n.ID,
					Message: fmt.Sprintf("node %q has no %s", n.ID, IndexFile),
				})
			}
		case n.Kind != flow.KindTerminal:
			out = append(out, flow.Diagnostic{
				Code:    CodeMissingNodeDir,
				NodeID:  n.ID,
				Message: fmt.Sprintf("node %q has no directory under %s/", n.ID, NodesDir),
			})
		}
	}

	for _, name := range slices.Sorted(maps.Keys(def.Nodes)) {
		c := def.Nodes[name]
		if !claimed[c] {
			out = append(out, flow.Diagnostic{
				Code:    CodeUnusedNodeDir,
				Message: fmt.Sprintf("%s/%s does not match any node in the diagram", NodesDir, name),
			})
		}
		if c.Sub != nil {
			for _, d := range Check(c.Sub) {
				d.Message = fmt.Sprintf("%s/%s: %s", NodesDir, name, d.Message)
				out = append(out, d)
			}
		}
	}
	return out
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []flow.Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d flow.Diagnostic) bool {
		return d.Severity == flow.SeverityError
	})
}

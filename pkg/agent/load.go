package agent

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/agentflow/pkg/errors"
	"github.com/matzehuels/agentflow/pkg/mermaid"
)

// File layout of an agent directory.
const (
	DiagramFile    = "agent-mermaid.md"
	ConfigFile     = "agent-config.yaml"
	IndexFile      = "index.md"
	NodesDir       = "nodes"
	ToolsFile      = "tools.yaml"
	GuardrailsFile = "guardrails.yaml"
	ReferencesDir  = "references"
)

const (
	// DefaultReferenceLimit is the size in bytes from which a reference is
	// replaced by a placeholder.
	DefaultReferenceLimit = 50000
	// DefaultMaxDepth bounds how deeply agents may nest.
	DefaultMaxDepth = 8
)

// LoadOptions controls [Load]. Zero values select the defaults.
type LoadOptions struct {
	ReferenceLimit int64
	MaxDepth       int
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.ReferenceLimit <= 0 {
		o.ReferenceLimit = DefaultReferenceLimit
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// LargeFilePlaceholder is the content recorded for an oversize reference.
func LargeFilePlaceholder(name string) string {
	return fmt.Sprintf("[Large file: %s]", name)
}

// Load reads the agent in dir and, recursively, every nested agent found
// in its node directories.
//
// The diagram is required; every other file is optional. A nested agent
// that fails to load aborts the whole load with an
// [errors.ErrCodeNestedAgent] error naming its directory. Nesting that
// revisits an ancestor directory (through symlinks) or exceeds
// opts.MaxDepth fails with [errors.ErrCodeNestingCycle].
func Load(dir string, opts LoadOptions) (*Definition, error) {
	l := &loader{opts: opts.withDefaults()}
	return l.load(dir)
}

type loader struct {
	opts      LoadOptions
	ancestors []string
}

func (l *loader) load(dir string) (*Definition, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeFileNotFound, "agent directory %s does not exist", dir)
	}

	resolved, err := canonical(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "resolve %s", dir)
	}
	if slices.Contains(l.ancestors, resolved) {
		return nil, errors.New(errors.ErrCodeNestingCycle, "agent %s nests itself", dir)
	}
	if len(l.ancestors) >= l.opts.MaxDepth {
		return nil, errors.New(errors.ErrCodeNestingCycle, "agent %s exceeds maximum nesting depth %d", dir, l.opts.MaxDepth)
	}
	l.ancestors = append(l.ancestors, resolved)
	defer func() { l.ancestors = l.ancestors[:len(l.ancestors)-1] }()

	diagram, ok, err := readOptional(filepath.Join(dir, DiagramFile))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no %s in %s", DiagramFile, dir)
	}

	def := &Definition{
		Dir:   dir,
		Graph: mermaid.Parse(diagram),
		Nodes: make(map[string]*NodeContent),
	}

	if err := decodeYAMLFile(filepath.Join(dir, ConfigFile), &def.Config); err != nil {
		return nil, err
	}
	if def.Instructions, _, err = readOptional(filepath.Join(dir, IndexFile)); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, NodesDir))
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", filepath.Join(dir, NodesDir))
	}
	for _, e := range entries {
		nodeDir := filepath.Join(dir, NodesDir, e.Name())
		// Stat follows symlinks, so linked node directories count too.
		if info, err := os.Stat(nodeDir); err != nil || !info.IsDir() {
			continue
		}
		content, err := l.loadNode(nodeDir)
		if err != nil {
			return nil, err
		}
		def.Nodes[e.Name()] = content
	}
	return def, nil
}

func (l *loader) loadNode(dir string) (*NodeContent, error) {
	c := &NodeContent{Dir: dir}

	var err error
	if c.Instructions, _, err = readOptional(filepath.Join(dir, IndexFile)); err != nil {
		return nil, err
	}
	if c.Tools, err = loadTools(filepath.Join(dir, ToolsFile)); err != nil {
		return nil, err
	}

	var g Guardrails
	if err := decodeYAMLFile(filepath.Join(dir, GuardrailsFile), &g); err != nil {
		return nil, err
	}
	if !g.Empty() {
		c.Guardrails = &g
	}

	if c.References, err = l.loadReferences(filepath.Join(dir, ReferencesDir)); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(dir, DiagramFile)); err == nil {
		sub, err := l.load(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNestedAgent, err, "load nested agent %s", dir)
		}
		c.Sub = sub
	}
	return c, nil
}

// loadReferences reads every regular, non-hidden file in dir by name.
func (l *loader) loadReferences(dir string) ([]Reference, error) {
	entries, err := os.ReadDir(dir)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", dir)
	}

	var refs []Reference
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", e.Name())
		}
		if info.Size() >= l.opts.ReferenceLimit {
			refs = append(refs, Reference{Name: e.Name(), Content: LargeFilePlaceholder(e.Name()), Oversize: true})
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "read reference %s", e.Name())
		}
		refs = append(refs, Reference{Name: e.Name(), Content: string(data)})
	}
	return refs, nil
}

// loadTools accepts either a list of tools or a single tool mapping.
func loadTools(path string) ([]Tool, error) {
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(data), &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var tools []Tool
		if err := doc.Decode(&tools); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		return tools, nil
	case yaml.MappingNode:
		var t Tool
		if err := doc.Decode(&t); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		return []Tool{t}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "%s must hold a tool or a list of tools", path)
}

func decodeYAMLFile(path string, out any) error {
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return err
	}
	if err := yaml.Unmarshal([]byte(data), out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return nil
}

// readOptional returns the file content and whether the file exists.
func readOptional(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return string(data), true, nil
}

func canonical(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

package compiler

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/errors"
	"github.com/matzehuels/agentflow/pkg/observability"
)

// Artifact describes one written document.
type Artifact struct {
	Path  string // output file path
	Agent string // agent name from its configuration
	Depth int    // 0 for the root agent
	Bytes int
}

// Builder compiles an agent tree and writes one document per agent.
type Builder struct {
	Options

	// Logger receives one debug line per written document. Optional.
	Logger *log.Logger
}

// Build writes the document of def and of every nested agent beneath it.
// Nested documents are written first, so when Build returns without error
// every descendant is in place. A failing nested agent aborts the build
// before its parent is written; the error carries
// [errors.ErrCodeNestedAgent] and names the nested directory.
//
// Artifacts are returned in write order. Cancelling ctx stops the build
// before the next document is written.
func (b *Builder) Build(ctx context.Context, def *agent.Definition) ([]Artifact, error) {
	opts := b.Options.withDefaults()
	if err := errors.ValidateFileName(opts.OutputName); err != nil {
		return nil, err
	}

	w := &treeWriter{ctx: ctx, opts: opts, logger: b.Logger}
	if err := w.write(def); err != nil {
		return nil, err
	}
	return w.artifacts, nil
}

type treeWriter struct {
	ctx       context.Context
	opts      Options
	logger    *log.Logger
	ancestors []*agent.Definition
	artifacts []Artifact
}

func (w *treeWriter) write(def *agent.Definition) error {
	if def.Dir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "agent %q has no directory", def.Config.Normalized().Name)
	}
	if slices.Contains(w.ancestors, def) {
		return errors.New(errors.ErrCodeNestingCycle, "agent %s nests itself", def.Dir)
	}
	w.ancestors = append(w.ancestors, def)
	defer func() { w.ancestors = w.ancestors[:len(w.ancestors)-1] }()

	c := newCompilation(def, w.opts)
	for _, e := range c.nodes {
		if e.content == nil || e.content.Sub == nil {
			continue
		}
		if w.logger != nil {
			w.logger.Info("compiling nested agent", "node", e.id, "dir", e.content.Sub.Dir)
		}
		if err := w.write(e.content.Sub); err != nil {
			return errors.Wrap(errors.ErrCodeNestedAgent, err, "compile nested agent %s", e.content.Sub.Dir)
		}
	}

	if err := w.ctx.Err(); err != nil {
		return err
	}

	depth := len(w.ancestors) - 1
	hooks := observability.Pipeline()
	hooks.OnDocumentStart(w.ctx, def.Dir, depth)
	start := time.Now()

	doc := Compile(def, w.opts)
	path := filepath.Join(def.Dir, w.opts.OutputName)
	err := writeFileAtomic(path, []byte(doc), 0o644)
	hooks.OnDocumentComplete(w.ctx, path, len(doc), time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "write %s", path)
	}

	a := Artifact{
		Path:  path,
		Agent: c.cfg.Name,
		Depth: depth,
		Bytes: len(doc),
	}
	w.artifacts = append(w.artifacts, a)
	if w.logger != nil {
		w.logger.Debug("wrote document", "path", a.Path, "agent", a.Agent, "depth", a.Depth, "bytes", a.Bytes)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place. The temporary file never outlives the call.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

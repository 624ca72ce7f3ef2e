// Package observability provides hooks for timing and tracing agent
// compilation.
//
// Libraries emit events through the registered [PipelineHooks]; the default
// is a no-op, so nothing is recorded unless a program registers its own
// implementation at startup. Hooks are registered by main, never by
// libraries, which keeps this package free of any logging or metrics
// backend.
//
//	func main() {
//	    observability.SetPipelineHooks(myHooks{})
//	    // ... run application
//	}
//
// Emitters call the current hooks around each stage:
//
//	start := time.Now()
//	observability.Pipeline().OnDocumentStart(ctx, dir, depth)
//	// ... compile and write ...
//	observability.Pipeline().OnDocumentComplete(ctx, path, n, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from loading, compiling and rendering
// agents. Implementations must be safe for concurrent use.
type PipelineHooks interface {
	// OnLoadComplete fires after an agent tree was read from dir.
	OnLoadComplete(ctx context.Context, dir string, nodeCount int, duration time.Duration, err error)

	// Document events fire once per agent in a tree, nested agents first.
	OnDocumentStart(ctx context.Context, dir string, depth int)
	OnDocumentComplete(ctx context.Context, path string, bytes int, duration time.Duration, err error)

	// Render events fire around Graphviz image rendering.
	OnRenderStart(ctx context.Context, format string, nodeCount int)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnDocumentStart(context.Context, string, int)                      {}
func (NoopPipelineHooks) OnDocumentComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, int)                     {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. A nil value is ignored.
// This should be called once at startup, before any agent is compiled.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores the no-op hooks.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}

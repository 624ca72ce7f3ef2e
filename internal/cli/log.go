package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/agentflow/pkg/flow"
	"github.com/matzehuels/agentflow/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Compiled 3 documents (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logDiagnostics reports findings as warnings; outside of validate no
// finding stops a command.
func logDiagnostics(l *log.Logger, diags []flow.Diagnostic) {
	for _, d := range diags {
		kv := []any{"code", d.Code}
		if d.NodeID != "" {
			kv = append(kv, "node", d.NodeID)
		}
		l.Warn(d.Message, kv...)
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports pipeline timings as debug lines.
type logHooks struct {
	logger *log.Logger
}

// PipelineHooks returns hooks that log load, compile and render timings
// through the CLI logger. They only show with --verbose.
func (c *CLI) PipelineHooks() observability.PipelineHooks {
	return logHooks{logger: c.Logger}
}

func (h logHooks) OnLoadComplete(_ context.Context, dir string, nodeCount int, d time.Duration, err error) {
	h.logger.Debug("load", "dir", dir, "nodes", nodeCount, "took", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnDocumentStart(_ context.Context, dir string, depth int) {
	h.logger.Debug("compile", "dir", dir, "depth", depth)
}

func (h logHooks) OnDocumentComplete(_ context.Context, path string, bytes int, d time.Duration, err error) {
	h.logger.Debug("compiled", "path", path, "bytes", bytes, "took", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnRenderStart(_ context.Context, format string, nodeCount int) {
	h.logger.Debug("render", "format", format, "nodes", nodeCount)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("rendered", "format", format, "took", d.Round(time.Millisecond), "err", err)
}

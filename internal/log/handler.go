package log

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// CountingHandler wraps an slog.Handler and counts warning records.
// Handlers derived through WithAttrs and WithGroup share the count.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because every component already accepts *slog.Logger, and the wrapper
// works with any underlying handler (text, JSON, etc.).
type CountingHandler struct {
	// handler is the underlying slog handler that receives records.
	handler slog.Handler

	// warnings is shared with derived handlers.
	warnings *atomic.Int64
}

// NewCountingHandler creates a new CountingHandler wrapping the given handler.
// If handler is nil, the returned CountingHandler will use slog.Default().Handler().
func NewCountingHandler(handler slog.Handler) *CountingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CountingHandler{handler: handler, warnings: new(atomic.Int64)}
}

// Enabled reports whether the handler handles records at the given level.
// Warnings are always enabled so they can be counted.
func (h *CountingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || h.handler.Enabled(ctx, level)
}

// Handle counts the record and passes it to the underlying handler if it
// accepts the record's level.
func (h *CountingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		h.warnings.Add(1)
	}
	if !h.handler.Enabled(ctx, r.Level) {
		return nil
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *CountingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CountingHandler{handler: h.handler.WithAttrs(attrs), warnings: h.warnings}
}

// WithGroup returns a new handler with the given group name.
func (h *CountingHandler) WithGroup(name string) slog.Handler {
	return &CountingHandler{handler: h.handler.WithGroup(name), warnings: h.warnings}
}

// Count returns the number of warning records handled so far.
func (h *CountingHandler) Count() int64 {
	return h.warnings.Load()
}

// Reset sets the warning count back to zero.
func (h *CountingHandler) Reset() {
	h.warnings.Store(0)
}

// level returns Debug in verbose mode and Warn otherwise.
func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewHandler creates the counting handler behind NewLogger.
// If json is true, records are written as JSON lines.
func NewHandler(w io.Writer, verbose, json bool) *CountingHandler {
	opts := &slog.HandlerOptions{Level: level(verbose)}
	if json {
		return NewCountingHandler(slog.NewJSONHandler(w, opts))
	}
	return NewCountingHandler(slog.NewTextHandler(w, opts))
}

// NewLogger creates a new slog.Logger writing text to w.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewHandler(w, verbose, false))
}

// NewJSONLogger creates a new slog.Logger that outputs JSON format.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewHandler(w, verbose, true))
}

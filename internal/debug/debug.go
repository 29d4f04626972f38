// Package debug carries the --debug flag through context and builds the
// process logger.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey struct{}

// WithDebug returns a context with request tracing enabled or disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether tracing was switched on for ctx.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// Level returns the minimum level the logger emits.
func Level(enabled bool) slog.Level {
	if enabled {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger writes text records to w (stderr when nil). JSON output keeps
// log lines machine readable when the command itself prints JSON.
func NewLogger(w io.Writer, enabled, jsonFormat bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: Level(enabled)}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetupLogger installs a stderr logger as the slog default and returns it.
func SetupLogger(enabled bool) *slog.Logger {
	logger := NewLogger(os.Stderr, enabled, false)
	slog.SetDefault(logger)
	return logger
}

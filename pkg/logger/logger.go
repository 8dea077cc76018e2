// Package logger configures the process-wide slog handler and provides
// helpers for component-scoped and document-scoped loggers.
package logger

import (
	"context"
	"log/slog"
	"os"
)

type contextKey struct{}

// Setup installs the default slog handler with the given level and format
// ("json" or "text").
func Setup(level string, format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// WithSource attaches the source document identifier to the context so that
// downstream log lines carry it.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, contextKey{}, source)
}

// FromContext returns a logger carrying the source identifier stored in ctx,
// if any.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if source, ok := ctx.Value(contextKey{}).(string); ok {
		logger = logger.With("source", source)
	}
	return logger
}

// WithComponent returns a logger tagged with the component name.
func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"newsdesk/internal/handler/http/requestid"
)

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a JSON logger on stdout at the LOG_LEVEL level.
// Set LOG_FORMAT=text for human-readable output.
func NewLogger() *slog.Logger {
	return New(os.Stdout, os.Getenv("LOG_FORMAT"), ParseLevel(os.Getenv("LOG_LEVEL")))
}

// New creates a logger writing to w. format "text" selects the text
// handler, anything else JSON. Source locations are added at debug level.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithRequestID returns a logger carrying the request ID and, when the
// context holds a sampled span, its trace ID.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if reqID := requestid.FromContext(ctx); reqID != "" {
		logger = logger.With(slog.String("request_id", reqID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With(slog.String("trace_id", sc.TraceID().String()))
	}
	return logger
}

// FromContext retrieves the logger stored by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog for structured logging
// This allows us to add custom functionality and swap implementations if needed
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string    // "debug", "info", "warn", "error"
	Format string    // "json", "text"
	Output io.Writer // defaults to os.Stdout
}

type requestIDKey struct{}

// New creates a new logger instance
// JSON is the default format; "text" is easier to read in a terminal
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a level name to slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithRequestID stores a request ID in ctx
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID stored in ctx, if any
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	return requestID, ok
}

// WithContext adds context values to the logger
// This is useful for adding request IDs, user IDs, etc.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if requestID, ok := RequestIDFromContext(ctx); ok {
		return &Logger{Logger: l.With("request_id", requestID)}
	}
	return l
}

// Package logger provides the structured logging wrapper used across the
// resolver core. It intentionally logs only at Debug level on any path
// that runs once per template/variable, so embedding this library in a
// larger service never forces noisy default output.
package logger

import (
	"context"
	"log/slog"
	"os"
)

// Config selects the wrapped handler's verbosity and encoding.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "warn".
	Level string
	// Format is "json" or "text". Defaults to "text".
	Format string
}

// Logger wraps slog.Logger with the core's defaults.
type Logger struct {
	logger *slog.Logger
}

// New creates a Logger from Config.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Level == "debug",
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// Noop returns a Logger that discards everything; the zero-config default
// used when a caller never supplies one.
func Noop() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// With returns a Logger carrying the given attributes.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.logger.Debug(msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.logger.Info(msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.logger.Warn(msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.logger.Error(msg, args...) }

// DebugContext logs a debug message bound to ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.DebugContext(ctx, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

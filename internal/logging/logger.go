package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with helpers used across handlers and services.
type Logger struct {
	*slog.Logger
}

// NewLogger creates the application logger. Development uses a human readable
// text handler, everything else emits JSON.
func NewLogger(isDevelopment bool) *Logger {
	return NewLoggerWithLevel(isDevelopment, "info")
}

// NewLoggerWithLevel is NewLogger with an explicit level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func NewLoggerWithLevel(isDevelopment bool, level string) *Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler).With(slog.String("service", "accounts-api"))}
}

// New wraps an existing slog.Logger.
func New(l *slog.Logger) *Logger {
	return &Logger{Logger: l}
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithFields returns a child logger that always includes the given fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

package logging

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey int

const (
	loggerKey contextKey = iota
	annotationsKey
)

// annotations collects attributes added by inner handlers for the
// "request completed" line.
type annotations struct {
	mu    sync.Mutex
	attrs []any
}

// RequestLogger stores a request-scoped logger in the context and logs one
// completion line per request with the matched route and final status.
// It must run after chi's RequestID middleware.
func RequestLogger(logger *Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.WithFields(map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote_ip":  r.RemoteAddr,
			})

			notes := &annotations{}
			ctx := WithLogger(r.Context(), reqLogger)
			ctx = context.WithValue(ctx, annotationsKey, notes)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []any{
				"route", routePattern(r),
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			notes.mu.Lock()
			attrs = append(attrs, notes.attrs...)
			notes.mu.Unlock()

			reqLogger.Log(r.Context(), levelForStatus(status), "request completed", attrs...)
		})
	}
}

// Annotate adds key/value pairs to the completion line of the current
// request. Outside RequestLogger it does nothing.
func Annotate(ctx context.Context, args ...any) {
	notes, ok := ctx.Value(annotationsKey).(*annotations)
	if !ok {
		return
	}
	notes.mu.Lock()
	notes.attrs = append(notes.attrs, args...)
	notes.mu.Unlock()
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// routePattern returns the chi pattern that served r, e.g. /users/{id}/.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLoggerFromContext retrieves the logger from the request context
func GetLoggerFromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger
	}
	return NewLogger(true)
}

package simulator

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	identityKey
)

// RequestID returns the request ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Identity returns the caller identity from the context: the account of a
// SharedKey signature, "bearer" for ARM tokens, or "anonymous".
func Identity(ctx context.Context) string {
	if v, ok := ctx.Value(identityKey).(string); ok {
		return v
	}
	return "anonymous"
}

// RequestIDMiddleware generates a request ID, stores it in the context and
// returns it in x-ms-request-id.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set("x-ms-request-id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs each request with zerolog.
func LoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}

			next.ServeHTTP(sw, r)

			event := logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Dur("duration", time.Since(start)).
				Str("request_id", RequestID(r.Context())).
				Str("identity", Identity(r.Context()))
			if v := r.URL.Query().Get("restype"); v != "" {
				event.Str("restype", v)
			}
			event.Msg("request")
		})
	}
}

// AuthPassthroughMiddleware extracts the caller identity without verifying
// signatures. Requests without auth headers are accepted.
func AuthPassthroughMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), identityKey, extractIdentity(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractIdentity(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	switch {
	case auth == "":
		return "anonymous"
	case strings.HasPrefix(auth, "SharedKey "):
		// "SharedKey account:signature"
		cred := strings.TrimPrefix(auth, "SharedKey ")
		if account, _, ok := strings.Cut(cred, ":"); ok {
			return account
		}
		return "unknown"
	case strings.HasPrefix(auth, "Bearer "):
		return "bearer"
	}
	return "unknown"
}

// CleanPathMiddleware collapses repeated slashes. ARM clients given an
// endpoint with a trailing slash request //subscriptions/..., which the mux
// would otherwise redirect.
func CleanPathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for strings.Contains(r.URL.Path, "//") {
			r.URL.Path = strings.ReplaceAll(r.URL.Path, "//", "/")
		}
		if r.URL.RawPath != "" {
			for strings.Contains(r.URL.RawPath, "//") {
				r.URL.RawPath = strings.ReplaceAll(r.URL.RawPath, "//", "/")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

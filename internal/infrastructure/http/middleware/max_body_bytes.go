package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
)

// MaxBodyBytes answers 413 PAYLOAD_TOO_LARGE for bodies over limit.
// Bodies within the limit are buffered so handlers never see a truncated read.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return &bodyLimiter{limit: limit, next: next}
	}
}

type bodyLimiter struct {
	limit int64
	next  http.Handler
}

func (l *bodyLimiter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil || r.Body == http.NoBody {
		l.next.ServeHTTP(w, r)
		return
	}

	// A declared length over the limit is rejected without reading.
	if r.ContentLength > l.limit {
		l.reject(w, r, r.ContentLength)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, l.limit))
	if err != nil {
		l.reject(w, r, -1)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	l.next.ServeHTTP(w, r)
}

func (l *bodyLimiter) reject(w http.ResponseWriter, r *http.Request, declared int64) {
	slog.WarnContext(r.Context(), "Request body over limit",
		"method", r.Method,
		"path", r.URL.Path,
		"limit", l.limit,
		"content_length", declared)
	response.Error(w, "PAYLOAD_TOO_LARGE", "request body exceeds size limit", http.StatusRequestEntityTooLarge)
}

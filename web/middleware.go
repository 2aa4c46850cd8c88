package web

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const requestTimeKey contextKey = "request_time"

// RequestTime stamps each request with its arrival time so list
// handlers can echo a requestedAt field in their responses.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), requestTimeKey, time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestTimeFromContext returns the request arrival time in RFC 3339
// format, or the current time when the middleware was not applied.
func RequestTimeFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// Package middleware holds HTTP middleware for the app adapter.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/restforge/restforge/internal/app/shared"
)

// Trace returns middleware that attaches a trace ID to every request
// context and logs request starts. Apply it early so downstream handlers
// see the trace ID.
func Trace(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())

			logger.Debug("request started",
				slog.String("trace_id", shared.GetTraceID(ctx)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

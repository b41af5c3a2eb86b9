package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/erp-rbac/internal"
)

// RecoveryMiddleware turns a panic into a 500 with the standard error body.
// The panic value is logged, never returned to the client.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"trace_id", internal.TraceIDFromContext(r.Context()),
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					status, body := internal.NewInternalError("Internal server error", nil).ToHTTPResponse()
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(status)
					_ = json.NewEncoder(w).Encode(body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

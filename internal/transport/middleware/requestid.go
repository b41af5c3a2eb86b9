package middleware

import (
	"net/http"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/frahmantamala/erp-rbac/pkg/logger"

	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-ID"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}

		ctx := internal.ContextWithTraceID(r.Context(), traceID)
		ctx = logger.With(ctx, "traceID", traceID)

		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

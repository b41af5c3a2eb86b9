package middleware

import (
	"net/http"

	"github.com/frahmantamala/erp-rbac/internal/auth"
	"github.com/frahmantamala/erp-rbac/pkg/logger"
)

// UserContext adds the authenticated caller to the request logger. It must
// run after the auth middleware.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok || u == nil {
			next.ServeHTTP(w, r)
			return
		}

		fields := []any{"user_id", u.ID}
		if u.RoleID != nil {
			fields = append(fields, "role_id", *u.RoleID)
		}
		ctx := logger.With(r.Context(), fields...)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/pkg/metrics"
)

type RBACAuthorization struct {
	checker PermissionChecker
	logger  *slog.Logger
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &RBACAuthorization{
		checker: checker,
		logger:  logger,
	}
}

type decision func(ctx context.Context, u *User) (bool, error)

// Require guards a route with a module-level grant.
func (ra *RBACAuthorization) Require(module string, action permission.ActionType) func(http.Handler) http.Handler {
	return ra.guard(module, string(action), func(ctx context.Context, u *User) (bool, error) {
		return ra.checker.HasPermission(ctx, u, module, action)
	})
}

// RequireAny guards a route with any grant on module.
func (ra *RBACAuthorization) RequireAny(module string) func(http.Handler) http.Handler {
	return ra.guard(module, "any", func(ctx context.Context, u *User) (bool, error) {
		return ra.checker.HasAnyPermission(ctx, u, module)
	})
}

// RequirePage guards a route with a grant on one page of the hierarchical tree.
func (ra *RBACAuthorization) RequirePage(sectionID, pageID string, action permission.ActionType) func(http.Handler) http.Handler {
	return ra.guard(sectionID+"/"+pageID, string(action), func(ctx context.Context, u *User) (bool, error) {
		return ra.checker.HasPagePermission(ctx, u, sectionID, pageID, action)
	})
}

func (ra *RBACAuthorization) guard(target, action string, allow decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			granted, err := allow(r.Context(), user)
			if err != nil {
				metrics.RecordAuthorization(target, action, metrics.ResultError)
				ra.logger.ErrorContext(r.Context(), "authorization check failed",
					"error", err,
					"user_id", user.ID,
					"target", target,
					"action", action)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !granted {
				metrics.RecordAuthorization(target, action, metrics.ResultDenied)
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"role_id", user.RoleID,
					"target", target,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			metrics.RecordAuthorization(target, action, metrics.ResultAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

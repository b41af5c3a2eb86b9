package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/erp-rbac/internal/auth"
	"github.com/frahmantamala/erp-rbac/internal/transport"
	"github.com/frahmantamala/erp-rbac/pkg/logger"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	Profile(ctx context.Context, userID int64) (*ProfileResponse, error)
	AssignRole(ctx context.Context, userID int64, dto AssignRoleDTO) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.Service.Profile(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service error", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

// AssignRole handles PUT /users/{id}/role
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("AssignRole: invalid user ID")
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto AssignRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("AssignRole: invalid request body", "error", err, "user_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.AssignRole(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("AssignRole: service error", "error", err, "user_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

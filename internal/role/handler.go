package role

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/internal/transport"
	"github.com/frahmantamala/erp-rbac/pkg/logger"
)

type ServiceAPI interface {
	Catalog() *permission.Catalog
	ListRoles(ctx context.Context) ([]*Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, permission.Diagnostics, error)
	UpdateRole(ctx context.Context, dto UpdateRoleDTO) (*Role, permission.Diagnostics, error)
	DeleteRole(ctx context.Context, id int64) error
	UpdatePageAction(ctx context.Context, roleID int64, dto PageActionDTO) (*Role, error)
	UpdateModuleAction(ctx context.Context, roleID int64, dto ModuleActionDTO) (*Role, error)
	UpdateSection(ctx context.Context, roleID int64, dto SectionActionDTO) (*Role, error)
	DuplicateRole(ctx context.Context, id int64, dto DuplicateRoleDTO) (*Role, error)
	SelectionStatus(ctx context.Context, roleID int64) (*StatusResponse, error)
	Check(ctx context.Context, roleID int64, module, action string) (*CheckResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// CatalogResponse exposes both catalog shapes to the role form.
type CatalogResponse struct {
	Modules  []permission.Module              `json:"modules"`
	Sections []permission.Section             `json:"sections"`
	Actions  []permission.ActionType          `json:"actions"`
	Labels   map[permission.ActionType]string `json:"labels"`
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c := h.Service.Catalog()
	h.WriteJSON(w, http.StatusOK, CatalogResponse{
		Modules:  c.Modules(),
		Sections: c.Sections(),
		Actions:  append([]permission.ActionType(nil), permission.Actions...),
		Labels:   actionLabels(),
	})
}

func actionLabels() map[permission.ActionType]string {
	labels := make(map[permission.ActionType]string, len(permission.Actions))
	for _, a := range permission.Actions {
		labels[a] = a.Label()
	}
	return labels
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.Logger.Error("ListRoles: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("GetRole: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	role, err := h.Service.GetRole(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetRole: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RoleResponse{Role: role})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto CreateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("CreateRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, diag, err := h.Service.CreateRole(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateRole: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateRole: role created successfully", "role_id", role.ID, "name", role.Name)
	h.WriteJSON(w, http.StatusCreated, newRoleResponse(role, diag))
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("UpdateRole: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto UpdateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("UpdateRole: invalid request body", "error", err, "role_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.ID = id

	role, diag, err := h.Service.UpdateRole(r.Context(), dto)
	if err != nil {
		h.Logger.Error("UpdateRole: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, newRoleResponse(role, diag))
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("DeleteRole: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	if err := h.Service.DeleteRole(r.Context(), id); err != nil {
		h.Logger.Error("DeleteRole: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdatePageAction toggles a single page checkbox of the role form.
func (h *Handler) UpdatePageAction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("UpdatePageAction: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto PageActionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("UpdatePageAction: invalid request body", "error", err, "role_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.UpdatePageAction(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdatePageAction: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RoleResponse{Role: role})
}

// UpdateModuleAction toggles a module checkbox, or the module's select-all
// box when action is "all".
func (h *Handler) UpdateModuleAction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("UpdateModuleAction: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto ModuleActionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("UpdateModuleAction: invalid request body", "error", err, "role_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.UpdateModuleAction(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdateModuleAction: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RoleResponse{Role: role})
}

func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("UpdateSection: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto SectionActionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("UpdateSection: invalid request body", "error", err, "role_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.UpdateSection(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdateSection: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RoleResponse{Role: role})
}

func (h *Handler) DuplicateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("DuplicateRole: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto DuplicateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("DuplicateRole: invalid request body", "error", err, "role_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.DuplicateRole(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("DuplicateRole: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, RoleResponse{Role: role})
}

func (h *Handler) GetSelectionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("GetSelectionStatus: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	status, err := h.Service.SelectionStatus(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetSelectionStatus: service error", "error", err, "role_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, status)
}

// CheckPermission answers ?module=sales&action=view. Without action it
// reports whether anything is granted on the module.
func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.Logger.Error("CheckPermission: invalid role ID")
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	module := r.URL.Query().Get("module")
	if module == "" {
		h.WriteError(w, http.StatusBadRequest, "module is required")
		return
	}

	resp, err := h.Service.Check(r.Context(), id, module, r.URL.Query().Get("action"))
	if err != nil {
		h.Logger.Error("CheckPermission: service error", "error", err, "role_id", id, "module", module)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func newRoleResponse(role *Role, diag permission.Diagnostics) RoleResponse {
	resp := RoleResponse{Role: role}
	if !diag.Empty() {
		resp.Diagnostics = &diag
	}
	return resp
}

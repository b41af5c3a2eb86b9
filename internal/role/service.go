package role

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/erp-rbac/internal"
	roleDatamodel "github.com/frahmantamala/erp-rbac/internal/core/datamodel/role"
	"github.com/frahmantamala/erp-rbac/internal/core/events"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/pkg/metrics"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*roleDatamodel.Role, error)
	GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	Create(ctx context.Context, role *roleDatamodel.Role) error
	Update(ctx context.Context, role *roleDatamodel.Role) error
	Delete(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	catalog   *permission.Catalog
	cache     Cache
	publisher EventPublisher
	logger    *slog.Logger
}

// NewService wires the role service. cache and publisher may be nil.
func NewService(repo RepositoryAPI, catalog *permission.Catalog, cache Cache, publisher EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		catalog:   catalog,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Catalog() *permission.Catalog {
	return s.catalog
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get roles from repository", "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		r, err := FromDataModel(row)
		if err != nil {
			s.logger.Error("failed to decode role", "role_id", row.ID, "error", err)
			return nil, internal.NewInternalError("failed to list roles", err)
		}
		roles = append(roles, r)
	}

	s.logger.Info("retrieved roles", "count", len(roles))
	return roles, nil
}

// GetRole loads a role, consulting the cache first when one is configured.
func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("role cache lookup failed", "role_id", id, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, r); err != nil {
			s.logger.Warn("failed to cache role", "role_id", id, "error", err)
		}
	}
	return r, nil
}

func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, permission.Diagnostics, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Error("role validation failed", "error", err)
		return nil, permission.Diagnostics{}, err
	}

	r := NewRole()
	r.Name = dto.Name
	r.Description = dto.Description
	if dto.Active != nil {
		r.Active = *dto.Active
	}
	if dto.Permissions != nil {
		r.Permissions = dto.Permissions
	}
	r.HierarchicalPermissions = dto.HierarchicalPermissions

	diag := r.Normalize(s.catalog, dto.Source())
	s.reportDiagnostics(r, "create", diag)
	if !r.HasAnyGrant() {
		return nil, diag, internal.ErrNoPermissionSelected
	}

	if err := s.ensureNameFree(ctx, r.Name, 0); err != nil {
		return nil, diag, err
	}

	if err := s.insert(ctx, r); err != nil {
		return nil, diag, err
	}

	s.logger.Info("role created", "role_id", r.ID, "name", r.Name, "source", dto.Source().String())
	metrics.RecordRoleMutation("create")
	s.publish(ctx, events.NewRoleCreatedEvent(r.ID, r.Name))
	return r, diag, nil
}

func (s *Service) UpdateRole(ctx context.Context, dto UpdateRoleDTO) (*Role, permission.Diagnostics, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Error("role validation failed", "error", err, "role_id", dto.ID)
		return nil, permission.Diagnostics{}, err
	}

	r, err := s.load(ctx, dto.ID)
	if err != nil {
		return nil, permission.Diagnostics{}, err
	}

	r.Name = dto.Name
	r.Description = dto.Description
	if dto.Active != nil {
		if *dto.Active {
			r.Activate()
		} else {
			r.Deactivate()
		}
	}
	r.Permissions = dto.Permissions
	if r.Permissions == nil {
		r.Permissions = []permission.Permission{}
	}
	r.HierarchicalPermissions = dto.HierarchicalPermissions

	diag := r.Normalize(s.catalog, dto.Source())
	s.reportDiagnostics(r, "update", diag)
	if !r.HasAnyGrant() {
		return nil, diag, internal.ErrNoPermissionSelected
	}

	if err := s.ensureNameFree(ctx, r.Name, r.ID); err != nil {
		return nil, diag, err
	}

	if err := s.save(ctx, r); err != nil {
		return nil, diag, err
	}

	s.logger.Info("role updated", "role_id", r.ID, "name", r.Name, "source", dto.Source().String())
	metrics.RecordRoleMutation("update")
	s.publish(ctx, events.NewRoleUpdatedEvent(r.ID, r.Name))
	return r, diag, nil
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	r, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete role", "role_id", id, "error", err)
		return internal.NewInternalError("failed to delete role", err)
	}
	s.invalidate(ctx, id)

	s.logger.Info("role deleted", "role_id", id, "name", r.Name)
	metrics.RecordRoleMutation("delete")
	s.publish(ctx, events.NewRoleDeletedEvent(r.ID, r.Name))
	return nil
}

// UpdatePageAction toggles one action on one page of a stored role, prunes
// what is left empty and persists both views. Action "all" sets or clears
// every action of the page.
func (s *Service) UpdatePageAction(ctx context.Context, roleID int64, dto PageActionDTO) (*Role, error) {
	action, all, err := dto.Parse()
	if err != nil {
		return nil, err
	}
	if _, ok := s.catalog.Section(dto.SectionID); !ok {
		return nil, internal.ErrUnknownSection
	}
	if _, ok := s.catalog.Page(dto.SectionID, dto.PageID); !ok {
		return nil, internal.ErrUnknownPage
	}

	return s.edit(ctx, roleID, "update_page", func(e *Editor) {
		if all {
			e.SetPageAll(dto.SectionID, dto.PageID, dto.Checked)
			return
		}
		e.UpdatePageAction(dto.SectionID, dto.PageID, action, dto.Checked)
	}, "section_id", dto.SectionID, "page_id", dto.PageID, "action", dto.Action, "checked", dto.Checked)
}

// UpdateModuleAction toggles one action, or with action "all" every action,
// on a module and mirrors the grant onto every page mapped to it.
func (s *Service) UpdateModuleAction(ctx context.Context, roleID int64, dto ModuleActionDTO) (*Role, error) {
	action, all, err := dto.Parse()
	if err != nil {
		return nil, err
	}
	if !s.catalog.HasModule(dto.Module) {
		return nil, internal.ErrUnknownModule
	}

	return s.edit(ctx, roleID, "update_module", func(e *Editor) {
		if all {
			e.SetModuleAll(dto.Module, dto.Checked)
			return
		}
		e.SetModuleAction(dto.Module, action, dto.Checked)
	}, "module", dto.Module, "action", dto.Action, "checked", dto.Checked)
}

// UpdateSection grants or clears every action on every page of a section.
func (s *Service) UpdateSection(ctx context.Context, roleID int64, dto SectionActionDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.catalog.Section(dto.SectionID); !ok {
		return nil, internal.ErrUnknownSection
	}

	return s.edit(ctx, roleID, "update_section", func(e *Editor) {
		e.SetSectionAll(dto.SectionID, dto.Checked)
	}, "section_id", dto.SectionID, "checked", dto.Checked)
}

// edit runs one form edit against a stored role and persists the result.
func (s *Service) edit(ctx context.Context, roleID int64, operation string, apply func(*Editor), attrs ...any) (*Role, error) {
	r, err := s.load(ctx, roleID)
	if err != nil {
		return nil, err
	}

	editor := NewEditor(s.catalog, r, s.logger)
	apply(editor)
	updated := editor.Role()
	if !updated.HasAnyGrant() {
		return nil, internal.ErrNoPermissionSelected
	}

	if err := s.save(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("role permissions edited", append([]any{"role_id", roleID, "operation", operation}, attrs...)...)
	metrics.RecordRoleMutation(operation)
	s.publish(ctx, events.NewRoleUpdatedEvent(updated.ID, updated.Name))
	return updated, nil
}

// DuplicateRole copies the grants of an existing role under a new name.
func (s *Service) DuplicateRole(ctx context.Context, id int64, dto DuplicateRoleDTO) (*Role, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Description = strings.TrimSpace(dto.Description)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	source, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	copied := source.Clone()
	copied.ID = 0
	copied.Name = dto.Name
	if dto.Description != "" {
		copied.Description = dto.Description
	}
	if copied.HierarchicalPermissions != nil {
		copied.Normalize(s.catalog, SourceHierarchical)
	} else {
		copied.Normalize(s.catalog, SourceFlat)
	}

	if err := s.ensureNameFree(ctx, copied.Name, 0); err != nil {
		return nil, err
	}
	if err := s.insert(ctx, copied); err != nil {
		return nil, err
	}

	s.logger.Info("role duplicated", "source_role_id", id, "role_id", copied.ID, "name", copied.Name)
	metrics.RecordRoleMutation("duplicate")
	s.publish(ctx, events.NewRoleCreatedEvent(copied.ID, copied.Name))
	return copied, nil
}

// SelectionStatus computes every module, section and page tri-state of a role.
func (s *Service) SelectionStatus(ctx context.Context, roleID int64) (*StatusResponse, error) {
	r, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	editor := NewEditor(s.catalog, r, s.logger)
	resp := &StatusResponse{RoleID: r.ID}
	for _, m := range s.catalog.Modules() {
		resp.Modules = append(resp.Modules, ModuleStatus{
			Module:  m.Name,
			Status:  editor.ModuleSelectionStatus(m.Name),
			Allowed: r.AllowedActions(m.Name),
		})
	}
	for _, sec := range s.catalog.Sections() {
		status := SectionStatus{
			SectionID: sec.ID,
			Status:    editor.SectionSelectionStatus(sec.ID),
			Pages:     make([]PageStatus, 0, len(sec.Pages)),
		}
		for _, p := range sec.Pages {
			status.Pages = append(status.Pages, PageStatus{PageID: p.ID, Status: editor.PageSelectionStatus(sec.ID, p.ID)})
		}
		resp.Sections = append(resp.Sections, status)
	}
	return resp, nil
}

// Check answers a façade query for one module. An empty action asks whether
// anything at all is granted on the module.
func (s *Service) Check(ctx context.Context, roleID int64, module, action string) (*CheckResponse, error) {
	if !s.catalog.HasModule(module) {
		return nil, internal.ErrUnknownModule
	}

	r, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	resp := &CheckResponse{Module: module, Allowed: r.AllowedActions(module)}
	if action == "" {
		resp.Granted = r.HasAnyPermission(module)
		return resp, nil
	}

	parsed, err := permission.ParseAction(action)
	if err != nil {
		return nil, internal.ErrInvalidAction
	}
	resp.Action = parsed
	resp.Granted = r.HasPermission(module, parsed)
	return resp, nil
}

// SeedDefaults creates the built-in roles that do not exist yet and returns
// all of them.
func (s *Service) SeedDefaults(ctx context.Context) ([]*Role, error) {
	defaults := DefaultRoles(s.catalog)
	seeded := make([]*Role, 0, len(defaults))

	for _, d := range defaults {
		existing, err := s.repo.GetByName(ctx, d.Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up default role", err)
		}
		if existing != nil {
			r, err := FromDataModel(existing)
			if err != nil {
				return nil, internal.NewInternalError("failed to decode default role", err)
			}
			seeded = append(seeded, r)
			continue
		}

		if err := s.insert(ctx, d); err != nil {
			return nil, err
		}
		s.logger.Info("default role seeded", "role_id", d.ID, "name", d.Name)
		metrics.RecordRoleMutation("seed")
		s.publish(ctx, events.NewRoleCreatedEvent(d.ID, d.Name))
		seeded = append(seeded, d)
	}
	return seeded, nil
}

// RegisterEventHandlers writes an audit line for every role event.
func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	for _, t := range events.RoleEventTypes {
		bus.Subscribe(t, s.auditRoleEvent)
	}
}

func (s *Service) auditRoleEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.RoleEvent)
	if !ok {
		s.logger.WarnContext(ctx, "unexpected role event payload", "event_type", event.EventType())
		return nil
	}
	s.logger.InfoContext(ctx, "role audit",
		"event_id", e.EventID(),
		"event_type", e.EventType(),
		"role_id", e.RoleID,
		"role_name", e.RoleName,
		"occurred_at", e.OccurredAt())
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Role, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get role", "role_id", id, "error", err)
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}

	r, err := FromDataModel(row)
	if err != nil {
		s.logger.Error("failed to decode role", "role_id", id, "error", err)
		return nil, internal.NewInternalError("failed to get role", err)
	}
	return r, nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.Error("failed to check role name", "name", name, "error", err)
		return internal.NewInternalError("failed to check role name", err)
	}
	if existing != nil && existing.ID != selfID {
		return internal.ErrRoleNameTaken
	}
	return nil
}

func (s *Service) insert(ctx context.Context, r *Role) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	row, err := ToDataModel(r)
	if err != nil {
		return internal.NewInternalError("failed to encode role", err)
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create role", "name", r.Name, "error", err)
		return internal.NewInternalError("failed to create role", err)
	}
	r.ID = row.ID
	return nil
}

func (s *Service) save(ctx context.Context, r *Role) error {
	r.UpdatedAt = time.Now()

	row, err := ToDataModel(r)
	if err != nil {
		return internal.NewInternalError("failed to encode role", err)
	}
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update role", "role_id", r.ID, "error", err)
		return internal.NewInternalError("failed to update role", err)
	}
	s.invalidate(ctx, r.ID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cached role", "role_id", id, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish role event", "event_type", event.EventType(), "error", err)
	}
}

func (s *Service) reportDiagnostics(r *Role, op string, diag permission.Diagnostics) {
	if diag.Empty() {
		return
	}
	s.logger.Warn("role permissions adjusted",
		"operation", op,
		"role_id", r.ID,
		"name", r.Name,
		"dropped_pages", diag.DroppedPages,
		"unknown_modules", diag.UnknownModules,
		"merged_modules", diag.MergedModules)
}

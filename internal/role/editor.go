package role

import (
	"log/slog"

	"github.com/frahmantamala/erp-rbac/internal/core/permission"
)

// Editor applies the role form's permission edits to a working copy of a
// role and keeps the flat and hierarchical views in step after every change.
type Editor struct {
	catalog *permission.Catalog
	role    *Role
	logger  *slog.Logger
}

// NewEditor copies r and prepares it for editing: every catalog module gets a
// flat entry and an undefined tree is derived from the flat list.
func NewEditor(c *permission.Catalog, r *Role, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	working := r.Clone()
	if working == nil {
		working = NewRoleForCatalog(c)
	}

	e := &Editor{catalog: c, role: working, logger: logger}
	if working.HierarchicalPermissions == nil {
		e.report("open", working.Normalize(c, SourceFlat))
	} else {
		merged, dups := permission.MergePermissions(working.Permissions)
		working.Permissions = merged
		working.HierarchicalPermissions = permission.MergeSections(working.HierarchicalPermissions)
		e.report("open", permission.Diagnostics{MergedModules: dups})
	}
	e.fillModules()
	return e
}

// Role returns a copy of the edited role.
func (e *Editor) Role() *Role {
	return e.role.Clone()
}

// SetModuleAction toggles one action on a module and mirrors the resulting
// module grant onto every page mapped to it.
func (e *Editor) SetModuleAction(module string, action permission.ActionType, checked bool) {
	if !action.IsValid() || !e.catalog.HasModule(module) {
		return
	}
	current, _ := e.role.moduleActions(module)
	e.setModule(module, current.With(action, checked))
}

// SetModuleAll grants or clears every action on a module.
func (e *Editor) SetModuleAll(module string, checked bool) {
	if !e.catalog.HasModule(module) {
		return
	}
	e.setModule(module, fillOrClear(checked))
}

// UpdatePageAction toggles one action on a page. Pages and sections left
// without grants are pruned and the flat list is re-derived from the tree.
func (e *Editor) UpdatePageAction(sectionID, pageID string, action permission.ActionType, checked bool) {
	e.role.HierarchicalPermissions = permission.UpdatePageAction(e.role.HierarchicalPermissions, sectionID, pageID, action, checked)
	e.syncFlat("page")
}

func (e *Editor) SetPageAll(sectionID, pageID string, checked bool) {
	e.role.HierarchicalPermissions = permission.SetPageActions(e.role.HierarchicalPermissions, sectionID, pageID, fillOrClear(checked))
	e.syncFlat("page")
}

func (e *Editor) SetSectionAll(sectionID string, checked bool) {
	e.role.HierarchicalPermissions = e.catalog.SetSectionActions(e.role.HierarchicalPermissions, sectionID, fillOrClear(checked))
	e.syncFlat("section")
}

func (e *Editor) ModuleSelectionStatus(module string) permission.SelectionStatus {
	return permission.ModuleStatus(e.role.Permissions, module)
}

func (e *Editor) SectionSelectionStatus(sectionID string) permission.SelectionStatus {
	return e.catalog.SectionStatus(e.role.HierarchicalPermissions, sectionID)
}

func (e *Editor) PageSelectionStatus(sectionID, pageID string) permission.SelectionStatus {
	return permission.PageStatus(e.role.HierarchicalPermissions, sectionID, pageID)
}

func (e *Editor) setModule(module string, actions permission.ModuleActions) {
	for i := range e.role.Permissions {
		if e.role.Permissions[i].Module == module {
			e.role.Permissions[i].Actions = actions
		}
	}

	tree := e.role.HierarchicalPermissions
	for _, page := range e.catalog.PagesForModule(module) {
		section, _, _ := e.catalog.FindPage(page.ID)
		tree = permission.SetPageActions(tree, section.ID, page.ID, actions)
	}
	if tree == nil {
		tree = []permission.SectionPermission{}
	}
	e.role.HierarchicalPermissions = tree
}

func (e *Editor) syncFlat(scope string) {
	perms, diag := e.catalog.ToTraditional(e.role.HierarchicalPermissions)
	e.role.Permissions = perms
	e.fillModules()
	e.report(scope, permission.Diagnostics{DroppedPages: diag.DroppedPages})
}

// fillModules appends an ungranted entry for every catalog module the flat
// list does not mention yet.
func (e *Editor) fillModules() {
	for _, name := range e.catalog.ModuleNames() {
		if _, ok := permission.FindPermission(e.role.Permissions, name); !ok {
			e.role.Permissions = append(e.role.Permissions, permission.DefaultPermission(name))
		}
	}
}

func (e *Editor) report(scope string, diag permission.Diagnostics) {
	if diag.Empty() {
		return
	}
	e.logger.Warn("role permissions adjusted",
		"role_id", e.role.ID,
		"scope", scope,
		"dropped_pages", diag.DroppedPages,
		"unknown_modules", diag.UnknownModules,
		"merged_modules", diag.MergedModules)
}

func fillOrClear(checked bool) permission.ModuleActions {
	if checked {
		return permission.FullActions()
	}
	return permission.DefaultActions()
}

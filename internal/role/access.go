package role

import "github.com/frahmantamala/erp-rbac/internal/core/permission"

// The checks below are safe on a nil *Role and never fail: missing data
// always resolves to "not granted". Page checks read only the hierarchical
// view and do not fall back to the flat one.

// HasPermission reports whether action is granted on module.
func (r *Role) HasPermission(module string, action permission.ActionType) bool {
	actions, ok := r.moduleActions(module)
	return ok && actions.Has(action)
}

// HasAnyPermission reports whether any action is granted on module.
func (r *Role) HasAnyPermission(module string) bool {
	actions, ok := r.moduleActions(module)
	return ok && !actions.IsEmpty()
}

// AllowedActions lists the actions granted on module in declaration order.
func (r *Role) AllowedActions(module string) []permission.ActionType {
	actions, _ := r.moduleActions(module)
	return actions.Allowed()
}

func (r *Role) HasPagePermission(sectionID, pageID string, action permission.ActionType) bool {
	actions, ok := r.pageActions(sectionID, pageID)
	return ok && actions.Has(action)
}

func (r *Role) HasAnySectionPermission(sectionID string) bool {
	return len(r.AllowedPages(sectionID)) > 0
}

// AllowedPages lists the pages of sectionID with at least one grant, in the
// order they appear in the role.
func (r *Role) AllowedPages(sectionID string) []string {
	pages := []string{}
	if r == nil {
		return pages
	}
	seen := make(map[string]bool)
	for _, s := range r.HierarchicalPermissions {
		if s.SectionID != sectionID {
			continue
		}
		for _, p := range s.Pages {
			if p.Actions.IsEmpty() || seen[p.PageID] {
				continue
			}
			seen[p.PageID] = true
			pages = append(pages, p.PageID)
		}
	}
	return pages
}

// moduleActions unions every entry for module so duplicate rows cannot hide
// a grant.
func (r *Role) moduleActions(module string) (permission.ModuleActions, bool) {
	var actions permission.ModuleActions
	if r == nil {
		return actions, false
	}
	found := false
	for _, p := range r.Permissions {
		if p.Module == module {
			actions = actions.Union(p.Actions)
			found = true
		}
	}
	return actions, found
}

func (r *Role) pageActions(sectionID, pageID string) (permission.ModuleActions, bool) {
	var actions permission.ModuleActions
	if r == nil {
		return actions, false
	}
	found := false
	for _, s := range r.HierarchicalPermissions {
		if s.SectionID != sectionID {
			continue
		}
		for _, p := range s.Pages {
			if p.PageID == pageID {
				actions = actions.Union(p.Actions)
				found = true
			}
		}
	}
	return actions, found
}

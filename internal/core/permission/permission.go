package permission

// Permission is the flat, module-scoped grant.
type Permission struct {
	Module  string        `json:"module"`
	Actions ModuleActions `json:"actions"`
}

// PagePermission is a grant on a single catalog page.
type PagePermission struct {
	PageID  string        `json:"page_id"`
	Actions ModuleActions `json:"actions"`
}

// SectionPermission groups page grants under a catalog section. A section
// without pages is treated as absent.
type SectionPermission struct {
	SectionID string           `json:"section_id"`
	Pages     []PagePermission `json:"pages"`
}

// DefaultPermission returns an entry for module with nothing granted.
func DefaultPermission(module string) Permission {
	return Permission{Module: module, Actions: DefaultActions()}
}

// DefaultPermissions returns one empty entry per catalog module, in catalog order.
func DefaultPermissions(c *Catalog) []Permission {
	perms := make([]Permission, 0, len(c.modules))
	for _, m := range c.modules {
		perms = append(perms, DefaultPermission(m.Name))
	}
	return perms
}

// FindPermission returns the first entry for module.
func FindPermission(perms []Permission, module string) (Permission, bool) {
	for _, p := range perms {
		if p.Module == module {
			return p, true
		}
	}
	return Permission{}, false
}

// MergePermissions collapses entries that share a module into the position of
// the first one, granting the union of their actions. It returns the merged
// list and the modules that had duplicates.
func MergePermissions(perms []Permission) ([]Permission, []string) {
	if perms == nil {
		return nil, nil
	}
	out := make([]Permission, 0, len(perms))
	idx := make(map[string]int, len(perms))
	var merged []string
	for _, p := range perms {
		if i, ok := idx[p.Module]; ok {
			out[i].Actions = out[i].Actions.Union(p.Actions)
			if !containsString(merged, p.Module) {
				merged = append(merged, p.Module)
			}
			continue
		}
		idx[p.Module] = len(out)
		out = append(out, p)
	}
	return out, merged
}

// ClonePermissions returns a copy that shares no backing array with perms.
func ClonePermissions(perms []Permission) []Permission {
	if perms == nil {
		return nil
	}
	return append([]Permission(nil), perms...)
}

// CloneSections deep-copies a hierarchical permission tree.
func CloneSections(sections []SectionPermission) []SectionPermission {
	if sections == nil {
		return nil
	}
	out := make([]SectionPermission, len(sections))
	for i, s := range sections {
		out[i] = SectionPermission{
			SectionID: s.SectionID,
			Pages:     append([]PagePermission(nil), s.Pages...),
		}
	}
	return out
}

// MergeSections returns a copy of the tree in which repeated section ids are
// folded into their first occurrence and repeated page ids within a section
// grant the union of their actions. Order of first appearance is kept.
func MergeSections(sections []SectionPermission) []SectionPermission {
	if sections == nil {
		return nil
	}
	out := make([]SectionPermission, 0, len(sections))
	sectionIdx := make(map[string]int, len(sections))
	pageIdx := make(map[string]map[string]int, len(sections))

	for _, s := range sections {
		si, seen := sectionIdx[s.SectionID]
		if !seen {
			si = len(out)
			sectionIdx[s.SectionID] = si
			pageIdx[s.SectionID] = make(map[string]int, len(s.Pages))
			out = append(out, SectionPermission{SectionID: s.SectionID, Pages: make([]PagePermission, 0, len(s.Pages))})
		}
		pages := pageIdx[s.SectionID]
		for _, p := range s.Pages {
			if pi, ok := pages[p.PageID]; ok {
				out[si].Pages[pi].Actions = out[si].Pages[pi].Actions.Union(p.Actions)
				continue
			}
			pages[p.PageID] = len(out[si].Pages)
			out[si].Pages = append(out[si].Pages, p)
		}
	}
	return out
}

// FindSection returns the first section entry with the given id.
func FindSection(sections []SectionPermission, sectionID string) (SectionPermission, bool) {
	for _, s := range sections {
		if s.SectionID == sectionID {
			return s, true
		}
	}
	return SectionPermission{}, false
}

// FindPage returns the first page entry with the given id.
func (s SectionPermission) FindPage(pageID string) (PagePermission, bool) {
	for _, p := range s.Pages {
		if p.PageID == pageID {
			return p, true
		}
	}
	return PagePermission{}, false
}

// Prune drops pages with nothing granted and then sections left without pages.
// The result is never nil when sections is not nil.
func Prune(sections []SectionPermission) []SectionPermission {
	if sections == nil {
		return nil
	}
	out := make([]SectionPermission, 0, len(sections))
	for _, s := range sections {
		pages := make([]PagePermission, 0, len(s.Pages))
		for _, p := range s.Pages {
			if !p.Actions.IsEmpty() {
				pages = append(pages, p)
			}
		}
		if len(pages) > 0 {
			out = append(out, SectionPermission{SectionID: s.SectionID, Pages: pages})
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

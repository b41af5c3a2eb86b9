package permission

// DroppedPage is a page grant whose (section, page) pair no longer exists in
// the catalog.
type DroppedPage struct {
	SectionID string `json:"section_id"`
	PageID    string `json:"page_id"`
}

// Diagnostics describes what a conversion or normalisation discarded or merged.
type Diagnostics struct {
	DroppedPages   []DroppedPage `json:"dropped_pages,omitempty"`
	UnknownModules []string      `json:"unknown_modules,omitempty"`
	MergedModules  []string      `json:"merged_modules,omitempty"`
}

func (d Diagnostics) Empty() bool {
	return len(d.DroppedPages) == 0 && len(d.UnknownModules) == 0 && len(d.MergedModules) == 0
}

// ToTraditional projects a hierarchical tree onto flat module permissions.
//
// Sections are walked in input order and pages in input order; each page is
// resolved against the catalog section named by its SectionPermission and
// emitted as a grant on the page's module. Pages the catalog does not know are
// dropped and reported. Several pages mapping to the same module are folded
// into one entry at the first occurrence, granting the union of their actions.
func (c *Catalog) ToTraditional(sections []SectionPermission) ([]Permission, Diagnostics) {
	var diag Diagnostics
	perms := make([]Permission, 0)
	idx := make(map[string]int)

	for _, s := range sections {
		for _, pp := range s.Pages {
			page, ok := c.Page(s.SectionID, pp.PageID)
			if !ok {
				diag.DroppedPages = append(diag.DroppedPages, DroppedPage{SectionID: s.SectionID, PageID: pp.PageID})
				continue
			}

			if i, seen := idx[page.Module]; seen {
				perms[i].Actions = perms[i].Actions.Union(pp.Actions)
				if !containsString(diag.MergedModules, page.Module) {
					diag.MergedModules = append(diag.MergedModules, page.Module)
				}
				continue
			}
			idx[page.Module] = len(perms)
			perms = append(perms, Permission{Module: page.Module, Actions: pp.Actions})
		}
	}
	return perms, diag
}

// ToHierarchical fans flat module permissions out to every catalog page
// mapped to each module, in catalog order. Pages whose module has nothing
// granted are left out and sections that collect no page are pruned.
func (c *Catalog) ToHierarchical(perms []Permission) []SectionPermission {
	merged, _ := MergePermissions(perms)
	byModule := make(map[string]ModuleActions, len(merged))
	for _, p := range merged {
		byModule[p.Module] = p.Actions
	}

	sections := make([]SectionPermission, 0)
	for _, s := range c.sections {
		var pages []PagePermission
		for _, page := range s.Pages {
			actions, ok := byModule[page.Module]
			if !ok || actions.IsEmpty() {
				continue
			}
			pages = append(pages, PagePermission{PageID: page.ID, Actions: actions})
		}
		if len(pages) > 0 {
			sections = append(sections, SectionPermission{SectionID: s.ID, Pages: pages})
		}
	}
	return sections
}

// FilterKnownModules drops flat entries for modules missing from the catalog.
func (c *Catalog) FilterKnownModules(perms []Permission) ([]Permission, []string) {
	if perms == nil {
		return nil, nil
	}
	out := make([]Permission, 0, len(perms))
	var unknown []string
	for _, p := range perms {
		if !c.HasModule(p.Module) {
			unknown = append(unknown, p.Module)
			continue
		}
		out = append(out, p)
	}
	return out, unknown
}

package permission

// SelectionStatus is the tri-state behind the role form's checkboxes.
type SelectionStatus string

const (
	StatusNone    SelectionStatus = "none"
	StatusPartial SelectionStatus = "partial"
	StatusAll     SelectionStatus = "all"
)

// Rollup computes the status of a scope with total grantable units, of which
// selected carry at least one grant and full carry every grant.
func Rollup(total, selected, full int) SelectionStatus {
	if total <= 0 || selected <= 0 {
		return StatusNone
	}
	if selected >= total && full >= total {
		return StatusAll
	}
	return StatusPartial
}

// ModuleStatus rolls up the flat entry for module. A missing entry is none.
func ModuleStatus(perms []Permission, module string) SelectionStatus {
	p, ok := FindPermission(perms, module)
	if !ok {
		return StatusNone
	}
	return p.Actions.Status()
}

// PageStatus rolls up a single page entry of the tree.
func PageStatus(sections []SectionPermission, sectionID, pageID string) SelectionStatus {
	s, ok := FindSection(sections, sectionID)
	if !ok {
		return StatusNone
	}
	p, ok := s.FindPage(pageID)
	if !ok {
		return StatusNone
	}
	return p.Actions.Status()
}

// SectionStatus compares the pages present for sectionID with the pages the
// catalog defines for it. Page entries the catalog does not know are ignored.
func (c *Catalog) SectionStatus(sections []SectionPermission, sectionID string) SelectionStatus {
	catalogSection, ok := c.Section(sectionID)
	if !ok {
		return StatusNone
	}
	s, ok := FindSection(sections, sectionID)
	if !ok {
		return StatusNone
	}

	selected, full := 0, 0
	seen := make(map[string]bool, len(s.Pages))
	for _, pp := range s.Pages {
		if _, known := catalogSection.Page(pp.PageID); !known || seen[pp.PageID] {
			continue
		}
		seen[pp.PageID] = true
		selected++
		if pp.Actions.IsFull() {
			full++
		}
	}
	return Rollup(len(catalogSection.Pages), selected, full)
}

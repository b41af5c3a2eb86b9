package permission

// UpdatePageAction grants or revokes one action on a page and returns the new
// tree. Missing section and page entries are created on demand; a page left
// with nothing granted is removed, and so is a section left without pages.
// The input tree is not modified.
func UpdatePageAction(sections []SectionPermission, sectionID, pageID string, action ActionType, checked bool) []SectionPermission {
	if !action.IsValid() {
		return CloneSections(sections)
	}

	sections = MergeSections(sections)
	current := DefaultActions()
	if s, ok := FindSection(sections, sectionID); ok {
		if p, ok := s.FindPage(pageID); ok {
			current = p.Actions
		}
	}
	return SetPageActions(sections, sectionID, pageID, current.With(action, checked))
}

// SetPageActions replaces the actions of a page, applying the same
// create-on-demand and pruning rules as UpdatePageAction. Repeated section or
// page entries are merged first so the change reaches every copy.
func SetPageActions(sections []SectionPermission, sectionID, pageID string, actions ModuleActions) []SectionPermission {
	out := MergeSections(sections)
	if out == nil {
		out = make([]SectionPermission, 0, 1)
	}

	si := -1
	for i := range out {
		if out[i].SectionID == sectionID {
			si = i
			break
		}
	}
	if si < 0 {
		out = append(out, SectionPermission{SectionID: sectionID, Pages: []PagePermission{}})
		si = len(out) - 1
	}

	section := &out[si]
	pi := -1
	for i := range section.Pages {
		if section.Pages[i].PageID == pageID {
			pi = i
			break
		}
	}
	if pi < 0 {
		section.Pages = append(section.Pages, PagePermission{PageID: pageID, Actions: DefaultActions()})
		pi = len(section.Pages) - 1
	}
	section.Pages[pi].Actions = actions

	if actions.IsEmpty() {
		section.Pages = append(section.Pages[:pi], section.Pages[pi+1:]...)
	}
	if len(section.Pages) == 0 {
		out = append(out[:si], out[si+1:]...)
	}
	return out
}

// SetSectionActions applies actions to every page the catalog defines for
// sectionID. Unknown sections leave the tree unchanged.
func (c *Catalog) SetSectionActions(sections []SectionPermission, sectionID string, actions ModuleActions) []SectionPermission {
	section, ok := c.Section(sectionID)
	if !ok {
		return CloneSections(sections)
	}
	out := sections
	for _, p := range section.Pages {
		out = SetPageActions(out, sectionID, p.ID, actions)
	}
	if len(section.Pages) == 0 {
		return CloneSections(sections)
	}
	return out
}

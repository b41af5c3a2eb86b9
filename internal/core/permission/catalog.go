package permission

import (
	"errors"
	"fmt"
)

// Module is a flat functional area. Name is the join key used by Permission.Module.
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Active      bool   `json:"active"`
}

// Page is a single screen inside a section, mapped to exactly one module.
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Module      string `json:"module"`
	Href        string `json:"href"`
	Icon        string `json:"icon,omitempty"`
	Active      bool   `json:"active"`
}

// Section groups pages in the hierarchical catalog.
type Section struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Pages       []Page `json:"pages"`
	Active      bool   `json:"active"`
}

// Page looks up a page of this section by id.
func (s Section) Page(pageID string) (Page, bool) {
	for _, p := range s.Pages {
		if p.ID == pageID {
			return p, true
		}
	}
	return Page{}, false
}

type pageRef struct {
	section int
	page    int
}

// Catalog is the registry of everything a role can hold permissions over.
// It is immutable once built; accessors return copies.
type Catalog struct {
	modules  []Module
	sections []Section

	moduleIdx  map[string]int
	sectionIdx map[string]int
	pageIdx    map[string]pageRef
}

// NewCatalog builds a catalog from modules and sections. Inconsistent input is
// accepted here and reported by Validate; lookups resolve to the first match.
func NewCatalog(modules []Module, sections []Section) *Catalog {
	c := &Catalog{
		modules:    make([]Module, len(modules)),
		sections:   make([]Section, len(sections)),
		moduleIdx:  make(map[string]int, len(modules)),
		sectionIdx: make(map[string]int, len(sections)),
		pageIdx:    make(map[string]pageRef),
	}
	copy(c.modules, modules)
	for i, m := range c.modules {
		if _, ok := c.moduleIdx[m.Name]; !ok {
			c.moduleIdx[m.Name] = i
		}
	}

	for i, s := range sections {
		s.Pages = append([]Page(nil), s.Pages...)
		c.sections[i] = s
		if _, ok := c.sectionIdx[s.ID]; !ok {
			c.sectionIdx[s.ID] = i
		}
		for j, p := range s.Pages {
			if _, ok := c.pageIdx[p.ID]; !ok {
				c.pageIdx[p.ID] = pageRef{section: i, page: j}
			}
		}
	}
	return c
}

// DefaultCatalog returns the compiled-in ERP catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(SystemModules(), SystemSections())
}

func (c *Catalog) Modules() []Module {
	return append([]Module(nil), c.modules...)
}

func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		s.Pages = append([]Page(nil), s.Pages...)
		out[i] = s
	}
	return out
}

func (c *Catalog) ModuleNames() []string {
	names := make([]string, len(c.modules))
	for i, m := range c.modules {
		names[i] = m.Name
	}
	return names
}

func (c *Catalog) Module(name string) (Module, bool) {
	i, ok := c.moduleIdx[name]
	if !ok {
		return Module{}, false
	}
	return c.modules[i], true
}

func (c *Catalog) HasModule(name string) bool {
	_, ok := c.moduleIdx[name]
	return ok
}

func (c *Catalog) Section(id string) (Section, bool) {
	i, ok := c.sectionIdx[id]
	if !ok {
		return Section{}, false
	}
	s := c.sections[i]
	s.Pages = append([]Page(nil), s.Pages...)
	return s, true
}

// Page resolves a page that must belong to the given section.
func (c *Catalog) Page(sectionID, pageID string) (Page, bool) {
	i, ok := c.sectionIdx[sectionID]
	if !ok {
		return Page{}, false
	}
	return c.sections[i].Page(pageID)
}

// FindPage resolves a bare page id across all sections.
func (c *Catalog) FindPage(pageID string) (Section, Page, bool) {
	ref, ok := c.pageIdx[pageID]
	if !ok {
		return Section{}, Page{}, false
	}
	s := c.sections[ref.section]
	return s, s.Pages[ref.page], true
}

// PagesForModule returns every page mapped to module, in catalog order.
func (c *Catalog) PagesForModule(module string) []Page {
	var pages []Page
	for _, s := range c.sections {
		for _, p := range s.Pages {
			if p.Module == module {
				pages = append(pages, p)
			}
		}
	}
	return pages
}

// UnmappedModules lists modules no page maps to. Grants on such modules
// cannot be expressed in the hierarchical form.
func (c *Catalog) UnmappedModules() []string {
	mapped := make(map[string]bool)
	for _, s := range c.sections {
		for _, p := range s.Pages {
			mapped[p.Module] = true
		}
	}
	var out []string
	for _, m := range c.modules {
		if !mapped[m.Name] {
			out = append(out, m.Name)
		}
	}
	return out
}

// Validate checks the catalog's cross-references. A page pointing at an
// unknown module would be silently dropped by the conversion engine.
func (c *Catalog) Validate() error {
	var errs []error

	seenModules := make(map[string]bool, len(c.modules))
	for _, m := range c.modules {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("module %q has an empty name", m.ID))
			continue
		}
		if seenModules[m.Name] {
			errs = append(errs, fmt.Errorf("duplicate module name %q", m.Name))
		}
		seenModules[m.Name] = true
	}

	seenSections := make(map[string]bool, len(c.sections))
	seenPages := make(map[string]string)
	for _, s := range c.sections {
		if seenSections[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate section id %q", s.ID))
		}
		seenSections[s.ID] = true

		for _, p := range s.Pages {
			if other, ok := seenPages[p.ID]; ok {
				errs = append(errs, fmt.Errorf("duplicate page id %q in sections %q and %q", p.ID, other, s.ID))
			} else {
				seenPages[p.ID] = s.ID
			}
			if !seenModules[p.Module] {
				errs = append(errs, fmt.Errorf("page %q in section %q maps to unknown module %q", p.ID, s.ID, p.Module))
			}
		}
	}

	return errors.Join(errs...)
}

package role

import (
	"encoding/json"
	"fmt"
	"time"

	roleDatamodel "github.com/frahmantamala/erp-rbac/internal/core/datamodel/role"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"gorm.io/datatypes"
)

// Role is a named bundle of grants kept in both the flat and the
// hierarchical shape. A nil HierarchicalPermissions means the tree was never
// defined; an empty one means nothing is granted.
type Role struct {
	ID                      int64                          `json:"id"`
	Name                    string                         `json:"name"`
	Description             string                         `json:"description"`
	Active                  bool                           `json:"active"`
	Permissions             []permission.Permission        `json:"permissions"`
	HierarchicalPermissions []permission.SectionPermission `json:"hierarchical_permissions"`
	CreatedAt               time.Time                      `json:"created_at"`
	UpdatedAt               time.Time                      `json:"updated_at"`
}

// Source names the representation a write treats as authoritative.
type Source int

const (
	SourceFlat Source = iota
	SourceHierarchical
)

func (s Source) String() string {
	if s == SourceHierarchical {
		return "hierarchical"
	}
	return "flat"
}

// NewRole returns an empty, active role with no grants.
func NewRole() *Role {
	return &Role{
		Active:      true,
		Permissions: []permission.Permission{},
	}
}

// NewRoleForCatalog returns an empty role holding one ungranted entry per
// catalog module, the shape a role form starts from.
func NewRoleForCatalog(c *permission.Catalog) *Role {
	r := NewRole()
	r.Permissions = permission.DefaultPermissions(c)
	r.HierarchicalPermissions = []permission.SectionPermission{}
	return r
}

// Normalize makes the two permission views agree. The view named by source
// is cleaned up and the other one is derived from it.
//
// From the tree: repeated sections and pages are merged, stale pages dropped
// and empty entries pruned, then the flat list is projected. From the flat list: duplicate modules are merged,
// unknown modules dropped, then the tree is fanned out.
func (r *Role) Normalize(c *permission.Catalog, source Source) permission.Diagnostics {
	var diag permission.Diagnostics

	if source == SourceHierarchical {
		merged := permission.MergeSections(r.HierarchicalPermissions)
		tree := make([]permission.SectionPermission, 0, len(merged))
		for _, s := range merged {
			kept := permission.SectionPermission{SectionID: s.SectionID}
			for _, p := range s.Pages {
				if _, ok := c.Page(s.SectionID, p.PageID); !ok {
					diag.DroppedPages = append(diag.DroppedPages, permission.DroppedPage{SectionID: s.SectionID, PageID: p.PageID})
					continue
				}
				kept.Pages = append(kept.Pages, p)
			}
			tree = append(tree, kept)
		}
		r.HierarchicalPermissions = permission.Prune(tree)

		r.Permissions, _ = c.ToTraditional(r.HierarchicalPermissions)
		return diag
	}

	merged, dups := permission.MergePermissions(r.Permissions)
	known, unknown := c.FilterKnownModules(merged)
	if known == nil {
		known = []permission.Permission{}
	}
	diag.MergedModules = dups
	diag.UnknownModules = unknown
	r.Permissions = known
	r.HierarchicalPermissions = c.ToHierarchical(known)
	return diag
}

// HasAnyGrant reports whether at least one action is granted anywhere.
func (r *Role) HasAnyGrant() bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if !p.Actions.IsEmpty() {
			return true
		}
	}
	for _, s := range r.HierarchicalPermissions {
		for _, p := range s.Pages {
			if !p.Actions.IsEmpty() {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy.
func (r *Role) Clone() *Role {
	if r == nil {
		return nil
	}
	out := *r
	out.Permissions = permission.ClonePermissions(r.Permissions)
	out.HierarchicalPermissions = permission.CloneSections(r.HierarchicalPermissions)
	return &out
}

func (r *Role) Activate() {
	r.Active = true
	r.UpdatedAt = time.Now()
}

func (r *Role) Deactivate() {
	r.Active = false
	r.UpdatedAt = time.Now()
}

func ToDataModel(r *Role) (*roleDatamodel.Role, error) {
	row := &roleDatamodel.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Permissions: make([]roleDatamodel.RolePermission, 0, len(r.Permissions)),
	}

	if r.HierarchicalPermissions != nil {
		raw, err := json.Marshal(r.HierarchicalPermissions)
		if err != nil {
			return nil, fmt.Errorf("encode hierarchical permissions: %w", err)
		}
		row.HierarchicalPermissions = datatypes.JSON(raw)
	}

	for _, p := range r.Permissions {
		row.Permissions = append(row.Permissions, roleDatamodel.RolePermission{
			RoleID:       r.ID,
			Module:       p.Module,
			CanView:      p.Actions.View,
			CanCreate:    p.Actions.Create,
			CanEdit:      p.Actions.Edit,
			CanDelete:    p.Actions.Delete,
			CanDuplicate: p.Actions.Duplicate,
			CanApprove:   p.Actions.Approve,
			CanPrint:     p.Actions.Print,
		})
	}
	return row, nil
}

func FromDataModel(row *roleDatamodel.Role) (*Role, error) {
	r := &Role{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Active:      row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Permissions: make([]permission.Permission, 0, len(row.Permissions)),
	}

	for _, p := range row.Permissions {
		r.Permissions = append(r.Permissions, permission.Permission{
			Module: p.Module,
			Actions: permission.ModuleActions{
				View:      p.CanView,
				Create:    p.CanCreate,
				Edit:      p.CanEdit,
				Delete:    p.CanDelete,
				Duplicate: p.CanDuplicate,
				Approve:   p.CanApprove,
				Print:     p.CanPrint,
			},
		})
	}

	if len(row.HierarchicalPermissions) > 0 && string(row.HierarchicalPermissions) != "null" {
		var tree []permission.SectionPermission
		if err := json.Unmarshal(row.HierarchicalPermissions, &tree); err != nil {
			return nil, fmt.Errorf("decode hierarchical permissions of role %d: %w", row.ID, err)
		}
		if tree == nil {
			tree = []permission.SectionPermission{}
		}
		r.HierarchicalPermissions = tree
	}
	return r, nil
}

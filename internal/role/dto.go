package role

import (
	"strings"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/frahmantamala/erp-rbac/internal/core/common/validation"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
)

// CreateRoleDTO carries a role in either shape. When HierarchicalPermissions
// is present it is authoritative and Permissions is re-derived from it.
type CreateRoleDTO struct {
	Name                    string                         `json:"name"`
	Description             string                         `json:"description"`
	Active                  *bool                          `json:"active,omitempty"`
	Permissions             []permission.Permission        `json:"permissions"`
	HierarchicalPermissions []permission.SectionPermission `json:"hierarchical_permissions,omitempty"`
}

type UpdateRoleDTO struct {
	ID int64 `json:"-"`
	CreateRoleDTO
}

// ActionAll targets every action of a page or module at once.
const ActionAll = "all"

// PageActionDTO toggles one action on one page of a role.
type PageActionDTO struct {
	SectionID string `json:"section_id"`
	PageID    string `json:"page_id"`
	Action    string `json:"action"`
	Checked   bool   `json:"checked"`
}

// ModuleActionDTO toggles one action on a module of a role.
type ModuleActionDTO struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	Checked bool   `json:"checked"`
}

// SectionActionDTO selects or clears a whole section.
type SectionActionDTO struct {
	SectionID string `json:"section_id"`
	Checked   bool   `json:"checked"`
}

type DuplicateRoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type RoleResponse struct {
	Role        *Role                  `json:"role"`
	Diagnostics *permission.Diagnostics `json:"diagnostics,omitempty"`
}

type ModuleStatus struct {
	Module  string                     `json:"module"`
	Status  permission.SelectionStatus `json:"status"`
	Allowed []permission.ActionType    `json:"allowed"`
}

type PageStatus struct {
	PageID string                     `json:"page_id"`
	Status permission.SelectionStatus `json:"status"`
}

type SectionStatus struct {
	SectionID string                     `json:"section_id"`
	Status    permission.SelectionStatus `json:"status"`
	Pages     []PageStatus               `json:"pages"`
}

// StatusResponse is every tri-state the role form renders, in catalog order.
type StatusResponse struct {
	RoleID   int64           `json:"role_id"`
	Modules  []ModuleStatus  `json:"modules"`
	Sections []SectionStatus `json:"sections"`
}

type CheckResponse struct {
	Module  string                  `json:"module"`
	Action  permission.ActionType   `json:"action,omitempty"`
	Granted bool                    `json:"granted"`
	Allowed []permission.ActionType `json:"allowed"`
}

func (d *CreateRoleDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

func (d CreateRoleDTO) Validate() error {
	if err := validation.ValidateRoleName(d.Name); err != nil {
		return err
	}
	if err := validation.ValidateRoleDescription(d.Description); err != nil {
		return err
	}
	return nil
}

// Source reports which representation the payload is authoritative in.
func (d CreateRoleDTO) Source() Source {
	if d.HierarchicalPermissions != nil {
		return SourceHierarchical
	}
	return SourceFlat
}

func (d DuplicateRoleDTO) Validate() error {
	if err := validation.ValidateRoleName(d.Name); err != nil {
		return err
	}
	if err := validation.ValidateRoleDescription(d.Description); err != nil {
		return err
	}
	return nil
}

// Parse checks the target and returns the typed action, or reports that every
// action is selected.
func (d PageActionDTO) Parse() (permission.ActionType, bool, error) {
	if strings.TrimSpace(d.SectionID) == "" {
		return "", false, internal.NewValidationFieldError("section_id", "section_id is required", internal.ErrCodeUnknownSection)
	}
	if strings.TrimSpace(d.PageID) == "" {
		return "", false, internal.NewValidationFieldError("page_id", "page_id is required", internal.ErrCodeUnknownPage)
	}
	return parseTargetAction(d.Action)
}

func (d ModuleActionDTO) Parse() (permission.ActionType, bool, error) {
	if strings.TrimSpace(d.Module) == "" {
		return "", false, internal.NewValidationFieldError("module", "module is required", internal.ErrCodeUnknownModule)
	}
	return parseTargetAction(d.Action)
}

func (d SectionActionDTO) Validate() error {
	if strings.TrimSpace(d.SectionID) == "" {
		return internal.NewValidationFieldError("section_id", "section_id is required", internal.ErrCodeUnknownSection)
	}
	return nil
}

func parseTargetAction(name string) (permission.ActionType, bool, error) {
	if name == ActionAll {
		return "", true, nil
	}
	action, err := permission.ParseAction(name)
	if err != nil {
		return "", false, internal.ErrInvalidAction
	}
	return action, false, nil
}

package user

import (
	"strings"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/frahmantamala/erp-rbac/internal/core/common/validation"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
)

// AssignRoleDTO sets the role of a user. A null role_id removes it.
type AssignRoleDTO struct {
	RoleID *int64 `json:"role_id"`
}

// CreateUserDTO is used by the seeder to provision accounts.
type CreateUserDTO struct {
	Email      string
	Name       string
	Password   string
	Department string
	RoleID     *int64
}

type RoleSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type ModuleAccess struct {
	Module  string                  `json:"module"`
	Actions []permission.ActionType `json:"actions"`
}

type SectionAccess struct {
	SectionID string   `json:"section_id"`
	Pages     []string `json:"pages"`
}

// ProfileResponse is what the client needs to render navigation: only modules
// and sections with at least one grant are listed.
type ProfileResponse struct {
	User     *User           `json:"user"`
	Role     *RoleSummary    `json:"role,omitempty"`
	Modules  []ModuleAccess  `json:"modules"`
	Sections []SectionAccess `json:"sections"`
}

func (d AssignRoleDTO) Validate() error {
	if d.RoleID == nil {
		return nil
	}
	if err := validation.ValidateID("role_id", *d.RoleID); err != nil {
		return err
	}
	return nil
}

func (d *CreateUserDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Name = strings.TrimSpace(d.Name)
}

func (d CreateUserDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("email", d.Email).Required().MaxLength(255)
	validator.Field("name", d.Name).Required().MaxLength(100)
	validator.Field("password", d.Password).Required().MinLength(8)
	if err := validator.Validate(); err != nil {
		return err
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "email must be a valid email", internal.ErrCodeValidationFailed)
	}
	return nil
}

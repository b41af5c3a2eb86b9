package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/internal/role"
)

// RoleProvider resolves a role id, typically through the cached role service.
type RoleProvider interface {
	GetRole(ctx context.Context, id int64) (*role.Role, error)
}

type PermissionChecker interface {
	HasPermission(ctx context.Context, u *User, module string, action permission.ActionType) (bool, error)
	HasAnyPermission(ctx context.Context, u *User, module string) (bool, error)
	HasPagePermission(ctx context.Context, u *User, sectionID, pageID string, action permission.ActionType) (bool, error)
	RoleOf(ctx context.Context, u *User) (*role.Role, error)
}

type RolePermissionChecker struct {
	roles RoleProvider
}

func NewPermissionChecker(roles RoleProvider) PermissionChecker {
	return &RolePermissionChecker{roles: roles}
}

// RoleOf returns the active role of u. A user without a role, a dangling
// role id and an inactive role all yield nil with no error.
func (c *RolePermissionChecker) RoleOf(ctx context.Context, u *User) (*role.Role, error) {
	if u == nil || u.RoleID == nil {
		return nil, nil
	}

	r, err := c.roles.GetRole(ctx, *u.RoleID)
	if err != nil {
		if errors.Is(err, internal.ErrRoleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if r == nil || !r.Active {
		return nil, nil
	}
	return r, nil
}

func (c *RolePermissionChecker) HasPermission(ctx context.Context, u *User, module string, action permission.ActionType) (bool, error) {
	r, err := c.RoleOf(ctx, u)
	if err != nil {
		return false, err
	}
	return r.HasPermission(module, action), nil
}

func (c *RolePermissionChecker) HasAnyPermission(ctx context.Context, u *User, module string) (bool, error) {
	r, err := c.RoleOf(ctx, u)
	if err != nil {
		return false, err
	}
	return r.HasAnyPermission(module), nil
}

func (c *RolePermissionChecker) HasPagePermission(ctx context.Context, u *User, sectionID, pageID string, action permission.ActionType) (bool, error) {
	r, err := c.RoleOf(ctx, u)
	if err != nil {
		return false, err
	}
	return r.HasPagePermission(sectionID, pageID, action), nil
}

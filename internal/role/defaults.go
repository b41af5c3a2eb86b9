package role

import "github.com/frahmantamala/erp-rbac/internal/core/permission"

const (
	RoleNameAdmin       = "مدير النظام"
	RoleNameSupervisor  = "مشرف"
	RoleNameRegularUser = "مستخدم عادي"
)

// ActionsFunc computes the grants of a built-in role for one module.
type ActionsFunc func(module string) permission.ModuleActions

type builtin struct {
	name        string
	description string
	actions     ActionsFunc
}

var builtins = []builtin{
	{name: RoleNameAdmin, description: "صلاحيات كاملة على جميع الوحدات", actions: AdminActions},
	{name: RoleNameSupervisor, description: "إدارة العمليات اليومية واعتماد المبيعات والمشتريات", actions: SupervisorActions},
	{name: RoleNameRegularUser, description: "عرض البيانات وتسجيل المبيعات والعملاء", actions: RegularUserActions},
}

func AdminActions(string) permission.ModuleActions {
	return permission.FullActions()
}

func SupervisorActions(module string) permission.ModuleActions {
	restricted := module == permission.ModuleSettings || module == permission.ModuleRoles
	return permission.ModuleActions{
		View:      true,
		Create:    !restricted,
		Edit:      !restricted,
		Delete:    false,
		Duplicate: module == permission.ModuleProducts || module == permission.ModuleCustomers,
		Approve:   module == permission.ModuleSales || module == permission.ModulePurchases,
		Print:     true,
	}
}

func RegularUserActions(module string) permission.ModuleActions {
	restricted := module == permission.ModuleSettings || module == permission.ModuleRoles
	salesDesk := module == permission.ModuleSales || module == permission.ModuleCustomers
	return permission.ModuleActions{
		View:   !restricted,
		Create: salesDesk,
		Edit:   module == permission.ModuleCustomers,
		Print:  salesDesk,
	}
}

// BuildPermissions maps fn over the catalog modules in catalog order.
func BuildPermissions(c *permission.Catalog, fn ActionsFunc) []permission.Permission {
	names := c.ModuleNames()
	perms := make([]permission.Permission, 0, len(names))
	for _, name := range names {
		perms = append(perms, permission.Permission{Module: name, Actions: fn(name)})
	}
	return perms
}

// DefaultRoles generates the built-in roles from the catalog. The output
// depends only on the catalog, so reseeding yields identical roles.
func DefaultRoles(c *permission.Catalog) []*Role {
	roles := make([]*Role, 0, len(builtins))
	for _, b := range builtins {
		r := NewRole()
		r.Name = b.name
		r.Description = b.description
		r.Permissions = BuildPermissions(c, b.actions)
		r.Normalize(c, SourceFlat)
		roles = append(roles, r)
	}
	return roles
}

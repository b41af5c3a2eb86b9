package role

import (
	"time"

	"gorm.io/datatypes"
)

type Role struct {
	ID                      int64            `gorm:"primaryKey"`
	Name                    string           `gorm:"column:name;uniqueIndex;not null"`
	Description             string           `gorm:"column:description"`
	IsActive                bool             `gorm:"column:is_active;not null"`
	HierarchicalPermissions datatypes.JSON   `gorm:"column:hierarchical_permissions"`
	Permissions             []RolePermission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission is one row of the flat permission matrix.
type RolePermission struct {
	ID           int64  `gorm:"primaryKey"`
	RoleID       int64  `gorm:"column:role_id;not null;uniqueIndex:idx_role_permissions_role_module"`
	Module       string `gorm:"column:module;not null;uniqueIndex:idx_role_permissions_role_module"`
	CanView      bool   `gorm:"column:can_view;not null"`
	CanCreate    bool   `gorm:"column:can_create;not null"`
	CanEdit      bool   `gorm:"column:can_edit;not null"`
	CanDelete    bool   `gorm:"column:can_delete;not null"`
	CanDuplicate bool   `gorm:"column:can_duplicate;not null"`
	CanApprove   bool   `gorm:"column:can_approve;not null"`
	CanPrint     bool   `gorm:"column:can_print;not null"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

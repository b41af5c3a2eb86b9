package postgres

import (
	"context"
	"errors"

	roleDatamodel "github.com/frahmantamala/erp-rbac/internal/core/datamodel/role"
	"github.com/frahmantamala/erp-rbac/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

// permissionsInOrder keeps the flat list in the order it was written.
func permissionsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *RoleRepository) GetAll(ctx context.Context) ([]*roleDatamodel.Role, error) {
	var roles []*roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions", permissionsInOrder).
		Order("name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *RoleRepository) first(ctx context.Context, query string, arg interface{}) (*roleDatamodel.Role, error) {
	var row roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions", permissionsInOrder).
		Where(query, arg).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create inserts the role and its permission rows in one transaction.
func (r *RoleRepository) Create(ctx context.Context, row *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(row).Error; err != nil {
			return err
		}
		return insertPermissions(tx, row)
	})
}

// Update rewrites the role columns and replaces every permission row.
func (r *RoleRepository) Update(ctx context.Context, row *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&roleDatamodel.Role{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"name":                     row.Name,
				"description":              row.Description,
				"is_active":                row.IsActive,
				"hierarchical_permissions": row.HierarchicalPermissions,
				"updated_at":               row.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("role_id = ?", row.ID).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return insertPermissions(tx, row)
	})
}

func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&roleDatamodel.Role{}, id).Error
	})
}

func insertPermissions(tx *gorm.DB, row *roleDatamodel.Role) error {
	if len(row.Permissions) == 0 {
		return nil
	}
	for i := range row.Permissions {
		row.Permissions[i].ID = 0
		row.Permissions[i].RoleID = row.ID
	}
	return tx.Create(&row.Permissions).Error
}

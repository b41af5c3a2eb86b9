package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/erp-rbac/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, roleID *int64) error {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

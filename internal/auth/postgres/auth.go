package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/erp-rbac/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetCredentials returns nil when no user has the email.
func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var creds auth.Credentials
	var roleID sql.NullInt64
	query := `SELECT id, email, name, password_hash, role_id, is_active FROM users WHERE email = ?`

	row := r.db.WithContext(ctx).Raw(query, email).Row()
	if err := row.Scan(&creds.ID, &creds.Email, &creds.Name, &creds.PasswordHash, &roleID, &creds.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	creds.RoleID = nullableID(roleID)
	return &creds, nil
}

// GetUserByID returns nil when the user does not exist.
func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	var user auth.User
	var roleID sql.NullInt64
	query := `SELECT id, email, name, role_id, is_active FROM users WHERE id = ?`

	row := r.db.WithContext(ctx).Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &roleID, &user.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.RoleID = nullableID(roleID)
	return &user, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

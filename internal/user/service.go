package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/erp-rbac/internal"
	userDatamodel "github.com/frahmantamala/erp-rbac/internal/core/datamodel/user"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/internal/role"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	UpdateRole(ctx context.Context, userID int64, roleID *int64) error
}

// RoleProvider resolves role ids, usually the role service.
type RoleProvider interface {
	GetRole(ctx context.Context, id int64) (*role.Role, error)
}

// PasswordHasher hashes a plaintext password, usually the auth service.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo    Repository
	roles   RoleProvider
	catalog *permission.Catalog
	logger  *slog.Logger
}

func NewService(repo Repository, roles RoleProvider, catalog *permission.Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		roles:   roles,
		catalog: catalog,
		logger:  logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user by id", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

// Profile lists what the user may do, per module and per section. A user
// without an active role gets empty lists.
func (s *Service) Profile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &ProfileResponse{
		User:     u,
		Modules:  []ModuleAccess{},
		Sections: []SectionAccess{},
	}

	r, err := s.activeRole(ctx, u.RoleID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return resp, nil
	}
	resp.Role = &RoleSummary{ID: r.ID, Name: r.Name, Active: r.Active}
	if !r.Active {
		return resp, nil
	}

	for _, m := range s.catalog.Modules() {
		if actions := r.AllowedActions(m.Name); len(actions) > 0 {
			resp.Modules = append(resp.Modules, ModuleAccess{Module: m.Name, Actions: actions})
		}
	}
	for _, sec := range s.catalog.Sections() {
		if pages := r.AllowedPages(sec.ID); len(pages) > 0 {
			resp.Sections = append(resp.Sections, SectionAccess{SectionID: sec.ID, Pages: pages})
		}
	}
	return resp, nil
}

// AssignRole points the user at roleID, or clears the role when it is nil.
func (s *Service) AssignRole(ctx context.Context, userID int64, dto AssignRoleDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if dto.RoleID != nil {
		if _, err := s.roles.GetRole(ctx, *dto.RoleID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateRole(ctx, userID, dto.RoleID); err != nil {
		s.logger.Error("failed to assign role", "user_id", userID, "role_id", dto.RoleID, "error", err)
		return nil, internal.NewInternalError("failed to assign role", err)
	}

	s.logger.Info("role assigned", "user_id", userID, "previous_role_id", u.RoleID, "role_id", dto.RoleID)
	u.RoleID = dto.RoleID
	return u, nil
}

// EnsureUser returns the user with dto.Email, creating it when missing.
func (s *Service) EnsureUser(ctx context.Context, dto CreateUserDTO, hasher PasswordHasher) (*User, bool, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, false, internal.NewInternalError("failed to look up user", err)
	}
	if existing != nil {
		return FromDataModel(existing), false, nil
	}

	hash, err := hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, false, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		Department:   dto.Department,
		PasswordHash: hash,
		RoleID:       dto.RoleID,
		IsActive:     true,
	}
	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, false, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "email", row.Email)
	return FromDataModel(row), true, nil
}

func (s *Service) activeRole(ctx context.Context, roleID *int64) (*role.Role, error) {
	if roleID == nil {
		return nil, nil
	}
	r, err := s.roles.GetRole(ctx, *roleID)
	if err != nil {
		if errors.Is(err, internal.ErrRoleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/erp-rbac/internal/auth"
	"github.com/frahmantamala/erp-rbac/internal/core/events"
	"github.com/frahmantamala/erp-rbac/internal/role"
	"github.com/frahmantamala/erp-rbac/internal/user"
	userPostgres "github.com/frahmantamala/erp-rbac/internal/user/postgres"
	"github.com/frahmantamala/erp-rbac/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default roles and an admin user",
	Long:  `Find-or-create the built-in roles generated from the catalog and an admin user holding the admin role. Safe to run repeatedly.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer db.Close()

	gdb, err := initGorm(db)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(log)
	roleService := newRoleService(gdb, catalog, nil, 0, bus, log)

	seeded, err := roleService.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	var adminRole *role.Role
	for _, r := range seeded {
		fmt.Printf("role %q (id %d)\n", r.Name, r.ID)
		if r.Name == role.RoleNameAdmin {
			adminRole = r
		}
	}
	if adminRole == nil {
		return fmt.Errorf("admin role %q was not seeded", role.RoleNameAdmin)
	}

	users := user.NewService(userPostgres.NewUserRepository(gdb), roleService, catalog, log)

	admin, created, err := users.EnsureUser(ctx, user.CreateUserDTO{
		Email:    adminEmail,
		Name:     adminName,
		Password: adminPassword,
		RoleID:   &adminRole.ID,
	}, bcryptHasher(cfg.Security.BCryptCost))
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if !created {
		fmt.Println("admin user already exists:", admin.Email)
		return nil
	}
	fmt.Println("Seeded admin user:", admin.Email)
	return nil
}

type bcryptHasher int

func (c bcryptHasher) HashPassword(password string) (string, error) {
	return auth.HashPassword(password, int(c))
}

func init() {
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@erp.local", "email of the seeded admin user")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the seeded admin user")
	seedCmd.Flags().StringVar(&adminName, "admin-name", "مدير النظام", "display name of the seeded admin user")
	_ = seedCmd.MarkFlagRequired("admin-password")
}

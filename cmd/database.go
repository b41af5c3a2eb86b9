package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/frahmantamala/erp-rbac/internal/core/events"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/internal/role"
	rolePostgres "github.com/frahmantamala/erp-rbac/internal/role/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const driver = "pgx"

// initDB opens the shared pgx pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm puts gorm on top of the existing pool so both share connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// initRedis returns nil when the role cache is disabled.
func initRedis(ctx context.Context, cfg internal.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := internal.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// loadCatalog returns the built-in catalog after checking it is consistent.
func loadCatalog() (*permission.Catalog, error) {
	catalog := permission.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("permission catalog is inconsistent: %w", err)
	}
	return catalog, nil
}

func newRoleService(gdb *gorm.DB, catalog *permission.Catalog, rdb *redis.Client, cacheTTL time.Duration, bus *events.EventBus, logger *slog.Logger) *role.Service {
	var cache role.Cache
	if rdb != nil {
		cache = role.NewRedisCache(rdb, cacheTTL)
	}

	var publisher role.EventPublisher
	if bus != nil {
		publisher = bus
	}

	svc := role.NewService(rolePostgres.NewRoleRepository(gdb), catalog, cache, publisher, logger)
	if bus != nil {
		svc.RegisterEventHandlers(bus)
	}
	return svc
}

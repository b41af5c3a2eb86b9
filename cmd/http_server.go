package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/frahmantamala/erp-rbac/internal/auth"
	authPostgres "github.com/frahmantamala/erp-rbac/internal/auth/postgres"
	"github.com/frahmantamala/erp-rbac/internal/core/events"
	"github.com/frahmantamala/erp-rbac/internal/role"
	"github.com/frahmantamala/erp-rbac/internal/transport/rest"
	"github.com/frahmantamala/erp-rbac/internal/transport/swagger"
	"github.com/frahmantamala/erp-rbac/internal/user"
	userPostgres "github.com/frahmantamala/erp-rbac/internal/user/postgres"
	"github.com/frahmantamala/erp-rbac/pkg/logger"
	"github.com/frahmantamala/erp-rbac/pkg/metrics"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := internal.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.close()
	deps.Logger.Info("Server stopped")
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	if unmapped := catalog.UnmappedModules(); len(unmapped) > 0 {
		log.Warn("modules without pages can only be granted through the flat view", "modules", unmapped)
	}

	if _, err := swagger.Load(ctx); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rdb, err := initRedis(ctx, config.Redis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var metricsHandler http.Handler
	if config.Observability.Metrics.Enabled {
		reg := metrics.NewRegistry()
		metrics.Register(reg)
		metricsHandler = metrics.Handler(reg)
	}

	bus := events.NewEventBus(log)
	roleService := newRoleService(gdb, catalog, rdb, config.Redis.RoleCacheTTL, bus, log)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gdb), tokens, config.Security.BCryptCost).WithLogger(log)
	userService := user.NewService(userPostgres.NewUserRepository(gdb), roleService, catalog, log)

	health := rest.NewHealthHandler(db.PingContext)
	if rdb != nil {
		health.WithComponent("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Routes{
		Health:         health,
		Auth:           auth.NewHandler(authService),
		RBAC:           auth.NewRBACAuthorization(auth.NewPermissionChecker(roleService), log),
		Users:          user.NewHandler(userService),
		Roles:          role.NewHandler(roleService),
		Metrics:        metricsHandler,
		MetricsPath:    config.Observability.Metrics.Path,
		AllowedOrigins: config.Server.Origins(),
		Logger:         log,
	})

	return &Dependencies{
		Config: config,
		DB:     db,
		Redis:  rdb,
		Router: router,
		Logger: log,
	}, nil
}


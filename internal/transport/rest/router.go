package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/erp-rbac/internal/auth"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/internal/role"
	"github.com/frahmantamala/erp-rbac/internal/transport/middleware"
	"github.com/frahmantamala/erp-rbac/internal/transport/swagger"
	"github.com/frahmantamala/erp-rbac/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
)

// Routes is everything the router mounts. Nil handlers leave their routes
// unregistered.
type Routes struct {
	Health         *HealthHandler
	Auth           *auth.Handler
	RBAC           *auth.RBACAuthorization
	Users          *user.Handler
	Roles          *role.Handler
	Metrics        http.Handler
	MetricsPath    string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router chi.Router, routes Routes) {
	logger := routes.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := routes.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TraceIDHeader},
		ExposedHeaders:   []string{middleware.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger, routes.MetricsPath, "/api/v1/ping", "/api/v1/health"))

	router.Get(swagger.SpecPath, swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	if routes.Metrics != nil && routes.MetricsPath != "" {
		router.Handle(routes.MetricsPath, routes.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if routes.Health != nil {
			r.Get("/health", routes.Health.healthCheckHandler)
			r.Get("/ping", routes.Health.pingHandler)
		}

		if routes.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", routes.Auth.Login)
			sr.Post("/refresh", routes.Auth.RefreshToken)
			sr.Post("/logout", routes.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(routes.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			if routes.Roles != nil {
				pr.Get("/catalog", routes.Roles.GetCatalog)
			}

			if routes.Users != nil {
				pr.Get("/users/me", routes.Users.GetCurrentUser)
				pr.With(routes.RBAC.Require(permission.ModuleUsers, permission.ActionEdit)).
					Put("/users/{id}/role", routes.Users.AssignRole)
			}

			if routes.Roles != nil {
				registerRoleRoutes(pr, routes.Roles, routes.RBAC)
			}
		})
	})
}

func registerRoleRoutes(r chi.Router, h *role.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/roles", func(rr chi.Router) {
		rr.Group(func(vr chi.Router) {
			vr.Use(rbac.Require(permission.ModuleRoles, permission.ActionView))
			vr.Get("/", h.ListRoles)
			vr.Get("/{id}", h.GetRole)
		})

		rr.With(rbac.RequirePage(permission.SectionAdministration, permission.PageRoles, permission.ActionView)).
			Get("/{id}/status", h.GetSelectionStatus)
		rr.With(rbac.RequireAny(permission.ModuleRoles)).Get("/{id}/check", h.CheckPermission)

		rr.With(rbac.Require(permission.ModuleRoles, permission.ActionCreate)).Post("/", h.CreateRole)

		rr.Group(func(er chi.Router) {
			er.Use(rbac.Require(permission.ModuleRoles, permission.ActionEdit))
			er.Put("/{id}", h.UpdateRole)
			er.Patch("/{id}/pages", h.UpdatePageAction)
			er.Patch("/{id}/modules", h.UpdateModuleAction)
			er.Patch("/{id}/sections", h.UpdateSection)
		})

		rr.With(rbac.Require(permission.ModuleRoles, permission.ActionDuplicate)).Post("/{id}/duplicate", h.DuplicateRole)
		rr.With(rbac.Require(permission.ModuleRoles, permission.ActionDelete)).Delete("/{id}", h.DeleteRole)
	})
}

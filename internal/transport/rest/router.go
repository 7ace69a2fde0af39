package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/draft"
	"github.com/frahmantamala/training-management/internal/notification"
	"github.com/frahmantamala/training-management/internal/proposal"
	"github.com/frahmantamala/training-management/internal/realization"
	"github.com/frahmantamala/training-management/internal/transport/middleware"
	"github.com/frahmantamala/training-management/internal/transport/swagger"
	"github.com/frahmantamala/training-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers bundles the feature handlers the router mounts. Any nil handler is
// simply skipped, which keeps partial wiring in tests cheap.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Proposal     *proposal.Handler
	Draft        *draft.Handler
	Realization  *realization.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match the OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			// Proposal workflow routes
			if h.Proposal != nil {
				pr.Route("/proposals", func(er chi.Router) {
					er.Post("/", h.Proposal.Create)
					er.Get("/", h.Proposal.List)
					er.Get("/{id}", h.Proposal.Get)
					er.Put("/{id}", h.Proposal.Update)
					er.Delete("/{id}", h.Proposal.Delete)
					er.Patch("/{id}/implementation", h.Proposal.UpdateImplementation)

					// Approval decisions are privileged; the service resolves
					// what each role may do with the requested status.
					er.Group(func(mr chi.Router) {
						mr.Use(h.Auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))
						mr.Patch("/{id}/status", h.Proposal.UpdateStatus)
					})
				})
			}

			// Draft TNA planning routes (privileged)
			if h.Draft != nil {
				pr.Route("/drafts", func(dr chi.Router) {
					dr.Use(h.Auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))
					dr.Post("/", h.Draft.Create)
					dr.Get("/", h.Draft.List)
					dr.Get("/{id}", h.Draft.Get)
					dr.Put("/{id}", h.Draft.Update)
					dr.Patch("/{id}/status", h.Draft.UpdateStatus)
					dr.Delete("/{id}", h.Draft.Delete)
				})
			}

			// Realization rollup routes (privileged, read-only)
			if h.Realization != nil {
				pr.Route("/realizations", func(rr chi.Router) {
					rr.Use(h.Auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))
					rr.Get("/", h.Realization.List)
					rr.Get("/{id}", h.Realization.Get)
				})
			}

			// Notification inbox routes
			if h.Notification != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", h.Notification.List)
					nr.Get("/unread-count", h.Notification.UnreadCount)
					nr.Patch("/read-all", h.Notification.MarkAllRead)
					nr.Patch("/{id}/read", h.Notification.MarkRead)
					nr.Delete("/{id}", h.Notification.Delete)
				})
			}

			// Organization reference routes
			if h.User != nil {
				pr.Get("/branches", h.User.ListBranches)
				pr.Get("/divisions", h.User.ListDivisions)
				pr.Get("/subsidiaries", h.User.ListSubsidiaries)

				pr.Group(func(ur chi.Router) {
					ur.Use(h.Auth.RequireRole(auth.RoleSuperadmin))
					ur.Post("/branches", h.User.CreateBranch)
					ur.Route("/users", func(uur chi.Router) {
						uur.Post("/", h.User.CreateUser)
						uur.Get("/", h.User.ListUsers)
						uur.Get("/{id}", h.User.GetUser)
						uur.Patch("/{id}", h.User.UpdateUser)
					})
				})
			}
		})
	})
}

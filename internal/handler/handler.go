// Package handler implements the JSON API: registration, sessions, and event
// listing management.
package handler

import (
	"database/sql"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"podia/internal/form"
	"podia/internal/middleware"
	"podia/internal/service"
	"podia/internal/store"
	"podia/internal/validate"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	sessions   *scs.SessionManager
	audit      *service.AuditService
	media      *service.MediaService
	registrar  *form.Registrar
	protection *middleware.LoginProtection
}

// New creates the API handler.
func New(db *sql.DB, sm *scs.SessionManager, audit *service.AuditService, media *service.MediaService, lp *middleware.LoginProtection) *Handler {
	return &Handler{
		db:         db,
		queries:    store.New(db),
		sessions:   sm,
		audit:      audit,
		media:      media,
		registrar:  form.NewRegistrar(db, validate.DefaultPasswordPolicy()),
		protection: lp,
	}
}

// Routes mounts the API routes. The caller is expected to have installed the
// session and account-loading middleware already.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/register/guest", h.RegisterGuest)
		r.Post("/register/host", h.RegisterHost)

		r.Group(func(r chi.Router) {
			if h.protection != nil {
				r.Use(h.protection.Middleware())
			}
			r.Post("/login", h.Login)
		})
		r.Post("/logout", h.Logout)
		r.With(middleware.RequireAccount()).Get("/me", h.Me)

		r.Route("/events", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(h.audit))
				r.Get("/", h.ListEvents)
				r.Post("/", h.CreateEvent)
				r.Get("/{id}", h.GetEvent)
				r.Put("/{id}", h.UpdateEvent)
				r.Delete("/{id}", h.DeleteEvent)
				r.Get("/{id}/guests", h.ListEventGuests)
				r.Get("/{id}/description", h.GetEventDescription)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAccount())
				r.Post("/{id}/join", h.JoinEvent)
				r.Delete("/{id}/join", h.LeaveEvent)
			})
		})
	})
}

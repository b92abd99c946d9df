// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"
	sysauth "github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/app/system/ratelimit"
	"github.com/jansethu/mysarkar/internal/domain/models"
)

// Routes returns the /auth subrouter. Register and login are rate limited
// per client IP when limiter is non-nil.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.Tokens.RequireAuth)
		r.Get("/me", h.Me)
		r.Put("/update", h.Update)
		r.With(sysauth.RequireRole(models.RoleGovtOfficial)).Patch("/verify/{userId}", h.Verify)
	})

	return r
}

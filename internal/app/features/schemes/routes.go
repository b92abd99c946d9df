// internal/app/features/schemes/routes.go
package schemes

import (
	"github.com/go-chi/chi/v5"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/domain/models"
)

// Routes returns the /schemes subrouter.
func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/", h.List)
	r.Post("/search", h.SearchSchemes)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(tokens.RequireAuth)

		r.Get("/eligible/me", h.Eligible)
		r.Post("/{id}/apply", h.Apply)
		r.Post("/{id}/favorite", h.AddFavorite)
		r.Delete("/{id}/favorite", h.RemoveFavorite)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleGovtOfficial, models.RoleNGO))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleGovtOfficial))
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/approve", h.Approve)
		})
	})

	return r
}

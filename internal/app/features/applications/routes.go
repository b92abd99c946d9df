// internal/app/features/applications/routes.go
package applications

import (
	"github.com/go-chi/chi/v5"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/domain/models"
)

func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(tokens.RequireAuth)

	r.Post("/", h.Create)
	r.Post("/after-eligibility", h.CreateAfterEligibility)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleGovtOfficial))
		r.Get("/", h.List)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
	return r
}

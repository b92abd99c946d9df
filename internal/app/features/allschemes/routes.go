// internal/app/features/allschemes/routes.go
package allschemes

import (
	"github.com/go-chi/chi/v5"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/domain/models"
)

// Routes returns the /all_schemes subrouter. Reads are public; writes
// require a govt_official.
func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(tokens.RequireAuth)
		r.Use(auth.RequireRole(models.RoleGovtOfficial))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

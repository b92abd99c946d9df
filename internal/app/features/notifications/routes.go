// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
)

// Routes returns the /notification subrouter. Every route is scoped to
// the signed-in user.
func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(tokens.RequireAuth)
	r.Get("/recent", h.Recent)
	r.Get("/all", h.All)
	r.Get("/{id}", h.Get)
	return r
}

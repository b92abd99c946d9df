// internal/app/features/eligibility/routes.go
package eligibility

import (
	"github.com/go-chi/chi/v5"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
)

// Routes returns the /eligibility subrouter. Every route needs a token.
func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(tokens.RequireAuth)
	r.Get("/quiz/{schemeId}", h.GetQuiz)
	r.Post("/check", h.Check)
	return r
}

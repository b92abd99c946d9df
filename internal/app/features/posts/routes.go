// internal/app/features/posts/routes.go
package posts

import (
	"github.com/go-chi/chi/v5"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
)

// Routes returns the /posts subrouter. Reads work anonymously; a valid
// token, when present, personalizes isLikedBy.
func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Get("/trending-tags", h.TrendingTags)

	r.Group(func(r chi.Router) {
		r.Use(tokens.OptionalAuth)
		r.Get("/", h.List)
		r.Get("/all", h.All)
		r.Get("/{id}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(tokens.RequireAuth)
		r.Post("/", h.Create)
		r.Post("/{id}/like", h.ToggleLike)
		r.Post("/{id}/comment", h.AddComment)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

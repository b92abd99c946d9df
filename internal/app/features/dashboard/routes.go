// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/domain/models"
)

// Routes wires the dashboard feature under whatever mount point the
// top-level router chooses (e.g., "/admin-dashboard"). Stats are visible
// to govt_officials and NGOs; the audit trail to govt_officials only.
func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(tokens.RequireAuth)
		pr.Use(auth.RequireRole(models.RoleGovtOfficial, models.RoleNGO))
		pr.Get("/stats", h.Stats)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(tokens.RequireAuth)
		pr.Use(auth.RequireRole(models.RoleGovtOfficial))
		pr.Get("/audit", h.AuditTrail)
	})

	return r
}

// internal/app/features/dashboard/audit.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/jansethu/mysarkar/internal/app/store/audit"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuditTrail handles GET /admin-dashboard/audit. Optional filters:
// category, eventType and userId.
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.DefaultLimit)
	f := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "eventType"),
	}
	if s := query.Get(r, "userId"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			respond.Message(w, http.StatusBadRequest, "Invalid userId")
			return
		}
		f.UserID = &id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "audit trail")
	defer cancel()

	events, total, err := h.Audit.Query(ctx, f, pg)
	if err != nil {
		h.Log.Error("audit trail query failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch audit events", err)
		return
	}

	respond.OK(w, map[string]any{
		"events":      events,
		"total":       total,
		"totalPages":  paging.TotalPages(total, pg.Limit),
		"currentPage": pg.Page,
	})
}

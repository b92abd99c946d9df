// internal/app/features/dashboard/stats.go
package dashboard

import (
	"fmt"
	"net/http"

	metricsstore "github.com/jansethu/mysarkar/internal/app/store/metrics"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type statsResponse struct {
	TotalSchemes      int64  `json:"totalSchemes"`
	TotalApplications int64  `json:"totalApplications"`
	TotalUsers        int64  `json:"totalUsers"`
	ApprovalRate      string `json:"approvalRate"`
}

// Stats handles GET /admin-dashboard/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard stats")
	defer cancel()

	counts, err := metricsstore.FetchDashboardCounts(ctx, h.DB)
	if err != nil {
		h.Log.Error("dashboard stats failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch dashboard stats", err)
		return
	}

	respond.OK(w, statsResponse{
		TotalSchemes:      counts.Schemes,
		TotalApplications: counts.Applications,
		TotalUsers:        counts.Users,
		ApprovalRate:      fmt.Sprintf("%d%%", counts.ApprovalRate()),
	})
}

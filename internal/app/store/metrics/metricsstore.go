package metricsstore

import (
	"context"
	"fmt"

	allschemestore "github.com/jansethu/mysarkar/internal/app/store/allschemes"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Schemes      int64
	Applications int64
	Approved     int64
	Users        int64
}

// ApprovalRate is the rounded share of approved applications, 0..100.
func (c Counts) ApprovalRate() int64 {
	if c.Applications == 0 {
		return 0
	}
	return (c.Approved*100 + c.Applications/2) / c.Applications
}

// FetchDashboardCounts runs the dashboard counters concurrently. Schemes
// are counted in the all_schemes catalog; users are citizens only.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) (Counts, error) {
	var out Counts
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, coll string, filter bson.M) {
		g.Go(func() error {
			n, err := db.Collection(coll).CountDocuments(ctx, filter)
			if err != nil {
				return fmt.Errorf("count %s: %w", coll, err)
			}
			*dst = n
			return nil
		})
	}
	count(&out.Schemes, allschemestore.Collection, bson.M{})
	count(&out.Applications, "applications", bson.M{})
	count(&out.Approved, "applications", bson.M{"status": models.StatusApproved})
	count(&out.Users, "users", bson.M{"role": models.RoleUser})

	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return out, nil
}

package metricsstore_test

import (
	"testing"

	applicationstore "github.com/jansethu/mysarkar/internal/app/store/applications"
	metricsstore "github.com/jansethu/mysarkar/internal/app/store/metrics"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFetchDashboardCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts, err := metricsstore.FetchDashboardCounts(ctx, db)
	if err != nil {
		t.Fatalf("FetchDashboardCounts failed: %v", err)
	}
	if counts != (metricsstore.Counts{}) {
		t.Errorf("expected zero counts, got %+v", counts)
	}
	if counts.ApprovalRate() != 0 {
		t.Errorf("ApprovalRate on empty: got %d, want 0", counts.ApprovalRate())
	}
}

func TestFetchDashboardCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	apps := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAllScheme(ctx, "PM Kisan", "Farmers")
	fixtures.CreateAllScheme(ctx, "Ujjwala", "BPL households")

	c1 := fixtures.CreateCitizen(ctx, "One", "one@example.com")
	fixtures.CreateCitizen(ctx, "Two", "two@example.com")
	official := fixtures.CreateOfficial(ctx, "Officer", "officer@example.com")

	var ids []primitive.ObjectID
	for i := 0; i < 3; i++ {
		a, err := apps.Create(ctx, c1.ID, primitive.NewObjectID())
		if err != nil {
			t.Fatalf("Create application: %v", err)
		}
		ids = append(ids, a.ID)
	}
	if _, err := apps.UpdateStatus(ctx, ids[0], models.StatusApproved, "", official.ID); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	counts, err := metricsstore.FetchDashboardCounts(ctx, db)
	if err != nil {
		t.Fatalf("FetchDashboardCounts failed: %v", err)
	}
	want := metricsstore.Counts{Schemes: 2, Applications: 3, Approved: 1, Users: 2}
	if counts != want {
		t.Errorf("got %+v, want %+v", counts, want)
	}
	if got := counts.ApprovalRate(); got != 33 {
		t.Errorf("ApprovalRate: got %d, want 33", got)
	}
}

func TestApprovalRate_Rounds(t *testing.T) {
	tests := []struct {
		approved, total, want int64
	}{
		{0, 0, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
	}
	for _, tt := range tests {
		c := metricsstore.Counts{Applications: tt.total, Approved: tt.approved}
		if got := c.ApprovalRate(); got != tt.want {
			t.Errorf("ApprovalRate(%d/%d) = %d, want %d", tt.approved, tt.total, got, tt.want)
		}
	}
}

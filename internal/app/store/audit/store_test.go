package audit_test

import (
	"testing"
	"time"

	"github.com/jansethu/mysarkar/internal/app/store/audit"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	event := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
	}
	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, total, err := store.Query(ctx, audit.QueryFilter{UserID: &userID}, paging.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 1 || len(events) != 1 {
		t.Fatalf("expected 1 event, got %d (total %d)", len(events), total)
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	seed := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true, Timestamp: now.Add(-3 * time.Hour)},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, Timestamp: now.Add(-2 * time.Hour)},
		{Category: audit.CategoryAdmin, EventType: audit.EventSchemeApproved, Success: true, Timestamp: now.Add(-time.Hour)},
		{Category: audit.CategoryAdmin, EventType: audit.EventApplicationStatusChanged, Success: true, Timestamp: now},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int64
	}{
		{"all", audit.QueryFilter{}, 4},
		{"admin only", audit.QueryFilter{Category: audit.CategoryAdmin}, 2},
		{"event type", audit.QueryFilter{EventType: audit.EventLoginFailedWrongPassword}, 1},
		{"since", audit.QueryFilter{StartTime: ptr(now.Add(-90 * time.Minute))}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := store.Query(ctx, tt.filter, paging.Page{Page: 1, Limit: 10})
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if total != tt.want {
				t.Errorf("total: got %d, want %d", total, tt.want)
			}
		})
	}

	page, total, err := store.Query(ctx, audit.QueryFilter{}, paging.Page{Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 4 || len(page) != 1 {
		t.Fatalf("page 2: got %d events (total %d)", len(page), total)
	}
	if page[0].EventType != audit.EventLoginSuccess {
		t.Errorf("expected oldest event last, got %q", page[0].EventType)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, et := range []string{
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedRoleMismatch,
		audit.EventLoginSuccess,
	} {
		e := audit.Event{Category: audit.CategoryAuth, EventType: et, Success: et == audit.EventLoginSuccess}
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	failed, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(failed) != 2 {
		t.Errorf("expected 2 failed logins, got %d", len(failed))
	}
}

func ptr[T any](v T) *T { return &v }

package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/jansethu/mysarkar/internal/app/store/audit"
	"github.com/jansethu/mysarkar/internal/app/system/auditlog"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var firstPage = paging.Page{Page: 1, Limit: 50}

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@example.com")
	logger.SchemeReviewed(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), true)
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int64
		wantLog int
	}{
		{auditlog.All, 1, 1},
		{auditlog.DB, 1, 0},
		{auditlog.Log, 0, 1},
		{auditlog.Off, 0, 0},
		{"", 1, 1},
	}
	for _, tt := range tests {
		t.Run("setting="+tt.setting, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zapcore.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: tt.setting, Admin: auditlog.Off})
			userID := primitive.NewObjectID()
			logger.LoginSuccess(ctx, httptest.NewRequest("POST", "/login", nil), userID, "a@example.com")

			_, total, err := store.Query(ctx, audit.QueryFilter{UserID: &userID}, firstPage)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if total != tt.wantDB {
				t.Errorf("stored events: got %d, want %d", total, tt.wantDB)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantLog {
				t.Errorf("zap entries: got %d, want %d", got, tt.wantLog)
			}
		})
	}
}

func TestLogger_CategorySettingsAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Admin: auditlog.DB})
	req := httptest.NewRequest("PATCH", "/", nil)
	actor := primitive.NewObjectID()

	logger.LoginFailedUserNotFound(ctx, req, "ghost@example.com")
	logger.UserVerification(ctx, req, actor, primitive.NewObjectID(), false)

	events, total, err := store.Query(ctx, audit.QueryFilter{}, firstPage)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected only the admin event, got %d", total)
	}
	if events[0].EventType != audit.EventUserVerificationRevoked {
		t.Errorf("event type: got %q", events[0].EventType)
	}
	if events[0].ActorID == nil || *events[0].ActorID != actor {
		t.Errorf("actor not recorded: %+v", events[0])
	}
}

func TestLogger_RecordsRequestContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.DB, Admin: auditlog.DB})

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	uid := primitive.NewObjectID()
	logger.LoginFailedWrongPassword(ctx, req, uid, "a@example.com")

	events, _, err := store.Query(ctx, audit.QueryFilter{UserID: &uid}, firstPage)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.IP != "203.0.113.7" {
		t.Errorf("IP: got %q", e.IP)
	}
	if e.UserAgent != "TestBrowser/1.0" {
		t.Errorf("UserAgent: got %q", e.UserAgent)
	}
	if e.Success || e.FailureReason != "wrong password" {
		t.Errorf("outcome: success=%v reason=%q", e.Success, e.FailureReason)
	}
}

func TestLogger_ApplicationStatusChanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Admin: auditlog.DB})
	applicant, appID := primitive.NewObjectID(), primitive.NewObjectID()
	logger.ApplicationStatusChanged(ctx, httptest.NewRequest("PATCH", "/", nil),
		primitive.NewObjectID(), applicant, appID, "approved", true)

	events, _, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventApplicationStatusChanged}, firstPage)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	d := events[0].Details
	if d["application_id"] != appID.Hex() || d["status"] != "approved" || d["notified"] != "true" {
		t.Errorf("details: %v", d)
	}
}

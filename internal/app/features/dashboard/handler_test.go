package dashboard_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jansethu/mysarkar/internal/app/features/dashboard"
	"github.com/jansethu/mysarkar/internal/app/store/audit"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *dashboard.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return dashboard.NewHandler(db, zap.NewNop())
}

func TestNewHandler(t *testing.T) {
	h := newTestHandler(t)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestStats(t *testing.T) {
	h := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, h.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAllScheme(ctx, "PM Kisan", "Farmers")
	fixtures.CreateCitizen(ctx, "Citizen", "citizen@example.com")
	fixtures.CreateOfficial(ctx, "Officer", "officer@example.com")

	rec := testutil.NewRecorder()
	h.Stats(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/stats", testutil.OfficialUser()))
	rec.AssertStatus(t, http.StatusOK)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["totalSchemes"] != float64(1) {
		t.Errorf("totalSchemes: got %v, want 1", body["totalSchemes"])
	}
	if body["totalUsers"] != float64(1) {
		t.Errorf("totalUsers: got %v, want 1", body["totalUsers"])
	}
	if body["approvalRate"] != "0%" {
		t.Errorf("approvalRate: got %v, want 0%%", body["approvalRate"])
	}
}

func TestRoutes_RoleGate(t *testing.T) {
	h := newTestHandler(t)
	tokens := auth.NewManager("test-secret", 0, zap.NewNop())
	router := dashboard.Routes(h, tokens)

	tests := []struct {
		name   string
		role   string
		status int
	}{
		{"citizen forbidden", models.RoleUser, http.StatusForbidden},
		{"ngo allowed", models.RoleNGO, http.StatusOK},
		{"official allowed", models.RoleGovtOfficial, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := tokens.Issue(primitive.NewObjectID().Hex(), tt.role)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			req := testutil.NewRequest(http.MethodGet, "/stats")
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/stats"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestAuditTrail(t *testing.T) {
	h := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	target := primitive.NewObjectID()
	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &target, Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, UserID: &target},
		{Category: audit.CategoryAdmin, EventType: audit.EventSchemeCreated, Success: true},
	}
	for _, e := range events {
		if err := h.Audit.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	tests := []struct {
		name  string
		path  string
		total float64
	}{
		{"all", "/audit", 3},
		{"by category", "/audit?category=auth", 2},
		{"by event type", "/audit?eventType=scheme_created", 1},
		{"by user", "/audit?userId=" + target.Hex(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.AuditTrail(rec, testutil.NewAuthenticatedRequest(http.MethodGet, tt.path, testutil.OfficialUser()))
			rec.AssertStatus(t, http.StatusOK)

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["total"] != tt.total {
				t.Errorf("total: got %v, want %v", body["total"], tt.total)
			}
		})
	}

	rec := testutil.NewRecorder()
	h.AuditTrail(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/audit?userId=nope", testutil.OfficialUser()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRoutes_AuditOfficialOnly(t *testing.T) {
	h := newTestHandler(t)
	tokens := auth.NewManager("test-secret", 0, zap.NewNop())
	router := dashboard.Routes(h, tokens)

	tests := []struct {
		role   string
		status int
	}{
		{models.RoleNGO, http.StatusForbidden},
		{models.RoleGovtOfficial, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			tok, err := tokens.Issue(primitive.NewObjectID().Hex(), tt.role)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			req := testutil.NewRequest(http.MethodGet, "/audit")
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}
}

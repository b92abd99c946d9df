package applications

import (
	"encoding/json"
	"net/http"
	"testing"

	notificationstore "github.com/jansethu/mysarkar/internal/app/store/notifications"
	"github.com/jansethu/mysarkar/internal/app/system/indexes"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func submitBody(id primitive.ObjectID) string {
	return `{"schemeId":"` + id.Hex() + `"}`
}

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	u := fixtures.CreateCitizen(ctx, "Applicant", "applicant@example.com")
	schemeID := fixtures.CreateAllScheme(ctx, "Pension", "Senior citizens")
	caller := testutil.FromUser(u)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", submitBody(schemeID)), caller))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Application submitted successfully")
	rec.AssertContains(t, `"status":"pending"`)
	rec.AssertContains(t, `"referenceId"`)

	rec = testutil.NewRecorder()
	h.Create(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", submitBody(schemeID)), caller))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Already applied to this scheme")

	got, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.AppliedSchemes) != 1 || got.AppliedSchemes[0].SchemeID != schemeID {
		t.Errorf("applied schemes = %+v", got.AppliedSchemes)
	}

	rec = testutil.NewRecorder()
	h.Create(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", `{}`), caller))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Scheme ID is required")

	rec = testutil.NewRecorder()
	h.Create(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", submitBody(primitive.NewObjectID())), caller))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestCreateAfterEligibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateCitizen(ctx, "Checked", "checked@example.com")
	schemeID := fixtures.CreateAllScheme(ctx, "Scholarship", "Students")
	caller := testutil.FromUser(u)

	rec := testutil.NewRecorder()
	h.CreateAfterEligibility(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/after-eligibility", submitBody(schemeID)), caller))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, "Eligibility check required first")

	if err := h.PreApps.Upsert(ctx, models.PreApplication{
		UserID:            u.ID,
		SchemeID:          schemeID,
		EligibilityStatus: models.EligibilityEligible,
		AIResponse:        models.AIResponse{Eligible: true, Score: 100},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rec = testutil.NewRecorder()
	h.CreateAfterEligibility(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/after-eligibility", submitBody(schemeID)), caller))
	rec.AssertStatus(t, http.StatusCreated)

	pre, err := h.PreApps.Get(ctx, u.ID, schemeID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !pre.ApprovedForApplication {
		t.Error("pre-application should be marked approved for application")
	}
}

func TestUpdateStatus_ApprovedNotifies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateCitizen(ctx, "Citizen", "citizen@example.com")
	official := fixtures.CreateOfficial(ctx, "Officer", "officer@gov.in")
	schemeID := fixtures.CreateAllScheme(ctx, "Ayushman Bharat", "Low income families")

	app, err := h.Applications.Create(ctx, u.ID, schemeID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := testutil.WithChiURLParam(
		testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/x/status", `{"status":"approved"}`), testutil.FromUser(official)),
		"id", app.ID.Hex())
	rec := testutil.NewRecorder()
	h.UpdateStatus(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Application status updated")

	notes, err := notificationstore.New(db).All(ctx, u.ID)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notes))
	}
	if want := "Your application for Ayushman Bharat has been approved!"; notes[0].Message != want {
		t.Errorf("notification = %q, want %q", notes[0].Message, want)
	}

	// approved is final
	rec = testutil.NewRecorder()
	req = testutil.WithChiURLParam(
		testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/x/status", `{"status":"rejected"}`), testutil.FromUser(official)),
		"id", app.ID.Hex())
	h.UpdateStatus(rec, req)
	rec.AssertStatus(t, http.StatusConflict)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateCitizen(ctx, "Citizen", "c2@example.com")
	schemeID := fixtures.CreateAllScheme(ctx, "Jan Dhan", "Unbanked adults")
	app, err := h.Applications.Create(ctx, u.ID, schemeID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	reviewer := testutil.OfficialUser()

	patch := func(id, body string) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(
			testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/x/status", body), reviewer), "id", id)
		rec := testutil.NewRecorder()
		h.UpdateStatus(rec, req)
		return rec
	}

	patch(app.ID.Hex(), `{"status":"under_review"}`).AssertStatus(t, http.StatusOK)

	rec := patch(app.ID.Hex(), `{"status":"rejected","notes":"Income proof <b>missing</b>"}`)
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Notification *models.Notification `json:"notification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Notification == nil {
		t.Fatal("expected a notification for a rejection")
	}
	if want := "Your application for Jan Dhan has been rejected. Income proof missing"; body.Notification.Message != want {
		t.Errorf("notification = %q, want %q", body.Notification.Message, want)
	}

	patch(app.ID.Hex(), `{"status":"bogus"}`).AssertStatus(t, http.StatusBadRequest)
	patch(primitive.NewObjectID().Hex(), `{"status":"approved"}`).AssertStatus(t, http.StatusNotFound)
	patch(app.ID.Hex(), `{}`).AssertStatus(t, http.StatusBadRequest)
}

func TestList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateCitizen(ctx, "Listed", "listed@example.com")
	s1 := fixtures.CreateAllScheme(ctx, "Scheme One", "x")
	s2 := fixtures.CreateAllScheme(ctx, "Scheme Two", "y")
	for _, s := range []primitive.ObjectID{s1, s2} {
		if _, err := h.Applications.Create(ctx, u.ID, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rec := testutil.NewRecorder()
	h.List(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/?status=pending", testutil.OfficialUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":2`)
	rec.AssertContains(t, "listed@example.com")
	rec.AssertContains(t, "Scheme Two")

	rec = testutil.NewRecorder()
	h.List(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/?status=weird", testutil.OfficialUser()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestDecisionMessage(t *testing.T) {
	tests := []struct {
		status, notes, want string
	}{
		{models.StatusApproved, "ignored", "Your application for X has been approved!"},
		{models.StatusRejected, "", "Your application for X has been rejected."},
		{models.StatusRejected, "Missing docs", "Your application for X has been rejected. Missing docs"},
	}
	for _, tt := range tests {
		if got := decisionMessage(tt.status, "X", tt.notes); got != tt.want {
			t.Errorf("decisionMessage(%q, %q) = %q, want %q", tt.status, tt.notes, got, tt.want)
		}
	}
}

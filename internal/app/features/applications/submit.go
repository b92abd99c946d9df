// internal/app/features/applications/submit.go
package applications

import (
	"context"
	"errors"
	"net/http"
	"strings"

	applicationstore "github.com/jansethu/mysarkar/internal/app/store/applications"
	preappstore "github.com/jansethu/mysarkar/internal/app/store/preapplications"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type submitInput struct {
	SchemeID string `json:"schemeId"`
}

// readSubmit decodes {schemeId} and answers 400 when it is absent or malformed.
func readSubmit(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	var in submitInput
	_ = respond.Decode(r, &in)
	raw := strings.TrimSpace(in.SchemeID)
	if raw == "" {
		respond.Message(w, http.StatusBadRequest, "Scheme ID is required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid scheme ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// Create handles POST /applications {schemeId}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	schemeID, ok := readSubmit(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit application")
	defer cancel()

	h.submit(ctx, w, uid, schemeID, "Failed to submit application")
}

// CreateAfterEligibility handles POST /applications/after-eligibility. It
// only accepts schemes the caller passed an eligibility check for.
func (h *Handler) CreateAfterEligibility(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	schemeID, ok := readSubmit(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit application after eligibility")
	defer cancel()

	_, err := h.PreApps.GetEligible(ctx, uid, schemeID)
	if errors.Is(err, preappstore.ErrNotFound) {
		respond.Message(w, http.StatusForbidden, "Eligibility check required first")
		return
	}
	if err != nil {
		h.Log.Error("after-eligibility: pre-application lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Application failed", err)
		return
	}

	if !h.submit(ctx, w, uid, schemeID, "Application failed") {
		return
	}
	if err := h.PreApps.MarkApproved(ctx, uid, schemeID); err != nil {
		h.Log.Warn("after-eligibility: mark approved failed", zap.Error(err))
	}
}

// submit creates the application, mirrors it on the user and writes the
// response. It reports whether the application was created.
func (h *Handler) submit(ctx context.Context, w http.ResponseWriter, uid, schemeID primitive.ObjectID, failMsg string) bool {
	exists, err := h.Schemes.Exists(ctx, schemeID)
	if err != nil {
		h.Log.Error("submit application: scheme lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, failMsg, err)
		return false
	}
	if !exists {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return false
	}

	app, err := h.Applications.Create(ctx, uid, schemeID)
	if errors.Is(err, applicationstore.ErrAlreadyApplied) {
		respond.Message(w, http.StatusBadRequest, "Already applied to this scheme")
		return false
	}
	if err != nil {
		h.Log.Error("submit application failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, failMsg, err)
		return false
	}

	if err := h.Users.AddAppliedScheme(ctx, uid, models.AppliedScheme{
		SchemeID:      schemeID,
		AppliedAt:     app.AppliedAt,
		Status:        app.Status,
		ApplicationID: app.ID.Hex(),
	}); err != nil && !errors.Is(err, userstore.ErrNotFound) {
		h.Log.Warn("submit application: applied_schemes update failed", zap.Error(err))
	}

	h.Log.Info("application submitted",
		zap.String("application_id", app.ID.Hex()),
		zap.String("reference_id", app.ReferenceID),
		zap.String("user_id", uid.Hex()))
	respond.Created(w, map[string]any{
		"message":     "Application submitted successfully",
		"application": app,
	})
	return true
}

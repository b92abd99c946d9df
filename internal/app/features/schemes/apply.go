// internal/app/features/schemes/apply.go
package schemes

import (
	"errors"
	"net/http"

	applicationstore "github.com/jansethu/mysarkar/internal/app/store/applications"
	schemestore "github.com/jansethu/mysarkar/internal/app/store/schemes"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.uber.org/zap"
)

// Apply handles POST /schemes/{id}/apply.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, ok := schemeID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "apply to scheme")
	defer cancel()

	if _, err := h.Schemes.GetByID(ctx, id); err != nil {
		if errors.Is(err, schemestore.ErrNotFound) {
			respond.Message(w, http.StatusNotFound, "Scheme not found")
			return
		}
		h.Log.Error("apply: scheme lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to apply", err)
		return
	}

	app, err := h.Applications.Create(ctx, uid, id)
	if errors.Is(err, applicationstore.ErrAlreadyApplied) {
		respond.Message(w, http.StatusBadRequest, "Already applied to this scheme")
		return
	}
	if err != nil {
		h.Log.Error("apply: create application failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to apply", err)
		return
	}

	if err := h.Users.AddAppliedScheme(ctx, uid, models.AppliedScheme{
		SchemeID:      id,
		AppliedAt:     app.AppliedAt,
		Status:        app.Status,
		ApplicationID: app.ID.Hex(),
	}); err != nil && !errors.Is(err, userstore.ErrNotFound) {
		h.Log.Warn("apply: applied_schemes update failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}

	respond.OK(w, map[string]any{
		"message":     "Application submitted successfully",
		"application": app,
	})
}

// AddFavorite handles POST /schemes/{id}/favorite.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.favorite(w, r, true)
}

// RemoveFavorite handles DELETE /schemes/{id}/favorite.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.favorite(w, r, false)
}

func (h *Handler) favorite(w http.ResponseWriter, r *http.Request, add bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, ok := schemeID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "favorite scheme")
	defer cancel()

	var err error
	msg, failMsg := "Added to favorites", "Failed to add favorite"
	if add {
		err = h.Users.AddFavorite(ctx, uid, id)
	} else {
		msg, failMsg = "Removed from favorites", "Failed to remove favorite"
		err = h.Users.RemoveFavorite(ctx, uid, id)
	}
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("favorite update failed", zap.Error(err), zap.Bool("add", add))
		respond.Error(w, http.StatusInternalServerError, failMsg, err)
		return
	}
	respond.OK(w, map[string]any{"message": msg})
}

// internal/app/features/notifications/notifications.go
package notifications

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	notificationstore "github.com/jansethu/mysarkar/internal/app/store/notifications"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Recent handles GET /notification/recent?limit=5. The body is a bare
// array, newest first.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	limit := paging.Parse(r, notificationstore.DefaultRecent).Limit

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "recent notifications")
	defer cancel()

	list, err := h.Notifications.Recent(ctx, uid, limit)
	if err != nil {
		h.Log.Error("recent notifications failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch notifications", err)
		return
	}
	respond.OK(w, list)
}

// All handles GET /notification/all.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "all notifications")
	defer cancel()

	list, err := h.Notifications.All(ctx, uid)
	if err != nil {
		h.Log.Error("all notifications failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch notifications", err)
		return
	}
	respond.OK(w, list)
}

// Get handles GET /notification/{id}. Notifications of other users are
// reported as missing.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusNotFound, "Notification not found")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get notification")
	defer cancel()

	n, err := h.Notifications.GetForUser(ctx, id, uid)
	if errors.Is(err, notificationstore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		h.Log.Error("get notification failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch notification", err)
		return
	}
	respond.OK(w, n)
}

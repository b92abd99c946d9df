// internal/app/features/applications/review.go
package applications

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	applicationstore "github.com/jansethu/mysarkar/internal/app/store/applications"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/htmlsanitize"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// schemeRef is the scheme side of a listed application.
type schemeRef struct {
	ID         primitive.ObjectID `json:"id"`
	SchemeName string             `json:"schemeName"`
}

// applicationView is an Application with user and scheme expanded.
// Unresolvable references stay as bare ids.
type applicationView struct {
	models.Application
	User       any `json:"user"`
	Scheme     any `json:"scheme"`
	ReviewedBy any `json:"reviewedBy,omitempty"`
}

// List handles GET /applications?page=&limit=&status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.DefaultLimit)
	status := query.Get(r, "status")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list applications")
	defer cancel()

	apps, total, err := h.Applications.List(ctx, status, pg)
	if errors.Is(err, applicationstore.ErrBadStatus) {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("list applications failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch applications", err)
		return
	}

	views, err := h.expand(ctx, apps)
	if err != nil {
		h.Log.Error("list applications: expand failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch applications", err)
		return
	}

	respond.OK(w, map[string]any{
		"applications": views,
		"totalPages":   paging.TotalPages(total, pg.Limit),
		"currentPage":  pg.Page,
		"total":        total,
	})
}

// expand resolves users, reviewers and scheme names for apps. The user and
// scheme lookups run concurrently.
func (h *Handler) expand(ctx context.Context, apps []models.Application) ([]applicationView, error) {
	var userIDs, schemeIDs []primitive.ObjectID
	for _, a := range apps {
		userIDs = append(userIDs, a.UserID)
		if a.ReviewedBy != nil {
			userIDs = append(userIDs, *a.ReviewedBy)
		}
		schemeIDs = append(schemeIDs, a.SchemeID)
	}

	var (
		people map[primitive.ObjectID]userstore.Summary
		names  map[primitive.ObjectID]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		people, err = h.Users.Summaries(gctx, userIDs)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = h.Schemes.Names(gctx, schemeIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]applicationView, 0, len(apps))
	for _, a := range apps {
		v := applicationView{Application: a, User: a.UserID, Scheme: a.SchemeID}
		if p, ok := people[a.UserID]; ok {
			v.User = p
		}
		if n, ok := names[a.SchemeID]; ok {
			v.Scheme = schemeRef{ID: a.SchemeID, SchemeName: n}
		}
		if a.ReviewedBy != nil {
			v.ReviewedBy = *a.ReviewedBy
			if p, ok := people[*a.ReviewedBy]; ok {
				v.ReviewedBy = userstore.Summary{ID: p.ID, Name: p.Name, Email: p.Email}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

type statusInput struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// decisionMessage is the notification text for a final decision.
func decisionMessage(status, schemeName, notes string) string {
	if status == models.StatusApproved {
		return fmt.Sprintf("Your application for %s has been approved!", schemeName)
	}
	return strings.TrimSpace(fmt.Sprintf("Your application for %s has been rejected. %s", schemeName, notes))
}

// UpdateStatus handles PATCH /applications/{id}/status {status, notes}.
// Approvals and rejections notify the applicant. The notification is
// written after the status; if it fails the request fails with the new
// status already stored.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	_, reviewer, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusNotFound, "Application not found")
		return
	}

	var in statusInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		respond.Message(w, http.StatusBadRequest, "Status is required")
		return
	}
	notes := htmlsanitize.StripTags(strings.TrimSpace(in.Notes))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update application status")
	defer cancel()

	app, err := h.Applications.UpdateStatus(ctx, id, in.Status, notes, reviewer)
	switch {
	case errors.Is(err, applicationstore.ErrNotFound):
		respond.Message(w, http.StatusNotFound, "Application not found")
		return
	case errors.Is(err, applicationstore.ErrBadStatus):
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, applicationstore.ErrInvalidTransition):
		respond.Error(w, http.StatusConflict, "Invalid status transition", err)
		return
	case err != nil:
		h.Log.Error("update application status failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to update application", err)
		return
	}

	if err := h.Users.SetAppliedStatus(ctx, app.UserID, app.SchemeID, app.Status); err != nil {
		h.Log.Warn("applied_schemes status mirror failed",
			zap.Error(err), zap.String("application_id", app.ID.Hex()))
	}

	var notification *models.Notification
	if app.Status == models.StatusApproved || app.Status == models.StatusRejected {
		names, err := h.Schemes.Names(ctx, []primitive.ObjectID{app.SchemeID})
		if err != nil {
			h.Log.Error("update application status: scheme lookup failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "Failed to update application", err)
			return
		}
		n, err := h.Notifications.Create(ctx, app.UserID, decisionMessage(app.Status, names[app.SchemeID], notes))
		if err != nil {
			h.Log.Error("update application status: notification failed",
				zap.Error(err), zap.String("application_id", app.ID.Hex()))
			respond.Error(w, http.StatusInternalServerError, "Failed to update application", err)
			return
		}
		notification = &n
	}

	h.Log.Info("application reviewed",
		zap.String("application_id", app.ID.Hex()),
		zap.String("status", app.Status),
		zap.String("by", reviewer.Hex()))
	h.Audit.ApplicationStatusChanged(ctx, r, reviewer, app.UserID, app.ID, app.Status, notification != nil)
	respond.OK(w, map[string]any{
		"message":      "Application status updated",
		"application":  app,
		"notification": notification,
	})
}

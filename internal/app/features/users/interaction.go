// internal/app/features/users/interaction.go
package users

import (
	"errors"
	"net/http"

	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/htmlsanitize"
	"github.com/jansethu/mysarkar/internal/app/system/inputval"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.uber.org/zap"
)

type interactionInput struct {
	Type string `json:"type" validate:"required,max=50" label:"Type"`
	Text string `json:"text" validate:"max=2000" label:"Text"`
}

// SaveInteraction handles POST /users/interaction, appending one search
// or chat event to the caller's history.
func (h *Handler) SaveInteraction(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var in interactionInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Type = htmlsanitize.StripTags(in.Type)
	in.Text = htmlsanitize.StripTags(in.Text)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Message(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save interaction")
	defer cancel()

	err := h.Users.AppendInteraction(ctx, uid, models.Interaction{Type: in.Type, Text: in.Text})
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("save interaction failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to save interaction", err)
		return
	}
	respond.Message(w, http.StatusOK, "Interaction saved")
}

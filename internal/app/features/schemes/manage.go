// internal/app/features/schemes/manage.go
package schemes

import (
	"context"
	"errors"
	"io"
	"net/http"

	schemestore "github.com/jansethu/mysarkar/internal/app/store/schemes"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/embedding"
	"github.com/jansethu/mysarkar/internal/app/system/inputval"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.uber.org/zap"
)

type createInput struct {
	SourceURL   string       `json:"sourceUrl" validate:"omitempty,httpurl" label:"Source URL"`
	Name        string       `json:"name" validate:"required,max=300" label:"Name"`
	Acronym     string       `json:"acronym" validate:"max=50" label:"Acronym"`
	Tags        []string     `json:"tags"`
	State       string       `json:"state" validate:"max=100" label:"State"`
	Level       string       `json:"level" validate:"omitempty,oneof=Central State Other" label:"Level"`
	Overview    string       `json:"overview"`
	Eligibility string       `json:"eligibility"`
	Benefits    string       `json:"benefits"`
	Documents   string       `json:"documents"`
	Apply       string       `json:"apply"`
	FAQ         []models.FAQ `json:"faq" validate:"omitempty,dive" label:"FAQ"`
	IsActive    *bool        `json:"isActive"`
	IsFeatured  bool         `json:"isFeatured"`
	Priority    string       `json:"priority" validate:"omitempty,oneof=low medium high critical" label:"Priority"`
}

// embed runs the embedder under the LLM timeout, detached from the DB
// deadline of the request.
func (h *Handler) embed(r *http.Request, sc models.Scheme) []float32 {
	ctx, cancel := timeouts.WithTimeout(context.WithoutCancel(r.Context()), timeouts.LLM(), h.Log, "embed scheme")
	defer cancel()
	return h.Embed.EmbedScheme(ctx, embedding.SchemeFields(sc))
}

// Create handles POST /schemes. The embedding is computed before the insert;
// an embedding failure still saves the scheme with an empty vector.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var in createInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Message(w, http.StatusBadRequest, res.First())
		return
	}

	sc := models.Scheme{
		SourceURL:   in.SourceURL,
		Name:        in.Name,
		Acronym:     in.Acronym,
		Tags:        in.Tags,
		State:       in.State,
		Level:       in.Level,
		Overview:    in.Overview,
		Eligibility: in.Eligibility,
		Benefits:    in.Benefits,
		Documents:   in.Documents,
		Apply:       in.Apply,
		FAQ:         in.FAQ,
		IsActive:    in.IsActive == nil || *in.IsActive,
		IsFeatured:  in.IsFeatured,
		Priority:    in.Priority,
		CreatedBy:   &uid,
	}
	sc.Embedding = h.embed(r, sc)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create scheme")
	defer cancel()

	created, err := h.Schemes.Create(ctx, sc)
	switch {
	case errors.Is(err, schemestore.ErrDuplicateSourceURL), errors.Is(err, schemestore.ErrInvalid):
		respond.Error(w, http.StatusBadRequest, "Failed to create scheme", err)
		return
	case err != nil:
		h.Log.Error("create scheme failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to create scheme", err)
		return
	}

	h.Log.Info("scheme created",
		zap.String("scheme_id", created.ID.Hex()),
		zap.String("by", uid.Hex()),
		zap.Int("embedding_dims", len(created.Embedding)))
	h.Audit.SchemeCreated(ctx, r, uid, created.ID, created.Name)
	respond.Created(w, map[string]any{
		"message": "Scheme created successfully",
		"scheme":  created,
	})
}

// Update handles PUT /schemes/{id}. Only supplied fields change; the
// embedding is regenerated when a textual field actually changed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, ok := schemeID(w, r)
	if !ok {
		return
	}

	var upd schemestore.Update
	if err := respond.Decode(r, &upd); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.FAQ != nil {
		if res := inputval.Validate(struct {
			FAQ []models.FAQ `validate:"dive"`
		}{*upd.FAQ}); res.HasErrors() {
			respond.Message(w, http.StatusBadRequest, res.First())
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update scheme")
	defer cancel()

	prev, err := h.Schemes.GetByID(ctx, id)
	if errors.Is(err, schemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("update scheme: load failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to update scheme", err)
		return
	}

	sc, err := h.Schemes.Update(ctx, id, upd, uid)
	switch {
	case errors.Is(err, schemestore.ErrNotFound):
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	case errors.Is(err, schemestore.ErrDuplicateSourceURL), errors.Is(err, schemestore.ErrInvalid):
		respond.Error(w, http.StatusBadRequest, "Failed to update scheme", err)
		return
	case err != nil:
		h.Log.Error("update scheme failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to update scheme", err)
		return
	}

	if upd.TextChanged(*prev) {
		vec := h.embed(r, *sc)
		// The embed may outlast ctx; the write gets its own deadline.
		wctx, wcancel := timeouts.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short(), h.Log, "store scheme embedding")
		err := h.Schemes.SetEmbedding(wctx, id, vec)
		wcancel()
		if err != nil {
			h.Log.Warn("embedding regeneration failed", zap.Error(err), zap.String("scheme_id", id.Hex()))
		} else {
			sc.Embedding = vec
		}
	}

	respond.OK(w, map[string]any{
		"message": "Scheme updated successfully",
		"scheme":  sc,
	})
}

// Delete handles DELETE /schemes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	_, uid, _ := authz.UserCtx(r)
	id, ok := schemeID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete scheme")
	defer cancel()

	err := h.Schemes.Delete(ctx, id)
	if errors.Is(err, schemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("delete scheme failed", zap.Error(err), zap.String("scheme_id", id.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to delete scheme", err)
		return
	}
	h.Audit.SchemeDeleted(ctx, r, uid, id)
	respond.OK(w, map[string]any{"message": "Scheme deleted successfully"})
}

type approveInput struct {
	Approve bool `json:"approve"`
}

// Approve handles PATCH /schemes/{id}/approve {approve}.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, ok := schemeID(w, r)
	if !ok {
		return
	}

	var in approveInput
	if err := respond.Decode(r, &in); err != nil && !errors.Is(err, io.EOF) {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "approve scheme")
	defer cancel()

	sc, err := h.Schemes.SetApproval(ctx, id, in.Approve, uid)
	if errors.Is(err, schemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("approve scheme failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to update scheme status", err)
		return
	}

	h.Audit.SchemeReviewed(ctx, r, uid, id, in.Approve)
	verb := "rejected"
	if in.Approve {
		verb = "approved"
	}
	respond.OK(w, map[string]any{
		"message": "Scheme " + verb + " successfully",
		"scheme":  sc,
	})
}

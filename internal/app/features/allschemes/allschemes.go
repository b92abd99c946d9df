// internal/app/features/allschemes/allschemes.go
package allschemes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	allschemestore "github.com/jansethu/mysarkar/internal/app/store/allschemes"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func docID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// List handles GET /all_schemes?page=&limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.DefaultLimit)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list all_schemes")
	defer cancel()

	docs, total, err := h.Schemes.List(ctx, pg)
	if err != nil {
		h.Log.Error("list all_schemes failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch schemes", err)
		return
	}
	respond.OK(w, map[string]any{
		"schemes":     docs,
		"total":       total,
		"totalPages":  paging.TotalPages(total, pg.Limit),
		"currentPage": pg.Page,
	})
}

// Get handles GET /all_schemes/{id}. The document is returned as stored.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get all_scheme")
	defer cancel()

	doc, err := h.Schemes.GetByID(ctx, id)
	if errors.Is(err, allschemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("get all_scheme failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch scheme", err)
		return
	}
	respond.OK(w, doc)
}

func decodeDoc(w http.ResponseWriter, r *http.Request, failMsg string) (models.AllScheme, bool) {
	var doc models.AllScheme
	if err := respond.Decode(r, &doc); err != nil {
		respond.Error(w, http.StatusBadRequest, failMsg, err)
		return nil, false
	}
	if len(doc) == 0 {
		respond.Message(w, http.StatusBadRequest, failMsg)
		return nil, false
	}
	return doc, true
}

// Create handles POST /all_schemes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDoc(w, r, "Failed to create scheme")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create all_scheme")
	defer cancel()

	created, err := h.Schemes.Create(ctx, doc)
	if err != nil {
		h.Log.Error("create all_scheme failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to create scheme", err)
		return
	}
	respond.Created(w, map[string]any{
		"message": "Scheme created successfully",
		"scheme":  created,
	})
}

// Update handles PUT /all_schemes/{id}; supplied keys replace stored ones.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}
	doc, ok := decodeDoc(w, r, "Failed to update scheme")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update all_scheme")
	defer cancel()

	updated, err := h.Schemes.Update(ctx, id, doc)
	if errors.Is(err, allschemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("update all_scheme failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to update scheme", err)
		return
	}
	h.Cache.Invalidate(ctx, id.Hex())
	respond.OK(w, map[string]any{
		"message": "Scheme updated successfully",
		"scheme":  updated,
	})
}

// Delete handles DELETE /all_schemes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete all_scheme")
	defer cancel()

	err := h.Schemes.Delete(ctx, id)
	if errors.Is(err, allschemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("delete all_scheme failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to delete scheme", err)
		return
	}
	h.Cache.Invalidate(ctx, id.Hex())
	respond.OK(w, map[string]any{"message": "Scheme deleted successfully"})
}

// internal/app/features/schemes/list.go
package schemes

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	schemestore "github.com/jansethu/mysarkar/internal/app/store/schemes"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/limits"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// schemeID reads the {id} URL param. A malformed id cannot match any
// document, so it answers 404 like a missing one.
func schemeID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// List handles GET /schemes.
//
//	?page=1&limit=10&isActive=true&state=Kerala&category=health&tags=a,b
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.DefaultLimit)

	f := schemestore.Filter{
		State:    query.Get(r, "state"),
		Category: query.Get(r, "category"),
		Tags:     splitTags(query.Get(r, "tags")),
	}
	if v := query.Get(r, "isActive"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list schemes")
	defer cancel()

	schemes, total, err := h.Schemes.List(ctx, f, pg)
	if err != nil {
		h.Log.Error("list schemes failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch schemes", err)
		return
	}

	respond.OK(w, map[string]any{
		"schemes":     schemes,
		"totalPages":  paging.TotalPages(total, pg.Limit),
		"currentPage": pg.Page,
		"total":       total,
	})
}

// Get handles GET /schemes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := schemeID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get scheme")
	defer cancel()

	sc, err := h.Schemes.GetByID(ctx, id)
	if errors.Is(err, schemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("get scheme failed", zap.Error(err), zap.String("scheme_id", id.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch scheme", err)
		return
	}

	body := map[string]any{"scheme": sc}

	// Attach who created and last modified the scheme when those accounts exist.
	var ids []primitive.ObjectID
	if sc.CreatedBy != nil {
		ids = append(ids, *sc.CreatedBy)
	}
	if sc.LastModifiedBy != nil {
		ids = append(ids, *sc.LastModifiedBy)
	}
	if len(ids) > 0 {
		people, err := h.Users.Summaries(ctx, ids)
		if err != nil {
			h.Log.Warn("scheme author lookup failed", zap.Error(err))
		} else {
			if sc.CreatedBy != nil {
				if p, ok := people[*sc.CreatedBy]; ok {
					body["createdBy"] = p
				}
			}
			if sc.LastModifiedBy != nil {
				if p, ok := people[*sc.LastModifiedBy]; ok {
					body["lastModifiedBy"] = p
				}
			}
		}
	}

	respond.OK(w, body)
}

// Eligible handles GET /schemes/eligible/me. The caller's profile state wins
// over ?state; ?keyword narrows by full-text match.
func (h *Handler) Eligible(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "eligible schemes")
	defer cancel()

	state := ""
	u, err := h.Users.GetByID(ctx, uid)
	switch {
	case err == nil:
		state = u.Location.State
	case !errors.Is(err, userstore.ErrNotFound):
		h.Log.Error("eligible schemes: user lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch eligible schemes", err)
		return
	}
	if state == "" {
		state = query.Get(r, "state")
	}

	schemes, err := h.Schemes.Eligible(ctx, state, query.Get(r, "keyword"))
	if err != nil {
		h.Log.Error("eligible schemes failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch eligible schemes", err)
		return
	}
	respond.OK(w, map[string]any{"schemes": schemes})
}

type searchInput struct {
	Query string `json:"query"`
}

// SearchSchemes handles POST /schemes/search with a semantic query.
func (h *Handler) SearchSchemes(w http.ResponseWriter, r *http.Request) {
	var in searchInput
	_ = respond.Decode(r, &in)
	q := strings.TrimSpace(in.Query)
	if q == "" {
		respond.Message(w, http.StatusBadRequest, "Query parameter required")
		return
	}
	if utf8.RuneCountInString(q) > limits.MaxSearchQuery {
		respond.Message(w, http.StatusBadRequest, "Query is too long")
		return
	}
	if h.Search == nil {
		respond.Message(w, http.StatusServiceUnavailable, "Semantic search is not configured")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.LLM(), h.Log, "search schemes")
	defer cancel()

	results, err := h.Search.Search(ctx, q)
	if err != nil {
		h.Log.Error("scheme search failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to search schemes", err)
		return
	}
	respond.OK(w, map[string]any{"results": results})
}

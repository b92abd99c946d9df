// internal/app/features/posts/posts.go
package posts

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	poststore "github.com/jansethu/mysarkar/internal/app/store/posts"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/htmlsanitize"
	"github.com/jansethu/mysarkar/internal/app/system/inputval"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func postID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusNotFound, "Post not found", nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

// viewer returns the caller's id, or NilObjectID when anonymous.
func viewer(r *http.Request) primitive.ObjectID {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		return primitive.NilObjectID
	}
	return uid
}

// List handles GET /posts?page=&limit=&tags=a,b&sortBy=recent|popular.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.DefaultLimit)
	f := poststore.ListFilter{SortBy: query.Get(r, "sortBy")}
	if tags := query.Get(r, "tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list posts")
	defer cancel()

	posts, total, err := h.Posts.List(ctx, f, pg)
	if err != nil {
		h.Log.Error("list posts failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error fetching posts", err)
		return
	}
	views, err := h.views(ctx, posts, viewer(r))
	if err != nil {
		h.Log.Error("list posts: author lookup failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error fetching posts", err)
		return
	}

	respond.OK(w, map[string]any{
		"success":     true,
		"posts":       views,
		"totalPages":  paging.TotalPages(total, pg.Limit),
		"currentPage": pg.Page,
		"total":       total,
	})
}

// All handles GET /posts/all: every post, inactive ones included.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "all posts")
	defer cancel()

	posts, err := h.Posts.All(ctx)
	if err != nil {
		h.Log.Error("all posts failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error fetching all posts", err)
		return
	}
	respond.OK(w, map[string]any{"posts": posts})
}

// Get handles GET /posts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get post")
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if errors.Is(err, poststore.ErrNotFound) {
		respond.Fail(w, http.StatusNotFound, "Post not found", nil)
		return
	}
	if err != nil {
		h.Log.Error("get post failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error fetching post", err)
		return
	}
	views, err := h.views(ctx, []models.Post{*p}, viewer(r))
	if err != nil {
		h.Log.Error("get post: author lookup failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error fetching post", err)
		return
	}
	respond.OK(w, map[string]any{"success": true, "post": views[0]})
}

type createInput struct {
	Title   string   `json:"title" validate:"required,max=200" label:"Title"`
	Content string   `json:"content" validate:"required,max=2000" label:"Content"`
	Tags    []string `json:"tags" validate:"omitempty,dive,max=50" label:"Tag"`
	Scheme  string   `json:"scheme" validate:"omitempty,objectid" label:"Scheme"`
}

// Create handles POST /posts. Title and tags lose all markup; the body
// keeps safe formatting.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "Access token required", nil)
		return
	}

	var in createInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	in.Title = htmlsanitize.StripTags(in.Title)
	in.Content = htmlsanitize.Sanitize(in.Content)
	for i, t := range in.Tags {
		in.Tags[i] = htmlsanitize.StripTags(t)
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Fail(w, http.StatusBadRequest, res.First(), nil)
		return
	}

	p := models.Post{UserID: uid, Title: in.Title, Content: in.Content, Tags: in.Tags}
	if in.Scheme != "" {
		sid, _ := primitive.ObjectIDFromHex(in.Scheme)
		p.SchemeID = &sid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create post")
	defer cancel()

	created, err := h.Posts.Create(ctx, p)
	if err != nil {
		h.Log.Error("create post failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error creating post", err)
		return
	}
	views, err := h.views(ctx, []models.Post{created}, uid)
	if err != nil {
		h.Log.Warn("create post: author lookup failed", zap.Error(err))
		respond.Created(w, map[string]any{"success": true, "message": "Post created successfully", "post": created})
		return
	}
	respond.Created(w, map[string]any{
		"success": true,
		"message": "Post created successfully",
		"post":    views[0],
	})
}

// ToggleLike handles POST /posts/{id}/like.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "Access token required", nil)
		return
	}
	id, ok := postID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "toggle like")
	defer cancel()

	liked, count, err := h.Posts.ToggleLike(ctx, id, uid)
	if errors.Is(err, poststore.ErrNotFound) {
		respond.Fail(w, http.StatusNotFound, "Post not found", nil)
		return
	}
	if err != nil {
		h.Log.Error("toggle like failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error toggling like", err)
		return
	}

	msg := "Post unliked"
	if liked {
		msg = "Post liked"
	}
	respond.OK(w, map[string]any{
		"success":   true,
		"message":   msg,
		"likeCount": count,
		"isLiked":   liked,
	})
}

type commentInput struct {
	Content string `json:"content" validate:"required,max=500" label:"Comment"`
}

// AddComment handles POST /posts/{id}/comment.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "Access token required", nil)
		return
	}
	id, ok := postID(w, r)
	if !ok {
		return
	}

	var in commentInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	in.Content = htmlsanitize.Sanitize(in.Content)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Fail(w, http.StatusBadRequest, res.First(), nil)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add comment")
	defer cancel()

	c, err := h.Posts.AddComment(ctx, id, uid, in.Content)
	if errors.Is(err, poststore.ErrNotFound) {
		respond.Fail(w, http.StatusNotFound, "Post not found", nil)
		return
	}
	if err != nil {
		h.Log.Error("add comment failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error adding comment", err)
		return
	}

	view := commentView{Comment: c, User: uid}
	if people, err := h.Users.Summaries(ctx, []primitive.ObjectID{uid}); err == nil {
		view.User = lookup(people, uid)
	}
	respond.Created(w, map[string]any{
		"success": true,
		"message": "Comment added successfully",
		"comment": view,
	})
}

// Delete handles DELETE /posts/{id}. Authors may delete their own posts;
// govt_officials may delete any post.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete post")
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if errors.Is(err, poststore.ErrNotFound) {
		respond.Fail(w, http.StatusNotFound, "Post not found", nil)
		return
	}
	if err != nil {
		h.Log.Error("delete post: load failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error deleting post", err)
		return
	}
	if !authz.CanModerate(r, p.UserID) {
		respond.Fail(w, http.StatusForbidden, "Not authorized to delete this post", nil)
		return
	}

	if err := h.Posts.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, poststore.ErrNotFound) {
			respond.Fail(w, http.StatusNotFound, "Post not found", nil)
			return
		}
		h.Log.Error("delete post failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error deleting post", err)
		return
	}
	respond.OK(w, map[string]any{"success": true, "message": "Post deleted successfully"})
}

// TrendingTags handles GET /posts/trending-tags.
func (h *Handler) TrendingTags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "trending tags")
	defer cancel()

	tags, err := h.Posts.TrendingTags(ctx, poststore.TrendingLimit)
	if err != nil {
		h.Log.Error("trending tags failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "Error fetching trending tags", err)
		return
	}
	respond.OK(w, map[string]any{"success": true, "tags": tags})
}

// internal/app/features/posts/view.go
package posts

import (
	"context"

	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentView struct {
	models.Comment
	User any `json:"user"`
}

// postView is a Post with authors expanded and per-viewer metadata.
type postView struct {
	models.Post
	User         any           `json:"user"`
	Comments     []commentView `json:"comments"`
	LikeCount    int           `json:"likeCount"`
	CommentCount int           `json:"commentCount"`
	IsLikedBy    bool          `json:"isLikedBy"`
}

// author is the public shape of a post or comment author.
type author struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func lookup(people map[primitive.ObjectID]userstore.Summary, id primitive.ObjectID) any {
	if p, ok := people[id]; ok {
		return author{ID: p.ID, Name: p.Name, Email: p.Email}
	}
	return id
}

// views expands posts for viewer. viewer is NilObjectID for anonymous reads.
func (h *Handler) views(ctx context.Context, posts []models.Post, viewer primitive.ObjectID) ([]postView, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		add(p.UserID)
		for _, c := range p.Comments {
			add(c.UserID)
		}
	}

	people, err := h.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		comments := make([]commentView, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, commentView{Comment: c, User: lookup(people, c.UserID)})
		}
		out = append(out, postView{
			Post:         p,
			User:         lookup(people, p.UserID),
			Comments:     comments,
			LikeCount:    len(p.Likes),
			CommentCount: len(p.Comments),
			IsLikedBy:    !viewer.IsZero() && p.IsLikedBy(viewer),
		})
	}
	return out, nil
}

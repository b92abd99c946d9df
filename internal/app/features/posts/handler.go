// internal/app/features/posts/handler.go
package posts

import (
	poststore "github.com/jansethu/mysarkar/internal/app/store/posts"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the community forum endpoints. Responses carry a
// "success" flag alongside the payload.
type Handler struct {
	Posts *poststore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Posts: poststore.New(db),
		Users: userstore.New(db),
		Log:   logger,
	}
}

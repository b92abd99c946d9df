// internal/app/features/allschemes/handler.go
package allschemes

import (
	allschemestore "github.com/jansethu/mysarkar/internal/app/store/allschemes"
	"github.com/jansethu/mysarkar/internal/app/system/quizcache"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the bulk all_schemes corpus. Cached quizzes are
// dropped when their scheme changes; a nil Cache is fine.
type Handler struct {
	Schemes *allschemestore.Store
	Cache   *quizcache.Cache
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, cache *quizcache.Cache, logger *zap.Logger) *Handler {
	return &Handler{Schemes: allschemestore.New(db), Cache: cache, Log: logger}
}

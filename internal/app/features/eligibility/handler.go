// internal/app/features/eligibility/handler.go
package eligibility

import (
	allschemestore "github.com/jansethu/mysarkar/internal/app/store/allschemes"
	preappstore "github.com/jansethu/mysarkar/internal/app/store/preapplications"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/eligibility"
	"github.com/jansethu/mysarkar/internal/app/system/quizcache"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the eligibility quiz for all_schemes documents.
// A nil Cache disables quiz caching.
type Handler struct {
	Users   *userstore.Store
	Schemes *allschemestore.Store
	PreApps *preappstore.Store
	Quiz    *eligibility.Service
	Cache   *quizcache.Cache
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, quiz *eligibility.Service, cache *quizcache.Cache, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Schemes: allschemestore.New(db),
		PreApps: preappstore.New(db),
		Quiz:    quiz,
		Cache:   cache,
		Log:     logger,
	}
}

// internal/app/features/schemes/handler.go
package schemes

import (
	"context"

	applicationstore "github.com/jansethu/mysarkar/internal/app/store/applications"
	schemestore "github.com/jansethu/mysarkar/internal/app/store/schemes"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/auditlog"
	"github.com/jansethu/mysarkar/internal/app/system/embedding"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SchemeEmbedder turns scheme text into a vector. Implementations never
// fail; an unusable provider yields an empty vector.
type SchemeEmbedder interface {
	EmbedScheme(ctx context.Context, f embedding.Fields) []float32
}

// Searcher runs a semantic query against the scheme corpus.
type Searcher interface {
	Search(ctx context.Context, query string) ([]bson.M, error)
}

// Handler owns the curated scheme catalog endpoints.
//
// It is constructed once at startup in bootstrap with the shared Mongo
// database handle, the process-wide embedder and the vector searcher.
type Handler struct {
	Schemes      *schemestore.Store
	Users        *userstore.Store
	Applications *applicationstore.Store
	Embed        SchemeEmbedder
	Search       Searcher
	Audit        *auditlog.Logger
	Log          *zap.Logger
}

// NewHandler constructs a schemes Handler.
func NewHandler(db *mongo.Database, embed SchemeEmbedder, search Searcher, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Schemes:      schemestore.New(db),
		Users:        userstore.New(db),
		Applications: applicationstore.New(db),
		Embed:        embed,
		Search:       search,
		Audit:        audit,
		Log:          logger,
	}
}

// internal/app/features/dashboard/handler.go
package dashboard

import (
	"github.com/jansethu/mysarkar/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB    *mongo.Database
	Audit *audit.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Audit: audit.New(db),
		Log:   logger,
	}
}

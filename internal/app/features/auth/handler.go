// internal/app/features/auth/handler.go
package auth

import (
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/auditlog"
	sysauth "github.com/jansethu/mysarkar/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the /auth endpoints.
type Handler struct {
	Users  *userstore.Store
	Tokens *sysauth.Manager
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs an auth Handler.
func NewHandler(db *mongo.Database, tokens *sysauth.Manager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Tokens: tokens,
		Audit:  audit,
		Log:    logger,
	}
}

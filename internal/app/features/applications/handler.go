// internal/app/features/applications/handler.go
package applications

import (
	allschemestore "github.com/jansethu/mysarkar/internal/app/store/allschemes"
	applicationstore "github.com/jansethu/mysarkar/internal/app/store/applications"
	notificationstore "github.com/jansethu/mysarkar/internal/app/store/notifications"
	preappstore "github.com/jansethu/mysarkar/internal/app/store/preapplications"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns citizen applications and their review by officials.
type Handler struct {
	Applications  *applicationstore.Store
	Users         *userstore.Store
	Schemes       *allschemestore.Store
	PreApps       *preappstore.Store
	Notifications *notificationstore.Store
	Audit         *auditlog.Logger
	Log           *zap.Logger
}

// NewHandler constructs an applications Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Applications:  applicationstore.New(db),
		Users:         userstore.New(db),
		Schemes:       allschemestore.New(db),
		PreApps:       preappstore.New(db),
		Notifications: notificationstore.New(db),
		Audit:         audit,
		Log:           logger,
	}
}

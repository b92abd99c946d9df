// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jansethu/mysarkar/internal/app/store/audit"
	"github.com/jansethu/mysarkar/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for registration and login events.
	Auth string
	// Admin controls logging for reviewer actions (verification, scheme
	// moderation, application decisions).
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and structured
// logs (via zap). A nil *Logger discards everything.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration. Storage failures are
// logged, never returned: auditing must not fail the request.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// UserRegistered logs a self-service registration.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, role string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventUserRegistered)
	e.UserID = &userID
	e.Details = map[string]string{"email": email, "role": role}
	l.Log(ctx, e)
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound)
	e.Success = false
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword)
	e.UserID = &userID
	e.Success = false
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRoleMismatch logs a login whose requested role differs from
// the account's role.
func (l *Logger) LoginFailedRoleMismatch(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, requested string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRoleMismatch)
	e.UserID = &userID
	e.Success = false
	e.FailureReason = "role mismatch"
	e.Details = map[string]string{"email": email, "requested_role": requested}
	l.Log(ctx, e)
}

// --- Admin Events ---

// UserVerification logs a govt_official verifying or un-verifying a user.
func (l *Logger) UserVerification(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, approved bool) {
	et := audit.EventUserVerified
	if !approved {
		et = audit.EventUserVerificationRevoked
	}
	e := requestEvent(r, audit.CategoryAdmin, et)
	e.ActorID = &actorID
	e.UserID = &userID
	l.Log(ctx, e)
}

// UserRoleChanged logs a role change made through a profile update.
func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, from, to string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventUserRoleChanged)
	e.ActorID = &actorID
	e.UserID = &userID
	e.Details = map[string]string{"from": from, "to": to}
	l.Log(ctx, e)
}

// SchemeCreated logs a new curated scheme.
func (l *Logger) SchemeCreated(ctx context.Context, r *http.Request, actorID, schemeID primitive.ObjectID, name string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventSchemeCreated)
	e.ActorID = &actorID
	e.Details = map[string]string{"scheme_id": schemeID.Hex(), "name": name}
	l.Log(ctx, e)
}

// SchemeDeleted logs a curated scheme removal.
func (l *Logger) SchemeDeleted(ctx context.Context, r *http.Request, actorID, schemeID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventSchemeDeleted)
	e.ActorID = &actorID
	e.Details = map[string]string{"scheme_id": schemeID.Hex()}
	l.Log(ctx, e)
}

// SchemeReviewed logs a scheme approval or rejection.
func (l *Logger) SchemeReviewed(ctx context.Context, r *http.Request, actorID, schemeID primitive.ObjectID, approved bool) {
	et := audit.EventSchemeApproved
	if !approved {
		et = audit.EventSchemeRejected
	}
	e := requestEvent(r, audit.CategoryAdmin, et)
	e.ActorID = &actorID
	e.Details = map[string]string{"scheme_id": schemeID.Hex()}
	l.Log(ctx, e)
}

// ApplicationStatusChanged logs a reviewer decision on an application.
func (l *Logger) ApplicationStatusChanged(ctx context.Context, r *http.Request, actorID, applicantID, applicationID primitive.ObjectID, status string, notified bool) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventApplicationStatusChanged)
	e.ActorID = &actorID
	e.UserID = &applicantID
	e.Details = map[string]string{
		"application_id": applicationID.Hex(),
		"status":         status,
		"notified":       strconv.FormatBool(notified),
	}
	l.Log(ctx, e)
}

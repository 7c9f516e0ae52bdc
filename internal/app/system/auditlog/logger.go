// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/store/audit"
	"github.com/dalemusser/grouphub/internal/app/system/auth"
	"github.com/dalemusser/grouphub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging of login events.
	Auth string
	// Admin controls logging of user/group changes and membership changes.
	Admin string
}

// ValidMode reports whether m is an accepted Config value.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// EventStore persists audit events. *audit.Store implements it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to an EventStore and/or zap.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

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
	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor", event.ActorEmail))
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

// Log records an audit event based on configuration.
// A nil Logger is a no-op, so handler tests can leave it unset.
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
	default:
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func base(r *http.Request, category, eventType string, success bool) audit.Event {
	e := audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
	if c, ok := auth.CurrentUser(r); ok {
		e.ActorEmail = c.Email
	}
	return e
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedEmail, reason string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limit exceeded"
	e.Details = map[string]string{"attempted_email": attemptedEmail, "limit": reason}
	l.Log(ctx, e)
}

// --- Admin Events ---

func (l *Logger) UserCreated(ctx context.Context, r *http.Request, userID primitive.ObjectID, role string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserCreated, true)
	e.UserID = &userID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// UserUpdated records which fields an update touched, e.g. "name,role".
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID, fieldsChanged string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserUpdated, true)
	e.UserID = &userID
	e.Details = map[string]string{"fields_changed": fieldsChanged}
	l.Log(ctx, e)
}

func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserDeleted, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, groupID primitive.ObjectID, name string) {
	l.groupEvent(ctx, r, audit.EventGroupCreated, groupID, name)
}

func (l *Logger) GroupUpdated(ctx context.Context, r *http.Request, groupID primitive.ObjectID, name string) {
	l.groupEvent(ctx, r, audit.EventGroupUpdated, groupID, name)
}

func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, groupID primitive.ObjectID, name string) {
	l.groupEvent(ctx, r, audit.EventGroupDeleted, groupID, name)
}

func (l *Logger) groupEvent(ctx context.Context, r *http.Request, eventType string, groupID primitive.ObjectID, name string) {
	e := base(r, audit.CategoryAdmin, eventType, true)
	e.Details = map[string]string{"group_id": groupID.Hex(), "group_name": name}
	l.Log(ctx, e)
}

func (l *Logger) MemberAddedToGroup(ctx context.Context, r *http.Request, userID, groupID primitive.ObjectID) {
	e := base(r, audit.CategoryAdmin, audit.EventMemberAddedToGroup, true)
	e.UserID = &userID
	e.Details = map[string]string{"group_id": groupID.Hex()}
	l.Log(ctx, e)
}

func (l *Logger) MemberRemovedFromGroup(ctx context.Context, r *http.Request, userID, groupID primitive.ObjectID) {
	e := base(r, audit.CategoryAdmin, audit.EventMemberRemovedFromGroup, true)
	e.UserID = &userID
	e.Details = map[string]string{"group_id": groupID.Hex()}
	l.Log(ctx, e)
}

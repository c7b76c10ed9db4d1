// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/crisisline/crisishub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, signup, OTP, password reset).
	Auth string
	// Admin controls logging for user management actions.
	Admin string
}

// Logger writes audit events to MongoDB (via audit.Store) and zap.
// A nil *Logger is a no-op so handlers can run without one in tests.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ValidMode reports whether s is a recognised destination setting.
func ValidMode(s string) bool {
	switch s {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func objectID(hex string) *primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &oid
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.AccountID != nil {
		fields = append(fields, zap.String("account_id", event.AccountID.Hex()))
	}
	if event.AccountKind != "" {
		fields = append(fields, zap.String("account_kind", event.AccountKind))
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

// Log records an event according to the setting for its category.
// Unknown categories are logged everywhere.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := ModeAll
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if setting == ModeAll || setting == ModeDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType, kind string, accountID *primitive.ObjectID, email string) audit.Event {
	return audit.Event{
		Category:    audit.CategoryAuth,
		EventType:   eventType,
		AccountID:   accountID,
		AccountKind: kind,
		IP:          clientIP(r),
		UserAgent:   r.UserAgent(),
		Details:     map[string]string{"email": email},
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, accountID primitive.ObjectID, kind, email string) {
	e := authEvent(r, audit.EventLoginSuccess, kind, &accountID, email)
	e.Success = true
	l.Log(ctx, e)
}

// LoginFailedUnknown logs a login for an email with no completed account.
func (l *Logger) LoginFailedUnknown(ctx context.Context, r *http.Request, kind, email string) {
	e := authEvent(r, audit.EventLoginFailedUnknown, kind, nil, email)
	e.FailureReason = "account not found"
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, accountID primitive.ObjectID, kind, email string) {
	e := authEvent(r, audit.EventLoginFailedWrongPass, kind, &accountID, email)
	e.FailureReason = "wrong password"
	l.Log(ctx, e)
}

// LoginFailedInactive logs a login refused because the account is inactive.
func (l *Logger) LoginFailedInactive(ctx context.Context, r *http.Request, accountID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventLoginFailedInactive, audit.AccountUser, &accountID, email)
	e.FailureReason = "account inactive"
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login refused by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, kind, email, reason string) {
	e := authEvent(r, audit.EventLoginFailedRateLimit, kind, nil, email)
	e.FailureReason = reason
	l.Log(ctx, e)
}

// SignupCompleted logs a user finishing self-registration.
func (l *Logger) SignupCompleted(ctx context.Context, r *http.Request, accountID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventSignupCompleted, audit.AccountUser, &accountID, email)
	e.Success = true
	l.Log(ctx, e)
}

// VerificationCodeSent logs an OTP email going out.
func (l *Logger) VerificationCodeSent(ctx context.Context, r *http.Request, kind, email, purpose string) {
	e := authEvent(r, audit.EventVerificationCodeSent, kind, nil, email)
	e.Success = true
	e.Details["purpose"] = purpose
	l.Log(ctx, e)
}

// VerificationCodeFailed logs a rejected OTP.
func (l *Logger) VerificationCodeFailed(ctx context.Context, r *http.Request, kind, email, reason string) {
	e := authEvent(r, audit.EventVerificationCodeFailed, kind, nil, email)
	e.FailureReason = reason
	l.Log(ctx, e)
}

// PasswordReset logs the admin password being replaced through an OTP.
func (l *Logger) PasswordReset(ctx context.Context, r *http.Request, accountID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventPasswordReset, audit.AccountAdmin, &accountID, email)
	e.Success = true
	l.Log(ctx, e)
}

// --- Admin Events ---

func (l *Logger) adminEvent(ctx context.Context, r *http.Request, eventType, actorID string, target primitive.ObjectID, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   eventType,
		AccountID:   &target,
		AccountKind: audit.AccountUser,
		ActorID:     objectID(actorID),
		IP:          clientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details:     details,
	})
}

// UserCreated logs an admin creating a user.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID string, target primitive.ObjectID, email string) {
	l.adminEvent(ctx, r, audit.EventUserCreated, actorID, target, map[string]string{"email": email})
}

// UserUpdated logs an admin editing a user. fields lists the changed fields.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID string, target primitive.ObjectID, fields []string) {
	l.adminEvent(ctx, r, audit.EventUserUpdated, actorID, target, map[string]string{"fields_changed": strings.Join(fields, ",")})
}

// UserStatusChanged logs an admin toggling a user's status.
func (l *Logger) UserStatusChanged(ctx context.Context, r *http.Request, actorID string, target primitive.ObjectID, status string) {
	l.adminEvent(ctx, r, audit.EventUserStatusChanged, actorID, target, map[string]string{"status": status})
}

// UserDeleted logs an admin deleting a user.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID string, target primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventUserDeleted, actorID, target, nil)
}

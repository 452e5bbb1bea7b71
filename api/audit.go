package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditSignInSuccess          AuditEvent = "signin_success"
	AuditSignInFailure          AuditEvent = "signin_failure"
	AuditSignOut                AuditEvent = "signout"
	AuditPasswordChanged        AuditEvent = "password_changed"
	AuditPasswordChangeRejected AuditEvent = "password_change_rejected"
	AuditSessionExpired         AuditEvent = "session_expired"
	AuditSessionInvalidated     AuditEvent = "session_invalidated"
)

// auditLogger wraps slog.Logger for structured security audit logging.
// Reasons and usernames are safe to log; passwords and hashes never are.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logEvent is a convenience for events attributed to a username.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, username string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("username", username),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logFailure logs a failed authentication attempt.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

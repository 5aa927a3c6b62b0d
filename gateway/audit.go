package gateway

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditWalletUnlocked    AuditEvent = "wallet_unlocked"
	AuditWalletLocked      AuditEvent = "wallet_locked"
	AuditUnlockFailure     AuditEvent = "unlock_failure"
	AuditAutoUnlockEnabled AuditEvent = "auto_unlock_enabled"
	AuditAutoUnlockUsed    AuditEvent = "auto_unlock_used"
	AuditAutoUnlockRevoked AuditEvent = "auto_unlock_revoked"
	AuditAutoUnlockFailed  AuditEvent = "auto_unlock_failed"
	AuditSessionExpired    AuditEvent = "session_expired"
	AuditWalletPromoted    AuditEvent = "wallet_promoted"
	AuditWalletDeleted     AuditEvent = "wallet_deleted"
	AuditPasswordChanged   AuditEvent = "password_changed"
	AuditLogout            AuditEvent = "logout"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

// log writes a structured audit log entry. Wallet ids are opaque
// identifiers, safe for logs; passwords and tokens never appear here.
func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logEvent is a convenience for events with a wallet ID.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, walletID string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("wallet_id", walletID),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

func walletAttr(walletID string) slog.Attr {
	return slog.String("wallet_id", walletID)
}

// logFailure logs a failed wallet operation.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

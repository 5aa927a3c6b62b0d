// Package autounlock manages the client-held half of the auto-unlock
// scheme: a locally generated session key paired with a server-held
// encrypted password, correlated by a frontend session id. Neither
// artifact alone is sufficient to unlock a wallet.
package autounlock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/walletgate/internal/util"
)

const sessionKeyBytes = 32

// Expiry presets offered when enabling auto-unlock.
const (
	ExpiryDay   = 24 * time.Hour
	ExpiryWeek  = 7 * 24 * time.Hour
	ExpiryMonth = 30 * 24 * time.Hour
)

// SessionKeyRecord is the durable local record for one wallet's
// auto-unlock session. The session key is the only secret in it; the
// frontend session id is a correlation handle, not a security boundary.
type SessionKeyRecord struct {
	SessionKey        string    `json:"session_key"`
	FrontendSessionID string    `json:"frontend_session_id"`
	ExpiresAt         time.Time `json:"expires_at"`
	WalletName        string    `json:"wallet_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// valid reports whether the record has every required field. Records
// missing any of them are purged on read, never repaired.
func (r *SessionKeyRecord) valid() bool {
	return r.SessionKey != "" && r.FrontendSessionID != "" && !r.ExpiresAt.IsZero()
}

func (r *SessionKeyRecord) expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// GenerateSessionKey produces a 256-bit session key from the system CSPRNG,
// encoded as unpadded base64url.
func GenerateSessionKey() (string, error) {
	b, err := util.RandomBytes(sessionKeyBytes)
	if err != nil {
		return "", fmt.Errorf("generating session key: %w", err)
	}
	return util.Base64URLEncode(b), nil
}

// NewFrontendSessionID returns a locally unique correlation id: a
// millisecond timestamp prefix for rough ordering plus a random suffix
// for uniqueness.
func NewFrontendSessionID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString())
}

// Package session holds the wallet session record and the stores that
// persist it. A session exists exactly while some wallet is unlocked for
// the browser's authenticated HTTP session.
package session

import "time"

// Role classifies what a wallet session is allowed to do. Core wallets
// gate privileged operations such as promoting another wallet.
type Role string

const (
	RoleUser Role = "user"
	RoleCore Role = "core"
)

// expiryLeeway is the safety buffer applied when deciding whether an
// access token is still usable. A token within this window of its expiry
// is treated as already expired so a request never races a token that
// dies mid-flight.
const expiryLeeway = 60 * time.Second

// WalletSession is the server-held session record, persisted whole in a
// single HTTP-only cookie slot. Token fields change on refresh; identity
// fields are set at unlock time and survive refreshes.
type WalletSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
	WalletID     string `json:"wallet_id"`
	WalletName   string `json:"wallet_name"`
	Role         Role   `json:"wallet_role"`
}

// TokenResponse is what the custody backend returns from unlock,
// auto-unlock and refresh. Refresh responses carry only token material;
// the identity fields are empty and must be preserved from the
// existing session by the caller.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // lifetime in seconds
	WalletID     string `json:"wallet_id,omitempty"`
	WalletName   string `json:"wallet_name,omitempty"`
	Role         Role   `json:"wallet_role,omitempty"`
}

// FromTokenResponse builds a session from a full token response.
func FromTokenResponse(tr *TokenResponse, now time.Time) *WalletSession {
	return &WalletSession{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    now.Unix() + tr.ExpiresIn,
		WalletID:     tr.WalletID,
		WalletName:   tr.WalletName,
		Role:         tr.Role,
	}
}

// IsExpired reports whether the session's access token is expired or
// within the safety buffer of expiring. The boundary is inclusive:
// a token expiring at exactly now+60s counts as expired.
func IsExpired(s *WalletSession, now time.Time) bool {
	return s.ExpiresAt <= now.Unix()+int64(expiryLeeway/time.Second)
}

// TTL returns the remaining lifetime of the session's access token,
// clamped at zero. Used to size the cookie MaxAge.
func TTL(s *WalletSession, now time.Time) time.Duration {
	d := time.Duration(s.ExpiresAt-now.Unix()) * time.Second
	if d < 0 {
		return 0
	}
	return d
}

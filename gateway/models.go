package gateway

import "github.com/verdantlabs/walletgate/session"

// ErrorResponse is the uniform error body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UnlockRequest is the JSON body for POST /wallets/{walletID}/unlock.
type UnlockRequest struct {
	Password string `json:"password"`
}

// SessionStatusResponse is returned from GET /session. Token material
// never leaves the gateway; the frontend sees identity and expiry only.
type SessionStatusResponse struct {
	Unlocked   bool         `json:"unlocked"`
	WalletID   string       `json:"wallet_id,omitempty"`
	WalletName string       `json:"wallet_name,omitempty"`
	Role       session.Role `json:"wallet_role,omitempty"`
	ExpiresAt  int64        `json:"expires_at,omitempty"`
}

// EnableAutoUnlockRequest is the JSON body for
// POST /wallets/{walletID}/auto-unlock/enable.
type EnableAutoUnlockRequest struct {
	Password string `json:"password"`
	// Expiry selects one of the presets: "24h", "7d" or "30d".
	Expiry string `json:"expiry"`
}

// EnableAutoUnlockResponse is returned from
// POST /wallets/{walletID}/auto-unlock/enable. The session key itself
// stays in the gateway's local store.
type EnableAutoUnlockResponse struct {
	ExpiresAt string `json:"expires_at"`
}

// ChangePasswordRequest is the JSON body for
// POST /wallets/{walletID}/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// DeleteWalletRequest is the JSON body for DELETE /wallets/{walletID}.
type DeleteWalletRequest struct {
	Password string `json:"password"`
}

// LockResponse is returned from lock-like operations that leave the
// wallet requiring a fresh unlock.
type LockResponse struct {
	Locked  bool   `json:"locked"`
	Message string `json:"message,omitempty"`
}

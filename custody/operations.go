package custody

import (
	"context"
	"net/http"
	"time"

	"github.com/verdantlabs/walletgate/internal/util"
	"github.com/verdantlabs/walletgate/session"
)

// Auto-unlock credentials travel as headers, never in the body or query
// string, to keep them out of request logs.
const (
	SessionKeyHeader        = "X-Session-Key"
	FrontendSessionIDHeader = "X-Frontend-Session-ID"
)

// WalletStatus is the read path used by balance-polling consumers.
type WalletStatus struct {
	WalletID string       `json:"wallet_id"`
	Name     string       `json:"name"`
	Role     session.Role `json:"role"`
	State    string       `json:"state"`
	Balance  string       `json:"balance,omitempty"` // lovelace, as a decimal string
}

// StoredSecret confirms the backend persisted an encrypted password
// correlated to a frontend session id.
type StoredSecret struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Unlock exchanges a wallet password for a token pair and stores the
// resulting session, superseding any prior one (single active wallet).
func (c *Client) Unlock(ctx context.Context, repo session.Repository, walletID, password string) (*session.WalletSession, error) {
	var tr session.TokenResponse
	err := c.do(ctx, repo, call{
		method:   http.MethodPost,
		path:     "/wallets/" + walletID + "/unlock",
		body:     map[string]string{"password": util.Normalize(password)},
		skipAuth: true,
		out:      &tr,
	})
	if err != nil {
		return nil, err
	}
	return c.establish(repo, &tr, walletID)
}

// AutoUnlock establishes a session from a stored session key instead of a
// password. The backend pairs the key with its server-held encrypted
// password via the frontend session id.
func (c *Client) AutoUnlock(ctx context.Context, repo session.Repository, walletID, sessionKey, frontendSessionID string) (*session.WalletSession, error) {
	var tr session.TokenResponse
	err := c.do(ctx, repo, call{
		method: http.MethodPost,
		path:   "/wallets/" + walletID + "/auto-unlock",
		headers: map[string]string{
			SessionKeyHeader:        sessionKey,
			FrontendSessionIDHeader: frontendSessionID,
		},
		skipAuth: true,
		out:      &tr,
	})
	if err != nil {
		return nil, err
	}
	return c.establish(repo, &tr, walletID)
}

// StoreSessionSecret asks the backend to hold an encrypted copy of the
// wallet password, correlated to the frontend session id, for later
// auto-unlock. Returns the server-chosen expiry.
func (c *Client) StoreSessionSecret(ctx context.Context, repo session.Repository, walletID, frontendSessionID, password string, ttl time.Duration) (time.Time, error) {
	var stored StoredSecret
	err := c.do(ctx, repo, call{
		method: http.MethodPost,
		path:   "/wallets/" + walletID + "/session/store",
		body: map[string]any{
			"frontend_session_id": frontendSessionID,
			"password":            util.Normalize(password),
			"ttl_seconds":         int64(ttl / time.Second),
		},
		skipAuth: true,
		out:      &stored,
	})
	if err != nil {
		return time.Time{}, err
	}
	return stored.ExpiresAt, nil
}

// Lock locks the wallet server-side and destroys the local session.
func (c *Client) Lock(ctx context.Context, repo session.Repository, walletID string) error {
	err := c.do(ctx, repo, call{
		method: http.MethodPost,
		path:   "/wallets/" + walletID + "/lock",
	})
	if err != nil {
		return err
	}
	return repo.Clear()
}

// Promote raises another wallet to core role. Requires an unlocked
// core-role wallet session.
func (c *Client) Promote(ctx context.Context, repo session.Repository, walletID string) error {
	return c.do(ctx, repo, call{
		method:      http.MethodPut,
		path:        "/wallets/" + walletID + "/promote",
		requireCore: true,
	})
}

// Remove deletes a wallet. The password travels in the body as the
// backend requires. If the deleted wallet owns the current session, the
// session is destroyed too.
func (c *Client) Remove(ctx context.Context, repo session.Repository, walletID, password string) error {
	err := c.do(ctx, repo, call{
		method: http.MethodDelete,
		path:   "/wallets/" + walletID,
		body:   map[string]string{"password": util.Normalize(password)},
	})
	if err != nil {
		return err
	}
	if sess, _ := repo.Get(); sess != nil && sess.WalletID == walletID {
		return repo.Clear()
	}
	return nil
}

// ChangePassword rotates the wallet password. The backend always locks
// the wallet afterwards, so the local session is cleared on success and
// the caller must prompt for a fresh unlock.
func (c *Client) ChangePassword(ctx context.Context, repo session.Repository, walletID, oldPassword, newPassword string) error {
	err := c.do(ctx, repo, call{
		method: http.MethodPost,
		path:   "/wallets/" + walletID + "/change-password",
		body: map[string]string{
			"old_password": util.Normalize(oldPassword),
			"new_password": util.Normalize(newPassword),
		},
	})
	if err != nil {
		return err
	}
	return repo.Clear()
}

// WalletStatus fetches the wallet's current state and balance.
func (c *Client) WalletStatus(ctx context.Context, repo session.Repository, walletID string) (*WalletStatus, error) {
	var ws WalletStatus
	err := c.do(ctx, repo, call{
		method: http.MethodGet,
		path:   "/wallets/" + walletID,
		out:    &ws,
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// establish stores a freshly issued token response as the active session.
// Backends that omit identity fields on unlock get the request's wallet
// id filled in.
func (c *Client) establish(repo session.Repository, tr *session.TokenResponse, walletID string) (*session.WalletSession, error) {
	s := session.FromTokenResponse(tr, c.Now())
	if s.WalletID == "" {
		s.WalletID = walletID
	}
	if s.Role == "" {
		s.Role = session.RoleUser
	}
	if err := repo.Set(s); err != nil {
		return nil, err
	}
	return s, nil
}

package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/verdantlabs/walletgate/session"
)

const refreshPath = "/wallets/token/refresh"

// Refresh exchanges the session's refresh token for a new token pair and
// stores the result, preserving the wallet identity fields — the refresh
// response carries only token material. The refreshed session is returned
// so the caller can use it immediately: a cookie-backed repository only
// shows the new token to the browser's next request, never to a re-read
// within this one. ok is false when no session existed to refresh or the
// exchange failed.
//
// Concurrent refreshes for the same wallet are coalesced: racing callers
// await one shared backend exchange and each write the shared result to
// their own repository.
func (c *Client) Refresh(ctx context.Context, repo session.Repository) (*session.WalletSession, bool) {
	sess, err := repo.Get()
	if err != nil || sess == nil {
		return nil, false
	}

	v, err, _ := c.refreshing.Do(sess.WalletID, func() (any, error) {
		return c.exchangeRefreshToken(ctx, sess.RefreshToken)
	})
	if err != nil {
		c.logger.Warn("token refresh failed", "wallet_id", sess.WalletID, "error", err)
		return nil, false
	}
	tr := v.(*session.TokenResponse)

	next := session.FromTokenResponse(tr, c.Now())
	next.WalletID = sess.WalletID
	next.WalletName = sess.WalletName
	next.Role = sess.Role
	if err := repo.Set(next); err != nil {
		c.logger.Warn("storing refreshed session failed", "wallet_id", sess.WalletID, "error", err)
		return nil, false
	}
	c.logger.Debug("session refreshed", "wallet_id", sess.WalletID)
	return next, true
}

// exchangeRefreshToken POSTs the refresh token with the service API key
// only — no bearer token is attached.
func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (*session.TokenResponse, error) {
	raw, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	key, err := c.apiKeyValue()
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp.StatusCode, body)
	}
	var tr session.TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

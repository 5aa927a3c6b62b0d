package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verdantlabs/walletgate/autounlock"
)

// expiryPreset maps the request's named expiry to a duration. Arbitrary
// durations are not accepted; three presets keep the UI honest.
func expiryPreset(name string) (time.Duration, bool) {
	switch name {
	case "", "24h":
		return autounlock.ExpiryDay, true
	case "7d":
		return autounlock.ExpiryWeek, true
	case "30d":
		return autounlock.ExpiryMonth, true
	}
	return 0, false
}

// EnableAutoUnlock handles POST /wallets/{walletID}/auto-unlock/enable.
// The wallet must be unlocked already; the password is needed again so
// the backend can re-verify it before storing the encrypted copy.
func (a *API) EnableAutoUnlock(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	req, ok := decodeJSON[EnableAutoUnlockRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	ttl, ok := expiryPreset(req.Expiry)
	if !ok {
		writeError(w, http.StatusBadRequest, "expiry must be one of 24h, 7d, 30d")
		return
	}

	repo := a.repoFor(w, r)
	s, err := repo.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read session")
		return
	}
	walletName := ""
	if s != nil {
		walletName = s.WalletName
	}

	rec, err := a.autoUnlock.Enable(r.Context(), repo, walletID, walletName, req.Password, ttl)
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditAutoUnlockEnabled, r, walletID)
	writeJSON(w, http.StatusOK, EnableAutoUnlockResponse{
		ExpiresAt: rec.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// AttemptAutoUnlock handles POST /wallets/{walletID}/auto-unlock: a
// silent unlock using the stored session key. A missing or expired
// record is a 404 and the frontend falls back to the password prompt;
// it is not an error worth surfacing to the user.
func (a *API) AttemptAutoUnlock(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	repo := a.repoFor(w, r)
	s, err := a.autoUnlock.Attempt(r.Context(), repo, walletID)
	if err != nil {
		if !errors.Is(err, autounlock.ErrNoRecord) {
			a.audit.logFailure(AuditAutoUnlockFailed, r, "backend rejected session key",
				walletAttr(walletID))
		}
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditAutoUnlockUsed, r, walletID)
	writeJSON(w, http.StatusOK, statusFor(s))
}

// RevokeAutoUnlock handles DELETE /wallets/{walletID}/auto-unlock.
func (a *API) RevokeAutoUnlock(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	if err := a.autoUnlock.Revoke(walletID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to revoke auto-unlock session")
		return
	}
	a.audit.logEvent(AuditAutoUnlockRevoked, r, walletID)
	writeJSON(w, http.StatusOK, struct{}{})
}

package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verdantlabs/walletgate/session"
)

// repoFor binds a cookie-backed session repository to the request.
func (a *API) repoFor(w http.ResponseWriter, r *http.Request) session.Repository {
	return session.Cookies(w, r, a.logger)
}

// UnlockWallet handles POST /wallets/{walletID}/unlock.
func (a *API) UnlockWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	req, ok := decodeJSON[UnlockRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	repo := a.repoFor(w, r)
	s, err := a.client.Unlock(r.Context(), repo, walletID, req.Password)
	if err != nil {
		a.audit.logFailure(AuditUnlockFailure, r, "unlock rejected",
			walletAttr(walletID))
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditWalletUnlocked, r, walletID)
	writeJSON(w, http.StatusOK, statusFor(s))
}

// LockWallet handles POST /wallets/{walletID}/lock.
func (a *API) LockWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	repo := a.repoFor(w, r)
	if err := a.client.Lock(r.Context(), repo, walletID); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditWalletLocked, r, walletID)
	writeJSON(w, http.StatusOK, LockResponse{Locked: true})
}

// SessionStatus handles GET /session.
func (a *API) SessionStatus(w http.ResponseWriter, r *http.Request) {
	repo := a.repoFor(w, r)
	s, err := repo.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read session")
		return
	}
	if s == nil {
		writeJSON(w, http.StatusOK, SessionStatusResponse{})
		return
	}
	writeJSON(w, http.StatusOK, statusFor(s))
}

// ValidateSession handles GET /session/validate. A read-only check the
// frontend runs before starting a signing wizard; it never refreshes.
func (a *API) ValidateSession(w http.ResponseWriter, r *http.Request) {
	repo := a.repoFor(w, r)
	s, err := repo.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read session")
		return
	}
	v := session.Validate(s, time.Now())
	if v.IsExpired {
		a.audit.log(AuditSessionExpired, r)
	}
	writeJSON(w, http.StatusOK, v)
}

// Logout handles POST /session/logout: clears the session cookie and
// every auto-unlock record on this device.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	repo := a.repoFor(w, r)
	_ = repo.Clear()
	if err := a.autoUnlock.RevokeAll(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to revoke auto-unlock sessions")
		return
	}
	a.audit.log(AuditLogout, r)
	writeJSON(w, http.StatusOK, struct{}{})
}

// PromoteWallet handles PUT /wallets/{walletID}/promote. Requires an
// unlocked core-role wallet.
func (a *API) PromoteWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	repo := a.repoFor(w, r)
	if err := a.client.Promote(r.Context(), repo, walletID); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditWalletPromoted, r, walletID)
	writeJSON(w, http.StatusOK, struct{}{})
}

// DeleteWallet handles DELETE /wallets/{walletID}.
func (a *API) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	req, ok := decodeJSON[DeleteWalletRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	repo := a.repoFor(w, r)
	if err := a.client.Remove(r.Context(), repo, walletID, req.Password); err != nil {
		mapError(w, err)
		return
	}
	if err := a.autoUnlock.Revoke(walletID); err != nil {
		a.logger.Warn("revoking auto-unlock for deleted wallet", "wallet_id", walletID, "error", err)
	}
	a.audit.logEvent(AuditWalletDeleted, r, walletID)
	writeJSON(w, http.StatusOK, struct{}{})
}

// ChangePassword handles POST /wallets/{walletID}/change-password. The
// backend locks the wallet afterwards, so the response tells the
// frontend a fresh unlock is needed.
func (a *API) ChangePassword(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	req, ok := decodeJSON[ChangePasswordRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "old_password and new_password are required")
		return
	}
	repo := a.repoFor(w, r)
	if err := a.client.ChangePassword(r.Context(), repo, walletID, req.OldPassword, req.NewPassword); err != nil {
		mapError(w, err)
		return
	}
	// A stored auto-unlock password is stale after a change; revoke it.
	if err := a.autoUnlock.Revoke(walletID); err != nil {
		a.logger.Warn("revoking auto-unlock after password change", "wallet_id", walletID, "error", err)
	}
	a.audit.logEvent(AuditPasswordChanged, r, walletID)
	writeJSON(w, http.StatusOK, LockResponse{
		Locked:  true,
		Message: "password changed; the wallet is now locked, please unlock again",
	})
}

// WalletStatus handles GET /wallets/{walletID}: the authenticated read
// path used by the dashboard's balance polling.
func (a *API) WalletStatus(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	repo := a.repoFor(w, r)
	ws, err := a.client.WalletStatus(r.Context(), repo, walletID)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func statusFor(s *session.WalletSession) SessionStatusResponse {
	return SessionStatusResponse{
		Unlocked:   true,
		WalletID:   s.WalletID,
		WalletName: s.WalletName,
		Role:       s.Role,
		ExpiresAt:  s.ExpiresAt,
	}
}

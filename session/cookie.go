package session

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const cookieName = "walletgate_session"

// CookieRepository persists the wallet session as base64-encoded JSON in
// a single HTTP-only cookie. It is bound to one request/response pair;
// construct a fresh one per request with Cookies.
type CookieRepository struct {
	w      http.ResponseWriter
	r      *http.Request
	logger *slog.Logger

	// Now is overridable in tests.
	Now func() time.Time
}

var _ Repository = (*CookieRepository)(nil)

// Cookies binds a cookie-backed session repository to the given
// request/response pair.
func Cookies(w http.ResponseWriter, r *http.Request, logger *slog.Logger) *CookieRepository {
	return &CookieRepository{w: w, r: r, logger: logger, Now: time.Now}
}

func (c *CookieRepository) Get() (*WalletSession, error) {
	cookie, err := c.r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		c.dropMalformed("undecodable session cookie", err)
		return nil, nil
	}
	var s WalletSession
	if err := json.Unmarshal(raw, &s); err != nil {
		c.dropMalformed("unparseable session cookie", err)
		return nil, nil
	}
	if s.AccessToken == "" || s.WalletID == "" {
		c.dropMalformed("session cookie missing required fields", nil)
		return nil, nil
	}
	return &s, nil
}

func (c *CookieRepository) GetCore() (*WalletSession, error) {
	s, err := c.Get()
	if err != nil || s == nil {
		return nil, err
	}
	if s.Role != RoleCore {
		return nil, nil
	}
	return s, nil
}

func (c *CookieRepository) Set(s *WalletSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.StdEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(c.r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(TTL(s, c.Now()) / time.Second),
	})
	return nil
}

func (c *CookieRepository) Clear() error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(c.r),
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return nil
}

// dropMalformed logs and clears a cookie that cannot be decoded. Callers
// see plain absence; a broken cookie must not wedge every later call.
func (c *CookieRepository) dropMalformed(msg string, err error) {
	if c.logger != nil {
		if err != nil {
			c.logger.Warn(msg, "error", err)
		} else {
			c.logger.Warn(msg)
		}
	}
	_ = c.Clear()
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}

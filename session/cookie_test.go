package session

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// roundTrip writes the session through a CookieRepository and returns a
// new repository reading the cookies the first one wrote.
func roundTrip(t *testing.T, s *WalletSession) *CookieRepository {
	t.Helper()
	rec := httptest.NewRecorder()
	w := Cookies(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if err := w.Set(s); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return readerFromRecorder(t, rec)
}

func readerFromRecorder(t *testing.T, rec *httptest.ResponseRecorder) *CookieRepository {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return Cookies(httptest.NewRecorder(), req, nil)
}

func TestCookieRoundTrip(t *testing.T) {
	want := &WalletSession{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Unix() + 3600,
		WalletID:     "w-1",
		WalletName:   "Ops",
		Role:         RoleUser,
	}
	got, err := roundTrip(t, want).Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a session after Set")
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCookieGetAbsent(t *testing.T) {
	repo := Cookies(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	s, err := repo.Get()
	if err != nil {
		t.Fatalf("Get on absent cookie should not error, got %v", err)
	}
	if s != nil {
		t.Fatalf("expected no session, got %+v", s)
	}
}

func TestCookieMalformedTreatedAsAbsent(t *testing.T) {
	for name, value := range map[string]string{
		"not base64":     "%%%not-base64%%%",
		"not json":       base64.StdEncoding.EncodeToString([]byte("not json")),
		"missing fields": base64.StdEncoding.EncodeToString([]byte(`{"wallet_name":"x"}`)),
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: value})
			rec := httptest.NewRecorder()
			repo := Cookies(rec, req, nil)

			s, err := repo.Get()
			if err != nil {
				t.Fatalf("malformed cookie must not surface an error, got %v", err)
			}
			if s != nil {
				t.Fatalf("expected no session, got %+v", s)
			}
			// The broken cookie must have been cleared, not left to fail
			// every subsequent call.
			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == cookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			if !cleared {
				t.Fatal("expected malformed cookie to be cleared")
			}
		})
	}
}

func TestCookieClear(t *testing.T) {
	rec := httptest.NewRecorder()
	repo := Cookies(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected a single expired cookie, got %+v", cookies)
	}
}

func TestCookieGetCore(t *testing.T) {
	user := &WalletSession{
		AccessToken: "at", RefreshToken: "rt",
		ExpiresAt: time.Now().Unix() + 3600,
		WalletID:  "w-user", Role: RoleUser,
	}
	if s, _ := roundTrip(t, user).GetCore(); s != nil {
		t.Fatalf("GetCore returned a non-core session: %+v", s)
	}

	core := &WalletSession{
		AccessToken: "at", RefreshToken: "rt",
		ExpiresAt: time.Now().Unix() + 3600,
		WalletID:  "w-core", Role: RoleCore,
	}
	s, err := roundTrip(t, core).GetCore()
	if err != nil {
		t.Fatalf("GetCore: %v", err)
	}
	if s == nil || s.WalletID != "w-core" {
		t.Fatalf("expected core session back, got %+v", s)
	}
}

func TestCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	repo := Cookies(rec, req, nil)
	repo.Now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	err := repo.Set(&WalletSession{
		AccessToken: "at", RefreshToken: "rt",
		ExpiresAt: 1_700_000_000 + 900,
		WalletID:  "w-1", Role: RoleUser,
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if !c.HttpOnly {
		t.Fatal("cookie must be HTTP-only")
	}
	if !c.Secure {
		t.Fatal("cookie must be Secure behind an https proxy")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("SameSite = %v, want Strict", c.SameSite)
	}
	if c.Path != "/" {
		t.Fatalf("Path = %q, want /", c.Path)
	}
	if c.MaxAge != 900 {
		t.Fatalf("MaxAge = %d, want the token lifetime 900", c.MaxAge)
	}
}

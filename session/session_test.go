package session

import (
	"testing"
	"time"
)

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"long-lived", now.Unix() + 3600, false},
		{"just outside buffer", now.Unix() + 61, false},
		{"exactly at buffer boundary", now.Unix() + 60, true},
		{"inside buffer", now.Unix() + 59, true},
		{"already expired", now.Unix() - 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &WalletSession{ExpiresAt: tc.expiresAt}
			if got := IsExpired(s, now); got != tc.want {
				t.Fatalf("IsExpired(expires_at=%d) = %v, want %v", tc.expiresAt, got, tc.want)
			}
		})
	}
}

func TestFromTokenResponse(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tr := &TokenResponse{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresIn:    3600,
		WalletID:     "w-1",
		WalletName:   "Treasury",
		Role:         RoleCore,
	}
	s := FromTokenResponse(tr, now)
	if s.ExpiresAt != now.Unix()+3600 {
		t.Fatalf("ExpiresAt = %d, want %d", s.ExpiresAt, now.Unix()+3600)
	}
	if s.AccessToken != "at" || s.RefreshToken != "rt" {
		t.Fatalf("token fields not carried over: %+v", s)
	}
	if s.WalletID != "w-1" || s.WalletName != "Treasury" || s.Role != RoleCore {
		t.Fatalf("identity fields not carried over: %+v", s)
	}
}

func TestTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := &WalletSession{ExpiresAt: now.Unix() + 120}
	if got := TTL(s, now); got != 2*time.Minute {
		t.Fatalf("TTL = %v, want 2m", got)
	}
	s.ExpiresAt = now.Unix() - 10
	if got := TTL(s, now); got != 0 {
		t.Fatalf("TTL for expired session = %v, want 0", got)
	}
}

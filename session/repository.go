package session

// Repository abstracts where the single wallet session lives so the
// dispatcher can be tested against an in-memory slot and served from a
// cookie in production. Exactly one session is held at a time;
// Set replaces the whole record (last-write-wins, no merge).
type Repository interface {
	// Get returns the current session, or nil when no wallet is
	// unlocked. A malformed stored record is treated the same as
	// absence, never as an error.
	Get() (*WalletSession, error)
	// GetCore returns the session only when it belongs to a core-role
	// wallet, otherwise nil. Privileged code paths use this so a
	// non-core session never leaks into them.
	GetCore() (*WalletSession, error)
	// Set stores the session, replacing any prior one.
	Set(s *WalletSession) error
	// Clear removes the session.
	Clear() error
}

package autounlock

import "time"

// Store persists one SessionKeyRecord per wallet id. All implementations
// are fail-closed: a record that is expired or structurally invalid is
// deleted on read and never handed to a caller.
type Store interface {
	// Put creates or replaces the record for a wallet. One active
	// auto-unlock session per wallet.
	Put(walletID string, rec SessionKeyRecord) error
	// Get returns the record, or nil when absent, expired, or invalid.
	// Expired and invalid records are deleted as a side effect.
	Get(walletID string, now time.Time) (*SessionKeyRecord, error)
	// Delete removes one wallet's record.
	Delete(walletID string) error
	// DeleteAll removes every record.
	DeleteAll() error
	// SweepExpired deletes every record whose expiry has passed or whose
	// payload fails to parse, returning how many were removed.
	SweepExpired(now time.Time) (int, error)
}

package autounlock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/verdantlabs/walletgate/custody"
	"github.com/verdantlabs/walletgate/session"
)

// sweepInterval is the hygiene pass cadence. On-demand expiry checks in
// Get are the primary defense; the sweep keeps records that are never
// read again from lingering.
const sweepInterval = time.Hour

// ErrNoRecord indicates no auto-unlock session exists for the wallet.
// Callers fall back to a password prompt; no network call was made.
var ErrNoRecord = errors.New("no auto-unlock record")

// Manager drives the auto-unlock lifecycle: enabling (generate and
// register a session key), attempting a silent unlock, and revoking.
type Manager struct {
	store  Store
	client *custody.Client
	logger *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}

	// Now is overridable in tests.
	Now func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the structured logger for sweep and failure events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager and starts the hourly sweep loop.
// Call Close to stop it.
func NewManager(store Store, client *custody.Client, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		client: client,
		stopCh: make(chan struct{}),
		Now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	go m.sweepLoop()
	return m
}

// Close stops the background sweep loop.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Enable opts a wallet into auto-unlock: generates the session key and
// frontend session id, registers the encrypted password with the backend,
// and persists the local record. Any prior record for the wallet is
// overwritten.
func (m *Manager) Enable(ctx context.Context, repo session.Repository, walletID, walletName, password string, ttl time.Duration) (*SessionKeyRecord, error) {
	key, err := GenerateSessionKey()
	if err != nil {
		return nil, err
	}
	now := m.Now()
	frontendSessionID := NewFrontendSessionID(now)

	expiresAt, err := m.client.StoreSessionSecret(ctx, repo, walletID, frontendSessionID, password, ttl)
	if err != nil {
		return nil, err
	}
	if expiresAt.IsZero() {
		expiresAt = now.Add(ttl)
	}

	rec := SessionKeyRecord{
		SessionKey:        key,
		FrontendSessionID: frontendSessionID,
		ExpiresAt:         expiresAt,
		WalletName:        walletName,
		CreatedAt:         now,
	}
	if err := m.store.Put(walletID, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Attempt tries a silent unlock for the wallet. Absent, expired, or
// invalid records return ErrNoRecord without touching the network. Any
// backend failure purges the local record — a broken session key must
// not be retried indefinitely — and the caller falls back to a password
// prompt.
func (m *Manager) Attempt(ctx context.Context, repo session.Repository, walletID string) (*session.WalletSession, error) {
	rec, err := m.store.Get(walletID, m.Now())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoRecord
	}

	s, err := m.client.AutoUnlock(ctx, repo, walletID, rec.SessionKey, rec.FrontendSessionID)
	if err != nil {
		if delErr := m.store.Delete(walletID); delErr != nil {
			m.logger.Warn("purging failed auto-unlock record", "wallet_id", walletID, "error", delErr)
		}
		return nil, err
	}
	return s, nil
}

// Revoke removes one wallet's auto-unlock session.
func (m *Manager) Revoke(walletID string) error {
	return m.store.Delete(walletID)
}

// RevokeAll removes every auto-unlock session; used on logout.
func (m *Manager) RevokeAll() error {
	return m.store.DeleteAll()
}

func (m *Manager) sweepLoop() {
	m.sweep()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	removed, err := m.store.SweepExpired(m.Now())
	if err != nil {
		m.logger.Warn("auto-unlock sweep failed", "error", err)
		return
	}
	if removed > 0 {
		m.logger.Info("swept expired auto-unlock records", "removed", removed)
	}
}

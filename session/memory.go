package session

import "sync"

// MemoryRepository is a thread-safe single-slot session repository.
// Used by tests and by embedders that do not speak HTTP cookies.
type MemoryRepository struct {
	mu sync.RWMutex
	s  *WalletSession
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Get() (*WalletSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryRepository) GetCore() (*WalletSession, error) {
	s, err := m.Get()
	if err != nil || s == nil {
		return nil, err
	}
	if s.Role != RoleCore {
		return nil, nil
	}
	return s, nil
}

func (m *MemoryRepository) Set(s *WalletSession) error {
	cp := *s
	m.mu.Lock()
	m.s = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Clear() error {
	m.mu.Lock()
	m.s = nil
	m.mu.Unlock()
	return nil
}

package autounlock

import (
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory Store. Records are lost on
// restart; used by tests and short-lived embedders.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]SessionKeyRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]SessionKeyRecord)}
}

func (s *MemoryStore) Put(walletID string, rec SessionKeyRecord) error {
	s.mu.Lock()
	s.data[walletID] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(walletID string, now time.Time) (*SessionKeyRecord, error) {
	s.mu.RLock()
	rec, ok := s.data[walletID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !rec.valid() || rec.expired(now) {
		_ = s.Delete(walletID)
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(walletID string) error {
	s.mu.Lock()
	delete(s.data, walletID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteAll() error {
	s.mu.Lock()
	s.data = make(map[string]SessionKeyRecord)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SweepExpired(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.data {
		if !rec.valid() || rec.expired(now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

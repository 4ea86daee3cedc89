package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local revocation list. Records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

func (s *MemoryStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.entries[token]
	if !ok {
		revokedTotal.Inc()
	}
	if !ok || (!prev.IsZero() && (expiresAt.IsZero() || expiresAt.After(prev))) {
		s.entries[token] = expiresAt
	}
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[token]
	return ok, nil
}

// Sweep drops records whose credential expired before now. Records revoked
// with a zero expiry are kept forever.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for token, exp := range s.entries {
		if !exp.IsZero() && exp.Before(now) {
			delete(s.entries, token)
			n++
		}
	}
	sweptTotal.Add(float64(n))
	return n, nil
}

// Len returns the number of records held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

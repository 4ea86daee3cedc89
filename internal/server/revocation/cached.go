package revocation

import (
	"context"
	"time"
)

// DurableStore is a Store that can also evict expired records.
type DurableStore interface {
	Store
	Sweeper
}

// CachedStore answers positive lookups from memory and falls through to the
// durable store otherwise. Revocation is permanent, so a cached "revoked"
// can never go stale; "not revoked" is never cached.
type CachedStore struct {
	durable DurableStore
	cache   *MemoryStore
	fillTTL time.Duration
	now     func() time.Time
}

func NewCachedStore(durable DurableStore) *CachedStore {
	return &CachedStore{durable: durable, cache: NewMemoryStore(), fillTTL: 24 * time.Hour, now: time.Now}
}

// Revoke writes the durable store first so a failed write is never hidden by
// the cache.
func (s *CachedStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if err := s.durable.Revoke(ctx, token, expiresAt); err != nil {
		return err
	}
	return s.cache.Revoke(ctx, token, expiresAt)
}

func (s *CachedStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if ok, _ := s.cache.IsRevoked(ctx, token); ok {
		return true, nil
	}
	ok, err := s.durable.IsRevoked(ctx, token)
	if err != nil {
		return false, err
	}
	if ok {
		// expiry is unknown on this path; the durable record outlives the cached one
		_ = s.cache.Revoke(ctx, token, s.now().Add(s.fillTTL))
	}
	return ok, nil
}

func (s *CachedStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	_, _ = s.cache.Sweep(ctx, now)
	return s.durable.Sweep(ctx, now)
}

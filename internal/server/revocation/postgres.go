package revocation

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/tokens"
)

// PostgresStore keeps revocations in the tokens table, so they survive
// restarts and are shared by every process using the same database.
type PostgresStore struct {
	repo tokens.Repository
}

func NewPostgresStore(repo tokens.Repository) *PostgresStore {
	return &PostgresStore{repo: repo}
}

func (s *PostgresStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if err := s.repo.Revoke(ctx, token, expiresAt); err != nil {
		return err
	}
	revokedTotal.Inc()
	return nil
}

func (s *PostgresStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.repo.IsRevoked(ctx, token)
}

func (s *PostgresStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	sweptTotal.Add(float64(n))
	return n, nil
}

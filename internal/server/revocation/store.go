// Package revocation keeps the server-side list of credentials that were
// explicitly invalidated by logout or by a consumed password reset.
package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	revokedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pointfeed",
		Subsystem: "revocation",
		Name:      "revoked_total",
		Help:      "Credentials revoked.",
	})
	sweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pointfeed",
		Subsystem: "revocation",
		Name:      "swept_total",
		Help:      "Revocation records evicted after their credential expired.",
	})
)

// Store is the revocation list. Revoke is idempotent and permanent; a revoke
// that returns before IsRevoked starts is visible to it. expiresAt only
// bounds how long the record must be kept.
type Store interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Sweeper evicts records whose credential can no longer pass expiry checks.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// Sweepers runs several sweepers as one. Every member is swept even when an
// earlier one fails; the errors are joined.
type Sweepers []Sweeper

func (ss Sweepers) Sweep(ctx context.Context, now time.Time) (int64, error) {
	var (
		total int64
		errs  []error
	)
	for _, s := range ss {
		n, err := s.Sweep(ctx, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

// RunSweeper calls s.Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration, log logging.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.Sweep(ctx, now)
			if err != nil {
				log.Error(ctx, "revocation sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug(ctx, "revocation sweep", "evicted", n)
			}
		}
	}
}

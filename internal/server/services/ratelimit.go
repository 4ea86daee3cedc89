package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// addressLimiter throttles requests per address. Idle limiters are dropped
// once they have fully refilled.
type addressLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// newAddressLimiter allows n requests per period per address. n <= 0
// disables throttling.
func newAddressLimiter(n int, period time.Duration) *addressLimiter {
	if n <= 0 {
		return &addressLimiter{limit: rate.Inf}
	}
	return &addressLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(period / time.Duration(n)),
		burst:    n,
	}
}

func (l *addressLimiter) Allow(address string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.limiters) > 1024 {
		for k, lim := range l.limiters {
			if lim.Tokens() >= float64(l.burst) {
				delete(l.limiters, k)
			}
		}
	}

	lim, ok := l.limiters[address]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[address] = lim
	}
	return lim.Allow()
}

package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/logging"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Breaker stops calling a failing gateway for a while so password-reset
// requests fail fast instead of piling up on timeouts.
type Breaker struct {
	next Sender
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreaker trips after failures consecutive errors and probes again after
// cooldown.
func NewBreaker(name string, next Sender, failures uint32, cooldown time.Duration, log logging.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a bad address says nothing about the gateway
			return err == nil || errors.Is(err, ErrInvalidRecipient)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "notification breaker state changed",
				"sender", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *Breaker) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, msg)
	})
	return err
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

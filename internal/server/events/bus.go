// Package events is the in-process publish/subscribe channel that carries
// new posts to live subscriptions.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/logging"
)

// Event is a transient notification. It is never persisted.
type Event struct {
	Topic       string
	AuthorID    string
	Payload     any
	PublishedAt time.Time
}

// Filter decides at publish time whether a subscriber gets an event.
// A nil Filter accepts everything.
type Filter func(Event) bool

// Bus delivers each published event to every live subscriber of its topic.
// Publish never waits on subscribers: each one owns a queue drained by its
// own goroutine, so a slow reader only delays itself.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]*Subscription
	nextID uint64

	queueLimit int
	log        logging.Logger
}

// NewBus returns an empty bus. queueLimit caps each subscriber's backlog;
// 0 means unbounded. Events beyond the cap are dropped for that subscriber.
func NewBus(queueLimit int, log logging.Logger) *Bus {
	return &Bus{
		subs:       make(map[string]map[uint64]*Subscription),
		queueLimit: queueLimit,
		log:        log.With("module", "events"),
	}
}

// Publish enqueues ev for every matching subscriber and returns how many
// accepted it. Publishing to a topic nobody listens on is not an error.
func (b *Bus) Publish(ev Event) int {
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = time.Now()
	}
	publishedTotal.WithLabelValues(ev.Topic).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, s := range b.subs[ev.Topic] {
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		if s.enqueue(ev) {
			n++
		}
	}
	return n
}

// Subscribe registers a subscriber on topic. Events published before this
// call are never delivered to it. The subscription ends when ctx is done or
// Close is called.
func (b *Bus) Subscribe(ctx context.Context, topic string, filter Filter) *Subscription {
	s := &Subscription{
		topic:  topic,
		filter: filter,
		limit:  b.queueLimit,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan Event),
		bus:    b,
	}

	b.mu.Lock()
	b.nextID++
	s.id = b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]*Subscription)
	}
	b.subs[topic][s.id] = s
	b.mu.Unlock()

	subscribersGauge.WithLabelValues(topic).Inc()
	b.log.Debug(ctx, "subscriber added", "topic", topic, "id", s.id)

	go s.pump()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s
}

// Subscribers returns the number of live subscribers on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	if m := b.subs[s.topic]; m != nil {
		delete(m, s.id)
		if len(m) == 0 {
			delete(b.subs, s.topic)
		}
	}
	b.mu.Unlock()
	subscribersGauge.WithLabelValues(s.topic).Dec()
}

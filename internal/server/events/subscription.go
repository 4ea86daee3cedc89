package events

import "sync"

// Subscription is one live consumer. Events arrive on C in publish order.
type Subscription struct {
	id     uint64
	topic  string
	filter Filter
	limit  int
	bus    *Bus

	mu     sync.Mutex
	queue  []Event
	closed bool

	signal chan struct{}
	done   chan struct{}
	out    chan Event
	once   sync.Once
}

// C yields delivered events. It is closed once the subscription ends.
func (s *Subscription) C() <-chan Event {
	return s.out
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close stops delivery. Events still queued are discarded. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		dropped := len(s.queue)
		s.queue = nil
		s.mu.Unlock()

		if dropped > 0 {
			droppedTotal.WithLabelValues(s.topic, "closed").Add(float64(dropped))
		}
		close(s.done)
		s.bus.remove(s)
	})
}

func (s *Subscription) enqueue(ev Event) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if s.limit > 0 && len(s.queue) >= s.limit {
		s.mu.Unlock()
		droppedTotal.WithLabelValues(s.topic, "overflow").Inc()
		return false
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
	return true
}

func (s *Subscription) next() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.queue) == 0 {
		return Event{}, false
	}
	ev := s.queue[0]
	s.queue[0] = Event{}
	s.queue = s.queue[1:]
	return ev, true
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		for {
			ev, ok := s.next()
			if !ok {
				break
			}
			select {
			case s.out <- ev:
				deliveredTotal.WithLabelValues(s.topic).Inc()
			case <-s.done:
				return
			}
		}
		select {
		case <-s.signal:
		case <-s.done:
			return
		}
	}
}

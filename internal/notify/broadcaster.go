package notify

import (
	"context"
	"fmt"
	"sync"

	"chat-notify/internal/domain"
)

// DefaultCapacity is the number of pending events a broadcaster retains for
// slow subscribers before they start lagging.
const DefaultCapacity = 256

// LagError reports how many events a slow subscriber missed. The subscriber's
// cursor has already been moved past the gap when this is returned.
type LagError struct {
	Missed uint64
}

func (e *LagError) Error() string {
	return fmt.Sprintf("subscriber lagged, missed %d events", e.Missed)
}

// Broadcaster fans every published event out to all current subscribers.
// Events live in a bounded ring; each subscriber reads through its own
// cursor, so one slow reader never blocks the publisher or its peers. A
// reader that falls more than the ring capacity behind gets a LagError and
// resumes at the oldest retained event.
type Broadcaster struct {
	mu   sync.Mutex
	ring []*domain.Event
	head uint64 // sequence assigned to the next published event
	subs map[*Subscription]struct{}
}

// NewBroadcaster creates a broadcaster with the given ring capacity.
func NewBroadcaster(capacity int) *Broadcaster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Broadcaster{
		ring: make([]*domain.Event, capacity),
		subs: make(map[*Subscription]struct{}),
	}
}

// Publish appends the event to the ring and wakes all subscribers. It never
// blocks: if the ring is full the oldest retained event is overwritten.
func (b *Broadcaster) Publish(ev *domain.Event) {
	b.mu.Lock()
	b.ring[b.head%uint64(len(b.ring))] = ev
	b.head++
	for sub := range b.subs {
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribe registers a new subscriber whose cursor starts at the current
// tail, so it only observes events published after this call.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	sub := &Subscription{
		b:      b,
		cursor: b.head,
		wake:   make(chan struct{}, 1),
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscription is one subscriber's read cursor into a broadcaster's ring.
type Subscription struct {
	b      *Broadcaster
	cursor uint64
	wake   chan struct{}
}

// Next blocks until an event is available or ctx is done. If the subscriber
// fell behind the ring it returns a *LagError after resynchronizing the
// cursor to the oldest retained event; the caller is expected to log and call
// Next again.
func (s *Subscription) Next(ctx context.Context) (*domain.Event, error) {
	for {
		s.b.mu.Lock()
		capacity := uint64(len(s.b.ring))
		var oldest uint64
		if s.b.head > capacity {
			oldest = s.b.head - capacity
		}
		if s.cursor < oldest {
			missed := oldest - s.cursor
			s.cursor = oldest
			s.b.mu.Unlock()
			return nil, &LagError{Missed: missed}
		}
		if s.cursor < s.b.head {
			ev := s.b.ring[s.cursor%capacity]
			s.cursor++
			s.b.mu.Unlock()
			return ev, nil
		}
		s.b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.wake:
		}
	}
}

// Close removes the subscription from its broadcaster. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.b.mu.Lock()
	delete(s.b.subs, s)
	s.b.mu.Unlock()
}

package notify

import (
	"context"
	"log/slog"
	"sync"

	"chat-notify/internal/domain"
	"chat-notify/internal/observability"
)

// Sink receives every decoded event alongside its recipient set. Extra sinks
// (e.g. the AMQP event bridge) observe dispatch without touching broadcaster
// state.
type Sink interface {
	HandleEvent(ctx context.Context, ev *domain.Event, recipients []int64) error
}

// Registry maps user ids to their broadcasters. Entries are created lazily on
// first subscription and kept for the lifetime of the process; a publish for
// a user who never subscribed is dropped.
type Registry struct {
	users    sync.Map // int64 -> *Broadcaster
	capacity int
}

// NewRegistry creates a registry whose broadcasters hold capacity pending
// events each.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{capacity: capacity}
}

// GetOrCreate returns the broadcaster for userID, creating one atomically if
// none exists. Concurrent callers for the same user id always observe the
// same broadcaster.
func (r *Registry) GetOrCreate(userID int64) *Broadcaster {
	if v, ok := r.users.Load(userID); ok {
		return v.(*Broadcaster)
	}
	v, _ := r.users.LoadOrStore(userID, NewBroadcaster(r.capacity))
	return v.(*Broadcaster)
}

// Publish delivers the event to userID's broadcaster. It reports false when
// the user has no broadcaster, in which case the event is dropped without
// creating one.
func (r *Registry) Publish(userID int64, ev *domain.Event) bool {
	v, ok := r.users.Load(userID)
	if !ok {
		return false
	}
	v.(*Broadcaster).Publish(ev)
	return true
}

// HandleEvent fans one event out to every recipient's broadcaster. Recipients
// are independent: delivery to one is not atomic with delivery to another.
func (r *Registry) HandleEvent(ctx context.Context, ev *domain.Event, recipients []int64) error {
	for _, userID := range recipients {
		if r.Publish(userID, ev) {
			observability.EventsDispatchedTotal.WithLabelValues(string(ev.Type)).Inc()
		} else {
			observability.EventsDroppedTotal.WithLabelValues("no_broadcaster").Inc()
			slog.Debug("no broadcaster for recipient, event dropped",
				slog.Int64("user_id", userID),
				slog.String("event", string(ev.Type)))
		}
	}
	return nil
}

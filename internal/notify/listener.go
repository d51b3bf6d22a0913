package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"chat-notify/internal/observability"
)

const (
	minReconnectInterval = 1 * time.Second
	maxReconnectInterval = 10 * time.Second
)

// ErrFeedClosed is returned by Run when the notification channel is closed
// from underneath the listener.
var ErrFeedClosed = errors.New("change feed notification channel closed")

// Listener holds the persistent LISTEN subscription to the Postgres change
// feed and forwards each notification through the decoder to its sinks.
// There is no backlog: notifications raised while the connection is down are
// gone, so losing the connection is fatal and the process is expected to be
// restarted by its supervisor.
type Listener struct {
	pql   *pq.Listener
	sinks []Sink
	errCh chan error
}

// NewListener connects to the database identified by databaseURL. Decoded
// events are handed to each sink in order; the registry is normally the
// first sink.
func NewListener(databaseURL string, sinks ...Sink) *Listener {
	l := &Listener{
		sinks: sinks,
		errCh: make(chan error, 1),
	}
	l.pql = pq.NewListener(databaseURL, minReconnectInterval, maxReconnectInterval, l.onEvent)
	return l
}

// onEvent receives connection state changes from lib/pq. Any loss of the
// connection is surfaced to Run and terminates the listener.
func (l *Listener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		slog.Info("change feed connected")
	case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
		if err == nil {
			err = errors.New("connection lost")
		}
		select {
		case l.errCh <- err:
		default:
		}
	case pq.ListenerEventReconnected:
		// A reconnect means notifications were missed with no way to
		// replay them; treat it like a disconnect.
		select {
		case l.errCh <- errors.New("change feed reconnected, notifications may have been lost"):
		default:
		}
	}
}

// Run subscribes to both change channels and processes notifications until
// ctx is done or the feed connection is lost. It returns a non-nil error in
// every exit path except context cancellation.
func (l *Listener) Run(ctx context.Context) error {
	defer l.pql.Close()

	for _, channel := range []string{ChannelChatUpdated, ChannelMessageCreated} {
		if err := l.pql.Listen(channel); err != nil {
			return fmt.Errorf("listen on %s: %w", channel, err)
		}
		slog.Info("listening on change feed channel", slog.String("channel", channel))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-l.errCh:
			return fmt.Errorf("change feed connection lost: %w", err)
		case n, ok := <-l.pql.Notify:
			if !ok {
				return ErrFeedClosed
			}
			if n == nil {
				// lib/pq emits nil after an internal reconnect;
				// the reconnect itself already reported fatal.
				continue
			}
			l.handle(ctx, n.Channel, n.Extra)
		}
	}
}

// handle decodes one raw notification and dispatches it. Decode failures are
// per-notification: logged and skipped so the next notification is
// unaffected.
func (l *Listener) handle(ctx context.Context, channel, payload string) {
	observability.NotificationsReceivedTotal.WithLabelValues(channel).Inc()

	ev, recipients, err := Decode(channel, payload)
	if err != nil {
		observability.DecodeErrorsTotal.WithLabelValues(channel).Inc()
		slog.Warn("dropping undecodable notification",
			slog.String("channel", channel),
			slog.String("error", err.Error()))
		return
	}

	if len(recipients) == 0 {
		// Every chat has at least 2 members, so a decoded event with
		// no recipients is an invariant violation upstream.
		slog.Error("decoded event has no recipients",
			slog.String("channel", channel),
			slog.String("event", string(ev.Type)))
		return
	}

	for _, sink := range l.sinks {
		if err := sink.HandleEvent(ctx, ev, recipients); err != nil {
			slog.Error("event sink failed",
				slog.String("event", string(ev.Type)),
				slog.String("error", err.Error()))
		}
	}
}

package sse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"chat-notify/internal/domain"
	"chat-notify/internal/notify"
	"chat-notify/internal/observability"
)

const (
	keepAliveInterval = 1 * time.Second
	keepAliveText     = "keep-alive-text"
)

var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// Session adapts one broadcaster subscription into a server-sent-events
// response stream. It lives exactly as long as the underlying connection:
// when the client goes away the request context is cancelled and Run
// returns. Nothing is cleaned up in the registry afterwards.
type Session struct {
	id      string
	userID  int64
	sub     *notify.Subscription
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSession wraps the response writer for streaming. It fails before any
// broadcaster state is touched when the transport cannot stream.
func NewSession(w http.ResponseWriter, userID int64) (*Session, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	return &Session{
		id:      uuid.NewString(),
		userID:  userID,
		w:       w,
		flusher: flusher,
	}, nil
}

// ID returns the session's log-correlation id.
func (s *Session) ID() string {
	return s.id
}

// Run streams events from sub and keep-alives until ctx is done. Each
// iteration races the next broadcaster event against the keep-alive tick and
// acts on whichever is ready first.
func (s *Session) Run(ctx context.Context, sub *notify.Subscription) {
	s.sub = sub
	observability.SessionsActive.WithLabelValues("sse").Inc()
	defer observability.SessionsActive.WithLabelValues("sse").Dec()

	log := slog.Default().With(
		slog.String("session_id", s.id),
		slog.Int64("user_id", s.userID))
	log.Info("stream session started")
	defer log.Info("stream session closed")

	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()

	events := make(chan *domain.Event)
	go s.pump(ctx, events, log)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.writeEvent(ev, log); err != nil {
				log.Warn("write failed, closing session", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if err := s.writeKeepAlive(); err != nil {
				log.Warn("keep-alive write failed, closing session", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// pump reads the subscription cursor and forwards events to the session
// loop. Lag is recoverable: the cursor has already skipped forward, so log
// and keep reading.
func (s *Session) pump(ctx context.Context, events chan<- *domain.Event, log *slog.Logger) {
	defer close(events)

	for {
		ev, err := s.sub.Next(ctx)
		if err != nil {
			var lag *notify.LagError
			if errors.As(err, &lag) {
				observability.SubscriberLagTotal.Add(float64(lag.Missed))
				log.Warn("subscriber lagged",
					slog.Uint64("missed", lag.Missed))
				continue
			}
			return
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// writeEvent frames one event for the wire. A payload that cannot be
// serialized is a defect in the event itself: drop it for this subscriber
// rather than killing the connection.
func (s *Session) writeEvent(ev *domain.Event, log *slog.Logger) error {
	payload, err := ev.Payload()
	if err != nil {
		observability.EventsDroppedTotal.WithLabelValues("serialize").Inc()
		log.Error("dropping unserializable event",
			slog.String("event", string(ev.Type)),
			slog.String("error", err.Error()))
		return nil
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", ev.Type, payload); err != nil {
		return err
	}
	s.flusher.Flush()

	observability.EventsSentTotal.WithLabelValues("sse", string(ev.Type)).Inc()
	return nil
}

func (s *Session) writeKeepAlive() error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", keepAliveText); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

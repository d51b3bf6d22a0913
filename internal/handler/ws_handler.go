package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-notify/internal/domain"
	"chat-notify/internal/middleware"
	"chat-notify/internal/notify"
	"chat-notify/internal/observability"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // Must be less than pongWait
)

// wsFrame is one event as delivered over the WebSocket transport.
type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WSHandler serves the WebSocket delivery endpoint. It is an alternate
// transport over the same broadcaster subscription the SSE endpoint uses;
// keep-alive is the protocol-level ping instead of a comment line.
type WSHandler struct {
	registry *notify.Registry
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(registry *notify.Registry, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range allowedOrigins {
					if o == origin || o == "*" {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleConnection upgrades the connection and streams the authenticated
// user's events until the client goes away.
func (h *WSHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed",
			slog.Int64("user_id", identity.UserID),
			slog.String("error", err.Error()))
		return
	}

	sub := h.registry.GetOrCreate(identity.UserID).Subscribe()
	defer sub.Close()

	observability.SessionsActive.WithLabelValues("websocket").Inc()
	defer observability.SessionsActive.WithLabelValues("websocket").Dec()

	log := slog.Default().With(
		slog.String("session_id", uuid.NewString()),
		slog.Int64("user_id", identity.UserID))
	log.Info("websocket session started")
	defer log.Info("websocket session closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go readPump(conn, cancel, log)
	writePump(ctx, conn, sub, log)
}

// readPump discards inbound frames; its job is refreshing the read deadline
// from pongs and cancelling the session when the peer disappears.
func readPump(conn *websocket.Conn, cancel context.CancelFunc, log *slog.Logger) {
	defer cancel()

	conn.SetReadLimit(512)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump forwards broadcaster events to the connection, pinging on a
// fixed interval so intermediaries keep the connection open.
func writePump(ctx context.Context, conn *websocket.Conn, sub *notify.Subscription, log *slog.Logger) {
	defer conn.Close()

	events := make(chan *domain.Event)
	go func() {
		defer close(events)
		for {
			ev, err := sub.Next(ctx)
			if err != nil {
				var lag *notify.LagError
				if errors.As(err, &lag) {
					observability.SubscriberLagTotal.Add(float64(lag.Missed))
					log.Warn("subscriber lagged", slog.Uint64("missed", lag.Missed))
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
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := ev.Payload()
			if err != nil {
				observability.EventsDroppedTotal.WithLabelValues("serialize").Inc()
				log.Error("dropping unserializable event",
					slog.String("event", string(ev.Type)),
					slog.String("error", err.Error()))
				continue
			}
			frame, err := json.Marshal(wsFrame{Event: string(ev.Type), Data: payload})
			if err != nil {
				observability.EventsDroppedTotal.WithLabelValues("serialize").Inc()
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
			observability.EventsSentTotal.WithLabelValues("websocket", string(ev.Type)).Inc()
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

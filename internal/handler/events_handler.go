package handler

import (
	"log/slog"
	"net/http"

	"chat-notify/internal/middleware"
	"chat-notify/internal/notify"
	"chat-notify/internal/sse"
)

// EventsHandler serves the SSE delivery endpoint
type EventsHandler struct {
	registry *notify.Registry
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(registry *notify.Registry) *EventsHandler {
	return &EventsHandler{registry: registry}
}

// HandleEvents subscribes the authenticated user to their broadcaster and
// streams events until the connection closes.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := sse.NewSession(w, identity.UserID)
	if err != nil {
		slog.Error("cannot start stream session",
			slog.Int64("user_id", identity.UserID),
			slog.String("error", err.Error()))
		http.Error(w, `{"error":"Streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	sub := h.registry.GetOrCreate(identity.UserID).Subscribe()
	defer sub.Close()

	session.Run(r.Context(), sub)
}

package domain

import (
	"encoding/json"
	"fmt"
)

// EventType names one variant of the closed event set. The values double as
// the SSE event names on the wire.
type EventType string

const (
	EventNewChat        EventType = "NewChat"
	EventAddToChat      EventType = "AddToChat"
	EventRemoveFromChat EventType = "RemoveFromChat"
	EventNewMessage     EventType = "NewMessage"
)

// Event is a tagged union over the four domain event variants. Chat is set
// for the chat-membership variants, Message for EventNewMessage.
type Event struct {
	Type    EventType
	Chat    *Chat
	Message *Message
}

func NewChatEvent(chat *Chat) *Event {
	return &Event{Type: EventNewChat, Chat: chat}
}

func AddToChatEvent(chat *Chat) *Event {
	return &Event{Type: EventAddToChat, Chat: chat}
}

func RemoveFromChatEvent(chat *Chat) *Event {
	return &Event{Type: EventRemoveFromChat, Chat: chat}
}

func NewMessageEvent(msg *Message) *Event {
	return &Event{Type: EventNewMessage, Message: msg}
}

// Payload serializes the variant's payload for the wire. The switch is
// exhaustive over EventType so a new variant cannot silently reach clients
// unencoded.
func (e *Event) Payload() ([]byte, error) {
	switch e.Type {
	case EventNewChat, EventAddToChat, EventRemoveFromChat:
		if e.Chat == nil {
			return nil, fmt.Errorf("event %s: missing chat payload", e.Type)
		}
		return json.Marshal(e.Chat)
	case EventNewMessage:
		if e.Message == nil {
			return nil, fmt.Errorf("event %s: missing message payload", e.Type)
		}
		return json.Marshal(e.Message)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
}

package testutil

import (
	"sync/atomic"
	"time"

	"chat-notify/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// ChatOptions allows customizing chat fixture creation
type ChatOptions struct {
	ID      int64
	WsID    int64
	Name    *string
	Type    domain.ChatKind
	Members []int64
}

// NewTestChat creates a group chat fixture with sensible defaults
func NewTestChat(opts ...func(*ChatOptions)) *domain.Chat {
	name := "general"
	o := &ChatOptions{
		ID:      idCounter.Add(1),
		WsID:    1,
		Name:    &name,
		Type:    domain.ChatGroup,
		Members: []int64{1, 2, 3},
	}

	for _, opt := range opts {
		opt(o)
	}

	return &domain.Chat{
		ID:        o.ID,
		WsID:      o.WsID,
		Name:      o.Name,
		Type:      o.Type,
		Members:   o.Members,
		CreatedAt: time.Now(),
	}
}

// WithMembers overrides the chat's member list
func WithMembers(members ...int64) func(*ChatOptions) {
	return func(o *ChatOptions) { o.Members = members }
}

// WithChatKind overrides the chat kind
func WithChatKind(kind domain.ChatKind) func(*ChatOptions) {
	return func(o *ChatOptions) { o.Type = kind }
}

// WithName overrides the chat name; pass nil to clear it
func WithName(name *string) func(*ChatOptions) {
	return func(o *ChatOptions) { o.Name = name }
}

// NewTestMessage creates a message fixture belonging to chatID
func NewTestMessage(chatID, senderID int64, content string) *domain.Message {
	return &domain.Message{
		ID:        idCounter.Add(1),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Files:     []string{},
		CreatedAt: time.Now(),
	}
}

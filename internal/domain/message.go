package domain

import (
	"time"
)

// Message represents a chat message
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that a message carries content or at least one file
func (m *Message) Validate() error {
	if m.Content == "" && len(m.Files) == 0 {
		return ErrEmptyMessage
	}
	return nil
}

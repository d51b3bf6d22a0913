package domain

import (
	"context"
	"time"
)

// ChatKind discriminates the four chat flavors stored in the chats table.
type ChatKind string

const (
	ChatSingle         ChatKind = "single"
	ChatGroup          ChatKind = "group"
	ChatPrivateChannel ChatKind = "private_channel"
	ChatPublicChannel  ChatKind = "public_channel"
)

// Chat represents a conversation and its full member list
type Chat struct {
	ID        int64     `json:"id"`
	WsID      int64     `json:"ws_id"`
	Name      *string   `json:"name"`
	Type      ChatKind  `json:"type"`
	Members   []int64   `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// namedMembersThreshold is the member count above which a chat must carry a name
const namedMembersThreshold = 8

// Validate checks the chat invariants enforced by the write path
func (c *Chat) Validate() error {
	if len(c.Members) < 2 {
		return ErrTooFewMembers
	}

	switch c.Type {
	case ChatSingle:
		if len(c.Members) != 2 {
			return ErrSingleChatMembers
		}
		if c.Name != nil {
			return ErrSingleChatNamed
		}
	case ChatGroup, ChatPrivateChannel, ChatPublicChannel:
		if len(c.Members) > namedMembersThreshold && (c.Name == nil || *c.Name == "") {
			return ErrChatNameRequired
		}
	default:
		return ErrUnknownChatKind
	}

	return nil
}

// IsMember reports whether userID appears in the chat's member list
func (c *Chat) IsMember(userID int64) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// ChatRepository defines the interface for chat data access
type ChatRepository interface {
	GetByID(ctx context.Context, id int64) (*Chat, error)
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
}

package service

import (
	"context"

	"chat-notify/internal/domain"
)

// MembershipGate is the write-path authorization check consumed by the CRUD
// layer before permitting a mutation inside a specific chat.
type MembershipGate struct {
	chats domain.ChatRepository
}

func NewMembershipGate(chats domain.ChatRepository) *MembershipGate {
	return &MembershipGate{chats: chats}
}

// IsMember reports whether userID belongs to chatID.
func (g *MembershipGate) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	return g.chats.IsMember(ctx, chatID, userID)
}

// Require returns domain.ErrNotMember when userID is not a member of chatID.
func (g *MembershipGate) Require(ctx context.Context, chatID, userID int64) error {
	isMember, err := g.chats.IsMember(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return domain.ErrNotMember
	}
	return nil
}

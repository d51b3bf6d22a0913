package notify

import (
	"encoding/json"
	"errors"
	"fmt"

	"chat-notify/internal/domain"
)

// Change feed channel names. The chats and messages tables carry triggers
// that NOTIFY these channels (see migrations/001_init.sql).
const (
	ChannelChatUpdated    = "chat_updated"
	ChannelMessageCreated = "chat_message_created"
)

// chat_updated payload actions
const (
	opCreated       = "created"
	opMemberAdded   = "member_added"
	opMemberRemoved = "member_removed"
)

var (
	ErrUnknownChannel = errors.New("unknown change feed channel")
	ErrUnknownOp      = errors.New("unknown chat_updated op")
)

type chatUpdated struct {
	Op  string       `json:"op"`
	Old *domain.Chat `json:"old"`
	New *domain.Chat `json:"new"`
}

type messageCreated struct {
	Message *domain.Message `json:"message"`
	Members []int64         `json:"members"`
}

// Decode parses one raw change feed notification into a typed event and its
// recipient set. Recipients for member_removed come from the pre-change
// member list so the removed user still sees the event once; everything else
// uses the post-change list.
func Decode(channel, payload string) (*domain.Event, []int64, error) {
	switch channel {
	case ChannelChatUpdated:
		return decodeChatUpdated(payload)
	case ChannelMessageCreated:
		return decodeMessageCreated(payload)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
}

func decodeChatUpdated(payload string) (*domain.Event, []int64, error) {
	var cu chatUpdated
	if err := json.Unmarshal([]byte(payload), &cu); err != nil {
		return nil, nil, fmt.Errorf("malformed chat_updated payload: %w", err)
	}

	switch cu.Op {
	case opCreated:
		if cu.New == nil {
			return nil, nil, fmt.Errorf("chat_updated %s: missing new chat", cu.Op)
		}
		return domain.NewChatEvent(cu.New), cu.New.Members, nil
	case opMemberAdded:
		if cu.New == nil {
			return nil, nil, fmt.Errorf("chat_updated %s: missing new chat", cu.Op)
		}
		return domain.AddToChatEvent(cu.New), cu.New.Members, nil
	case opMemberRemoved:
		if cu.Old == nil {
			return nil, nil, fmt.Errorf("chat_updated %s: missing old chat", cu.Op)
		}
		ev := domain.RemoveFromChatEvent(cu.New)
		if cu.New == nil {
			ev = domain.RemoveFromChatEvent(cu.Old)
		}
		return ev, cu.Old.Members, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownOp, cu.Op)
	}
}

func decodeMessageCreated(payload string) (*domain.Event, []int64, error) {
	var mc messageCreated
	if err := json.Unmarshal([]byte(payload), &mc); err != nil {
		return nil, nil, fmt.Errorf("malformed chat_message_created payload: %w", err)
	}
	if mc.Message == nil {
		return nil, nil, errors.New("chat_message_created: missing message")
	}
	return domain.NewMessageEvent(mc.Message), mc.Members, nil
}

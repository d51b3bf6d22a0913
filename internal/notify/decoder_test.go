package notify

import (
	"errors"
	"testing"

	"chat-notify/internal/domain"
	"chat-notify/internal/testutil"
)

const chatJSON = `{"id": 1, "ws_id": 1, "name": "general", "type": "group", "members": [1, 2, 3], "created_at": "2024-01-15T10:00:00Z"}`

func TestDecode_ChatCreated(t *testing.T) {
	payload := `{"op": "created", "old": null, "new": ` + chatJSON + `}`

	ev, recipients, err := Decode(ChannelChatUpdated, payload)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ev.Type, domain.EventNewChat)
	testutil.AssertEqual(t, ev.Chat.ID, int64(1))
	testutil.AssertEqual(t, len(recipients), 3)
}

func TestDecode_MemberAdded(t *testing.T) {
	oldChat := `{"id": 1, "ws_id": 1, "name": "general", "type": "group", "members": [1, 2], "created_at": "2024-01-15T10:00:00Z"}`
	payload := `{"op": "member_added", "old": ` + oldChat + `, "new": ` + chatJSON + `}`

	ev, recipients, err := Decode(ChannelChatUpdated, payload)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ev.Type, domain.EventAddToChat)

	// Recipients come from the post-change member list.
	testutil.AssertEqual(t, len(recipients), 3)
}

func TestDecode_MemberRemoved_UsesPreChangeMembers(t *testing.T) {
	newChat := `{"id": 1, "ws_id": 1, "name": "general", "type": "group", "members": [1, 2], "created_at": "2024-01-15T10:00:00Z"}`
	payload := `{"op": "member_removed", "old": ` + chatJSON + `, "new": ` + newChat + `}`

	ev, recipients, err := Decode(ChannelChatUpdated, payload)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ev.Type, domain.EventRemoveFromChat)

	// The removed user (3) is still in the recipient set exactly once.
	testutil.AssertEqual(t, len(recipients), 3)
	count := 0
	for _, id := range recipients {
		if id == 3 {
			count++
		}
	}
	testutil.AssertEqual(t, count, 1)
}

func TestDecode_MessageCreated(t *testing.T) {
	payload := `{"message": {"id": 10, "chat_id": 1, "sender_id": 3, "content": "hi", "files": [], "created_at": "2024-01-15T10:00:00Z"}, "members": [1, 2, 3]}`

	ev, recipients, err := Decode(ChannelMessageCreated, payload)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ev.Type, domain.EventNewMessage)
	testutil.AssertEqual(t, ev.Message.Content, "hi")
	testutil.AssertEqual(t, len(recipients), 3)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		payload string
		wantErr error
	}{
		{"unknown channel", "user_updated", `{}`, ErrUnknownChannel},
		{"malformed chat json", ChannelChatUpdated, `{not json`, nil},
		{"unknown op", ChannelChatUpdated, `{"op": "deleted", "new": ` + chatJSON + `}`, ErrUnknownOp},
		{"created without new", ChannelChatUpdated, `{"op": "created"}`, nil},
		{"member_removed without old", ChannelChatUpdated, `{"op": "member_removed", "new": ` + chatJSON + `}`, nil},
		{"malformed message json", ChannelMessageCreated, `[1,2]`, nil},
		{"message missing", ChannelMessageCreated, `{"members": [1, 2]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.channel, tt.payload)
			testutil.AssertError(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

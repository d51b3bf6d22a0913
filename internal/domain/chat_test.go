package domain

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestChat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		chat    Chat
		wantErr error
	}{
		{
			name: "valid group",
			chat: Chat{Type: ChatGroup, Name: strPtr("general"), Members: []int64{1, 2, 3}},
		},
		{
			name: "valid single",
			chat: Chat{Type: ChatSingle, Members: []int64{1, 2}},
		},
		{
			name: "valid small unnamed group",
			chat: Chat{Type: ChatGroup, Members: []int64{1, 2, 3}},
		},
		{
			name: "valid large named channel",
			chat: Chat{Type: ChatPublicChannel, Name: strPtr("announcements"), Members: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		},
		{
			name:    "too few members",
			chat:    Chat{Type: ChatGroup, Members: []int64{1}},
			wantErr: ErrTooFewMembers,
		},
		{
			name:    "single with three members",
			chat:    Chat{Type: ChatSingle, Members: []int64{1, 2, 3}},
			wantErr: ErrSingleChatMembers,
		},
		{
			name:    "single with name",
			chat:    Chat{Type: ChatSingle, Name: strPtr("dm"), Members: []int64{1, 2}},
			wantErr: ErrSingleChatNamed,
		},
		{
			name:    "large channel without name",
			chat:    Chat{Type: ChatPrivateChannel, Members: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
			wantErr: ErrChatNameRequired,
		},
		{
			name:    "large channel with empty name",
			chat:    Chat{Type: ChatGroup, Name: strPtr(""), Members: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
			wantErr: ErrChatNameRequired,
		},
		{
			name:    "unknown kind",
			chat:    Chat{Type: ChatKind("broadcast"), Members: []int64{1, 2}},
			wantErr: ErrUnknownChatKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chat.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestChat_IsMember(t *testing.T) {
	chat := Chat{Members: []int64{1, 2, 3}}

	if !chat.IsMember(2) {
		t.Error("expected user 2 to be a member")
	}
	if chat.IsMember(4) {
		t.Error("expected user 4 to not be a member")
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{"with content", Message{Content: "hi"}, nil},
		{"with file only", Message{Files: []string{"1/png/abc"}}, nil},
		{"empty", Message{}, ErrEmptyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

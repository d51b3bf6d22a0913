package domain

import "errors"

var (
	ErrChatNotFound      = errors.New("chat not found")
	ErrNotMember         = errors.New("user is not a member of this chat")
	ErrTooFewMembers     = errors.New("chat must have at least 2 members")
	ErrSingleChatMembers = errors.New("single chat must have exactly 2 members")
	ErrSingleChatNamed   = errors.New("single chat must not have a name")
	ErrChatNameRequired  = errors.New("chat with more than 8 members must have a name")
	ErrUnknownChatKind   = errors.New("unknown chat kind")
	ErrEmptyMessage      = errors.New("message must have content or files")
	ErrUnknownEventType  = errors.New("unknown event type")
)

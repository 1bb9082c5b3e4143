package chat

import "errors"

var (
	ErrNotParticipant = errors.New("you are not a participant of this conversation")
	ErrEmptyContent   = errors.New("message content cannot be empty")
	ErrNotFound       = errors.New("service not found")

	// ErrMessagesImmutable guards the audit trail: messages are never
	// deleted, with no override path.
	ErrMessagesImmutable = errors.New("messages are permanently retained and cannot be deleted")
)

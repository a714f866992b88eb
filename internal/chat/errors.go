package chat

import "errors"

// Domain failures are returned as values and matched with errors.Is; the
// handler layer maps them to HTTP codes or socket error events. Anything
// else escaping the engine is a storage failure that already aborted the
// surrounding unit of work.
var (
	// ErrNotFriends rejects conversation creation between users who do not
	// mutually follow each other.
	ErrNotFriends = errors.New("users are not mutual followers")

	// ErrBlocked rejects contact when either user blocks the other. Checked
	// again at send time: block state can change after a conversation exists.
	ErrBlocked = errors.New("users block each other")

	// ErrUnauthorized means the requester is not an (active) participant of
	// the addressed conversation or message.
	ErrUnauthorized = errors.New("requester is not a participant")

	// ErrNotFound means the referenced conversation, message or reaction
	// does not exist or is already soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers malformed payloads: empty messages, unknown
	// media kinds, disallowed MIME types, oversized media, bad reactions.
	ErrInvalidInput = errors.New("invalid input")
)

package room

import "errors"

var (
	ErrPlaybackNotFound = errors.New("playback state not found")
	ErrEntryNotFound    = errors.New("queue entry not found")
	ErrQueueEmpty       = errors.New("queue is empty")
	// ErrStaleHead means a racing promotion consumed or changed the queue
	// head between the caller's read and the transaction. Benign: the
	// caller re-reads the head and retries or no-ops.
	ErrStaleHead = errors.New("queue head changed")
	// ErrNotIdle means an idle-only promotion found the room already
	// playing. Benign no-op for the auto-promotion path.
	ErrNotIdle = errors.New("room is not idle")
)

package room

type CreateRoomParams struct {
	RoomId string
	Name   string
}

type SetPlaybackStateParams struct {
	RoomId string
	State  PlaybackState
}

// UpdatePlaybackIntentParams is a viewer's partial play/pause/seek update.
// It never touches URL, ForcedBy or UpdateToken.
type UpdatePlaybackIntentParams struct {
	RoomId    string
	IsPlaying bool
	Position  float64
	UpdatedAt int64
}

type EnqueueParams struct {
	RoomId      string
	EntryId     string
	URL         string
	SubmittedBy string
	SubmittedAt int64
}

type RemoveEntryParams struct {
	RoomId  string
	EntryId string
}

type PromoteHeadParams struct {
	RoomId string
	// EntryId is the queue head observed by the caller outside the
	// transaction; empty means the caller observed an empty queue and
	// expects to write the terminal stopped state.
	EntryId string
	// OnlyIfIdle aborts the promotion when the room already has a
	// current url. Used by the enqueue auto-promotion path.
	OnlyIfIdle  bool
	UpdateToken string
}

// PromoteResult reports what a committed promotion wrote, along with the
// previous playback state so the caller can file it into history.
type PromoteResult struct {
	Previous PlaybackState
	Current  PlaybackState
	// Promoted describes the consumed queue entry; zero when the queue
	// was empty and the stopped state was written.
	Promoted        QueueEntry
	PromotedEntryId string
}

type AppendHistoryParams struct {
	RoomId  string
	EntryId string
	Entry   HistoryEntry
}

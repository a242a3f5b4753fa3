package room

import (
	"github.com/syncroom/server/internal/repository/room"
)

type PlaybackStatus string

const (
	StatusStopped PlaybackStatus = "stopped"
	StatusPlaying PlaybackStatus = "playing"
	StatusPaused  PlaybackStatus = "paused"
)

type PlaybackState struct {
	URL         string  `json:"url"`
	IsPlaying   bool    `json:"is_playing"`
	Position    float64 `json:"position"`
	UpdatedAt   int64   `json:"updated_at"`
	ForcedBy    *string `json:"forced_by"`
	UpdateToken string  `json:"update_token"`
}

func (p PlaybackState) Status() PlaybackStatus {
	switch {
	case p.URL == "":
		return StatusStopped
	case p.IsPlaying:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

// PositionAt computes the effective playback position at nowMs. Position
// is the offset as of UpdatedAt; while playing, wall time elapsed since
// then is added on top.
func (p PlaybackState) PositionAt(nowMs int64) float64 {
	if !p.IsPlaying {
		return p.Position
	}

	return p.Position + float64(nowMs-p.UpdatedAt)/1000
}

func playbackFromRepo(st room.PlaybackState) PlaybackState {
	var forcedBy *string
	if st.ForcedBy != "" {
		forcedBy = &st.ForcedBy
	}

	return PlaybackState{
		URL:         st.URL,
		IsPlaying:   st.IsPlaying,
		Position:    st.Position,
		UpdatedAt:   st.UpdatedAt,
		ForcedBy:    forcedBy,
		UpdateToken: st.UpdateToken,
	}
}

type QueueEntry struct {
	Id          string `json:"id"`
	URL         string `json:"url"`
	SubmittedBy string `json:"submitted_by"`
	SubmittedAt int64  `json:"submitted_at"`
}

type HistoryEntry struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	SubmittedBy string `json:"submitted_by"`
	PlayedAt    int64  `json:"played_at"`
}

type RoomState struct {
	RoomId   string        `json:"room_id"`
	Playback PlaybackState `json:"playback"`
	Queue    []QueueEntry  `json:"queue"`
}

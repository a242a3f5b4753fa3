package room

// PlaybackState is the shared "what is playing now" document for a room.
// Position is the offset valid as of UpdatedAt (unix millis, server clock),
// not the live position: effective position at time now is
// Position + (now-UpdatedAt)/1000 while IsPlaying.
type PlaybackState struct {
	URL         string  `redis:"url" json:"url"`
	IsPlaying   bool    `redis:"is_playing" json:"is_playing"`
	Position    float64 `redis:"position" json:"position"`
	UpdatedAt   int64   `redis:"updated_at" json:"updated_at"`
	ForcedBy    string  `redis:"forced_by" json:"forced_by"`
	UpdateToken string  `redis:"update_token" json:"update_token"`
}

type QueueEntry struct {
	URL         string `redis:"url" json:"url"`
	SubmittedBy string `redis:"submitted_by" json:"submitted_by"`
	SubmittedAt int64  `redis:"submitted_at" json:"submitted_at"`
}

type HistoryEntry struct {
	URL         string `redis:"url" json:"url"`
	Title       string `redis:"title" json:"title"`
	Thumbnail   string `redis:"thumbnail" json:"thumbnail"`
	SubmittedBy string `redis:"submitted_by" json:"submitted_by"`
	PlayedAt    int64  `redis:"played_at" json:"played_at"`
}

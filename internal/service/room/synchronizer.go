package room

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/syncroom/server/internal/repository/room"
	"github.com/syncroom/server/pkg/videoid"
)

type SyncEventType string

const (
	// SyncEventState announces a new playback snapshot.
	SyncEventState SyncEventType = "state"
	// SyncEventSeek instructs the viewer's player to jump to Target.
	SyncEventSeek SyncEventType = "seek"
	// SyncEventIdle means the room has no current video.
	SyncEventIdle SyncEventType = "idle"
	// SyncEventUnsupported means no video id could be extracted from the
	// current url; the viewer renders an error state instead of a player.
	SyncEventUnsupported SyncEventType = "unsupported_media"
)

type SyncEvent struct {
	Type   SyncEventType  `json:"type"`
	State  *PlaybackState `json:"state,omitempty"`
	Target float64        `json:"target,omitempty"`
}

// Synchronizer is the per-viewer playback loop. It owns one subscription
// to the room's playback document, turns every snapshot into an outbound
// event, and issues a corrective seek when the viewer's reported position
// drifts past the threshold. Intents it publishes itself open a short
// suppression window so the echoed snapshot does not bounce back into a
// correction.
type Synchronizer struct {
	roomId   string
	viewerId string

	roomRepo       iRoomRepo
	driftThreshold time.Duration
	suppressWindow time.Duration
	now            func() time.Time

	events chan SyncEvent

	mu            sync.Mutex
	suppressUntil time.Time
	hasReport     bool
	reportedPos   float64
	reportedAt    time.Time
	reportedPlay  bool
}

func (s service) NewSynchronizer(roomId, viewerId string) *Synchronizer {
	return &Synchronizer{
		roomId:         roomId,
		viewerId:       viewerId,
		roomRepo:       s.roomRepo,
		driftThreshold: s.driftThreshold,
		suppressWindow: s.suppressWindow,
		now:            time.Now,
		events:         make(chan SyncEvent, 16),
	}
}

// Events is the outbound stream for the viewer's transport. Closed when
// Run returns.
func (sy *Synchronizer) Events() <-chan SyncEvent {
	return sy.events
}

// Run blocks consuming playback snapshots until ctx is cancelled or the
// subscription drops. The current state is announced once up front so a
// late joiner converges without waiting for the next mutation.
func (sy *Synchronizer) Run(ctx context.Context) error {
	defer close(sy.events)

	snapshots, stop, err := sy.roomRepo.SubscribePlayback(ctx, sy.roomId)
	if err != nil {
		return err
	}
	defer stop()

	if state, err := sy.roomRepo.GetPlaybackState(ctx, sy.roomId); err == nil {
		sy.apply(state)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-snapshots:
			if !ok {
				return nil
			}
			sy.apply(state)
		}
	}
}

func (sy *Synchronizer) apply(raw room.PlaybackState) {
	state := playbackFromRepo(raw)

	if state.URL == "" {
		sy.emit(SyncEvent{Type: SyncEventIdle, State: &state})
		return
	}

	if _, err := videoid.Extract(state.URL); err != nil {
		sy.emit(SyncEvent{Type: SyncEventUnsupported, State: &state})
		return
	}

	sy.emit(SyncEvent{Type: SyncEventState, State: &state})

	now := sy.now()
	target := state.PositionAt(now.UnixMilli())

	sy.mu.Lock()
	suppressed := now.Before(sy.suppressUntil)
	known := sy.hasReport
	local := sy.estimateLocalLocked(now)
	sy.mu.Unlock()

	if suppressed || !known {
		return
	}

	if math.Abs(target-local) > sy.driftThreshold.Seconds() {
		sy.emit(SyncEvent{Type: SyncEventSeek, State: &state, Target: target})
	}
}

// estimateLocalLocked extrapolates the viewer's player position from its
// last progress report.
func (sy *Synchronizer) estimateLocalLocked(now time.Time) float64 {
	if !sy.reportedPlay {
		return sy.reportedPos
	}

	return sy.reportedPos + now.Sub(sy.reportedAt).Seconds()
}

// ReportPosition records the viewer's player progress; it feeds the drift
// check and never touches the store.
func (sy *Synchronizer) ReportPosition(position float64, playing bool) {
	sy.mu.Lock()
	defer sy.mu.Unlock()

	sy.hasReport = true
	sy.reportedPos = position
	sy.reportedAt = sy.now()
	sy.reportedPlay = playing
}

// PublishIntent pushes the viewer's own play/pause/seek to the store and
// opens the suppression window for the echoed snapshot.
func (sy *Synchronizer) PublishIntent(ctx context.Context, playing bool, position float64) error {
	now := sy.now()

	sy.mu.Lock()
	sy.suppressUntil = now.Add(sy.suppressWindow)
	sy.hasReport = true
	sy.reportedPos = position
	sy.reportedAt = now
	sy.reportedPlay = playing
	sy.mu.Unlock()

	return sy.roomRepo.UpdatePlaybackIntent(ctx, &room.UpdatePlaybackIntentParams{
		RoomId:    sy.roomId,
		IsPlaying: playing,
		Position:  position,
		UpdatedAt: sy.roomRepo.ServerNowMs(ctx),
	})
}

func (sy *Synchronizer) emit(event SyncEvent) {
	select {
	case sy.events <- event:
	default:
		// the next snapshot supersedes a dropped one
	}
}

package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/room"
)

func TestPositionAt(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

	playing := PlaybackState{URL: videoA, IsPlaying: true, Position: 10, UpdatedAt: base}
	assert.InDelta(t, 15.0, playing.PositionAt(base+5000), 1e-9, "5s elapsed while playing")
	assert.InDelta(t, 10.0, playing.PositionAt(base), 1e-9, "no time elapsed")

	paused := PlaybackState{URL: videoA, IsPlaying: false, Position: 10, UpdatedAt: base}
	assert.InDelta(t, 10.0, paused.PositionAt(base+5000), 1e-9, "paused position does not advance")
}

func TestPlaybackStatus(t *testing.T) {
	assert.Equal(t, StatusStopped, PlaybackState{}.Status())
	assert.Equal(t, StatusPlaying, PlaybackState{URL: videoA, IsPlaying: true}.Status())
	assert.Equal(t, StatusPaused, PlaybackState{URL: videoA}.Status())
}

func newTestSynchronizer(now time.Time) *Synchronizer {
	return &Synchronizer{
		roomId:         "room",
		viewerId:       "viewer",
		driftThreshold: time.Second,
		suppressWindow: 500 * time.Millisecond,
		now:            func() time.Time { return now },
		events:         make(chan SyncEvent, 16),
	}
}

func drainEvents(sy *Synchronizer) []SyncEvent {
	var events []SyncEvent
	for {
		select {
		case event := <-sy.events:
			events = append(events, event)
		default:
			return events
		}
	}
}

type failingSubscribeRepo struct {
	iRoomRepo
}

func (failingSubscribeRepo) SubscribePlayback(context.Context, string) (<-chan room.PlaybackState, func(), error) {
	return nil, nil, errors.New("store unreachable")
}

func TestSynchronizerRunClosesEventsOnSubscribeFailure(t *testing.T) {
	sy := newTestSynchronizer(time.Now())
	sy.roomRepo = failingSubscribeRepo{}

	require.Error(t, sy.Run(context.Background()))

	// a writer ranging Events() must exit, not hang on an open channel
	done := make(chan struct{})
	go func() {
		for range sy.Events() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("events channel left open after Run returned")
	}
}

func TestSynchronizerCorrectsDrift(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)
	sy := newTestSynchronizer(now)

	// viewer's player sits at 10s while the shared state says 15s
	sy.ReportPosition(10, true)
	sy.apply(room.PlaybackState{
		URL:       videoA,
		IsPlaying: true,
		Position:  10,
		UpdatedAt: now.Add(-5 * time.Second).UnixMilli(),
	})

	events := drainEvents(sy)
	require.Len(t, events, 2)
	assert.Equal(t, SyncEventState, events[0].Type)
	assert.Equal(t, SyncEventSeek, events[1].Type)
	assert.InDelta(t, 15.0, events[1].Target, 0.05)
}

func TestSynchronizerWithinThresholdNoSeek(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)
	sy := newTestSynchronizer(now)

	// 0.5s behind target, under the 1s threshold
	sy.ReportPosition(14.5, true)
	sy.apply(room.PlaybackState{
		URL:       videoA,
		IsPlaying: true,
		Position:  10,
		UpdatedAt: now.Add(-5 * time.Second).UnixMilli(),
	})

	events := drainEvents(sy)
	require.Len(t, events, 1)
	assert.Equal(t, SyncEventState, events[0].Type)
}

func TestSynchronizerSuppressionWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)
	sy := newTestSynchronizer(now)

	sy.ReportPosition(0, true)
	sy.suppressUntil = now.Add(200 * time.Millisecond)

	// badly drifted snapshot, but it is the echo of our own write
	sy.apply(room.PlaybackState{
		URL:       videoA,
		IsPlaying: true,
		Position:  100,
		UpdatedAt: now.UnixMilli(),
	})

	events := drainEvents(sy)
	require.Len(t, events, 1)
	assert.Equal(t, SyncEventState, events[0].Type, "no correction inside the suppression window")
}

func TestSynchronizerNoReportNoSeek(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)
	sy := newTestSynchronizer(now)

	sy.apply(room.PlaybackState{
		URL:       videoA,
		IsPlaying: true,
		Position:  100,
		UpdatedAt: now.UnixMilli(),
	})

	events := drainEvents(sy)
	require.Len(t, events, 1)
	assert.Equal(t, SyncEventState, events[0].Type, "without a progress report drift is unknown")
}

func TestSynchronizerIdleState(t *testing.T) {
	sy := newTestSynchronizer(time.Now())

	sy.apply(room.PlaybackState{URL: ""})

	events := drainEvents(sy)
	require.Len(t, events, 1)
	assert.Equal(t, SyncEventIdle, events[0].Type)
}

func TestSynchronizerUnsupportedMedia(t *testing.T) {
	sy := newTestSynchronizer(time.Now())

	sy.apply(room.PlaybackState{URL: "https://example.com/not-a-video", IsPlaying: true})

	events := drainEvents(sy)
	require.Len(t, events, 1)
	assert.Equal(t, SyncEventUnsupported, events[0].Type)
}

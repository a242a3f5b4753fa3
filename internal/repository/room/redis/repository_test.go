package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/room"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Hour)
}

func enqueue(t *testing.T, r *repo, roomId, entryId, url string) {
	t.Helper()

	require.NoError(t, r.Enqueue(context.Background(), &room.EnqueueParams{
		RoomId:      roomId,
		EntryId:     entryId,
		URL:         url,
		SubmittedBy: "alice",
		SubmittedAt: time.Now().UnixMilli(),
	}))
}

func TestQueueFifo(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, _, err := r.PeekOldest(ctx, "r1")
	assert.ErrorIs(t, err, room.ErrQueueEmpty)

	enqueue(t, r, "r1", "e1", "url-1")
	enqueue(t, r, "r1", "e2", "url-2")
	enqueue(t, r, "r1", "e3", "url-3")

	headId, head, err := r.PeekOldest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "e1", headId)
	assert.Equal(t, "url-1", head.URL)
	assert.Equal(t, "alice", head.SubmittedBy)

	ids, err := r.GetEntryIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, ids)

	length, err := r.GetQueueLength(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, length)
}

func TestRemoveEntry(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	enqueue(t, r, "r1", "e1", "url-1")
	enqueue(t, r, "r1", "e2", "url-2")

	// removal is positional-independent
	require.NoError(t, r.RemoveEntry(ctx, &room.RemoveEntryParams{RoomId: "r1", EntryId: "e2"}))

	err := r.RemoveEntry(ctx, &room.RemoveEntryParams{RoomId: "r1", EntryId: "e2"})
	assert.ErrorIs(t, err, room.ErrEntryNotFound)

	ids, err := r.GetEntryIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids)
}

func TestPlaybackRoundtrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetPlaybackState(ctx, "r1")
	assert.ErrorIs(t, err, room.ErrPlaybackNotFound)

	state := room.PlaybackState{
		URL:         "url-1",
		IsPlaying:   true,
		Position:    12.5,
		UpdatedAt:   1700000000000,
		ForcedBy:    "alice",
		UpdateToken: "tok-1",
	}
	require.NoError(t, r.SetPlaybackState(ctx, &room.SetPlaybackStateParams{RoomId: "r1", State: state}))

	got, err := r.GetPlaybackState(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	url, err := r.GetPlaybackURL(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "url-1", url)
}

func TestUpdatePlaybackIntent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	err := r.UpdatePlaybackIntent(ctx, &room.UpdatePlaybackIntentParams{RoomId: "r1", Position: 5})
	assert.ErrorIs(t, err, room.ErrPlaybackNotFound)

	require.NoError(t, r.SetPlaybackState(ctx, &room.SetPlaybackStateParams{RoomId: "r1", State: room.PlaybackState{
		URL:         "url-1",
		IsPlaying:   true,
		UpdatedAt:   1,
		ForcedBy:    "alice",
		UpdateToken: "tok-1",
	}}))

	require.NoError(t, r.UpdatePlaybackIntent(ctx, &room.UpdatePlaybackIntentParams{
		RoomId:    "r1",
		IsPlaying: false,
		Position:  42,
		UpdatedAt: 2,
	}))

	got, err := r.GetPlaybackState(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "url-1", got.URL, "intent must not touch the url")
	assert.Equal(t, "tok-1", got.UpdateToken, "intent must not touch the update token")
	assert.False(t, got.IsPlaying)
	assert.Equal(t, float64(42), got.Position)
	assert.Equal(t, int64(2), got.UpdatedAt)
}

func TestPromoteHead(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	enqueue(t, r, "r1", "e1", "url-1")

	res, err := r.PromoteHead(ctx, &room.PromoteHeadParams{RoomId: "r1", EntryId: "e1", UpdateToken: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "url-1", res.Current.URL)
	assert.True(t, res.Current.IsPlaying)
	assert.Equal(t, float64(0), res.Current.Position)
	assert.Equal(t, "alice", res.Current.ForcedBy)
	assert.Equal(t, "tok-1", res.Current.UpdateToken)
	assert.Equal(t, "", res.Previous.URL)

	// the consumed entry is gone from both representations
	_, _, err = r.PeekOldest(ctx, "r1")
	assert.ErrorIs(t, err, room.ErrQueueEmpty)
	_, err = r.GetEntry(ctx, "r1", "e1")
	assert.ErrorIs(t, err, room.ErrEntryNotFound)

	state, err := r.GetPlaybackState(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "url-1", state.URL)
}

func TestPromoteHeadStale(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	enqueue(t, r, "r1", "e1", "url-1")

	// caller holds an id that is no longer the head
	_, err := r.PromoteHead(ctx, &room.PromoteHeadParams{RoomId: "r1", EntryId: "e9", UpdateToken: "tok-1"})
	assert.ErrorIs(t, err, room.ErrStaleHead)

	// caller observed an empty queue but an entry appeared since
	_, err = r.PromoteHead(ctx, &room.PromoteHeadParams{RoomId: "r1", EntryId: "", UpdateToken: "tok-2"})
	assert.ErrorIs(t, err, room.ErrStaleHead)

	// neither attempt consumed the entry
	headId, _, err := r.PeekOldest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "e1", headId)
}

func TestPromoteHeadEmptyWritesStoppedState(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	res, err := r.PromoteHead(ctx, &room.PromoteHeadParams{RoomId: "r1", EntryId: "", UpdateToken: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "", res.Current.URL)
	assert.False(t, res.Current.IsPlaying)
	assert.Equal(t, "tok-1", res.Current.UpdateToken)
	assert.NotZero(t, res.Current.UpdatedAt)
}

func TestPromoteHeadOnlyIfIdle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetPlaybackState(ctx, &room.SetPlaybackStateParams{RoomId: "r1", State: room.PlaybackState{
		URL:         "url-1",
		IsPlaying:   true,
		UpdateToken: "tok-1",
	}}))
	enqueue(t, r, "r1", "e1", "url-2")

	_, err := r.PromoteHead(ctx, &room.PromoteHeadParams{RoomId: "r1", EntryId: "e1", OnlyIfIdle: true, UpdateToken: "tok-2"})
	assert.ErrorIs(t, err, room.ErrNotIdle)

	// nothing changed
	headId, _, err := r.PeekOldest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "e1", headId)

	state, err := r.GetPlaybackState(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "url-1", state.URL)
}

func TestHistoryAppendOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for i, url := range []string{"url-1", "url-2", "url-3"} {
		require.NoError(t, r.AppendHistory(ctx, &room.AppendHistoryParams{
			RoomId:  "r1",
			EntryId: string(rune('a' + i)),
			Entry: room.HistoryEntry{
				URL:         url,
				Title:       "title " + url,
				SubmittedBy: "alice",
				PlayedAt:    int64(i + 1),
			},
		}))
	}

	entries, err := r.GetHistory(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "url-3", entries[0].URL, "most recent first")
	assert.Equal(t, "url-1", entries[2].URL)
}

func TestSubscribePlayback(t *testing.T) {
	r := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, r.SetPlaybackState(ctx, &room.SetPlaybackStateParams{RoomId: "r1", State: room.PlaybackState{
		URL:         "url-1",
		IsPlaying:   true,
		UpdateToken: "tok-1",
	}}))

	snapshots, stop, err := r.SubscribePlayback(ctx, "r1")
	require.NoError(t, err)
	defer stop()

	require.NoError(t, r.UpdatePlaybackIntent(ctx, &room.UpdatePlaybackIntentParams{
		RoomId:    "r1",
		IsPlaying: false,
		Position:  7,
		UpdatedAt: 9,
	}))

	select {
	case state := <-snapshots:
		assert.Equal(t, "url-1", state.URL)
		assert.False(t, state.IsPlaying)
		assert.Equal(t, float64(7), state.Position)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot received")
	}
}

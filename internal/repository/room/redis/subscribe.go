package redis

import (
	"context"
	"encoding/json"

	"github.com/syncroom/server/internal/repository/room"
)

// SubscribePlayback delivers a full PlaybackState snapshot on every
// mutation of the room's playback document. Snapshots a slow consumer
// misses are dropped; each one supersedes the previous. The returned stop
// function tears the subscription down and closes the channel.
func (r repo) SubscribePlayback(ctx context.Context, roomId string) (<-chan room.PlaybackState, func(), error) {
	sub := r.rc.Subscribe(ctx, r.getPlaybackChannel(roomId))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	ch := make(chan room.PlaybackState, 16)
	go func() {
		defer close(ch)
		for msg := range sub.Channel() {
			var state room.PlaybackState
			if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
				continue
			}

			select {
			case ch <- state:
			default:
			}
		}
	}()

	return ch, func() { sub.Close() }, nil
}

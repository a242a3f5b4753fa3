package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/syncroom/server/internal/repository/room"
)

func (r repo) getPlaybackKey(roomId string) string {
	return "room:" + roomId + ":playback"
}

func (r repo) getPlaybackChannel(roomId string) string {
	return "room:" + roomId + ":playback:events"
}

// publishPlayback fans the full snapshot out to every subscriber of the
// room's playback channel.
func (r repo) publishPlayback(ctx context.Context, c redis.Cmdable, roomId string, state room.PlaybackState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	c.Publish(ctx, r.getPlaybackChannel(roomId), payload)

	return nil
}

func (r repo) SetPlaybackState(ctx context.Context, params *room.SetPlaybackStateParams) error {
	pipe := r.rc.TxPipeline()

	playbackKey := r.getPlaybackKey(params.RoomId)
	pipe.HSet(ctx, playbackKey, params.State)
	pipe.Expire(ctx, playbackKey, r.expireDuration)
	if err := r.publishPlayback(ctx, pipe, params.RoomId, params.State); err != nil {
		return err
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set playback state: %w", err)
	}

	return nil
}

func (r repo) GetPlaybackState(ctx context.Context, roomId string) (room.PlaybackState, error) {
	playbackKey := r.getPlaybackKey(roomId)

	cmd := r.rc.HGetAll(ctx, playbackKey)
	if err := cmd.Err(); err != nil {
		return room.PlaybackState{}, fmt.Errorf("failed to get playback state: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.PlaybackState{}, room.ErrPlaybackNotFound
	}

	var state room.PlaybackState
	if err := cmd.Scan(&state); err != nil {
		return room.PlaybackState{}, fmt.Errorf("failed to scan playback state: %w", err)
	}

	r.rc.Expire(ctx, playbackKey, r.expireDuration)

	return state, nil
}

func (r repo) GetPlaybackURL(ctx context.Context, roomId string) (string, error) {
	url, err := r.rc.HGet(ctx, r.getPlaybackKey(roomId), "url").Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}

		return "", fmt.Errorf("failed to get playback url: %w", err)
	}

	return url, nil
}

// UpdatePlaybackIntent applies a viewer's partial play/pause/seek update.
// Conflicting simultaneous intents resolve last-writer-wins; URL, ForcedBy
// and UpdateToken are never touched here.
func (r repo) UpdatePlaybackIntent(ctx context.Context, params *room.UpdatePlaybackIntentParams) error {
	playbackKey := r.getPlaybackKey(params.RoomId)

	exists, err := r.rc.Exists(ctx, playbackKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check playback state: %w", err)
	}
	if exists == 0 {
		return room.ErrPlaybackNotFound
	}

	if err := r.rc.HSet(ctx, playbackKey,
		"is_playing", params.IsPlaying,
		"position", params.Position,
		"updated_at", params.UpdatedAt,
	).Err(); err != nil {
		return fmt.Errorf("failed to update playback state: %w", err)
	}

	var state room.PlaybackState
	if err := r.rc.HGetAll(ctx, playbackKey).Scan(&state); err != nil {
		return fmt.Errorf("failed to read back playback state: %w", err)
	}

	r.rc.Expire(ctx, playbackKey, r.expireDuration)

	return r.publishPlayback(ctx, r.rc, params.RoomId, state)
}

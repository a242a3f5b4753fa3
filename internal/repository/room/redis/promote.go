package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/syncroom/server/internal/repository/room"
)

// PromoteHead atomically consumes the observed queue head and installs it
// as the room's playback state, or writes the terminal stopped state when
// the caller observed an empty queue. The queue and playback keys are
// WATCHed, so first committer wins: a racing promotion, enqueue or removal
// invalidates the transaction and surfaces as ErrStaleHead. No subscriber
// can ever observe the head entry and the new playback state both present
// or both absent.
func (r repo) PromoteHead(ctx context.Context, params *room.PromoteHeadParams) (room.PromoteResult, error) {
	playbackKey := r.getPlaybackKey(params.RoomId)
	queueKey := r.getQueueKey(params.RoomId)

	now := r.ServerNowMs(ctx)

	var result room.PromoteResult

	err := r.rc.Watch(ctx, func(tx *redis.Tx) error {
		// re-validate the head read outside the transaction
		ids, err := tx.ZRange(ctx, queueKey, 0, 0).Result()
		if err != nil {
			return err
		}

		if params.EntryId == "" {
			if len(ids) != 0 {
				return room.ErrStaleHead
			}
		} else if len(ids) == 0 || ids[0] != params.EntryId {
			return room.ErrStaleHead
		}

		var prev room.PlaybackState
		if err := tx.HGetAll(ctx, playbackKey).Scan(&prev); err != nil {
			return err
		}

		if params.OnlyIfIdle && prev.URL != "" {
			return room.ErrNotIdle
		}

		next := room.PlaybackState{
			URL:         "",
			IsPlaying:   false,
			Position:    0,
			UpdatedAt:   now,
			ForcedBy:    "",
			UpdateToken: params.UpdateToken,
		}

		var entry room.QueueEntry
		if params.EntryId != "" {
			if err := tx.HGetAll(ctx, r.getEntryKey(params.RoomId, params.EntryId)).Scan(&entry); err != nil {
				return err
			}
			if entry.URL == "" {
				return room.ErrStaleHead
			}

			next.URL = entry.URL
			next.IsPlaying = true
			next.ForcedBy = entry.SubmittedBy
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if params.EntryId != "" {
				pipe.ZRem(ctx, queueKey, params.EntryId)
				pipe.Del(ctx, r.getEntryKey(params.RoomId, params.EntryId))
			}
			pipe.HSet(ctx, playbackKey, next)
			pipe.Expire(ctx, playbackKey, r.expireDuration)
			pipe.Publish(ctx, r.getPlaybackChannel(params.RoomId), payload)
			return nil
		})
		if err != nil {
			return err
		}

		result = room.PromoteResult{
			Previous:        prev,
			Current:         next,
			Promoted:        entry,
			PromotedEntryId: params.EntryId,
		}

		return nil
	}, playbackKey, queueKey)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return room.PromoteResult{}, room.ErrStaleHead
		}
		if errors.Is(err, room.ErrStaleHead) || errors.Is(err, room.ErrNotIdle) {
			return room.PromoteResult{}, err
		}

		return room.PromoteResult{}, fmt.Errorf("failed to promote queue head: %w", err)
	}

	return result, nil
}

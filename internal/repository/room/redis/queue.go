package redis

import (
	"context"
	"fmt"

	"github.com/syncroom/server/internal/repository/room"
)

func (r repo) getQueueKey(roomId string) string {
	return "room:" + roomId + ":queue"
}

func (r repo) getEntryKey(roomId, entryId string) string {
	return "room:" + roomId + ":entry:" + entryId
}

func (r repo) Enqueue(ctx context.Context, params *room.EnqueueParams) error {
	pipe := r.rc.TxPipeline()

	entry := room.QueueEntry{
		URL:         params.URL,
		SubmittedBy: params.SubmittedBy,
		SubmittedAt: params.SubmittedAt,
	}
	entryKey := r.getEntryKey(params.RoomId, params.EntryId)
	pipe.HSet(ctx, entryKey, entry)
	pipe.Expire(ctx, entryKey, r.expireDuration)

	queueKey := r.getQueueKey(params.RoomId)
	r.addWithIncrement(ctx, pipe, queueKey, params.EntryId)
	pipe.Expire(ctx, queueKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to enqueue entry: %w", err)
	}

	return nil
}

// PeekOldest returns the id and body of the FIFO head without consuming it.
func (r repo) PeekOldest(ctx context.Context, roomId string) (string, room.QueueEntry, error) {
	ids, err := r.rc.ZRange(ctx, r.getQueueKey(roomId), 0, 0).Result()
	if err != nil {
		return "", room.QueueEntry{}, fmt.Errorf("failed to read queue head: %w", err)
	}

	if len(ids) == 0 {
		return "", room.QueueEntry{}, room.ErrQueueEmpty
	}

	entry, err := r.GetEntry(ctx, roomId, ids[0])
	if err != nil {
		return "", room.QueueEntry{}, err
	}

	return ids[0], entry, nil
}

func (r repo) GetEntry(ctx context.Context, roomId, entryId string) (room.QueueEntry, error) {
	var entry room.QueueEntry
	if err := r.rc.HGetAll(ctx, r.getEntryKey(roomId, entryId)).Scan(&entry); err != nil {
		return room.QueueEntry{}, fmt.Errorf("failed to get queue entry: %w", err)
	}

	if entry.URL == "" {
		return room.QueueEntry{}, room.ErrEntryNotFound
	}

	return entry, nil
}

func (r repo) GetEntryIds(ctx context.Context, roomId string) ([]string, error) {
	queueKey := r.getQueueKey(roomId)
	entryIds, err := r.rc.ZRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry ids: %w", err)
	}

	r.rc.Expire(ctx, queueKey, r.expireDuration)

	return entryIds, nil
}

func (r repo) GetQueueLength(ctx context.Context, roomId string) (int, error) {
	cmd := r.rc.ZCard(ctx, r.getQueueKey(roomId))
	if err := cmd.Err(); err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}

	return int(cmd.Val()), nil
}

// RemoveEntry deletes a specific entry regardless of its position. Used by
// the manual removal path, never by promotion.
func (r repo) RemoveEntry(ctx context.Context, params *room.RemoveEntryParams) error {
	res, err := r.rc.ZRem(ctx, r.getQueueKey(params.RoomId), params.EntryId).Result()
	if err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	if res == 0 {
		return room.ErrEntryNotFound
	}

	if err := r.rc.Del(ctx, r.getEntryKey(params.RoomId, params.EntryId)).Err(); err != nil {
		return fmt.Errorf("failed to delete queue entry body: %w", err)
	}

	return nil
}

package redis

import (
	"context"
	"fmt"

	"github.com/syncroom/server/internal/repository/room"
)

func (r repo) getHistoryKey(roomId string) string {
	return "room:" + roomId + ":history"
}

func (r repo) getHistoryEntryKey(roomId, entryId string) string {
	return "room:" + roomId + ":played:" + entryId
}

func (r repo) AppendHistory(ctx context.Context, params *room.AppendHistoryParams) error {
	pipe := r.rc.TxPipeline()

	entryKey := r.getHistoryEntryKey(params.RoomId, params.EntryId)
	pipe.HSet(ctx, entryKey, params.Entry)
	pipe.Expire(ctx, entryKey, r.expireDuration)

	historyKey := r.getHistoryKey(params.RoomId)
	r.addWithIncrement(ctx, pipe, historyKey, params.EntryId)
	pipe.Expire(ctx, historyKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// GetHistory returns played entries, most recent first.
func (r repo) GetHistory(ctx context.Context, roomId string) ([]room.HistoryEntry, error) {
	entryIds, err := r.rc.ZRevRange(ctx, r.getHistoryKey(roomId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history ids: %w", err)
	}

	entries := make([]room.HistoryEntry, 0, len(entryIds))
	for _, entryId := range entryIds {
		var entry room.HistoryEntry
		if err := r.rc.HGetAll(ctx, r.getHistoryEntryKey(roomId, entryId)).Scan(&entry); err != nil {
			return nil, fmt.Errorf("failed to get history entry: %w", err)
		}

		if entry.URL == "" {
			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

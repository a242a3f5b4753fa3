package room

import (
	"context"
	"fmt"
)

func (s service) GetHistory(ctx context.Context, roomId string) ([]HistoryEntry, error) {
	if err := s.checkRoomExists(ctx, roomId); err != nil {
		return nil, err
	}

	entries, err := s.roomRepo.GetHistory(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	history := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		history = append(history, HistoryEntry{
			URL:         entry.URL,
			Title:       entry.Title,
			Thumbnail:   entry.Thumbnail,
			SubmittedBy: entry.SubmittedBy,
			PlayedAt:    entry.PlayedAt,
		})
	}

	return history, nil
}

package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/syncroom/server/internal/repository/room"
)

type AddVideoParams struct {
	RoomId      string
	VideoURL    string
	SubmittedBy string
}

type AddVideoResponse struct {
	Entry QueueEntry
	// Promoted is set when the room was idle and the submitted video went
	// straight to the playback slot.
	Promoted bool
}

// AddVideo appends a submission to the room's queue. Duplicate urls are
// allowed. When the room has no current video the new head is promoted
// immediately through the same routine the next-video path uses.
func (s service) AddVideo(ctx context.Context, params *AddVideoParams) (AddVideoResponse, error) {
	if err := s.checkRoomExists(ctx, params.RoomId); err != nil {
		return AddVideoResponse{}, err
	}

	queueLength, err := s.roomRepo.GetQueueLength(ctx, params.RoomId)
	if err != nil {
		return AddVideoResponse{}, fmt.Errorf("failed to get queue length: %w", err)
	}
	if queueLength >= s.queueLimit {
		return AddVideoResponse{}, ErrQueueLimitReached
	}

	entryId := uuid.NewString()
	submittedAt := s.roomRepo.ServerNowMs(ctx)
	if err := s.roomRepo.Enqueue(ctx, &room.EnqueueParams{
		RoomId:      params.RoomId,
		EntryId:     entryId,
		URL:         params.VideoURL,
		SubmittedBy: params.SubmittedBy,
		SubmittedAt: submittedAt,
	}); err != nil {
		return AddVideoResponse{}, fmt.Errorf("failed to enqueue video: %w", err)
	}

	resp := AddVideoResponse{Entry: QueueEntry{
		Id:          entryId,
		URL:         params.VideoURL,
		SubmittedBy: params.SubmittedBy,
		SubmittedAt: submittedAt,
	}}

	playbackURL, err := s.roomRepo.GetPlaybackURL(ctx, params.RoomId)
	if err != nil {
		return AddVideoResponse{}, fmt.Errorf("failed to get playback url: %w", err)
	}

	if playbackURL == "" {
		res, err := s.tryPromote(ctx, params.RoomId, true)
		switch {
		case err == nil:
			resp.Promoted = res.PromotedEntryId != ""
		case errors.Is(err, room.ErrNotIdle), errors.Is(err, room.ErrStaleHead):
			// another submission or advancement beat us to it
		default:
			s.logger.WarnContext(ctx, "auto-promotion failed", "room_id", params.RoomId, "error", err)
		}
	}

	return resp, nil
}

type RemoveVideoParams struct {
	RoomId  string
	EntryId string
}

func (s service) RemoveVideo(ctx context.Context, params *RemoveVideoParams) error {
	if err := s.checkRoomExists(ctx, params.RoomId); err != nil {
		return err
	}

	if err := s.roomRepo.RemoveEntry(ctx, &room.RemoveEntryParams{
		RoomId:  params.RoomId,
		EntryId: params.EntryId,
	}); err != nil {
		if errors.Is(err, room.ErrEntryNotFound) {
			return ErrEntryNotFound
		}

		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	return nil
}

func (s service) GetQueue(ctx context.Context, roomId string) ([]QueueEntry, error) {
	if err := s.checkRoomExists(ctx, roomId); err != nil {
		return nil, err
	}

	return s.getQueue(ctx, roomId)
}

func (s service) getQueue(ctx context.Context, roomId string) ([]QueueEntry, error) {
	entryIds, err := s.roomRepo.GetEntryIds(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry ids: %w", err)
	}

	entries := make([]QueueEntry, 0, len(entryIds))
	for _, entryId := range entryIds {
		entry, err := s.roomRepo.GetEntry(ctx, roomId, entryId)
		if err != nil {
			if errors.Is(err, room.ErrEntryNotFound) {
				// consumed by a concurrent promotion between the two reads
				continue
			}

			return nil, fmt.Errorf("failed to get queue entry: %w", err)
		}

		entries = append(entries, QueueEntry{
			Id:          entryId,
			URL:         entry.URL,
			SubmittedBy: entry.SubmittedBy,
			SubmittedAt: entry.SubmittedAt,
		})
	}

	return entries, nil
}

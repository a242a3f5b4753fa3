package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/syncroom/server/internal/repository/room"
	"github.com/syncroom/server/pkg/videoid"
)

type NextVideoResponse struct {
	// Stopped is set when the queue was empty and the room was left in the
	// terminal stopped state.
	Stopped  bool
	Current  PlaybackState
	Promoted *QueueEntry
}

// NextVideo advances the room to the next queued video. Concurrent calls
// converge on exactly one promotion per queued entry; a caller that loses
// every retry to faster racers reports the state they produced instead of
// failing.
func (s service) NextVideo(ctx context.Context, roomId string) (NextVideoResponse, error) {
	if err := s.checkRoomExists(ctx, roomId); err != nil {
		return NextVideoResponse{}, err
	}

	res, err := s.tryPromote(ctx, roomId, false)
	if err != nil {
		if !errors.Is(err, room.ErrStaleHead) {
			return NextVideoResponse{}, fmt.Errorf("failed to advance: %w", err)
		}

		state, err := s.roomRepo.GetPlaybackState(ctx, roomId)
		if err != nil {
			return NextVideoResponse{}, fmt.Errorf("failed to get playback state: %w", err)
		}

		return NextVideoResponse{
			Stopped: state.URL == "",
			Current: playbackFromRepo(state),
		}, nil
	}

	resp := NextVideoResponse{
		Stopped: res.Current.URL == "",
		Current: playbackFromRepo(res.Current),
	}
	if res.PromotedEntryId != "" {
		resp.Promoted = &QueueEntry{
			Id:          res.PromotedEntryId,
			URL:         res.Promoted.URL,
			SubmittedBy: res.Promoted.SubmittedBy,
			SubmittedAt: res.Promoted.SubmittedAt,
		}
	}

	return resp, nil
}

// tryPromote runs one bounded-retry pass of the advancement algorithm:
// peek the queue head, then consume-and-install it in a single store
// transaction that re-validates the head. A stale head means a concurrent
// caller won; the loop re-reads and tries the new head.
func (s service) tryPromote(ctx context.Context, roomId string, onlyIfIdle bool) (room.PromoteResult, error) {
	var lastErr error

	for attempt := 0; attempt < s.promoteAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * s.promoteBackoff
			backoff += time.Duration(rand.Int63n(int64(backoff)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return room.PromoteResult{}, ctx.Err()
			}
		}

		headId, _, err := s.roomRepo.PeekOldest(ctx, roomId)
		if err != nil {
			if errors.Is(err, room.ErrQueueEmpty) {
				// a drained queue on a retry means a racer consumed the
				// head we lost to; that is their promotion, not our cue
				// to stop the room
				if attempt > 0 {
					return room.PromoteResult{}, room.ErrStaleHead
				}
				headId = ""
			} else if errors.Is(err, room.ErrEntryNotFound) {
				// head consumed between the index and body reads
				lastErr = room.ErrStaleHead
				continue
			} else {
				return room.PromoteResult{}, err
			}
		}

		res, err := s.roomRepo.PromoteHead(ctx, &room.PromoteHeadParams{
			RoomId:      roomId,
			EntryId:     headId,
			OnlyIfIdle:  onlyIfIdle,
			UpdateToken: uuid.NewString(),
		})
		if err != nil {
			if errors.Is(err, room.ErrStaleHead) {
				lastErr = err
				continue
			}

			return room.PromoteResult{}, err
		}

		s.fileHistory(ctx, roomId, res.Previous)

		return res, nil
	}

	return room.PromoteResult{}, lastErr
}

// fileHistory appends the retired playback state to the room's history.
// Best-effort on purpose: losing a history record is tolerable, failing a
// committed promotion over it is not.
func (s service) fileHistory(ctx context.Context, roomId string, prev room.PlaybackState) {
	if prev.URL == "" {
		return
	}

	entry := room.HistoryEntry{
		URL:         prev.URL,
		SubmittedBy: prev.ForcedBy,
		PlayedAt:    s.roomRepo.ServerNowMs(ctx),
	}

	if s.metaFetcher != nil {
		if id, err := videoid.Extract(prev.URL); err == nil {
			metaCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
			defer cancel()

			if meta, err := s.metaFetcher.Fetch(metaCtx, id); err == nil {
				entry.Title = meta.Title
				entry.Thumbnail = meta.ThumbnailURL
			}
		}
	}

	if err := s.roomRepo.AppendHistory(ctx, &room.AppendHistoryParams{
		RoomId:  roomId,
		EntryId: uuid.NewString(),
		Entry:   entry,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to append history entry", "room_id", roomId, "url", prev.URL, "error", err)
	}
}

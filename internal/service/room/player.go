package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/syncroom/server/internal/repository/room"
)

func (s service) GetPlayerState(ctx context.Context, roomId string) (PlaybackState, error) {
	state, err := s.roomRepo.GetPlaybackState(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrPlaybackNotFound) {
			return PlaybackState{}, ErrRoomNotFound
		}

		return PlaybackState{}, fmt.Errorf("failed to get playback state: %w", err)
	}

	return playbackFromRepo(state), nil
}

type UpdatePlayerStateParams struct {
	RoomId    string
	IsPlaying bool
	Position  float64
}

// UpdatePlayerState publishes a viewer's play/pause/seek intent. Races
// between viewers resolve last-writer-wins at the store.
func (s service) UpdatePlayerState(ctx context.Context, params *UpdatePlayerStateParams) (PlaybackState, error) {
	if err := s.roomRepo.UpdatePlaybackIntent(ctx, &room.UpdatePlaybackIntentParams{
		RoomId:    params.RoomId,
		IsPlaying: params.IsPlaying,
		Position:  params.Position,
		UpdatedAt: s.roomRepo.ServerNowMs(ctx),
	}); err != nil {
		if errors.Is(err, room.ErrPlaybackNotFound) {
			return PlaybackState{}, ErrRoomNotFound
		}

		return PlaybackState{}, fmt.Errorf("failed to update player state: %w", err)
	}

	return s.GetPlayerState(ctx, params.RoomId)
}

type ForcePlayParams struct {
	RoomId      string
	VideoURL    string
	RequestedBy string
}

// ForcePlay overwrites the playback slot directly, bypassing the queue.
// The queue is neither read nor mutated; ordinary advancement resumes on
// the next next-video call.
func (s service) ForcePlay(ctx context.Context, params *ForcePlayParams) (PlaybackState, error) {
	if err := s.checkRoomExists(ctx, params.RoomId); err != nil {
		return PlaybackState{}, err
	}

	state := room.PlaybackState{
		URL:         params.VideoURL,
		IsPlaying:   true,
		Position:    0,
		UpdatedAt:   s.roomRepo.ServerNowMs(ctx),
		ForcedBy:    params.RequestedBy,
		UpdateToken: uuid.NewString(),
	}

	if err := s.roomRepo.SetPlaybackState(ctx, &room.SetPlaybackStateParams{
		RoomId: params.RoomId,
		State:  state,
	}); err != nil {
		return PlaybackState{}, fmt.Errorf("failed to force play: %w", err)
	}

	return playbackFromRepo(state), nil
}

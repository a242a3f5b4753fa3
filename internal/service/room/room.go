package room

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/syncroom/server/internal/repository/room"
)

type CreateRoomParams struct {
	Name string
}

type CreateRoomResponse struct {
	RoomId string `json:"room_id"`
}

// CreateRoom allocates a room id and initializes its playback document in
// the idle state.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomId := s.generator.GenerateRandomString(8)

	if err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
		RoomId: roomId,
		Name:   params.Name,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	if err := s.roomRepo.SetPlaybackState(ctx, &room.SetPlaybackStateParams{
		RoomId: roomId,
		State: room.PlaybackState{
			UpdatedAt:   s.roomRepo.ServerNowMs(ctx),
			UpdateToken: uuid.NewString(),
		},
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to init playback state: %w", err)
	}

	return CreateRoomResponse{RoomId: roomId}, nil
}

func (s service) GetRoomState(ctx context.Context, roomId string) (RoomState, error) {
	if err := s.checkRoomExists(ctx, roomId); err != nil {
		return RoomState{}, err
	}

	playback, err := s.roomRepo.GetPlaybackState(ctx, roomId)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get playback state: %w", err)
	}

	queue, err := s.getQueue(ctx, roomId)
	if err != nil {
		return RoomState{}, err
	}

	return RoomState{
		RoomId:   roomId,
		Playback: playbackFromRepo(playback),
		Queue:    queue,
	}, nil
}

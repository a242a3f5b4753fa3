package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/syncroom/server/internal/repository/room"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId + ":info"
}

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) error {
	pipe := r.rc.TxPipeline()

	roomKey := r.getRoomKey(params.RoomId)
	pipe.HSet(ctx, roomKey,
		"name", params.Name,
		"created_at", strconv.FormatInt(time.Now().UnixMilli(), 10),
	)
	pipe.Expire(ctx, roomKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

func (r repo) IsRoomExists(ctx context.Context, roomId string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}

	return res > 0, nil
}

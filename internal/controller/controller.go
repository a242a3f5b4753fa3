package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/validator"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoomState(context.Context, string) (room.RoomState, error)
	AddVideo(context.Context, *room.AddVideoParams) (room.AddVideoResponse, error)
	RemoveVideo(context.Context, *room.RemoveVideoParams) error
	GetQueue(context.Context, string) ([]room.QueueEntry, error)
	NextVideo(context.Context, string) (room.NextVideoResponse, error)
	ForcePlay(context.Context, *room.ForcePlayParams) (room.PlaybackState, error)
	GetPlayerState(context.Context, string) (room.PlaybackState, error)
	GetHistory(context.Context, string) ([]room.HistoryEntry, error)
	NewSynchronizer(roomId, viewerId string) *room.Synchronizer
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	return &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
}

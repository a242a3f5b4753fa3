package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/rest"
	"github.com/syncroom/server/pkg/wsrouter"
)

type updateStatePayload struct {
	IsPlaying bool    `json:"is_playing"`
	Position  float64 `json:"position"`
}

type reportPositionPayload struct {
	IsPlaying bool    `json:"is_playing"`
	Position  float64 `json:"position"`
}

// syncRoom upgrades the connection and runs the viewer's synchronizer for
// the lifetime of the socket: one goroutine consumes playback snapshots,
// the read loop accepts the viewer's intents and progress reports.
func (c controller) syncRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	if _, err := c.roomService.GetPlayerState(r.Context(), roomId); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.serverError(w, r, err)
		return
	}

	viewerId := r.URL.Query().Get("viewer-id")
	if viewerId == "" {
		viewerId = uuid.NewString()
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sy := c.roomService.NewSynchronizer(roomId, viewerId)

	go func() {
		if err := sy.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.InfoContext(ctx, "synchronizer stopped", "room_id", roomId, "viewer_id", viewerId, "error", err)
		}
	}()

	go func() {
		for event := range sy.Events() {
			if err := conn.WriteJSON(event); err != nil {
				cancel()
				return
			}
		}
	}()

	router := wsrouter.New()
	router.Use(c.wsRequestIdMw(), c.wsLoggingMw())
	router.Handle("update_state", func(ctx context.Context, payload json.RawMessage) error {
		var p updateStatePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}

		return sy.PublishIntent(ctx, p.IsPlaying, p.Position)
	})
	router.Handle("report_position", func(ctx context.Context, payload json.RawMessage) error {
		var p reportPositionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}

		sy.ReportPosition(p.Position, p.IsPlaying)
		return nil
	})
	router.Handle("video_ended", func(ctx context.Context, _ json.RawMessage) error {
		// races manual next-video clicks; the promotion transaction arbitrates.
		// a store hiccup here is not worth the connection: the viewer retries
		// or another viewer's report advances the room
		if _, err := c.roomService.NextVideo(ctx, roomId); err != nil {
			c.logger.WarnContext(ctx, "failed to advance on video end", "room_id", roomId, "error", err)
		}

		return nil
	})

	if err := router.ServeConn(ctx, conn); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.InfoContext(ctx, "websocket closed", "room_id", roomId, "viewer_id", viewerId, "error", err)
	}
}

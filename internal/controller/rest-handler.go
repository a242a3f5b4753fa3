package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/rest"
)

type createRoomRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{Name: req.Name})
	if err != nil {
		c.serverError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"room_id": resp.RoomId})
}

type addVideoRequest struct {
	URL  string `json:"url" validate:"required"`
	User string `json:"user" validate:"required"`
}

func (c controller) addVideo(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	var req addVideoRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if _, err := c.roomService.AddVideo(r.Context(), &room.AddVideoParams{
		RoomId:      roomId,
		VideoURL:    req.URL,
		SubmittedBy: req.User,
	}); err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		case errors.Is(err, room.ErrQueueLimitReached):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "queue limit reached"})
		default:
			c.serverError(w, r, err)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

func (c controller) nextVideo(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	resp, err := c.roomService.NextVideo(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.serverError(w, r, err)
		return
	}

	if resp.Stopped {
		rest.WriteJSON(w, http.StatusOK, rest.Envelope{"message": "queue empty, stopped"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

type forcePlayRequest struct {
	URL  string `json:"url" validate:"required"`
	User string `json:"user" validate:"required"`
}

func (c controller) forcePlay(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	var req forcePlayRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if _, err := c.roomService.ForcePlay(r.Context(), &room.ForcePlayParams{
		RoomId:      roomId,
		VideoURL:    req.URL,
		RequestedBy: req.User,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.serverError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

func (c controller) getRoomState(w http.ResponseWriter, r *http.Request) {
	state, err := c.roomService.GetRoomState(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.serverError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": state})
}

func (c controller) getQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := c.roomService.GetQueue(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.serverError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": queue})
}

func (c controller) removeQueueEntry(w http.ResponseWriter, r *http.Request) {
	if err := c.roomService.RemoveVideo(r.Context(), &room.RemoveVideoParams{
		RoomId:  chi.URLParam(r, "room-id"),
		EntryId: chi.URLParam(r, "entry-id"),
	}); err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		case errors.Is(err, room.ErrEntryNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "queue entry not found"})
		default:
			c.serverError(w, r, err)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

func (c controller) getHistory(w http.ResponseWriter, r *http.Request) {
	history, err := c.roomService.GetHistory(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.serverError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": history})
}

// serverError hides store details from the response; they go to the log
// only.
func (c controller) serverError(w http.ResponseWriter, r *http.Request, err error) {
	c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "server error"})
}

package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", c.createRoom)
		r.Route("/{room-id}", func(r chi.Router) {
			r.Get("/state", c.getRoomState)
			r.Get("/sync", c.syncRoom)
			r.Post("/add-video", c.addVideo)
			r.Post("/next-video", c.nextVideo)
			r.Post("/force-play", c.forcePlay)
			r.Get("/queue", c.getQueue)
			r.Delete("/queue/{entry-id}", c.removeQueueEntry)
			r.Get("/history", c.getHistory)
		})
	})

	return r
}

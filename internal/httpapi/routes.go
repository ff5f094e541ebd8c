package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(a *API, ws http.HandlerFunc, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", a.Login)

		// Admin-only surface.
		r.Group(func(r chi.Router) {
			r.Use(a.Auth.Middleware)
			r.Post("/rooms", a.CreateRoom)
			r.Get("/rooms", a.ListRooms)
			r.Get("/records/{code}", a.Record)
		})

		r.Get("/rooms/{code}", a.GetRoom)
		r.Post("/rooms/{code}/join", a.JoinRoom)

		r.Post("/users/select-team", a.SelectTeam)
		r.Post("/users/ready", a.Ready)
		r.Post("/users/roll", a.RollDice)
		r.Post("/users/leave", a.LeaveRoom)

		r.Post("/bp/{code}/start", a.StartDraft)
		r.Post("/bp/{code}/ban", a.BanMap)
		r.Post("/bp/{code}/pick", a.PickMap)
		r.Get("/bp/{code}/state", a.DraftState)
	})

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws)
	return r
}

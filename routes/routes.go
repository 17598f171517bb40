package routes

import (
	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/openbracket/tournament-engine/handlers"
	"github.com/openbracket/tournament-engine/middleware"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournaments *handlers.TournamentHandler
	Brackets    *handlers.BracketHandler
	Matches     *handlers.MatchHandler
	Standings   *handlers.StandingsHandler
	Waitlist    *handlers.WaitlistHandler
	Teams       *handlers.TeamHandler
	WS          *handlers.WSHandler
}

func New(h Handlers, auth *middleware.Authenticator) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", h.Auth.Register)
		r.Post("/auth/signin", h.Auth.Login)

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournaments.Get)
			r.Get("/bracket", h.Brackets.Get)
			r.Get("/matches", h.Matches.List)
			r.Get("/standings", h.Standings.Get)
			r.Get("/teams", h.Teams.List)
			r.Get("/teams/{teamID}", h.Teams.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				r.Post("/bracket", h.Brackets.Generate)
				r.Delete("/bracket", h.Brackets.Clear)
				r.Post("/matches/{matchID}/score", h.Matches.EnterScore)
				r.Post("/matches/{matchID}/forfeit", h.Matches.Forfeit)
				r.Post("/teams/{teamID}/logo", h.Teams.UploadLogo)
			})
		})

		r.Route("/events/{eventID}/waitlist", func(r chi.Router) {
			r.Get("/", h.Waitlist.List)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				r.Post("/promote", h.Waitlist.Promote)
				r.Put("/order", h.Waitlist.Reorder)
			})
		})
	})

	r.Get("/ws/tournaments/{tournamentID}", h.WS.TournamentRoom)
	r.With(auth.RequireAuth).Get("/ws/me", h.WS.UserRoom)

	return r
}

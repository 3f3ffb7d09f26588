package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the HTTP router for the prediction API
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/probability/{questionID}", h.GetPickProbabilities)
		r.Post("/probability/{questionID}/refresh", h.RefreshPickProbabilities)

		r.Get("/series/winprob", h.GetSeriesWinProbability)

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/outcome", h.GetTournamentOutcome)
			r.Get("/remaining", h.GetRemainingGames)
			r.Post("/ratings/rebuild", h.RebuildRatings)
		})
	})

	return r
}

// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goodtimes-app/goodtimes/internal/config"
	"github.com/goodtimes-app/goodtimes/internal/middleware"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// NewRouter assembles the chi router: global request ids, CORS and rate
// limiting; the session guard on every data route; health, metrics and
// login left open.
func NewRouter(cfg *config.APIConfig, handler *Handler, sessions middleware.SessionValidator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.RateLimitRequests > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	rejectSession := func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized,
			"a valid session token is required", nil)
	}

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.Post("/auth/login", handler.Login)

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessions, rejectSession))

			r.Get("/search/{kind}", handler.Search)

			r.Route("/users", func(r chi.Router) {
				r.Get("/search", handler.SearchUsers)

				r.Route("/{userID}", func(r chi.Router) {
					r.Post("/media/{kind}", handler.LogConsumption)
					r.Get("/media/{kind}", handler.UserConsumption)

					r.Get("/friends", handler.Friends)
					r.Get("/friend-requests", handler.FriendRequests)

					r.Get("/recommendations/{kind}", handler.RecommendationsTo)
					r.Get("/recommendations/{kind}/sent", handler.RecommendationsBy)

					r.Get("/overlap/{otherID}/{kind}", handler.Overlap)
					r.Get("/feed", handler.Feed)
				})
			})

			r.Post("/friends", handler.CreateFriendEvent)
			r.Post("/recommendations", handler.CreateRecommendation)
		})
	})

	return r
}

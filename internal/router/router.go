// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chain for the slug
// server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmuxslug/internal/handlers"
	"dmuxslug/internal/middleware"
)

// New creates the Chi router. A nil limiter leaves /api unthrottled.
func New(logger *slog.Logger, slugs *handlers.Slug, limiter middleware.Limiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecureHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", handlers.Health)

	r.Route("/api/slug", func(r chi.Router) {
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter, logger))
		}
		r.Get("/", slugs.Generate)
		r.Post("/", slugs.Generate)
		r.Post("/simple", slugs.Simple)
		r.Get("/plan", slugs.Plan)
	})

	return r
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

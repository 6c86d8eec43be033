// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/middleware"
	"github.com/tomtom215/showroom/internal/models"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *middleware.ChiMiddleware
	apiKey        string
}

// NewRouter creates a router using the security settings for CORS, rate
// limiting and API key authentication.
func NewRouter(handler *Handler, security *config.SecurityConfig) *Router {
	return &Router{
		handler: handler,
		chiMiddleware: middleware.NewChiMiddlewareFromSecurity(
			security.CORSOrigins,
			security.RateLimitReqs,
			security.RateLimitWindow,
			security.RateLimitDisabled,
		),
		apiKey: security.APIKey,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.With(middleware.PrometheusMetrics).Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.APIKey(router.apiKey))

		r.Route("/pipeline", func(r chi.Router) {
			r.Post("/run", router.handler.TriggerRun)
			r.Get("/status", router.handler.PipelineStatus)
			r.Get("/runs", router.handler.ListRuns)
			r.Get("/runs/{runID}", router.handler.GetRun)
		})

		r.Get("/recommendations/{productID}", router.handler.GetRecommendations)

		r.Post("/products", router.handler.IngestProducts)
		r.Get("/products/{productID}", router.handler.GetProduct)
		r.Post("/interactions", router.handler.IngestInteractions)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	return r
}

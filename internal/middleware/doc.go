// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package middleware provides HTTP middleware for the Showroom API.

All middleware uses the chi func(http.Handler) http.Handler form:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge,
    labelled by chi route pattern
  - APIKey: x-api-key authentication with constant-time comparison
  - ChiMiddleware: go-chi/cors and go-chi/httprate factories

# Usage

	mw := middleware.NewChiMiddlewareFromSecurity(origins, 60, time.Minute, false)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(mw.CORS())
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.With(mw.RateLimit(), middleware.APIKey(key)).Post("/pipeline/run", h)
	})

Rejections from APIKey and the rate limiter use the same JSON envelope
as the handlers (models.APIResponse).
*/
package middleware

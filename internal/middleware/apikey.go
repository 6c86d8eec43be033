// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/models"
)

// APIKeyHeader is the header clients authenticate with.
const APIKeyHeader = "x-api-key"

// APIKey rejects requests whose x-api-key header does not match key.
// An empty key disables the check.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		expected := []byte(key)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				logging.Ctx(r.Context()).Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("key_present", provided != "").
					Msg("Rejected request with invalid API key")
				WriteError(w, r, http.StatusUnauthorized, models.CodeAuthentication, "missing or invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes an error envelope. Handlers in the api package have
// their own helpers; this one serves middleware that rejects early.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := models.Failure(&models.APIError{Code: code, Message: message}, GetRequestID(r.Context()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode error response")
	}
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// serveWithRequestID runs one request through RequestID and returns the
// response header ID and the IDs seen by the handler.
func serveWithRequestID(t *testing.T, inbound string) (header, ctxID, chiID string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		chiID = chimiddleware.GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/status", nil)
	if inbound != "" {
		req.Header.Set(RequestIDHeader, inbound)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get(RequestIDHeader), ctxID, chiID
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		wantKeep bool
	}{
		{"none supplied", "", false},
		{"proxy id kept", "edge-7f3a-0042", true},
		{"uuid kept", "5d7b2c1e-0000-4000-8000-000000000001", true},
		{"whitespace replaced", "abc def", false},
		{"control characters replaced", "abc\x1b[31m", false},
		{"non-ascii replaced", "prüfung", false},
		{"oversized replaced", strings.Repeat("a", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, ctxID, chiID := serveWithRequestID(t, tt.inbound)

			if header == "" {
				t.Fatal("response is missing X-Request-ID")
			}
			if ctxID != header || chiID != header {
				t.Errorf("ids differ: header=%q context=%q chi=%q", header, ctxID, chiID)
			}
			if tt.wantKeep {
				if header != tt.inbound {
					t.Errorf("X-Request-ID = %q, want inbound %q", header, tt.inbound)
				}
				return
			}
			if _, err := uuid.Parse(header); err != nil {
				t.Errorf("generated X-Request-ID %q is not a UUID: %v", header, err)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, _, _ := serveWithRequestID(t, "")
		if seen[id] {
			t.Fatalf("duplicate request ID %s", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}

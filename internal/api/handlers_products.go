// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/showroom/internal/database"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/models"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/validation"
)

// RecommendationsResponse is returned by GET /api/v1/recommendations/{productID}.
type RecommendationsResponse struct {
	ProductID string                        `json:"productId"`
	Sets      []recommend.RecommendationSet `json:"sets"`
}

// productIDParam reads and validates the {productID} URL parameter.
func productIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "productID")
	if !validation.IsObjectID(id) {
		respondError(w, r, http.StatusBadRequest, models.CodeValidation, "productID must be a 24-character hex id", nil)
		return "", false
	}
	return id, true
}

// GetProduct returns a stored product including its cluster assignment.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "product not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase, "failed to load product", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, product, start)
}

// GetRecommendations returns the stored recommendation sets for a product.
// The optional type query parameter selects one strategy.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var strategy recommend.StrategyType
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := recommend.ParseStrategyType(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, models.CodeValidation, "type must be clustering-based or co-occurrence", nil)
			return
		}
		strategy = parsed
	}

	key := recCacheKey(id, strategy)
	gen := h.recs.Generation()
	if sets, ok := h.recs.Get(key); ok {
		metrics.RecordCacheLookup(true, h.recs.Len())
		respondSuccess(w, r, http.StatusOK, RecommendationsResponse{ProductID: id, Sets: sets}, start)
		return
	}
	metrics.RecordCacheLookup(false, h.recs.Len())

	sets, err := h.store.GetRecommendations(r.Context(), id, strategy)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "no recommendations stored for product", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase, "failed to load recommendations", err)
		return
	}
	// Not cached when a run completed during the load.
	h.recs.SetIfGeneration(key, sets, gen)

	respondSuccess(w, r, http.StatusOK, RecommendationsResponse{ProductID: id, Sets: sets}, start)
}

// IngestProducts upserts a batch of products pushed by the backend.
func (h *Handler) IngestProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.IngestProductsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeValidation, "request body must be valid JSON", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	products := make([]recommend.Product, len(req.Products))
	for i, in := range req.Products {
		products[i] = recommend.Product{
			ID:         in.ID,
			Status:     in.Status,
			Price:      in.Price,
			Attributes: in.Attributes,
		}
	}

	stored, err := h.store.InsertProducts(r.Context(), products)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase, "failed to store products", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("received", len(products)).Int64("stored", stored).Msg("Products ingested")
	respondSuccess(w, r, http.StatusOK, models.IngestResponse{Received: len(products), Stored: stored}, start)
}

// IngestInteractions appends a batch of user interactions. Records
// without a timestamp are stamped with the receive time.
func (h *Handler) IngestInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.IngestInteractionsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeValidation, "request body must be valid JSON", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	now := time.Now().UTC()
	interactions := make([]recommend.Interaction, len(req.Interactions))
	for i, in := range req.Interactions {
		ts := now
		if in.Timestamp != nil {
			ts = in.Timestamp.UTC()
		}
		interactions[i] = recommend.Interaction{
			UserID:    in.UserID,
			ProductID: in.ProductID,
			Type:      recommend.InteractionType(in.InteractionType),
			Timestamp: ts,
		}
	}

	stored, err := h.store.InsertInteractions(r.Context(), interactions)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase, "failed to store interactions", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("received", len(interactions)).Int64("stored", stored).Msg("Interactions ingested")
	respondSuccess(w, r, http.StatusOK, models.IngestResponse{Received: len(interactions), Stored: stored}, start)
}

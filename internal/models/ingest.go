// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package models

import "time"

// MaxIngestBatch bounds the number of records accepted by one ingestion request.
const MaxIngestBatch = 5000

// ProductInput is a product record pushed by the showroom backend.
// Attributes hold raw listing fields (brand, yearOfAssembly, travelDistance, ...).
type ProductInput struct {
	ID         string                 `json:"id" validate:"required,mongodb"`
	Status     string                 `json:"status" validate:"omitempty,max=32"`
	Price      *float64               `json:"price,omitempty" validate:"omitempty,gte=0"`
	Attributes map[string]interface{} `json:"attributes"`
}

// IngestProductsRequest is the body of POST /api/v1/products.
type IngestProductsRequest struct {
	Products []ProductInput `json:"products" validate:"required,min=1,max=5000,dive"`
}

// InteractionInput is a user interaction pushed by the showroom backend.
type InteractionInput struct {
	UserID          string     `json:"userId" validate:"required,mongodb"`
	ProductID       string     `json:"productId" validate:"required,mongodb"`
	InteractionType string     `json:"interactionType" validate:"required,oneof=view bookmark contact_seller"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// IngestInteractionsRequest is the body of POST /api/v1/interactions.
type IngestInteractionsRequest struct {
	Interactions []InteractionInput `json:"interactions" validate:"required,min=1,max=5000,dive"`
}

// IngestResponse reports how many records were stored.
type IngestResponse struct {
	Received int   `json:"received"`
	Stored   int64 `json:"stored"`
}

// TriggerResponse is returned by POST /api/v1/pipeline/run.
type TriggerResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status          string    `json:"status"`
	Version         string    `json:"version"`
	DatabaseHealthy bool      `json:"database_healthy"`
	PipelineRunning bool      `json:"pipeline_running"`
	LastSuccessAt   time.Time `json:"last_success_at,omitempty"`
	Uptime          float64   `json:"uptime_seconds"`
}

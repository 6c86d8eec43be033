// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/database"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/runstore"
)

const (
	productA = "507f1f77bcf86cd799439011"
	productB = "507f1f77bcf86cd799439012"
	userA    = "65a1b2c3d4e5f60718293a4b"
)

var errDatabase = errors.New("database unavailable")

// fakeStore is an in-memory Store with call counters.
type fakeStore struct {
	mu           sync.Mutex
	pingErr      error
	err          error
	products     map[string]*database.StoredProduct
	sets         []recommend.RecommendationSet
	afterRead    func()
	inserted     []recommend.Product
	interactions []recommend.Interaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: make(map[string]*database.StoredProduct)}
}

func (s *fakeStore) Ping(context.Context) error {
	return s.pingErr
}

func (s *fakeStore) GetStats(context.Context) (*database.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &database.Stats{Products: int64(len(s.products)), Recommendations: int64(len(s.sets))}, nil
}

func (s *fakeStore) GetProduct(_ context.Context, id string) (*database.StoredProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) GetRecommendations(_ context.Context, productID string, strategy recommend.StrategyType) ([]recommend.RecommendationSet, error) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return nil, s.err
	}
	var out []recommend.RecommendationSet
	for _, set := range s.sets {
		if set.ProductID == productID && (strategy == "" || set.StrategyType == strategy) {
			out = append(out, set)
		}
	}
	afterRead := s.afterRead
	s.mu.Unlock()

	if afterRead != nil {
		afterRead()
	}
	if len(out) == 0 {
		return nil, database.ErrNotFound
	}
	return out, nil
}

func (s *fakeStore) InsertProducts(_ context.Context, products []recommend.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.inserted = append(s.inserted, products...)
	return int64(len(products)), nil
}

func (s *fakeStore) InsertInteractions(_ context.Context, interactions []recommend.Interaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.interactions = append(s.interactions, interactions...)
	return int64(len(interactions)), nil
}

// fakeRuns is an in-memory RunHistory, newest first.
type fakeRuns struct {
	reports []*recommend.RunReport
	err     error
}

func (f *fakeRuns) List(_ context.Context, limit int) ([]*recommend.RunReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.reports) {
		limit = len(f.reports)
	}
	return f.reports[:limit], nil
}

func (f *fakeRuns) Get(_ context.Context, runID string) (*recommend.RunReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.reports {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, runstore.ErrNotFound
}

func (f *fakeRuns) Latest(ctx context.Context) (*recommend.RunReport, error) {
	if len(f.reports) == 0 {
		return nil, runstore.ErrNotFound
	}
	return f.reports[0], nil
}

type fakePipeline struct {
	status recommend.PipelineStatus
}

func (f *fakePipeline) Status() recommend.PipelineStatus {
	return f.status
}

// fakeTrigger accepts the first trigger and coalesces the rest.
type fakeTrigger struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTrigger) Trigger() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.calls == 1
}

func report(id string, status recommend.RunStatus) *recommend.RunReport {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &recommend.RunReport{
		RunID:      id,
		Trigger:    recommend.TriggerSchedule,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Status:     status,
	}
}

func testSecurity(apiKey string) *config.SecurityConfig {
	return &config.SecurityConfig{
		APIKey:            apiKey,
		RateLimitDisabled: true,
		CORSOrigins:       []string{"*"},
	}
}

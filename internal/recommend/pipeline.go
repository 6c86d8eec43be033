// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// Recommenders and observers are injected through the interfaces below.

var (
	// ErrRunInProgress is returned when a run is requested while another is executing.
	ErrRunInProgress = errors.New("pipeline run already in progress")

	// ErrNoDataSource is returned when the pipeline has no data source.
	ErrNoDataSource = errors.New("pipeline has no data source")

	// ErrNoResultSink is returned when the pipeline has no result sink.
	ErrNoResultSink = errors.New("pipeline has no result sink")

	// ErrStrategyNotRegistered is returned when an enabled strategy has no recommender.
	ErrStrategyNotRegistered = errors.New("strategy enabled but no recommender registered")
)

// observerTimeout bounds the notification of all observers after a run.
const observerTimeout = 30 * time.Second

// ProximityRecommender ranks same-cluster products.
type ProximityRecommender interface {
	Recommend(ctx context.Context, assignments []ClusterAssignment, prices map[string]float64) (map[string][]ScoredItem, error)
}

// CoOccurrenceRecommender ranks products co-visited by the same users.
type CoOccurrenceRecommender interface {
	Recommend(ctx context.Context, interactions []Interaction) (map[string][]ScoredItem, error)
}

// Pipeline orchestrates a full recommendation run.
// It is safe for concurrent use; runs never overlap.
type Pipeline struct {
	config *Config
	logger zerolog.Logger

	source DataSource
	sink   ResultSink

	preparer  *Preparer
	clusterer *Clusterer

	proximity    ProximityRecommender
	coOccurrence CoOccurrenceRecommender

	observers []RunObserver
	obsMu     sync.RWMutex

	runMu sync.Mutex

	statusMu sync.RWMutex
	status   PipelineStatus

	now func() time.Time
}

// NewPipeline creates a pipeline over the given source and sink.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(cfg *Config, source DataSource, sink ResultSink, logger zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	preparer, err := NewPreparer(cfg.Features, logger)
	if err != nil {
		return nil, err
	}
	clusterer, err := NewClusterer(cfg.Clustering, logger)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:    cfg,
		logger:    logger.With().Str("component", "pipeline").Logger(),
		source:    source,
		sink:      sink,
		preparer:  preparer,
		clusterer: clusterer,
		now:       time.Now,
	}, nil
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() *Config {
	return p.config.Clone()
}

// SetRecommenders registers the strategy implementations. Either may be nil
// when the corresponding strategy is disabled.
func (p *Pipeline) SetRecommenders(proximity ProximityRecommender, coOccurrence CoOccurrenceRecommender) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	p.proximity = proximity
	p.coOccurrence = coOccurrence
}

// AddObserver registers an observer notified after every run.
func (p *Pipeline) AddObserver(o RunObserver) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	p.observers = append(p.observers, o)
}

// Status returns a snapshot of the pipeline state.
func (p *Pipeline) Status() PipelineStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

// Run executes one full pipeline run. The report is returned even when the
// run fails; ErrRunInProgress is returned with a nil report.
func (p *Pipeline) Run(ctx context.Context, trigger Trigger) (*RunReport, error) {
	if !p.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer p.runMu.Unlock()

	report := &RunReport{
		RunID:      uuid.NewString(),
		Trigger:    trigger,
		StartedAt:  p.now(),
		Status:     RunSuccess,
		Strategies: make(map[StrategyType]StrategyReport),
	}

	p.statusMu.Lock()
	p.status.Running = true
	p.status.CurrentRunID = report.RunID
	p.statusMu.Unlock()

	logger := p.logger.With().Str("run_id", report.RunID).Str("trigger", string(trigger)).Logger()
	logger.Info().Msg("Starting pipeline run")

	err := p.execute(ctx, report, logger)

	report.FinishedAt = p.now()
	if err != nil {
		report.Status = RunFailed
		report.Error = err.Error()
		logger.Error().Err(err).Dur("duration", report.Duration()).Msg("Pipeline run failed")
	} else {
		if report.Products == 0 && report.Interactions == 0 {
			report.Status = RunSkipped
		}
		logger.Info().
			Str("status", string(report.Status)).
			Int("products", report.Products).
			Int("interactions", report.Interactions).
			Int("clusters", report.Clusters).
			Dur("duration", report.Duration()).
			Msg("Pipeline run complete")
	}

	p.statusMu.Lock()
	p.status.Running = false
	p.status.CurrentRunID = ""
	p.status.RunCount++
	if report.Status == RunFailed {
		p.status.FailureCount++
	} else {
		p.status.LastSuccessAt = report.FinishedAt
	}
	p.status.LastRun = report
	p.statusMu.Unlock()

	p.notifyObservers(ctx, report, logger)
	return report, err
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) execute(ctx context.Context, report *RunReport, logger zerolog.Logger) error {
	if p.source == nil {
		return ErrNoDataSource
	}
	if p.sink == nil {
		return ErrNoResultSink
	}
	if p.config.Strategies.ClusterProximity && p.proximity == nil {
		return fmt.Errorf("%w: %s", ErrStrategyNotRegistered, StrategyClusterProximity)
	}
	if p.config.Strategies.CoOccurrence && p.coOccurrence == nil {
		return fmt.Errorf("%w: %s", ErrStrategyNotRegistered, StrategyCoOccurrence)
	}

	products, err := p.source.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	report.Products = len(products)

	if err := p.runClustering(ctx, products, report, logger); err != nil {
		return err
	}

	if p.config.Strategies.CoOccurrence {
		if err := p.runCoOccurrence(ctx, report, logger); err != nil {
			return err
		}
	}
	return nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) runClustering(ctx context.Context, products []Product, report *RunReport, logger zerolog.Logger) error {
	if len(products) == 0 {
		report.addDiagnostic("no products found, clustering skipped")
		logger.Warn().Msg("No products found, clustering skipped")
		return p.clearProximity(ctx, report, logger)
	}

	matrix, err := p.preparer.Prepare(ctx, products)
	if err != nil {
		return fmt.Errorf("prepare features: %w", err)
	}
	for _, d := range matrix.Diagnostics {
		report.addDiagnostic(d)
	}
	if matrix.Empty() {
		report.addDiagnostic("no feature columns available, clustering skipped")
		logger.Warn().Msg("Feature matrix is empty, clustering skipped")
		return p.clearProximity(ctx, report, logger)
	}
	report.FeatureColumns = len(matrix.Columns)

	labels, err := p.clusterer.Cluster(ctx, matrix.Data)
	if err != nil {
		return fmt.Errorf("cluster products: %w", err)
	}

	assignments := make([]ClusterAssignment, len(labels))
	for i, label := range labels {
		assignments[i] = ClusterAssignment{ProductID: matrix.IDs[i], ClusterID: label}
	}
	report.Clusters = countClusters(labels)

	written, err := p.sink.UpdateClusterAssignments(ctx, assignments)
	if err != nil {
		return fmt.Errorf("write cluster assignments: %w", err)
	}
	report.ClusterWrite = &written
	logger.Info().
		Int("clusters", report.Clusters).
		Int64("matched", written.Matched).
		Int64("modified", written.Modified).
		Int("skipped", written.Skipped).
		Msg("Cluster assignments written")

	if !p.config.Strategies.ClusterProximity {
		return nil
	}

	recs, err := p.proximity.Recommend(ctx, assignments, PriceIndex(products, p.config.Features.PriceField))
	if err != nil {
		return fmt.Errorf("cluster proximity: %w", err)
	}

	clusterOf := make(map[string]int, len(assignments))
	for _, a := range assignments {
		clusterOf[a.ProductID] = a.ClusterID
	}
	sets := p.buildSets(recs, StrategyClusterProximity, func(productID string) *int {
		id, ok := clusterOf[productID]
		if !ok {
			return nil
		}
		return &id
	})
	return p.replace(ctx, StrategyClusterProximity, sets, report, logger)
}

// clearProximity empties the cluster-proximity sets when clustering produced
// nothing, so the previous run's lists do not outlive it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) clearProximity(ctx context.Context, report *RunReport, logger zerolog.Logger) error {
	if !p.config.Strategies.ClusterProximity {
		return nil
	}
	return p.replace(ctx, StrategyClusterProximity, nil, report, logger)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) runCoOccurrence(ctx context.Context, report *RunReport, logger zerolog.Logger) error {
	interactions, err := p.source.GetInteractions(ctx, p.config.InteractionTypes)
	if err != nil {
		return fmt.Errorf("load interactions: %w", err)
	}
	report.Interactions = len(interactions)

	if len(interactions) == 0 {
		report.addDiagnostic("no interactions found, co-occurrence skipped")
		logger.Warn().Msg("No interactions found, co-occurrence skipped")
		return p.replace(ctx, StrategyCoOccurrence, nil, report, logger)
	}

	recs, err := p.coOccurrence.Recommend(ctx, interactions)
	if err != nil {
		return fmt.Errorf("co-occurrence: %w", err)
	}

	sets := p.buildSets(recs, StrategyCoOccurrence, nil)
	return p.replace(ctx, StrategyCoOccurrence, sets, report, logger)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) replace(ctx context.Context, strategy StrategyType, sets []RecommendationSet, report *RunReport, logger zerolog.Logger) error {
	result, err := p.sink.ReplaceRecommendations(ctx, strategy, sets)
	if err != nil {
		return fmt.Errorf("replace %s recommendations: %w", strategy, err)
	}
	report.Strategies[strategy] = StrategyReport{
		Sources: len(sets),
		Written: result.Inserted,
		Skipped: result.Skipped,
		Deleted: result.Deleted,
	}
	logger.Info().
		Str("strategy", string(strategy)).
		Int("sources", len(sets)).
		Int64("deleted", result.Deleted).
		Int64("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Msg("Recommendations replaced")
	return nil
}

// buildSets converts ranked lists into recommendation sets sorted by product id.
// Empty lists and self references are dropped.
func (p *Pipeline) buildSets(recs map[string][]ScoredItem, strategy StrategyType, clusterID func(string) *int) []RecommendationSet {
	now := p.now()
	limit := p.config.MaxRecommendations

	sets := make([]RecommendationSet, 0, len(recs))
	for productID, items := range recs {
		ids := make([]string, 0, len(items))
		for _, item := range items {
			if item.ProductID == productID {
				continue
			}
			ids = append(ids, item.ProductID)
			if len(ids) == limit {
				break
			}
		}
		if len(ids) == 0 {
			continue
		}

		set := RecommendationSet{
			ProductID:       productID,
			Recommendations: ids,
			StrategyType:    strategy,
			LastUpdated:     now,
		}
		if clusterID != nil {
			set.ClusterID = clusterID(productID)
		}
		sets = append(sets, set)
	}

	sort.Slice(sets, func(i, j int) bool {
		return sets[i].ProductID < sets[j].ProductID
	})
	return sets
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) notifyObservers(ctx context.Context, report *RunReport, logger zerolog.Logger) {
	p.obsMu.RLock()
	observers := append([]RunObserver(nil), p.observers...)
	p.obsMu.RUnlock()
	if len(observers) == 0 {
		return
	}

	// Observers run even when the run context was canceled or timed out.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), observerTimeout)
	defer cancel()

	for _, o := range observers {
		if err := o.OnRunComplete(notifyCtx, report); err != nil {
			logger.Warn().Err(err).Str("observer", o.Name()).Msg("Run observer failed")
		}
	}
}

// PriceIndex maps product ids to prices. Product.Price wins over the price
// attribute; products with neither are absent.
func PriceIndex(products []Product, priceField string) map[string]float64 {
	prices := make(map[string]float64, len(products))
	for i := range products {
		if products[i].Price != nil {
			prices[products[i].ID] = *products[i].Price
			continue
		}
		if v, ok := coerceFloat(products[i].Attributes[priceField]); ok {
			prices[products[i].ID] = v
		}
	}
	return prices
}

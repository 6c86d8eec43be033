// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Column describes one output column of a FeatureMatrix.
type Column struct {
	// Name is the display name, "feature" or "feature=category".
	Name string `json:"name"`

	// Feature is the declared feature the column was derived from.
	Feature string `json:"feature"`

	// Kind is the kind of the origin feature.
	Kind FeatureKind `json:"kind"`

	// Category is the one-hot category for categorical columns.
	Category string `json:"category,omitempty"`
}

// FeatureMatrix is the weighted numeric representation of a product batch.
// Row i of Data belongs to IDs[i].
type FeatureMatrix struct {
	IDs     []string
	Data    *mat.Dense
	Columns []Column

	// Diagnostics lists non-fatal preparation notes (skipped features etc).
	Diagnostics []string
}

// Empty reports whether the matrix has nothing to cluster.
func (m *FeatureMatrix) Empty() bool {
	return m == nil || m.Data == nil || len(m.IDs) == 0 || len(m.Columns) == 0
}

// Rows returns the number of products in the matrix.
func (m *FeatureMatrix) Rows() int {
	if m.Empty() {
		return 0
	}
	return len(m.IDs)
}

// Preparer turns raw products into a weighted feature matrix.
type Preparer struct {
	cfg    FeatureConfig
	logger zerolog.Logger
}

// NewPreparer validates the feature table and returns a Preparer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPreparer(cfg FeatureConfig, logger zerolog.Logger) (*Preparer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Features = append([]FeatureSpec(nil), cfg.Features...)
	cfg.LogTransform = append([]string(nil), cfg.LogTransform...)

	return &Preparer{
		cfg:    cfg,
		logger: logger.With().Str("component", "preparer").Logger(),
	}, nil
}

// Prepare fits an encoder on the batch and transforms the same batch.
// No surviving column yields an empty matrix and a nil error.
func (p *Preparer) Prepare(ctx context.Context, products []Product) (*FeatureMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return &FeatureMatrix{Diagnostics: []string{"no products to prepare"}}, nil
	}

	enc, err := p.Fit(products)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := enc.Transform(products)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Int("products", len(products)).
		Int("numeric", len(enc.numeric)).
		Int("categorical", len(enc.categorical)).
		Int("columns", len(m.Columns)).
		Msg("Prepared feature matrix")
	return m, nil
}

// numericEncoding holds fitted parameters of one numeric feature.
type numericEncoding struct {
	feature string
	log     bool
	median  float64
	mean    float64
	scale   float64
}

// categoricalEncoding holds fitted categories of one categorical feature, sorted.
type categoricalEncoding struct {
	feature    string
	categories []string
}

// Encoder is a fitted feature transformation reusable on other batches.
type Encoder struct {
	cfg         FeatureConfig
	numeric     []numericEncoding
	categorical []categoricalEncoding
	columns     []Column
	diagnostics []string
}

// Columns returns the output column layout of the encoder.
func (e *Encoder) Columns() []Column {
	return append([]Column(nil), e.columns...)
}

// Fit learns imputation, scaling and category parameters from a batch.
func (p *Preparer) Fit(products []Product) (*Encoder, error) {
	logSet := make(map[string]bool, len(p.cfg.LogTransform))
	for _, name := range p.cfg.LogTransform {
		logSet[name] = true
	}

	enc := &Encoder{cfg: p.cfg}

	for _, spec := range p.cfg.Features {
		if spec.Kind != FeatureNumeric {
			continue
		}
		values, present := p.numericValues(products, spec.Name)
		if !present {
			enc.skip(p.logger, "numeric feature %q not present in batch", spec.Name)
			continue
		}
		if len(values) == 0 {
			enc.skip(p.logger, "numeric feature %q has no parseable values", spec.Name)
			continue
		}

		med := median(values)
		imputed := make([]float64, len(products))
		for i := range products {
			v, ok := coerceFloat(p.cfg.featureValue(products[i], spec.Name))
			if !ok {
				v = med
			}
			if logSet[spec.Name] {
				v = log1p(v)
			}
			imputed[i] = v
		}

		mean, std := stat.PopMeanStdDev(imputed, nil)
		scale := std
		if scale < 1e-12 || math.IsNaN(scale) {
			scale = 1
		}

		enc.numeric = append(enc.numeric, numericEncoding{
			feature: spec.Name,
			log:     logSet[spec.Name],
			median:  med,
			mean:    mean,
			scale:   scale,
		})
		enc.columns = append(enc.columns, Column{Name: spec.Name, Feature: spec.Name, Kind: FeatureNumeric})
	}

	for _, spec := range p.cfg.Features {
		if spec.Kind != FeatureCategorical {
			continue
		}
		if !p.cfg.present(products, spec.Name) {
			enc.skip(p.logger, "categorical feature %q not present in batch", spec.Name)
			continue
		}

		seen := make(map[string]struct{})
		for i := range products {
			seen[p.cfg.categoryOf(products[i], spec.Name)] = struct{}{}
		}
		categories := make([]string, 0, len(seen))
		for c := range seen {
			categories = append(categories, c)
		}
		sort.Strings(categories)

		enc.categorical = append(enc.categorical, categoricalEncoding{feature: spec.Name, categories: categories})
		for _, c := range categories {
			enc.columns = append(enc.columns, Column{
				Name:     spec.Name + "=" + c,
				Feature:  spec.Name,
				Kind:     FeatureCategorical,
				Category: c,
			})
		}
	}

	if len(enc.columns) == 0 {
		enc.diagnostics = append(enc.diagnostics, "no feature columns survived preparation")
	}
	return enc, nil
}

// Transform encodes a batch with the fitted parameters and applies feature weights.
// Categories unseen at fit time produce an all-zero block.
func (e *Encoder) Transform(products []Product) (*FeatureMatrix, error) {
	m := &FeatureMatrix{
		Columns:     e.Columns(),
		Diagnostics: append([]string(nil), e.diagnostics...),
	}
	if len(products) == 0 || len(e.columns) == 0 {
		return m, nil
	}

	data := mat.NewDense(len(products), len(e.columns), nil)
	ids := make([]string, len(products))

	for i := range products {
		ids[i] = products[i].ID

		col := 0
		for _, ne := range e.numeric {
			v, ok := coerceFloat(e.cfg.featureValue(products[i], ne.feature))
			if !ok {
				v = ne.median
			}
			if ne.log {
				v = log1p(v)
			}
			data.Set(i, col, (v-ne.mean)/ne.scale)
			col++
		}

		for _, ce := range e.categorical {
			c := e.cfg.categoryOf(products[i], ce.feature)
			if k := sort.SearchStrings(ce.categories, c); k < len(ce.categories) && ce.categories[k] == c {
				data.Set(i, col+k, 1)
			}
			col += len(ce.categories)
		}
	}

	weights := make([]float64, len(e.columns))
	for j, c := range e.columns {
		w := e.cfg.Weight(c.Feature)
		if w <= 0 {
			return nil, fmt.Errorf("column %q has no positive weight for feature %q", c.Name, c.Feature)
		}
		weights[j] = w
	}
	data.Apply(func(_, j int, v float64) float64 {
		return v * weights[j]
	}, data)

	m.IDs = ids
	m.Data = data
	return m, nil
}

func (e *Encoder) skip(logger zerolog.Logger, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	e.diagnostics = append(e.diagnostics, msg)
	logger.Warn().Msg(msg)
}

// numericValues returns the parseable values of a feature and whether the
// feature appears in the batch at all.
func (p *Preparer) numericValues(products []Product, name string) ([]float64, bool) {
	present := false
	values := make([]float64, 0, len(products))
	for i := range products {
		raw, ok := p.cfg.lookup(products[i], name)
		if !ok {
			continue
		}
		present = true
		if v, ok := coerceFloat(raw); ok {
			values = append(values, v)
		}
	}
	return values, present
}

// lookup returns the raw attribute value. The price field falls back to Product.Price.
func (f *FeatureConfig) lookup(p Product, name string) (any, bool) {
	if v, ok := p.Attributes[name]; ok {
		return v, true
	}
	if name == f.PriceField && p.Price != nil {
		return *p.Price, true
	}
	return nil, false
}

func (f *FeatureConfig) featureValue(p Product, name string) any {
	v, _ := f.lookup(p, name)
	return v
}

func (f *FeatureConfig) present(products []Product, name string) bool {
	for i := range products {
		if _, ok := f.lookup(products[i], name); ok {
			return true
		}
	}
	return false
}

// categoryOf renders a categorical value, substituting MissingCategory for nil or blank.
func (f *FeatureConfig) categoryOf(p Product, name string) string {
	var s string
	switch v := f.featureValue(p, name).(type) {
	case nil:
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return f.MissingCategory
	}
	return s
}

// coerceFloat converts numbers and numeric strings. Anything else is missing.
func coerceFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// median returns the middle value, averaging the two middle values for even lengths.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func log1p(v float64) float64 {
	return math.Log1p(math.Max(v, 0))
}

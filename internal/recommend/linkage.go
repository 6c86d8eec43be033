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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Merge is one step of the agglomerative hierarchy.
// A and B are row indices representing the two merged clusters.
type Merge struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Height float64 `json:"height"`
	Size   int     `json:"size"`
}

// condensed is an upper-triangular pairwise distance matrix without the diagonal.
type condensed struct {
	n int
	d []float64
}

func newCondensed(n int) *condensed {
	return &condensed{n: n, d: make([]float64, n*(n-1)/2)}
}

func (c *condensed) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return c.n*i - i*(i+1)/2 + (j - i - 1)
}

func (c *condensed) at(i, j int) float64 { return c.d[c.index(i, j)] }

func (c *condensed) set(i, j int, v float64) { c.d[c.index(i, j)] = v }

// distanceFunc returns the pairwise distance for a metric.
func distanceFunc(metric Metric) (func(a, b []float64) float64, error) {
	switch metric {
	case MetricEuclidean:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 2) }, nil
	case MetricManhattan:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 1) }, nil
	case MetricChebyshev:
		return func(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }, nil
	case MetricCosine:
		return cosineDistance, nil
	default:
		return nil, fmt.Errorf("unsupported metric %q", metric)
	}
}

// cosineDistance is 1 - cos(a, b). A zero vector is at distance 0 from
// another zero vector and 1 from everything else.
func cosineDistance(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	switch {
	case na == 0 && nb == 0:
		return 0
	case na == 0 || nb == 0:
		return 1
	}
	d := 1 - floats.Dot(a, b)/(na*nb)
	if d < 0 {
		return 0
	}
	return d
}

// pairwiseDistances computes the condensed distance matrix of the rows of data.
func pairwiseDistances(ctx context.Context, data mat.Matrix, metric Metric) (*condensed, error) {
	dist, err := distanceFunc(metric)
	if err != nil {
		return nil, err
	}

	n, _ := data.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = mat.Row(nil, i, data)
	}

	c := newCondensed(n)
	for i := 0; i < n; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for j := i + 1; j < n; j++ {
			c.set(i, j, dist(rows[i], rows[j]))
		}
	}
	return c, nil
}

// lanceWilliams returns the distance from cluster k to the union of x and y.
func lanceWilliams(linkage Linkage, dkx, dky, dxy float64, nx, ny, nk int) float64 {
	switch linkage {
	case LinkageSingle:
		return math.Min(dkx, dky)
	case LinkageComplete:
		return math.Max(dkx, dky)
	case LinkageAverage:
		return (float64(nx)*dkx + float64(ny)*dky) / float64(nx+ny)
	default: // ward
		fx, fy, fk := float64(nx), float64(ny), float64(nk)
		t := 1 / (fx + fy + fk)
		v := (fx+fk)*t*dkx*dkx + (fy+fk)*t*dky*dky - fk*t*dxy*dxy
		if v < 0 {
			return 0
		}
		return math.Sqrt(v)
	}
}

// buildHierarchy runs the nearest-neighbour-chain algorithm and returns the
// n-1 merges sorted by height. Ties keep discovery order.
func buildHierarchy(ctx context.Context, d *condensed, linkage Linkage) ([]Merge, error) {
	n := d.n
	if n < 2 {
		return nil, nil
	}

	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}

	merges := make([]Merge, 0, n-1)
	chain := make([]int, 0, n)

	for step := 0; step < n-1; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if size[i] > 0 {
					chain = append(chain, i)
					break
				}
			}
		}

		var x, y int
		var best float64
		for {
			x = chain[len(chain)-1]
			if len(chain) > 1 {
				y = chain[len(chain)-2]
				best = d.at(x, y)
			} else {
				y = -1
				best = math.Inf(1)
			}

			for i := 0; i < n; i++ {
				if size[i] == 0 || i == x {
					continue
				}
				if dist := d.at(x, i); dist < best {
					best = dist
					y = i
				}
			}

			if len(chain) > 1 && y == chain[len(chain)-2] {
				break
			}
			chain = append(chain, y)
		}
		chain = chain[:len(chain)-2]

		if x > y {
			x, y = y, x
		}
		nx, ny := size[x], size[y]
		merges = append(merges, Merge{A: x, B: y, Height: best, Size: nx + ny})

		// The merged cluster lives on at y.
		size[x] = 0
		size[y] = nx + ny
		for k := 0; k < n; k++ {
			if size[k] == 0 || k == y {
				continue
			}
			d.set(k, y, lanceWilliams(linkage, d.at(k, x), d.at(k, y), best, nx, ny, size[k]))
		}
	}

	sort.SliceStable(merges, func(i, j int) bool {
		return merges[i].Height < merges[j].Height
	})
	return merges, nil
}

// disjointSet is a union-find over row indices.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent}
}

func (s *disjointSet) find(i int) int {
	for s.parent[i] != i {
		s.parent[i] = s.parent[s.parent[i]]
		i = s.parent[i]
	}
	return i
}

func (s *disjointSet) union(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra != rb {
		s.parent[rb] = ra
	}
}

// Package cluster implements the street-by-street abstraction pipeline:
// Elkan's triangle-inequality accelerated k-means with k-means++ seeding,
// producing the Lookup/Future/Metric tables each street's abstraction needs.
//
// The acceleration structure follows Elkan's formulation directly: each
// point carries its assigned centroid, per-centroid lower bounds, an upper
// bound on the distance to its own centroid, and a stale flag.
package cluster

import (
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-cfr/internal/transport"
)

// Point is one isomorphism's histogram over next-street buckets, the unit
// the clustering pipeline operates on.
type Point struct {
	Histogram transport.Histogram
	Mass      float64 // total population weight, used when averaging centroids
}

// bounds carries the Elkan per-point bookkeeping: lower bounds per centroid,
// current assignment, upper bound, staleness.
type bounds struct {
	j     int
	lower []float64
	u     float64
	stale bool
}

// Result holds the three tables a clustering run produces.
type Result struct {
	Lookup    []int                 // isomorphism index -> bucket
	Centroids []transport.Histogram // bucket -> mean next-street histogram (the Future table)
	Metric    *transport.Metric     // pairwise bucket distances, mean-symmetrized and normalized to [0,1]
}

// Config bundles the k-means hyperparameters: k and the iteration cap are
// set per street by the caller. Ground is the next-street bucket metric the
// EMD runs against (the previously clustered street's Metric, or the
// derived equity metric at the river boundary); nil falls back to a unit
// (0/1) ground cost.
type Config struct {
	K          int
	Iterations int
	Seed       int64
	Transport  transport.Config
	Ground     *transport.Metric
	Parallel   int // point-sweep worker count; 0 means runtime.NumCPU()
}

func (cfg Config) ground(dim int) *transport.Metric {
	if cfg.Ground != nil {
		return cfg.Ground
	}
	return unitMetric(dim)
}

// Run clusters points into cfg.K centroids using Elkan's algorithm, with
// EMD via Sinkhorn coupling against the configured ground metric as the
// point distance.
func Run(points []Point, cfg Config) Result {
	n := len(points)
	k := cfg.K
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Parallel <= 0 {
		cfg.Parallel = runtime.NumCPU()
	}
	dim := len(points[0].Histogram)
	ground := cfg.ground(dim)

	dist := func(a, b transport.Histogram) float64 {
		return transport.Sinkhorn(a.Normalized(), b.Normalized(), ground, cfg.Transport).Cost
	}

	centroids := seedPlusPlus(points, k, rng, dist)
	b := make([]bounds, n)
	for i := range b {
		b[i].lower = make([]float64, k)
	}
	parallelSweep(n, cfg.Parallel, func(i int) {
		best, bestD := 0, math.Inf(1)
		for c := 0; c < k; c++ {
			d := dist(points[i].Histogram, centroids[c])
			b[i].lower[c] = d
			if d < bestD {
				best, bestD = c, d
			}
		}
		b[i].j, b[i].u, b[i].stale = best, bestD, false
	})

	for iter := 0; iter < cfg.Iterations; iter++ {
		pairs := pairwiseCentroidDistances(centroids, dist)
		midpoints := make([]float64, k)
		for c := 0; c < k; c++ {
			best := math.Inf(1)
			for cp := 0; cp < k; cp++ {
				if cp == c {
					continue
				}
				if pairs[c][cp] < best {
					best = pairs[c][cp]
				}
			}
			midpoints[c] = 0.5 * best
		}

		parallelSweep(n, cfg.Parallel, func(i int) {
			p := &b[i]
			if p.u <= midpoints[p.j] {
				return
			}
			for c := 0; c < k; c++ {
				if c == p.j {
					continue
				}
				if p.u <= p.lower[c] || p.u <= 0.5*pairs[p.j][c] {
					continue
				}
				if p.stale {
					p.u = dist(points[i].Histogram, centroids[p.j])
					p.lower[p.j] = p.u
					p.stale = false
				}
				if p.u <= p.lower[c] || p.u <= 0.5*pairs[p.j][c] {
					continue
				}
				d := dist(points[i].Histogram, centroids[c])
				p.lower[c] = d
				if d < p.u {
					p.j, p.u = c, d
				}
			}
		})

		newCentroids, movement := recomputeCentroids(points, b, centroids, k, rng, dist)
		centroids = newCentroids
		for i := range b {
			for c := 0; c < k; c++ {
				b[i].lower[c] = math.Max(0, b[i].lower[c]-movement[c])
			}
			b[i].u += movement[b[i].j]
			b[i].stale = true
		}
	}

	lookup := make([]int, n)
	for i := range points {
		lookup[i] = b[i].j
	}

	metric := symmetricNormalizedMetric(centroids, dist)
	return Result{Lookup: lookup, Centroids: centroids, Metric: metric}
}

// parallelSweep runs fn over [0, n) split across workers goroutines, the
// same worker-split shape as the equity estimator's Monte-Carlo fan-out.
// Workers touch disjoint index ranges, so no locking is needed.
func parallelSweep(n, workers int, fn func(i int)) {
	if workers <= 1 || n < 2*workers {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start, end := w*chunk, (w+1)*chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// unitMetric is the 0/1 ground cost used when no next-street metric is
// configured (toy inputs and tests).
func unitMetric(n int) *transport.Metric {
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				dist[i*n+j] = 1
			}
		}
	}
	return transport.NewMetric(n, dist)
}

func pairwiseCentroidDistances(centroids []transport.Histogram, dist func(a, b transport.Histogram) float64) [][]float64 {
	k := len(centroids)
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			d := dist(centroids[i], centroids[j])
			out[i][j], out[j][i] = d, d
		}
	}
	return out
}

// recomputeCentroids averages member histograms weighted by mass; an empty
// cluster is reseeded from a random point.
func recomputeCentroids(points []Point, b []bounds, old []transport.Histogram, k int, rng *rand.Rand, dist func(a, b transport.Histogram) float64) ([]transport.Histogram, []float64) {
	dim := len(old[0])
	sums := make([]transport.Histogram, k)
	mass := make([]float64, k)
	for c := range sums {
		sums[c] = make(transport.Histogram, dim)
	}
	for i, p := range points {
		c := b[i].j
		mass[c] += p.Mass
		for d := 0; d < dim; d++ {
			sums[c][d] += p.Histogram[d] * p.Mass
		}
	}

	next := make([]transport.Histogram, k)
	movement := make([]float64, k)
	for c := 0; c < k; c++ {
		if mass[c] == 0 {
			seed := points[rng.Intn(len(points))].Histogram
			next[c] = append(transport.Histogram(nil), seed...)
		} else {
			next[c] = make(transport.Histogram, dim)
			for d := 0; d < dim; d++ {
				next[c][d] = sums[c][d] / mass[c]
			}
		}
		movement[c] = dist(old[c], next[c])
	}
	return next, movement
}

// seedPlusPlus implements k-means++: pick one point uniformly, then repeatedly
// pick the next centroid with probability proportional to its squared
// distance to the nearest already-chosen centroid, using a deterministic RNG
// seeded from the street identifier.
func seedPlusPlus(points []Point, k int, rng *rand.Rand, dist func(a, b transport.Histogram) float64) []transport.Histogram {
	centroids := make([]transport.Histogram, 0, k)
	first := points[rng.Intn(len(points))]
	centroids = append(centroids, append(transport.Histogram(nil), first.Histogram...))

	for len(centroids) < k {
		weights := make([]float64, len(points))
		var total float64
		for i, p := range points {
			best := math.Inf(1)
			for _, c := range centroids {
				d := dist(p.Histogram, c)
				if d < best {
					best = d
				}
			}
			weights[i] = best * best
			total += weights[i]
		}
		if total == 0 {
			centroids = append(centroids, append(transport.Histogram(nil), points[rng.Intn(len(points))].Histogram...))
			continue
		}
		r := rng.Float64() * total
		var acc float64
		chosen := len(points) - 1
		for i, w := range weights {
			acc += w
			if acc >= r {
				chosen = i
				break
			}
		}
		centroids = append(centroids, append(transport.Histogram(nil), points[chosen].Histogram...))
	}
	return centroids
}

func symmetricNormalizedMetric(centroids []transport.Histogram, dist func(a, b transport.Histogram) float64) *transport.Metric {
	k := len(centroids)
	out := make([]float64, k*k)
	maxD := 0.0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			dij := dist(centroids[i], centroids[j])
			dji := dist(centroids[j], centroids[i])
			mean := 0.5 * (dij + dji)
			out[i*k+j], out[j*k+i] = mean, mean
			if mean > maxD {
				maxD = mean
			}
		}
	}
	if maxD > 0 {
		for i := range out {
			out[i] /= maxD
		}
	}
	return transport.NewMetric(k, out)
}

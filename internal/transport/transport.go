// Package transport implements the ground-metric machinery used to cluster
// abstraction buckets: a discrete Sinkhorn entropic optimal-transport solver
// between histograms over the same street, and the closed-form 1-D EMD used
// for river equity buckets.
package transport

import "math"

// Support marks the types a Density can be defined over: comparable scalar
// bucket identifiers; no ordering is required. All histograms in this package use
// int bucket indices.
type Support interface {
	comparable
}

// Density is a distribution over a support set: a mass per point plus an
// iterator over the points carrying mass.
type Density[T Support] interface {
	Density(t T) float64
	Support() []T
}

// Measure is a ground metric between two support sets.
type Measure[X, Y Support] interface {
	Distance(x X, y Y) float64
}

// Transport is the coupling contract: a plan minimizing total cost under a
// ground measure, exposing the per-pair flow and the achieved cost.
type Transport interface {
	Flow(x, y int) float64
	TotalCost() float64
}

// Histogram is a probability distribution over a fixed, street-sized set of
// bucket indices. Entries need not be normalized; callers typically build it
// from population counts. Histogram implements Density[int].
type Histogram []float64

// Density returns the mass at bucket t, zero out of range.
func (h Histogram) Density(t int) float64 {
	if t < 0 || t >= len(h) {
		return 0
	}
	return h[t]
}

// Support returns the bucket indices carrying nonzero mass.
func (h Histogram) Support() []int {
	out := make([]int, 0, len(h))
	for i, v := range h {
		if v > 0 {
			out = append(out, i)
		}
	}
	return out
}

// Increment adds mass to bucket t in place.
func (h Histogram) Increment(t int, mass float64) {
	h[t] += mass
}

// Merge adds o's mass into h in place; the histograms must cover the same
// bucket set.
func (h Histogram) Merge(o Histogram) {
	if len(h) != len(o) {
		panic("transport: Merge requires equal-length histograms")
	}
	for i, v := range o {
		h[i] += v
	}
}

// ExpectedValue is the mass-weighted mean equity of a river histogram,
// reading bucket i's center as i/(n-1) on the unit equity axis.
func (h Histogram) ExpectedValue() float64 {
	n := len(h)
	if n == 0 {
		return 0
	}
	span := 1.0
	if n > 1 {
		span = 1.0 / float64(n-1)
	}
	var total, ev float64
	for i, v := range h {
		total += v
		ev += v * float64(i) * span
	}
	if total == 0 {
		return 0
	}
	return ev / total
}

// Normalized returns a copy of h scaled to sum to 1.
func (h Histogram) Normalized() Histogram {
	var sum float64
	for _, v := range h {
		sum += v
	}
	out := make(Histogram, len(h))
	if sum == 0 {
		return out
	}
	for i, v := range h {
		out[i] = v / sum
	}
	return out
}

// Metric is a precomputed pairwise ground-distance table over the previous
// street's buckets, symmetric and normalized to [0,1] (the Metric output of
// the clustering pipeline).
type Metric struct {
	n    int
	dist []float64 // n*n, row-major
}

// NewMetric builds a Metric from a dense n*n distance matrix.
func NewMetric(n int, dist []float64) *Metric {
	if len(dist) != n*n {
		panic("transport: metric matrix size mismatch")
	}
	return &Metric{n: n, dist: dist}
}

// Dist returns the ground distance between buckets i and j.
func (m *Metric) Dist(i, j int) float64 {
	return m.dist[i*m.n+j]
}

// Distance implements Measure[int, int].
func (m *Metric) Distance(i, j int) float64 { return m.Dist(i, j) }

// Size returns the number of buckets the metric covers.
func (m *Metric) Size() int { return m.n }

// EquityMetric builds the derived river ground metric over n equity buckets:
// d(a, b) = |eq(a) - eq(b)| with bucket centers spread evenly over [0, 1].
func EquityMetric(n int) *Metric {
	dist := make([]float64, n*n)
	span := 1.0
	if n > 1 {
		span = 1.0 / float64(n-1)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dist[i*n+j] = math.Abs(float64(i)-float64(j)) * span
		}
	}
	return NewMetric(n, dist)
}

// Config holds the Sinkhorn hyperparameters: temperature, iteration cap, and
// convergence tolerance.
type Config struct {
	Temperature float64
	Iterations  int
	Tolerance   float64
}

// DefaultConfig matches the reference hyperparameters used across the
// abstraction pipeline.
var DefaultConfig = Config{Temperature: 0.1, Iterations: 200, Tolerance: 1e-6}

// Coupling is the result of a Sinkhorn solve: log-space potentials over the
// support of mu and nu, plus whether the solve converged within tolerance.
// Coupling implements Transport.
type Coupling struct {
	F         []float64 // over supp(mu)
	G         []float64 // over supp(nu)
	Converged bool
	Cost      float64

	metric *Metric
	temp   float64
}

// Flow returns the transported mass between source bucket x and target
// bucket y under the solved plan: exp(f(x) + g(y) - M(x,y)/tau).
func (c Coupling) Flow(x, y int) float64 {
	if x < 0 || x >= len(c.F) || y < 0 || y >= len(c.G) {
		return 0
	}
	return math.Exp(c.F[x] + c.G[y] - c.metric.Dist(x, y)/c.temp)
}

// TotalCost returns the achieved transport cost.
func (c Coupling) TotalCost() float64 { return c.Cost }

// Sinkhorn computes the entropic optimal-transport coupling between mu and
// nu under ground metric m, via log-space potential iteration:
//
//	f(x) <- log mu(x) - log sum_y exp(g(y) - M(x,y)/tau)
//	g(y) <- log nu(y) - log sum_x exp(f(x) - M(x,y)/tau)
//
// Non-convergence is not an error: Sinkhorn returns its best-effort
// potentials with Converged=false after exhausting Iterations.
func Sinkhorn(mu, nu Histogram, m *Metric, cfg Config) Coupling {
	n, k := len(mu), len(nu)
	f := make([]float64, n)
	g := make([]float64, k)
	logMu := logOf(mu)
	logNu := logOf(nu)

	converged := false
	for iter := 0; iter < cfg.Iterations; iter++ {
		prevF := append([]float64(nil), f...)
		prevG := append([]float64(nil), g...)

		for x := 0; x < n; x++ {
			f[x] = logMu[x] - logSumExp(k, func(y int) float64 {
				return g[y] - m.Dist(x, y)/cfg.Temperature
			})
		}
		for y := 0; y < k; y++ {
			g[y] = logNu[y] - logSumExp(n, func(x int) float64 {
				return f[x] - m.Dist(x, y)/cfg.Temperature
			})
		}

		if l1Change(prevF, f)+l1Change(prevG, g) < cfg.Tolerance {
			converged = true
			break
		}
	}

	var cost float64
	for x := 0; x < n; x++ {
		for y := 0; y < k; y++ {
			coupling := math.Exp(f[x] + g[y] - m.Dist(x, y)/cfg.Temperature)
			cost += coupling * m.Dist(x, y)
		}
	}

	return Coupling{F: f, G: g, Converged: converged, Cost: cost, metric: m, temp: cfg.Temperature}
}

func logOf(h Histogram) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		if v <= 0 {
			out[i] = math.Inf(-1)
		} else {
			out[i] = math.Log(v)
		}
	}
	return out
}

func logSumExp(n int, term func(int) float64) float64 {
	max := math.Inf(-1)
	for i := 0; i < n; i++ {
		if v := term(i); v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Exp(term(i) - max)
	}
	return max + math.Log(sum)
}

func l1Change(a, b []float64) float64 {
	var total float64
	for i := range a {
		total += math.Abs(math.Exp(a[i]) - math.Exp(b[i]))
	}
	return total
}

// EMD1D computes the Earth Mover's Distance between two histograms over
// points lying on [0,1] with ground cost |x-y|, via the O(N) CDF-sweep
// identity: EMD equals the integrated absolute difference of CDFs. Used for
// river equity buckets, which are already quantized onto a 1-D equity axis.
func EMD1D(mu, nu Histogram) float64 {
	if len(mu) != len(nu) {
		panic("transport: EMD1D requires equal-length histograms")
	}
	n := len(mu)
	muN, nuN := mu.Normalized(), nu.Normalized()

	var cdfMu, cdfNu, total float64
	step := 1.0
	if n > 1 {
		step = 1.0 / float64(n-1)
	}
	for i := 0; i < n-1; i++ {
		cdfMu += muN[i]
		cdfNu += nuN[i]
		total += math.Abs(cdfMu-cdfNu) * step
	}
	return total
}

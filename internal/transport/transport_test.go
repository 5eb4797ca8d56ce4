package transport

import (
	"math"
	"testing"
)

func identityMetric(n int) *Metric {
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				dist[i*n+j] = 1
			}
		}
	}
	return NewMetric(n, dist)
}

func TestSinkhornIdenticalHistogramsConverge(t *testing.T) {
	mu := Histogram{0.5, 0.3, 0.2}
	m := identityMetric(3)
	// Under a 0/1 metric at temperature 0.1 the off-diagonal kernel is e^-10,
	// so the potentials settle slowly: DefaultConfig's 200 sweeps stop short
	// of the tolerance, and the cap is raised here.
	cfg := DefaultConfig
	cfg.Iterations = 20000
	c := Sinkhorn(mu, mu, m, cfg)
	if !c.Converged {
		t.Fatal("expected Sinkhorn to converge on identical histograms")
	}
	if c.Cost > 1e-3 {
		t.Fatalf("expected near-zero cost for identical histograms, got %v", c.Cost)
	}
}

func TestSinkhornCostIsNonNegative(t *testing.T) {
	mu := Histogram{0.7, 0.2, 0.1}
	nu := Histogram{0.1, 0.2, 0.7}
	m := identityMetric(3)
	c := Sinkhorn(mu, nu, m, DefaultConfig)
	if c.Cost < 0 {
		t.Fatalf("expected non-negative transport cost, got %v", c.Cost)
	}
}

func TestSinkhornCostIsSymmetricWithinTolerance(t *testing.T) {
	mu := Histogram{0.7, 0.2, 0.1}
	nu := Histogram{0.1, 0.2, 0.7}
	m := identityMetric(3)
	a := Sinkhorn(mu, nu, m, DefaultConfig)
	b := Sinkhorn(nu, mu, m, DefaultConfig)
	if math.Abs(a.Cost-b.Cost) > 1e-3 {
		t.Fatalf("expected symmetric cost, got %v vs %v", a.Cost, b.Cost)
	}
}

func TestCouplingFlowMarginalsMatchInputs(t *testing.T) {
	mu := Histogram{0.6, 0.4}
	nu := Histogram{0.3, 0.7}
	m := identityMetric(2)
	c := Sinkhorn(mu, nu, m, DefaultConfig)

	for x := range mu {
		var marginal float64
		for y := range nu {
			marginal += c.Flow(x, y)
		}
		if math.Abs(marginal-mu[x]) > 1e-3 {
			t.Fatalf("row marginal %d = %v, want %v", x, marginal, mu[x])
		}
	}
}

func TestHistogramDensitySupport(t *testing.T) {
	h := Histogram{0.5, 0, 0.5}
	if h.Density(0) != 0.5 || h.Density(1) != 0 || h.Density(5) != 0 {
		t.Fatal("unexpected density values")
	}
	supp := h.Support()
	if len(supp) != 2 || supp[0] != 0 || supp[1] != 2 {
		t.Fatalf("unexpected support %v", supp)
	}
}

func TestHistogramIncrementMergeExpectedValue(t *testing.T) {
	h := make(Histogram, 5)
	h.Increment(0, 1)
	h.Increment(4, 1)
	if got := h.ExpectedValue(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected EV 0.5, got %v", got)
	}

	o := make(Histogram, 5)
	o.Increment(4, 2)
	h.Merge(o)
	if got := h.ExpectedValue(); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("expected EV 0.75 after merge, got %v", got)
	}
}

func TestEquityMetricIsAbsoluteDifference(t *testing.T) {
	m := EquityMetric(5)
	if math.Abs(m.Dist(0, 4)-1.0) > 1e-9 {
		t.Fatalf("extreme buckets should be distance 1, got %v", m.Dist(0, 4))
	}
	if math.Abs(m.Dist(1, 3)-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %v", m.Dist(1, 3))
	}
	if m.Dist(2, 2) != 0 {
		t.Fatal("self distance should be 0")
	}
}

func TestRiverEMDMatchesSinkhornOn1D(t *testing.T) {
	mu := Histogram{0.5, 0.3, 0.2, 0, 0}
	nu := Histogram{0, 0.1, 0.3, 0.3, 0.3}
	m := EquityMetric(5)
	cfg := Config{Temperature: 0.0005, Iterations: 20000, Tolerance: 1e-10}
	sink := Sinkhorn(mu, nu, m, cfg)
	direct := EMD1D(mu, nu)
	if math.Abs(sink.Cost-direct) > 1e-3 {
		t.Fatalf("Sinkhorn cost %v differs from closed-form EMD %v", sink.Cost, direct)
	}
}

func TestEMD1DIdenticalIsZero(t *testing.T) {
	h := Histogram{0.1, 0.2, 0.4, 0.2, 0.1}
	if d := EMD1D(h, h); math.Abs(d) > 1e-9 {
		t.Fatalf("expected 0 distance for identical histograms, got %v", d)
	}
}

func TestEMD1DShiftedMass(t *testing.T) {
	allLow := Histogram{1, 0, 0, 0, 0}
	allHigh := Histogram{0, 0, 0, 0, 1}
	got := EMD1D(allLow, allHigh)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected EMD 1.0 between extreme point masses, got %v", got)
	}
}

package cluster

import (
	"testing"

	"github.com/lox/holdem-cfr/internal/transport"
)

func twoBlobPoints() []Point {
	low := transport.Histogram{0.9, 0.1, 0, 0}
	high := transport.Histogram{0, 0, 0.1, 0.9}
	pts := make([]Point, 0, 20)
	for i := 0; i < 10; i++ {
		pts = append(pts, Point{Histogram: low, Mass: 1})
	}
	for i := 0; i < 10; i++ {
		pts = append(pts, Point{Histogram: high, Mass: 1})
	}
	return pts
}

func TestRunSeparatesTwoBlobs(t *testing.T) {
	pts := twoBlobPoints()
	cfg := Config{K: 2, Iterations: 10, Seed: 1, Transport: transport.DefaultConfig}
	res := Run(pts, cfg)

	firstBucket := res.Lookup[0]
	for i := 0; i < 10; i++ {
		if res.Lookup[i] != firstBucket {
			t.Fatalf("expected all low-blob points in the same bucket, point %d differs", i)
		}
	}
	secondBucket := res.Lookup[10]
	if secondBucket == firstBucket {
		t.Fatal("expected the two blobs to land in different buckets")
	}
	for i := 10; i < 20; i++ {
		if res.Lookup[i] != secondBucket {
			t.Fatalf("expected all high-blob points in the same bucket, point %d differs", i)
		}
	}
}

func TestRiverBucketsQuantizeIntoRange(t *testing.T) {
	equity := []float64{0, 0.1, 0.5, 0.99, 1.0}
	buckets := RiverBuckets(equity, 10)
	for i, b := range buckets {
		if b < 0 || b >= 10 {
			t.Fatalf("bucket %d out of range for equity %v", b, equity[i])
		}
	}
	if buckets[0] != 0 {
		t.Fatalf("expected equity 0 to land in bucket 0, got %d", buckets[0])
	}
	if buckets[len(buckets)-1] != 9 {
		t.Fatalf("expected equity 1.0 to land in the last bucket, got %d", buckets[len(buckets)-1])
	}
}

func TestRunHonorsGroundMetric(t *testing.T) {
	// With a ground metric that makes buckets 0/1 and 2/3 mutually close,
	// mass in bucket 1 is nearly free to move to bucket 0 but expensive to
	// move to bucket 3, so the two blobs still separate cleanly.
	ground := transport.NewMetric(4, []float64{
		0, 0.1, 1, 1,
		0.1, 0, 1, 1,
		1, 1, 0, 0.1,
		1, 1, 0.1, 0,
	})
	pts := twoBlobPoints()
	cfg := Config{K: 2, Iterations: 10, Seed: 1, Transport: transport.DefaultConfig, Ground: ground}
	res := Run(pts, cfg)
	if res.Lookup[0] == res.Lookup[10] {
		t.Fatal("expected the two blobs to land in different buckets under a structured ground metric")
	}
}

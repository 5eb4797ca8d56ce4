package main

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cluster"
	"github.com/lox/holdem-cfr/internal/combinatorics"
	"github.com/lox/holdem-cfr/internal/config"
	"github.com/lox/holdem-cfr/internal/eval"
	"github.com/lox/holdem-cfr/internal/iso"
	"github.com/lox/holdem-cfr/internal/lookup"
	"github.com/lox/holdem-cfr/internal/sink"
	"github.com/lox/holdem-cfr/internal/transport"
)

// ClusterCmd runs the offline abstraction pipeline (C6) street by street in
// dependency order — River, Turn, Flop, Preflop: river buckets are quantized
// equity (no clustering), turn and flop are Elkan k-means over each
// isomorphism's next-street bucket histogram with EMD against the
// previously-computed next-street metric, and preflop is the identity
// abstraction. Every street's tables (isomorphism, abstraction, metric,
// transitions, street) land in the sink.
type ClusterCmd struct {
	Config string `help:"path to an HCL config file (defaults apply if absent)"`
	Out    string `help:"path to write the abstraction sink dump" required:""`
}

func (cmd *ClusterCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return fmt.Errorf("cluster: load config: %w", err)
	}

	store := sink.NewMemory()
	tcfg := transport.Config{
		Temperature: cfg.Sinkhorn.Temperature,
		Iterations:  cfg.Sinkhorn.Iterations,
		Tolerance:   cfg.Sinkhorn.Tolerance,
	}

	logger.Info("clustering river", "buckets", cfg.Cluster.EquityBuckets)
	river, err := clusterRiver(ctx, store, cfg)
	if err != nil {
		return err
	}

	logger.Info("clustering turn", "k", cfg.Cluster.TurnClusters)
	turn, err := clusterStreet(ctx, store, streetStage{
		street:     card.Turn,
		k:          cfg.Cluster.TurnClusters,
		iterations: cfg.Cluster.TurnTrainIterations,
		transport:  tcfg,
		next:       river,
	})
	if err != nil {
		return err
	}

	logger.Info("clustering flop", "k", cfg.Cluster.FlopClusters)
	if _, err := clusterStreet(ctx, store, streetStage{
		street:     card.Flop,
		k:          cfg.Cluster.FlopClusters,
		iterations: cfg.Cluster.FlopTrainIterations,
		transport:  tcfg,
		next:       turn,
	}); err != nil {
		return err
	}

	logger.Info("recording preflop identity abstraction")
	if err := recordPreflop(store); err != nil {
		return err
	}

	if err := store.SaveJSON(cmd.Out); err != nil {
		return fmt.Errorf("cluster: save sink dump: %w", err)
	}
	logger.Info("wrote abstraction sink dump", "path", cmd.Out)
	return nil
}

// streetResult carries one completed street's outputs into the previous
// street's clustering: the canonical-observation -> tagged-bucket map and
// the bucket metric the EMD ground cost reads.
type streetResult struct {
	street  card.Street
	assign  map[int64]int16 // canonical obs key -> tagged abstraction
	nAbs    int
	metric  *transport.Metric
	indexOf func(tagged int16) int // tagged abstraction -> histogram position
}

// canonicalObservations walks every observation on street, deduplicating by
// isomorphism: one representative and a raw population count per canonical
// key, plus the total number of raw observations seen.
func canonicalObservations(street card.Street) (map[int64]card.Observation, map[int64]int32, uint64) {
	reps := make(map[int64]card.Observation)
	pops := make(map[int64]int32)
	it := combinatorics.NewObservationIterator(street)
	var raw uint64
	for {
		obs, ok := it.Next()
		if !ok {
			break
		}
		raw++
		canon := iso.Canonical(obs)
		key := canon.ToI64()
		if _, seen := reps[key]; !seen {
			reps[key] = canon
		}
		pops[key]++
	}
	return reps, pops, raw
}

// clusterRiver quantizes every river isomorphism's exact equity into
// equal-width buckets (no k-means at the river) and persists the street's
// tables. The derived river metric is |eq(a) - eq(b)| over bucket centers.
func clusterRiver(ctx context.Context, store *sink.Memory, cfg *config.Config) (streetResult, error) {
	n := cfg.Cluster.EquityBuckets
	reps, pops, raw := canonicalObservations(card.River)

	keys := make([]int64, 0, len(reps))
	for key := range reps {
		keys = append(keys, key)
	}
	equities := make([]float64, len(keys))
	if err := parallelRange(ctx, len(keys), func(i int) {
		equities[i] = riverEquity(reps[keys[i]])
	}); err != nil {
		return streetResult{}, err
	}

	buckets := cluster.RiverBuckets(equities, n)
	assign := make(map[int64]int16, len(keys))
	b := lookup.NewBuilder()
	sums := make([]float64, n)
	counts := make([]int32, n)
	for i, key := range keys {
		tagged := card.NewAbstraction(card.River, uint8(buckets[i])).ToI16()
		assign[key] = tagged
		b.Set(key, tagged)
		sums[buckets[i]] += equities[i] * float64(pops[key])
		counts[buckets[i]] += pops[key]
		if err := store.Put(sink.Isomorphism, sink.EncodeI64(key), sink.EncodeI16(tagged)); err != nil {
			return streetResult{}, err
		}
	}
	if _, err := b.Freeze(); err != nil {
		return streetResult{}, fmt.Errorf("cluster: freeze river lookup: %w", err)
	}

	metric := transport.EquityMetric(n)
	for bucket := 0; bucket < n; bucket++ {
		mean := float32(0)
		if counts[bucket] > 0 {
			mean = float32(sums[bucket] / float64(counts[bucket]))
		}
		tagged := card.NewAbstraction(card.River, uint8(bucket)).ToI16()
		row := sink.AbstractionRow{Street: int16(card.River), Population: counts[bucket], Equity: mean}
		if err := store.Put(sink.Abstraction, sink.EncodeI16(tagged), sink.EncodeAbstractionRow(row)); err != nil {
			return streetResult{}, err
		}
	}
	if err := putMetric(store, card.River, n, metric); err != nil {
		return streetResult{}, err
	}
	if err := putStreet(store, card.River, int32(raw), int32(n)); err != nil {
		return streetResult{}, err
	}

	return streetResult{
		street:  card.River,
		assign:  assign,
		nAbs:    n,
		metric:  metric,
		indexOf: func(tagged int16) int { return int(card.AbstractionFromI16(tagged).Index()) },
	}, nil
}

// streetStage bundles one k-means street's inputs.
type streetStage struct {
	street     card.Street
	k          int
	iterations int
	transport  transport.Config
	next       streetResult
}

// clusterStreet runs Elkan k-means over street's isomorphisms: each point is
// the isomorphism's histogram over next-street buckets, obtained by dealing
// every possible next card and classifying the child observation through the
// already-clustered next street. The EMD ground metric is the next street's
// bucket metric.
func clusterStreet(ctx context.Context, store *sink.Memory, stage streetStage) (streetResult, error) {
	reps, pops, raw := canonicalObservations(stage.street)

	keys := make([]int64, 0, len(reps))
	for key := range reps {
		keys = append(keys, key)
	}
	points := make([]cluster.Point, len(keys))
	if err := parallelRange(ctx, len(keys), func(i int) {
		key := keys[i]
		h := nextStreetHistogram(reps[key], stage.next)
		points[i] = cluster.Point{Histogram: h, Mass: float64(pops[key])}
	}); err != nil {
		return streetResult{}, err
	}

	result := cluster.Run(points, cluster.Config{
		K:          stage.k,
		Iterations: stage.iterations,
		Seed:       int64(stage.street),
		Transport:  stage.transport,
		Ground:     stage.next.metric,
	})

	assign := make(map[int64]int16, len(keys))
	b := lookup.NewBuilder()
	counts := make([]int32, stage.k)
	for i, key := range keys {
		bucket := result.Lookup[i]
		tagged := card.NewAbstraction(stage.street, uint8(bucket)).ToI16()
		assign[key] = tagged
		b.Set(key, tagged)
		counts[bucket] += pops[key]
		if err := store.Put(sink.Isomorphism, sink.EncodeI64(key), sink.EncodeI16(tagged)); err != nil {
			return streetResult{}, err
		}
	}
	if _, err := b.Freeze(); err != nil {
		return streetResult{}, fmt.Errorf("cluster: freeze %s lookup: %w", stage.street, err)
	}

	for bucket := 0; bucket < stage.k; bucket++ {
		tagged := card.NewAbstraction(stage.street, uint8(bucket)).ToI16()
		row := sink.AbstractionRow{Street: int16(stage.street), Population: counts[bucket]}
		if err := store.Put(sink.Abstraction, sink.EncodeI16(tagged), sink.EncodeAbstractionRow(row)); err != nil {
			return streetResult{}, err
		}
		// The centroid histogram is this bucket's Future: its distribution
		// over next-street buckets, persisted as transitions rows.
		for j, mass := range result.Centroids[bucket] {
			if mass == 0 {
				continue
			}
			nextTagged := card.NewAbstraction(stage.next.street, uint8(j)).ToI16()
			key := sink.EncodeTransitionKey(tagged, nextTagged)
			if err := store.Put(sink.Transitions, key, sink.EncodeF32(float32(mass))); err != nil {
				return streetResult{}, err
			}
		}
	}
	if err := putMetric(store, stage.street, stage.k, result.Metric); err != nil {
		return streetResult{}, err
	}
	if err := putStreet(store, stage.street, int32(raw), int32(stage.k)); err != nil {
		return streetResult{}, err
	}

	return streetResult{
		street:  stage.street,
		assign:  assign,
		nAbs:    stage.k,
		metric:  result.Metric,
		indexOf: func(tagged int16) int { return int(card.AbstractionFromI16(tagged).Index()) },
	}, nil
}

// recordPreflop persists the identity preflop abstraction: one bucket per
// isomorphism class, no clustering.
func recordPreflop(store *sink.Memory) error {
	reps, pops, raw := canonicalObservations(card.Preflop)
	counts := make([]int32, iso.NumPreflopClasses)
	for key, canon := range reps {
		idx := iso.PreflopIndex(canon)
		tagged := card.NewAbstraction(card.Preflop, uint8(idx)).ToI16()
		counts[idx] += pops[key]
		if err := store.Put(sink.Isomorphism, sink.EncodeI64(key), sink.EncodeI16(tagged)); err != nil {
			return err
		}
	}
	for idx, pop := range counts {
		tagged := card.NewAbstraction(card.Preflop, uint8(idx)).ToI16()
		row := sink.AbstractionRow{Street: int16(card.Preflop), Population: pop}
		if err := store.Put(sink.Abstraction, sink.EncodeI16(tagged), sink.EncodeAbstractionRow(row)); err != nil {
			return err
		}
	}
	return putStreet(store, card.Preflop, int32(raw), int32(iso.NumPreflopClasses))
}

// nextStreetHistogram deals every card that could complete obs's next street
// and counts which next-street bucket each child isomorphism lands in.
func nextStreetHistogram(obs card.Observation, next streetResult) transport.Histogram {
	h := make(transport.Histogram, next.nAbs)
	dead := obs.Hole.Hand().Merge(obs.Board.Hand())
	nextStreet, _ := obs.Street().Next()
	it := combinatorics.NewHandIterator(nextStreet.NRevealed(), dead)
	for {
		draw, ok := it.Next()
		if !ok {
			break
		}
		board, err := card.NewBoard(append(obs.Board.Hand().Cards(), draw.Cards()...)...)
		if err != nil {
			panic(err)
		}
		child := iso.Canonical(card.Observation{Hole: obs.Hole, Board: board})
		tagged, ok := next.assign[child.ToI64()]
		if !ok {
			continue
		}
		h[next.indexOf(tagged)]++
	}
	return h
}

// riverEquity computes the exact showdown win probability for a river
// observation: the fraction of opponent holes the 7-card hand beats, ties
// counted as half, by exhaustive enumeration.
func riverEquity(obs card.Observation) float64 {
	dead := obs.Hole.Hand().Merge(obs.Board.Hand())
	my := eval.Evaluate(dead)
	it := combinatorics.NewHandIterator(2, dead)
	var wins, total float64
	for {
		oppHole, ok := it.Next()
		if !ok {
			break
		}
		opp := eval.Evaluate(oppHole.Merge(obs.Board.Hand()))
		switch cmp := my.Compare(opp); {
		case cmp > 0:
			wins++
		case cmp == 0:
			wins += 0.5
		}
		total++
	}
	if total == 0 {
		return 0.5
	}
	return wins / total
}

// putMetric writes every pairwise bucket distance for street, keyed by the
// triangular pair id over the tagged abstractions.
func putMetric(store *sink.Memory, street card.Street, n int, metric *transport.Metric) error {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a := card.NewAbstraction(street, uint8(i)).ToI16()
			b := card.NewAbstraction(street, uint8(j)).ToI16()
			id := sink.TriangularPairID(a, b)
			if err := store.Put(sink.Metric, sink.EncodeI32(id), sink.EncodeF32(float32(metric.Dist(i, j)))); err != nil {
				return err
			}
		}
	}
	return nil
}

func putStreet(store *sink.Memory, street card.Street, nobs, nabs int32) error {
	row := sink.StreetRow{NObs: nobs, NAbs: nabs}
	return store.Put(sink.Street, sink.EncodeI16(int16(street)), sink.EncodeStreetRow(row))
}

// parallelRange runs fn over [0, n) across NumCPU workers, honoring ctx
// cancellation between chunks.
func parallelRange(ctx context.Context, n int, fn func(i int)) error {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
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
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				fn(i)
			}
			return nil
		})
	}
	return g.Wait()
}

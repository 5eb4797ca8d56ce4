package cfr

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// TrainingConfig bundles the reproducible-run knobs: tree count and batch
// size constants, generalized beyond any single domain binding. Grounded in
// pokerforbots's sdk/solver/trainer.go TrainingConfig/NewTrainer shape.
type TrainingConfig struct {
	Epochs          int
	TreesPerEpoch   int // CFR_TREE_COUNT_NLHE
	BatchSize       int // CFR_BATCH_SIZE_NLHE: trees between cancellation checks
	Parallel        int // worker count; 0 means runtime.NumCPU()
	Seed            int64
	RegretSchedule  Schedule
	PolicySchedule  Schedule
	CheckpointEvery int
}

// Progress is emitted after each epoch so a caller can render a progress
// bar, write a log line, or trigger a checkpoint.
type Progress struct {
	Epoch     int
	ProfileSz int
	Elapsed   time.Duration
}

// Trainer orchestrates MCCFR epochs over a Game family: each worker
// independently samples trees via Walk and applies its updates directly to
// the shared, sharded Profile. Workers own their own tree traversal; only
// Profile accumulation is shared, guarded per-info-set.
type Trainer struct {
	newRoot func(rng *rand.Rand) Game
	enc     Encoder
	scheme  Scheme
	profile *Profile
	cfg     TrainingConfig
	epoch   atomic.Int64
}

// NewTrainer builds a Trainer. newRoot constructs a fresh Game root for one
// sampled tree (e.g. a freshly dealt heads-up hand), given a worker-private
// RNG so trees sampled concurrently never share mutable random state: workers
// never share trees, and none of them touch a package-global rand source.
func NewTrainer(newRoot func(rng *rand.Rand) Game, enc Encoder, scheme Scheme, profile *Profile, cfg TrainingConfig) *Trainer {
	if cfg.RegretSchedule == nil {
		cfg.RegretSchedule = LinearSchedule{}
	}
	if cfg.PolicySchedule == nil {
		cfg.PolicySchedule = LinearWeightSchedule{}
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	return &Trainer{newRoot: newRoot, enc: enc, scheme: scheme, profile: profile, cfg: cfg}
}

// Run drives cfg.Epochs training epochs, each sampling cfg.TreesPerEpoch
// trees spread across cfg.Parallel workers via an errgroup pool, calling
// onProgress after every epoch. Run returns early if ctx is canceled or
// onProgress returns a non-nil error. Training is preemptible between
// epochs; no in-flight update is ever split across epochs.
func (tr *Trainer) Run(ctx context.Context, onProgress func(Progress) error) error {
	base := rand.New(rand.NewSource(tr.cfg.Seed))

	for e := 0; e < tr.cfg.Epochs; e++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		t := int(tr.epoch.Add(1))

		g, grpCtx := errgroup.WithContext(ctx)
		treesPerWorker := tr.cfg.TreesPerEpoch / tr.cfg.Parallel
		if treesPerWorker == 0 {
			treesPerWorker = 1
		}
		for w := 0; w < tr.cfg.Parallel; w++ {
			workerSeed := base.Int63()
			g.Go(func() error {
				rng := rand.New(rand.NewSource(workerSeed))
				for i := 0; i < treesPerWorker; i++ {
					if i%tr.cfg.BatchSize == 0 {
						select {
						case <-grpCtx.Done():
							return grpCtx.Err()
						default:
						}
					}
					root := tr.newRoot(rng)
					Walk(root, tr.enc, tr.profile, tr.scheme, t, rng, tr.cfg.RegretSchedule, tr.cfg.PolicySchedule)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("cfr: epoch %d: %w", e, err)
		}

		if onProgress != nil {
			if err := onProgress(Progress{Epoch: e, ProfileSz: tr.profile.Size(), Elapsed: time.Since(start)}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Profile exposes the trained profile for checkpointing or strategy
// extraction.
func (tr *Trainer) Profile() *Profile { return tr.profile }

// Epoch reports the number of completed training epochs.
func (tr *Trainer) Epoch() int64 { return tr.epoch.Load() }

// Size reports the number of distinct info sets the profile has touched.
func (p *Profile) Size() int {
	total := 0
	for i := range p.shards {
		p.mus[i].RLock()
		total += len(p.shards[i])
		p.mus[i].RUnlock()
	}
	return total
}

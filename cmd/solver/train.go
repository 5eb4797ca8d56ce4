package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/config"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/nlhe"
	"github.com/lox/holdem-cfr/internal/sink"
)

// TrainCmd drives MCCFR training over the NLHE binding, mirroring the shape
// of pokerforbots's cmd/solver TrainCmd (out path, iteration/epoch knobs,
// parallelism, seed, checkpointing) with the domain collapsed to heads-up.
type TrainCmd struct {
	Config          string `help:"path to an HCL config file (defaults apply if absent)"`
	Out             string `help:"path to write the final checkpoint" required:""`
	Epochs          int    `help:"number of training epochs" default:"1000"`
	Parallel        int    `help:"worker count (0 uses NumCPU)" default:"0"`
	Seed            int64  `help:"random seed" default:"1"`
	CheckpointEvery int    `help:"checkpoint every N epochs (0 disables)" default:"0"`
	CheckpointPath  string `help:"path to write periodic checkpoints"`
	ResumeFrom      string `help:"resume training from a prior checkpoint"`
	CFRPlus         bool   `help:"use the Pluribus regret schedule (CFR+-style floor) instead of plain linear discounting"`
	Sampling        string `help:"sampling scheme (external|vanilla|targeted|pruning|pluribus)" enum:"external,vanilla,targeted,pruning,pluribus" default:"external"`
	Sink            string `help:"also export the blueprint and epoch tables as a sink dump"`
	Tables          string `help:"path to an abstraction sink dump (cluster --out) to hydrate lookup tables from"`
}

func (cmd *TrainCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return fmt.Errorf("train: load config: %w", err)
	}

	gameCfg := game.Config{
		Stack:      cfg.Game.Stack,
		SmallBlind: cfg.Game.SmallBlind,
		BigBlind:   cfg.Game.BigBlind,
		MaxRaises:  cfg.Game.MaxRaises,
	}

	tables := nlhe.Tables{RiverBuckets: cfg.Cluster.EquityBuckets}
	if cmd.Tables != "" {
		store, err := sink.LoadJSON(cmd.Tables)
		if err != nil {
			return fmt.Errorf("train: load abstraction tables: %w", err)
		}
		tables, err = hydrateTables(store, cfg.Cluster.EquityBuckets)
		if err != nil {
			return fmt.Errorf("train: hydrate lookup tables: %w", err)
		}
		logger.Info("hydrated lookup tables",
			"preflop", tables.Preflop.Len(), "flop", tables.Flop.Len(), "turn", tables.Turn.Len())
	}
	enc := nlhe.NewEncoder(tables)
	profile := cfr.NewProfile(cfg.Training.PolicyMin)

	var resumeEpoch int64
	if cmd.ResumeFrom != "" {
		snap, err := cfr.LoadCheckpoint(cmd.ResumeFrom)
		if err != nil {
			return fmt.Errorf("train: load checkpoint: %w", err)
		}
		cfr.Restore(profile, snap)
		resumeEpoch = snap.Epoch
		logger.Info("resumed from checkpoint", "checkpoint", cmd.ResumeFrom, "epoch", snap.Epoch)
	}

	scheme := samplingScheme(cmd.Sampling, cfg.Pruning)

	var regretSchedule cfr.Schedule = cfr.LinearSchedule{}
	if cmd.CFRPlus {
		regretSchedule = cfr.PluribusRegretSchedule{Floor: cfg.Pruning.RegretMin}
	}

	newRoot := func(rng *rand.Rand) cfr.Game {
		deck := card.NewDeck(rng)
		h0, _ := deck.DealHand(2)
		h1, _ := deck.DealHand(2)
		holes := [2]card.Hole{card.NewHole(h0.Cards()[0], h0.Cards()[1]), card.NewHole(h1.Cards()[0], h1.Cards()[1])}
		return nlhe.NewRoot(gameCfg, holes)
	}

	trainer := cfr.NewTrainer(newRoot, enc, scheme, profile, cfr.TrainingConfig{
		Epochs:          cmd.Epochs,
		TreesPerEpoch:   cfg.Training.TreesPerEpoch,
		BatchSize:       cfg.Training.BatchSize,
		Parallel:        cmd.Parallel,
		Seed:            cmd.Seed,
		RegretSchedule:  regretSchedule,
		PolicySchedule:  cfr.LinearWeightSchedule{},
		CheckpointEvery: cmd.CheckpointEvery,
	})
	if resumeEpoch > 0 {
		trainer.SetEpoch(resumeEpoch)
	}

	onProgress := func(p cfr.Progress) error {
		logger.Info("epoch complete", "epoch", p.Epoch, "infosets", p.ProfileSz, "elapsed", p.Elapsed)
		if cmd.CheckpointEvery > 0 && cmd.CheckpointPath != "" && p.Epoch%cmd.CheckpointEvery == 0 {
			path := fmt.Sprintf("%s.%d", cmd.CheckpointPath, p.Epoch)
			if err := trainer.SaveCheckpoint(path); err != nil {
				return fmt.Errorf("train: checkpoint: %w", err)
			}
			logger.Info("wrote checkpoint", "path", path)
		}
		return nil
	}

	start := time.Now()
	if err := trainer.Run(ctx, onProgress); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	logger.Info("training complete", "total", time.Since(start))

	if err := trainer.SaveCheckpoint(cmd.Out); err != nil {
		return fmt.Errorf("train: save final checkpoint: %w", err)
	}
	logger.Info("wrote final blueprint", "path", cmd.Out)

	if cmd.Sink != "" {
		store := sink.NewMemory()
		if err := nlhe.SaveProfile(profile, store); err != nil {
			return fmt.Errorf("train: export blueprint table: %w", err)
		}
		if err := nlhe.SaveEpoch(store, trainer.Epoch()); err != nil {
			return fmt.Errorf("train: export epoch table: %w", err)
		}
		if err := store.SaveJSON(cmd.Sink); err != nil {
			return fmt.Errorf("train: save sink dump: %w", err)
		}
		logger.Info("wrote blueprint sink dump", "path", cmd.Sink)
	}
	return nil
}

func samplingScheme(name string, pruning config.PruningConfig) cfr.Scheme {
	switch name {
	case "vanilla":
		return cfr.Vanilla{}
	case "targeted":
		return cfr.Targeted{}
	case "pruning":
		return cfr.Pruning{Threshold: pruning.Threshold}
	case "pluribus":
		return cfr.Pluribus{Threshold: pruning.Threshold, Warmup: pruning.Warmup, Explore: pruning.Explore}
	default:
		return cfr.External{}
	}
}

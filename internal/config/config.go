// Package config loads the solver's tunable constants from an HCL file,
// grounded in pokerforbots's internal/server/config.go: a struct tagged for
// gohcl, a DefaultConfig, and a loader that falls back to the defaults when
// no file is present rather than erroring.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ClusterConfig holds the offline abstraction-clustering constants (§6).
type ClusterConfig struct {
	EquityBuckets       int `hcl:"equity_buckets,optional"`        // KMEANS_EQTY_CLUSTER_COUNT
	FlopClusters        int `hcl:"flop_clusters,optional"`         // KMEANS_FLOP_CLUSTER_COUNT
	TurnClusters        int `hcl:"turn_clusters,optional"`         // KMEANS_TURN_CLUSTER_COUNT
	FlopTrainIterations int `hcl:"flop_train_iterations,optional"` // KMEANS_FLOP_TRAINING_ITERATIONS
	TurnTrainIterations int `hcl:"turn_train_iterations,optional"` // KMEANS_TURN_TRAINING_ITERATIONS
}

// SinkhornConfig holds the entropic optimal-transport hyperparameters used
// to build the cluster ground metric (§4.4).
type SinkhornConfig struct {
	Temperature float64 `hcl:"temperature,optional"` // SINKHORN_TEMPERATURE
	Iterations  int     `hcl:"iterations,optional"`  // SINKHORN_ITERATIONS
	Tolerance   float64 `hcl:"tolerance,optional"`   // SINKHORN_TOLERANCE
}

// PruningConfig holds the MCCFR negative-regret pruning policy knobs (§5).
type PruningConfig struct {
	Warmup    int     `hcl:"warmup,optional"`    // PRUNING_WARMUP
	Explore   float64 `hcl:"explore,optional"`   // PRUNING_EXPLORE
	Threshold float64 `hcl:"threshold,optional"` // PRUNING_THRESHOLD
	RegretMin float64 `hcl:"regret_min,optional"` // REGRET_MIN
}

// SubgameConfig holds the depth-limited real-time solving parameters (§4.8).
type SubgameConfig struct {
	Alts        int `hcl:"alts,optional"`         // SUBGAME_ALTS
	Iterations  int `hcl:"iterations,optional"`   // SUBGAME_ITERATIONS
	MaxDepth    int `hcl:"max_depth,optional"`     // MAX_DEPTH_SUBGAME
}

// TrainingConfig holds the MCCFR batch/tree scheduling constants (§4.7) and
// the strategy normalization floor (§4.9).
type TrainingConfig struct {
	PolicyMin     float64 `hcl:"policy_min,optional"`      // POLICY_MIN
	TreesPerEpoch int     `hcl:"trees_per_epoch,optional"`  // CFR_TREE_COUNT_NLHE
	BatchSize     int     `hcl:"batch_size,optional"`       // CFR_BATCH_SIZE_NLHE
}

// GameConfig holds the heads-up NLHE game defaults (§2).
type GameConfig struct {
	Stack      int `hcl:"stack,optional"`
	SmallBlind int `hcl:"small_blind,optional"`
	BigBlind   int `hcl:"big_blind,optional"`
	MaxRaises  int `hcl:"max_raises,optional"`
}

// Config is the root of the solver's HCL configuration document.
type Config struct {
	Game     GameConfig     `hcl:"game,block"`
	Cluster  ClusterConfig  `hcl:"cluster,block"`
	Sinkhorn SinkhornConfig `hcl:"sinkhorn,block"`
	Pruning  PruningConfig  `hcl:"pruning,block"`
	Subgame  SubgameConfig  `hcl:"subgame,block"`
	Training TrainingConfig `hcl:"training,block"`
}

// Default returns the published reference constants (§6): 169 / 1 286 792 /
// 13 960 050 / 123 156 254 observation counts per street inform the cluster
// counts chosen here, not the raw totals themselves (every preflop hand gets
// its own bucket; flop/turn are abstracted down to a tractable K).
func Default() *Config {
	return &Config{
		Game: GameConfig{
			Stack:      20000,
			SmallBlind: 50,
			BigBlind:   100,
			MaxRaises:  4,
		},
		Cluster: ClusterConfig{
			EquityBuckets:       101,
			FlopClusters:        128,
			TurnClusters:        144,
			FlopTrainIterations: 100,
			TurnTrainIterations: 100,
		},
		Sinkhorn: SinkhornConfig{
			Temperature: 0.1,
			Iterations:  200,
			Tolerance:   1e-6,
		},
		Pruning: PruningConfig{
			Warmup:    200,
			Explore:   0.05,
			Threshold: 1e-5,
			RegretMin: -1e6,
		},
		Subgame: SubgameConfig{
			Alts:       8,
			Iterations: 1000,
			MaxDepth:   16,
		},
		Training: TrainingConfig{
			PolicyMin:     1e-3,
			TreesPerEpoch: 1000,
			BatchSize:     100,
		},
	}
}

// Load reads filename as an HCL document and decodes it into a Config,
// filling any zero-valued field from Default(). A missing file is not an
// error: Load returns Default() unchanged.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}

	cfg := *Default()
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", filename, diags.Error())
	}

	applyDefaults(&cfg, Default())
	return &cfg, nil
}

// applyDefaults fills any field HCL left at its zero value from def, mirroring
// the teacher's post-decode default-filling pass rather than relying on HCL's
// own optional-field zero value matching the desired default.
func applyDefaults(cfg, def *Config) {
	if cfg.Game.Stack == 0 {
		cfg.Game = def.Game
	}
	if cfg.Cluster.EquityBuckets == 0 {
		cfg.Cluster.EquityBuckets = def.Cluster.EquityBuckets
	}
	if cfg.Cluster.FlopClusters == 0 {
		cfg.Cluster.FlopClusters = def.Cluster.FlopClusters
	}
	if cfg.Cluster.TurnClusters == 0 {
		cfg.Cluster.TurnClusters = def.Cluster.TurnClusters
	}
	if cfg.Cluster.FlopTrainIterations == 0 {
		cfg.Cluster.FlopTrainIterations = def.Cluster.FlopTrainIterations
	}
	if cfg.Cluster.TurnTrainIterations == 0 {
		cfg.Cluster.TurnTrainIterations = def.Cluster.TurnTrainIterations
	}
	if cfg.Sinkhorn.Temperature == 0 {
		cfg.Sinkhorn.Temperature = def.Sinkhorn.Temperature
	}
	if cfg.Sinkhorn.Iterations == 0 {
		cfg.Sinkhorn.Iterations = def.Sinkhorn.Iterations
	}
	if cfg.Sinkhorn.Tolerance == 0 {
		cfg.Sinkhorn.Tolerance = def.Sinkhorn.Tolerance
	}
	if cfg.Pruning.Warmup == 0 {
		cfg.Pruning.Warmup = def.Pruning.Warmup
	}
	if cfg.Pruning.Explore == 0 {
		cfg.Pruning.Explore = def.Pruning.Explore
	}
	if cfg.Pruning.Threshold == 0 {
		cfg.Pruning.Threshold = def.Pruning.Threshold
	}
	if cfg.Pruning.RegretMin == 0 {
		cfg.Pruning.RegretMin = def.Pruning.RegretMin
	}
	if cfg.Subgame.Alts == 0 {
		cfg.Subgame.Alts = def.Subgame.Alts
	}
	if cfg.Subgame.Iterations == 0 {
		cfg.Subgame.Iterations = def.Subgame.Iterations
	}
	if cfg.Subgame.MaxDepth == 0 {
		cfg.Subgame.MaxDepth = def.Subgame.MaxDepth
	}
	if cfg.Training.PolicyMin == 0 {
		cfg.Training.PolicyMin = def.Training.PolicyMin
	}
	if cfg.Training.TreesPerEpoch == 0 {
		cfg.Training.TreesPerEpoch = def.Training.TreesPerEpoch
	}
	if cfg.Training.BatchSize == 0 {
		cfg.Training.BatchSize = def.Training.BatchSize
	}
}

package subgame

import (
	"math/rand"

	"github.com/lox/holdem-cfr/internal/cfr"
)

// SolveConfig carries the depth-limited solve loop's knobs, mirroring
// config.SubgameConfig (SUBGAME_ITERATIONS, MAX_DEPTH_SUBGAME) without this
// package depending on internal/config directly.
type SolveConfig struct {
	Iterations int
	MaxDepth   int
}

// Solve runs Iterations epochs of depth-limited MCCFR (the Subgame sampling
// scheme) from root into sp.Local(), then returns sp so the caller can read
// back a refined Real-phase policy via sp.Real. root is built by
// NewAugmentedGame; enc must be a subgame.Encoder wrapping the domain's own
// Encoder so Real-phase Info lookups land in the same keyspace the frozen
// blueprint was trained against.
func Solve(root *AugmentedGame, enc cfr.Encoder, sp *SubProfile, cfg SolveConfig, seed int64) *SubProfile {
	if cfg.Iterations <= 0 {
		return sp
	}
	rng := rand.New(rand.NewSource(seed))
	scheme := cfr.Subgame{MaxDepth: cfg.MaxDepth}
	var regretSchedule cfr.Schedule = cfr.LinearSchedule{}
	var policySchedule cfr.Schedule = cfr.LinearWeightSchedule{}
	for t := 1; t <= cfg.Iterations; t++ {
		cfr.Walk(root, enc, sp.Local(), scheme, t, rng, regretSchedule, policySchedule)
	}
	return sp
}

package nlhe

import (
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/game"
)

// policyFloor is the minimum probability Strategy.Policy assigns any legal
// edge, preventing a trained blueprint from ever serving a literal-zero
// action probability at the table (a hard zero can't recover from a bad
// sample during training, and is indistinguishable from "illegal" to a
// caller).
const policyFloor = 1e-3

// Strategy extracts a live decision policy from a trained Profile, applying
// its own normalization floor on top of the Profile's raw cumulative
// strategy weight rather than Profile.Averaged's floor (so the domain
// binding's floor can be tuned independently of the generic CFR core's).
type Strategy struct {
	profile *Profile
	enc     *Encoder
}

// Profile is the trained accumulator Strategy reads from.
type Profile = cfr.Profile

// NewStrategy builds a Strategy over a trained profile and the Encoder used
// to produce the Info keys the profile was trained against.
func NewStrategy(profile *Profile, enc *Encoder) *Strategy {
	return &Strategy{profile: profile, enc: enc}
}

// Policy returns the normalized action-probability distribution at state,
// keyed by each legal edge of Choices(): p(a) =
// max(W(I,a), policyFloor) / sum_b max(W(I,b), policyFloor), per §4.9.
func (s *Strategy) Policy(state *State) map[game.Edge]float64 {
	info := s.enc.Info(state)
	edges := info.Choices()

	weights := make([]float64, len(edges))
	var total float64
	for i, e := range edges {
		w := s.profile.Weight(info, e)
		if w < policyFloor {
			w = policyFloor
		}
		weights[i] = w
		total += w
	}

	out := make(map[game.Edge]float64, len(edges))
	for i, e := range edges {
		ge := e.(game.Edge)
		if total <= 0 {
			out[ge] = 1.0 / float64(len(edges))
			continue
		}
		out[ge] = weights[i] / total
	}
	return out
}

// Sample draws a single edge from Policy(state) using rng01, a caller-
// supplied uniform [0,1) draw (kept explicit rather than reaching for a
// package-global rand source, matching the deck's own deterministic-by-
// construction style).
func (s *Strategy) Sample(state *State, rng01 float64) game.Edge {
	info := s.enc.Info(state)
	edges := info.Choices()
	policy := s.Policy(state)

	var cum float64
	var last game.Edge
	for _, e := range edges {
		ge := e.(game.Edge)
		last = ge
		cum += policy[ge]
		if rng01 < cum {
			return ge
		}
	}
	return last
}

// SeedDefaults installs a domain-level prior over a fresh State's legal
// edges before training touches it: a mild check/call preference over
// folding or raising large, matching the warm-start bias pokerforbots's
// blueprint solver seeds its regret table with so early MCCFR iterations
// don't waste samples on an unbiased uniform prior.
func SeedDefaults(profile *Profile, enc *Encoder, state *State) {
	info := enc.Info(state)
	for _, e := range info.Choices() {
		ge := e.(game.Edge)
		policy, regret := defaultPrior(ge)
		profile.SetDefaults(info, e, policy, regret)
	}
}

func defaultPrior(e game.Edge) (policy, regret float64) {
	switch e.Kind {
	case game.Fold:
		return 0.1, 0
	case game.Check, game.Call:
		return 0.5, 0
	default:
		return 0.2, 0
	}
}

// Package subgame implements safe depth-limited subgame solving, used at
// inference time to refine a frozen blueprint strategy against the specific
// situation reached.
//
// The augmented game has three phases: Prefix deterministically replays the
// observed history to the subgame root; Meta lets a pseudo-player (the
// opponent) pick one of K posterior "worlds"; Real plays the subgame
// normally until the next chance node. Grounded in pokerforbots's
// sdk/solver/runtime/policy.go Policy (the frozen-blueprint fallback this
// package's SubProfile generalizes) and cfr.Profile's accumulator shape.
package subgame

import (
	"sort"

	"github.com/lox/holdem-cfr/internal/cfr"
)

// Phase tags which of the three augmented-game phases a node belongs to.
type Phase uint8

const (
	Prefix Phase = iota
	Meta
	Real
)

// World is one posterior opponent-range cluster: a quantile of the
// opponent's possible secrets (holes), weighted by its share of the
// opponent's reach-weighted range mass.
type World struct {
	Label  string  // the world's representative bucket label, used as a Meta edge
	Weight float64 // this world's share of total reach-weighted mass
}

// PosteriorReach is one candidate opponent secret (bucket) and its external
// reach probability under the blueprint: the product of blueprint action
// probabilities along the path at the opponent's decision points.
type PosteriorReach struct {
	Bucket string
	Reach  float64
}

// BuildWorlds takes the opponent's posterior over its secret (computed by
// the caller from the public history), sorts it by reach descending, and
// partitions it into k
// contiguous quantiles of equal total mass.
func BuildWorlds(posterior []PosteriorReach, k int) []World {
	sorted := append([]PosteriorReach(nil), posterior...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Reach > sorted[j].Reach })

	var total float64
	for _, p := range sorted {
		total += p.Reach
	}
	if total == 0 || len(sorted) == 0 {
		return nil
	}

	target := total / float64(k)
	worlds := make([]World, 0, k)
	acc := 0.0
	start := 0
	for i := 0; i < len(sorted); i++ {
		acc += sorted[i].Reach
		lastSlot := len(worlds) == k-1
		if acc >= target*float64(len(worlds)+1) || i == len(sorted)-1 || lastSlot && i == len(sorted)-1 {
			mass := 0.0
			for _, p := range sorted[start : i+1] {
				mass += p.Reach
			}
			worlds = append(worlds, World{Label: sorted[start].Bucket, Weight: mass / total})
			start = i + 1
			if len(worlds) == k {
				break
			}
		}
	}
	// Fold any leftover mass (rounding) into the last world, preserving
	// "world weights sum to 1".
	if start < len(sorted) {
		extra := 0.0
		for _, p := range sorted[start:] {
			extra += p.Reach
		}
		if len(worlds) > 0 {
			worlds[len(worlds)-1].Weight += extra / total
		}
	}
	return worlds
}

// SubProfile wraps a frozen blueprint profile plus fresh local accumulators
// keyed on augmented infos: Prefix-phase queries return deterministic
// forced values (weight 1, regret 0); Meta-phase queries return world
// weights as cum_weight; Real-phase queries fall back to the blueprint only
// when a local value is absent.
type SubProfile struct {
	blueprint *cfr.Profile
	local     *cfr.Profile
	worlds    []World
}

// NewSubProfile builds a SubProfile over a frozen blueprint and the
// computed worlds for this subgame instance.
func NewSubProfile(blueprint *cfr.Profile, worlds []World) *SubProfile {
	return &SubProfile{blueprint: blueprint, local: cfr.NewProfile(1e-6), worlds: worlds}
}

// Forced returns the deterministic Prefix-phase policy: weight 1 on the one
// historical edge, 0 elsewhere.
func (sp *SubProfile) Forced(edge, historicalEdge cfr.Edge) float64 {
	if edge == historicalEdge {
		return 1
	}
	return 0
}

// MetaWeight returns the opponent pseudo-player's probability of selecting
// world i at the Meta phase: its precomputed posterior mass.
func (sp *SubProfile) MetaWeight(worldIndex int) float64 {
	if worldIndex < 0 || worldIndex >= len(sp.worlds) {
		return 0
	}
	return sp.worlds[worldIndex].Weight
}

// Real returns the Real-phase policy for (info, edge): the local
// accumulator if the info has been visited during this subgame solve,
// falling back to the frozen blueprint otherwise.
func (sp *SubProfile) Real(info cfr.Info, edge cfr.Edge) float64 {
	if sp.local.Size() > 0 {
		if v := sp.local.Averaged(info, edge); v > 0 {
			return v
		}
	}
	return sp.blueprint.Averaged(info, edge)
}

// Local exposes the fresh accumulator set for Real-phase CFR updates (e.g.
// to pass to cfr.Walk as the Profile argument during the subgame solve
// loop).
func (sp *SubProfile) Local() *cfr.Profile { return sp.local }

// Policy normalizes Real() over info's legal edges into a decision
// distribution, for extracting a live action once Solve has refined sp.
func (sp *SubProfile) Policy(info cfr.Info) map[cfr.Edge]float64 {
	edges := info.Choices()
	weights := make([]float64, len(edges))
	var total float64
	for i, e := range edges {
		w := sp.Real(info, e)
		weights[i] = w
		total += w
	}
	out := make(map[cfr.Edge]float64, len(edges))
	for i, e := range edges {
		if total <= 0 {
			out[e] = 1.0 / float64(len(edges))
			continue
		}
		out[e] = weights[i] / total
	}
	return out
}

package nlhe

import (
	"fmt"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/combinatorics"
	"github.com/lox/holdem-cfr/internal/subgame"
)

// ExternalReach replays history from root with seat's hole replaced by the
// hypothesized hole and returns the product of blueprint action
// probabilities at seat's decision points: seat's contribution to reaching
// the current state under the blueprint. Chance probabilities are uniform
// across hypotheses and hero's own decisions are excluded by definition of
// external reach, so neither enters the product.
func ExternalReach(blueprint *cfr.Profile, enc *Encoder, root *State, history []cfr.Edge, seat int, hole card.Hole) float64 {
	cur := cfr.Game(withHole(root, seat, hole))
	reach := 1.0
	for _, e := range history {
		if kind, actor := cur.Turn(); kind == cfr.Choice && actor == seat {
			reach *= blueprint.Averaged(enc.Info(cur), e)
		}
		cur = cur.Apply(e)
	}
	return reach
}

// BuildPosterior computes the opponent's posterior over its secret given the
// public history: for every hole the seat opposite heroSeat could hold
// (disjoint from heroSeat's own hole and the board), replay the hand from
// root under the blueprint and take the opponent's external reach, then
// project onto bucket granularity and sum. The second return value maps
// each bucket label back to its highest-reach representative hole, for
// instantiating that world's Real-phase root.
func BuildPosterior(blueprint *cfr.Profile, enc *Encoder, root *State, history []cfr.Edge, state *State, heroSeat int) ([]subgame.PosteriorReach, map[string]card.Hole) {
	opponent := 1 - heroSeat
	dead := state.g.Seats[heroSeat].Hole.Hand().Merge(state.g.Board.Hand())

	mass := map[string]float64{}
	reps := map[string]card.Hole{}
	best := map[string]float64{}

	it := combinatorics.NewHandIterator(2, dead)
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		hole := card.NewHole(h.Cards()[0], h.Cards()[1])
		reach := ExternalReach(blueprint, enc, root, history, opponent, hole)
		if reach == 0 {
			continue
		}
		obs := card.Observation{Hole: hole, Board: state.g.Board}
		label := fmt.Sprintf("bucket%d", enc.Bucket(obs))
		mass[label] += reach
		if reach > best[label] {
			best[label] = reach
			reps[label] = hole
		}
	}

	posterior := make([]subgame.PosteriorReach, 0, len(mass))
	for label, reach := range mass {
		posterior = append(posterior, subgame.PosteriorReach{Bucket: label, Reach: reach})
	}
	return posterior, reps
}

// withHole clones state, substituting seat's hole — used to build each
// world's Real-phase root with the same board/pot/action history but a
// different hypothesized opponent hand.
func withHole(s *State, seat int, hole card.Hole) *State {
	ng := *s.g
	ng.Seats[seat].Hole = hole
	return &State{g: &ng, street: s.street, path: s.path}
}

// Refine runs depth-limited subgame solving (§4.8) at state's decision
// point for heroSeat: it builds the opponent's posterior worlds via
// BuildPosterior/subgame.BuildWorlds — replaying history from root under
// the blueprint to reach-weight every candidate secret — solves the
// augmented Prefix(empty)/Meta/Real game with subgame.Solve against a fresh
// local accumulator layered over blueprint, and returns the refined
// SubProfile plus the Info at state so the caller can read
// SubProfile.Policy. Prefix is empty here because the caller already holds
// the concrete live state at the subgame entry point; Prefix only does work
// when reconstructing from a serialized edge sequence.
func Refine(blueprint *cfr.Profile, enc *Encoder, root *State, history []cfr.Edge, state *State, heroSeat, alts int, solveCfg subgame.SolveConfig, seed int64) (*subgame.SubProfile, cfr.Info) {
	info := enc.Info(state)

	posterior, reps := BuildPosterior(blueprint, enc, root, history, state, heroSeat)
	worlds := subgame.BuildWorlds(posterior, alts)
	if len(worlds) == 0 {
		return subgame.NewSubProfile(blueprint, nil), info
	}

	opponent := 1 - heroSeat
	newReal := func(worldIndex int) cfr.Game {
		hole := reps[worlds[worldIndex].Label]
		return withHole(state, opponent, hole)
	}

	aug := subgame.NewAugmentedGame(nil, worlds, newReal)
	sp := subgame.NewSubProfile(blueprint, worlds)
	subgame.Solve(aug, subgame.Encoder{Inner: enc}, sp, solveCfg, seed)

	return sp, info
}

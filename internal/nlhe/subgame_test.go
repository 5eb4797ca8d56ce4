package nlhe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/subgame"
)

// callEdgeOf finds the Call edge among a state's choices.
func callEdgeOf(t *testing.T, s *State) game.Edge {
	t.Helper()
	for _, e := range s.edgeChoices() {
		if ge := e.(game.Edge); ge.Kind == game.Call {
			return ge
		}
	}
	t.Fatal("no call edge available")
	return game.Edge{}
}

func TestExternalReachMultipliesBlueprintProbsAtOpponentNodes(t *testing.T) {
	enc := NewEncoder(Tables{})
	blueprint := cfr.NewProfile(1e-3)
	root := NewRoot(game.DefaultConfig, heroVillainHoles())

	// Seat 0 (the opponent here) limps. Under an empty blueprint every
	// candidate hole's reach is the uniform 1/len(choices).
	call := callEdgeOf(t, root)
	history := []cfr.Edge{call}

	cand := card.NewHole(card.MustParse("Ah"), card.MustParse("Kh"))
	uniform := ExternalReach(blueprint, enc, root, history, 0, cand)
	require.Greater(t, uniform, 0.0)
	require.Less(t, uniform, 1.0)

	// Teach the blueprint that this candidate's info set always calls; its
	// reach must rise while a different candidate's stays at the uniform
	// prior.
	hypo := withHole(root, 0, cand)
	info := enc.Info(hypo)
	blueprint.Update(info, cfr.Edge(call), 1, 0, 100.0, 0, cfr.LinearSchedule{}, cfr.LinearSchedule{})

	boosted := ExternalReach(blueprint, enc, root, history, 0, cand)
	require.Greater(t, boosted, uniform)

	other := card.NewHole(card.MustParse("7h"), card.MustParse("2d"))
	require.InDelta(t, uniform, ExternalReach(blueprint, enc, root, history, 0, other), 1e-9)
}

func TestBuildPosteriorWeightsBucketsByBlueprintReach(t *testing.T) {
	enc := NewEncoder(Tables{})
	blueprint := cfr.NewProfile(1e-3)
	root := NewRoot(game.DefaultConfig, heroVillainHoles())

	call := callEdgeOf(t, root)
	history := []cfr.Edge{call}
	state := root.Apply(call).(*State)

	// Boost the calling probability for pocket aces' info set only.
	aces := card.NewHole(card.MustParse("Ah"), card.MustParse("Ad"))
	acesInfo := enc.Info(withHole(root, 0, aces))
	blueprint.Update(acesInfo, cfr.Edge(call), 1, 0, 100.0, 0, cfr.LinearSchedule{}, cfr.LinearSchedule{})

	posterior, reps := BuildPosterior(blueprint, enc, root, history, state, 1)
	require.NotEmpty(t, posterior)

	byBucket := map[string]float64{}
	var total float64
	for _, p := range posterior {
		byBucket[p.Bucket] = p.Reach
		total += p.Reach
		_, ok := reps[p.Bucket]
		require.True(t, ok, "bucket %s has no representative hole", p.Bucket)
	}

	acesObs := card.Observation{Hole: aces, Board: state.g.Board}
	acesLabel := fmt.Sprintf("bucket%d", enc.Bucket(acesObs))
	// One of the 169 preflop classes carries a boosted calling probability;
	// its share of the posterior must exceed its share of raw hole counts
	// (at most 6/1225 for a pair class under a uniform prior).
	require.Greater(t, byBucket[acesLabel]/total, 6.0/1225.0)
}

func TestRefineReturnsPolicyOverInfoChoices(t *testing.T) {
	enc := NewEncoder(Tables{})
	blueprint := cfr.NewProfile(1e-3)
	root := NewRoot(game.DefaultConfig, heroVillainHoles())

	call := callEdgeOf(t, root)
	history := []cfr.Edge{call}
	state := root.Apply(call).(*State)

	solveCfg := subgame.SolveConfig{Iterations: 5, MaxDepth: 0}
	sp, info := Refine(blueprint, enc, root, history, state, 1, 3, solveCfg, 7)
	require.NotNil(t, sp)

	policy := sp.Policy(info)
	require.Len(t, policy, len(info.Choices()))
	var total float64
	for _, p := range policy {
		require.GreaterOrEqual(t, p, 0.0)
		total += p
	}
	require.InDelta(t, 1.0, total, 1e-9)
}

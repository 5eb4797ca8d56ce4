package subgame

import (
	"testing"

	"github.com/lox/holdem-cfr/internal/cfr"
)

// choiceGame is a single walker Choice node over two edges, each leading to
// a distinct leaf payoff, used to exercise Solve's CFR accumulation without
// a full betting tree.
type choiceGame struct {
	resolved bool
	payoffs  map[string][2]float64
}

func (g choiceGame) Turn() (cfr.Kind, int) {
	if g.resolved {
		return cfr.Terminal, -1
	}
	return cfr.Choice, 0
}

func (g choiceGame) Choices() []cfr.Edge {
	if g.resolved {
		return nil
	}
	return []cfr.Edge{"call", "fold"}
}

func (g choiceGame) Apply(edge cfr.Edge) cfr.Game {
	return choiceGame{resolved: true, payoffs: map[string][2]float64{edgeKeyFor(edge): g.payoffs[edgeKeyFor(edge)]}}
}

func edgeKeyFor(e cfr.Edge) string { return e.(string) }

func (g choiceGame) Payoff(player int) float64 {
	for _, v := range g.payoffs {
		return v[player]
	}
	return 0
}

type choiceInfo struct{}

func (choiceInfo) Key() string         { return "choice" }
func (choiceInfo) Choices() []cfr.Edge { return []cfr.Edge{"call", "fold"} }

type choiceEncoder struct{}

func (choiceEncoder) Info(g cfr.Game) cfr.Info { return choiceInfo{} }
func (choiceEncoder) Resume(edges []cfr.Edge, root cfr.Game) cfr.Info {
	g := root
	for _, e := range edges {
		g = g.Apply(e)
	}
	return choiceInfo{}
}

func TestSolveRunsConfiguredIterationsAndAccumulatesLocalRegret(t *testing.T) {
	worlds := []World{{Label: "only", Weight: 1}}
	newReal := func(int) cfr.Game {
		return choiceGame{payoffs: map[string][2]float64{"call": {1, -1}, "fold": {-1, 1}}}
	}
	root := NewAugmentedGame(nil, worlds, newReal)
	sp := NewSubProfile(cfr.NewProfile(1e-6), worlds)

	enc := Encoder{Inner: choiceEncoder{}}
	Solve(root, enc, sp, SolveConfig{Iterations: 20, MaxDepth: 0}, 7)

	if sp.Local().Size() == 0 {
		t.Fatal("expected Solve to have populated the local accumulator")
	}
}

func TestSolveNoopsWhenIterationsIsZero(t *testing.T) {
	worlds := []World{{Label: "only", Weight: 1}}
	newReal := func(int) cfr.Game {
		return choiceGame{payoffs: map[string][2]float64{"call": {1, -1}, "fold": {-1, 1}}}
	}
	root := NewAugmentedGame(nil, worlds, newReal)
	sp := NewSubProfile(cfr.NewProfile(1e-6), worlds)

	Solve(root, Encoder{Inner: choiceEncoder{}}, sp, SolveConfig{Iterations: 0}, 1)

	if sp.Local().Size() != 0 {
		t.Fatal("expected no accumulation when Iterations is 0")
	}
}

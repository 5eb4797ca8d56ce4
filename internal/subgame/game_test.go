package subgame

import (
	"testing"

	"github.com/lox/holdem-cfr/internal/cfr"
)

// leafGame is a minimal terminal-only cfr.Game, used to isolate the
// Prefix/Meta machinery from any real betting tree.
type leafGame struct {
	payoffs [2]float64
}

func (l leafGame) Turn() (cfr.Kind, int)   { return cfr.Terminal, -1 }
func (l leafGame) Choices() []cfr.Edge     { return nil }
func (l leafGame) Apply(e cfr.Edge) cfr.Game { return l }
func (l leafGame) Payoff(player int) float64 { return l.payoffs[player] }

func TestAugmentedGamePrefixReplayEnforcesForcedEdge(t *testing.T) {
	ag := NewAugmentedGame([]cfr.Edge{"raise"}, nil, func(int) cfr.Game { return leafGame{} })

	kind, _ := ag.Turn()
	if kind != cfr.Choice {
		t.Fatalf("expected Prefix node to be Choice, got %v", kind)
	}
	choices := ag.Choices()
	if len(choices) != 1 || choices[0] != cfr.Edge("raise") {
		t.Fatalf("expected exactly the forced edge, got %v", choices)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected Apply to panic on a non-forced edge")
		}
	}()
	ag.Apply("fold")
}

func TestAugmentedGamePrefixAdvancesToMeta(t *testing.T) {
	worlds := []World{{Label: "a", Weight: 1}}
	ag := NewAugmentedGame([]cfr.Edge{"raise"}, worlds, func(int) cfr.Game { return leafGame{} })
	next := ag.Apply("raise").(*AugmentedGame)
	kind, _ := next.Turn()
	if kind != cfr.Chance {
		t.Fatalf("expected Meta node once prefix is exhausted, got %v", kind)
	}
}

func TestAugmentedGameMetaSelectsWorldByIndex(t *testing.T) {
	worlds := []World{{Label: "lo", Weight: 0}, {Label: "hi", Weight: 1}}
	ag := NewAugmentedGame(nil, worlds, func(i int) cfr.Game {
		return leafGame{payoffs: [2]float64{float64(i), -float64(i)}}
	})

	kind, _ := ag.Turn()
	if kind != cfr.Chance {
		t.Fatalf("expected Meta node at the root with no prefix, got %v", kind)
	}
	edges := ag.Choices()
	if len(edges) != 2 {
		t.Fatalf("expected one edge per world, got %d", len(edges))
	}

	we, ok := edges[1].(WorldEdge)
	if !ok || we.Weight() != 1 {
		t.Fatalf("expected world 1's edge to carry weight 1, got %v", edges[1])
	}

	child := ag.Apply(edges[1]).(*AugmentedGame)
	k2, _ := child.Turn()
	if k2 != cfr.Terminal {
		t.Fatalf("expected Real phase to delegate straight to the leaf, got %v", k2)
	}
	if child.Payoff(0) != 1 {
		t.Fatalf("expected Real phase conditioned on world 1, got payoff %v", child.Payoff(0))
	}
}

func TestAugmentedGamePayoffPanicsBeforeReal(t *testing.T) {
	ag := NewAugmentedGame(nil, []World{{Label: "a", Weight: 1}}, func(int) cfr.Game { return leafGame{} })
	defer func() {
		if recover() == nil {
			t.Fatal("expected Payoff to panic before the Real phase begins")
		}
	}()
	ag.Payoff(0)
}

package subgame

import (
	"fmt"

	"github.com/lox/holdem-cfr/internal/cfr"
)

// WorldEdge is the Meta-phase pseudo-player's choice of posterior world i.
// It implements cfr.WeightedEdge so the Chance-node handling in every
// cfr.Scheme samples it proportional to the world's fixed posterior mass
// rather than uniformly, honoring §4.8: "world weights are fixed; only
// inner policies update."
type WorldEdge struct {
	Index   int
	Label   string
	Weight_ float64
}

func (w WorldEdge) Weight() float64 { return w.Weight_ }
func (w WorldEdge) String() string  { return fmt.Sprintf("world(%s)", w.Label) }

// AugmentedGame is the three-phase subgame-solving game of §4.8:
//
//  1. Prefix deterministically replays a forced edge sequence (the observed
//     history between the live game's root and the subgame entry point) —
//     each node offers exactly one legal edge.
//  2. Meta is a single Chance node (the opponent pseudo-player's world
//     choice): one WorldEdge per world built by BuildWorlds, sampled by
//     its fixed weight.
//  3. Real delegates to the wrapped subgame root for the chosen world and
//     plays normally; the Subgame sampling scheme stops expansion at the
//     next Chance node it meets here, treating it as a depth-limited leaf.
type AugmentedGame struct {
	prefix  []cfr.Edge
	worlds  []World
	newReal func(worldIndex int) cfr.Game
	real    cfr.Game
}

// NewAugmentedGame builds the Prefix/Meta/Real composite root. prefix is
// the forced edge sequence leading from the live game's root to the
// subgame entry point (empty when the caller already holds a concrete
// state at that point, e.g. live play); worlds are BuildWorlds' posterior
// clusters; newReal builds the Real-phase root conditioned on whichever
// world the Meta phase draws.
func NewAugmentedGame(prefix []cfr.Edge, worlds []World, newReal func(worldIndex int) cfr.Game) *AugmentedGame {
	return &AugmentedGame{prefix: prefix, worlds: worlds, newReal: newReal}
}

func (g *AugmentedGame) Turn() (cfr.Kind, int) {
	switch {
	case g.real != nil:
		return g.real.Turn()
	case len(g.prefix) > 0:
		return cfr.Choice, 0
	default:
		return cfr.Chance, -1
	}
}

func (g *AugmentedGame) Choices() []cfr.Edge {
	switch {
	case g.real != nil:
		return g.real.Choices()
	case len(g.prefix) > 0:
		return g.prefix[:1]
	default:
		out := make([]cfr.Edge, len(g.worlds))
		for i, w := range g.worlds {
			out[i] = WorldEdge{Index: i, Label: w.Label, Weight_: w.Weight}
		}
		return out
	}
}

func (g *AugmentedGame) Apply(edge cfr.Edge) cfr.Game {
	switch {
	case g.real != nil:
		return &AugmentedGame{real: g.real.Apply(edge)}
	case len(g.prefix) > 0:
		if edge != g.prefix[0] {
			panic(fmt.Errorf("subgame: prefix replay expected %v, got %v", g.prefix[0], edge))
		}
		return &AugmentedGame{prefix: g.prefix[1:], worlds: g.worlds, newReal: g.newReal}
	default:
		w, ok := edge.(WorldEdge)
		if !ok {
			panic(fmt.Errorf("subgame: expected a WorldEdge at the Meta phase, got %T", edge))
		}
		return &AugmentedGame{real: g.newReal(w.Index)}
	}
}

func (g *AugmentedGame) Payoff(player int) float64 {
	if g.real == nil {
		panic("subgame: Payoff called before the Real phase began")
	}
	return g.real.Payoff(player)
}

// prefixInfo is the degenerate info set at a Prefix node: exactly one legal
// edge, so CFR regret-matching on it is a no-op (V(I,a) == V(I) always) —
// this is what makes Prefix's "deterministic forced value" hold under plain
// generic tree-walking, with no special-cased routing required.
type prefixInfo struct {
	edge cfr.Edge
}

func (p prefixInfo) Key() string         { return fmt.Sprintf("prefix:%v", p.edge) }
func (p prefixInfo) Choices() []cfr.Edge { return []cfr.Edge{p.edge} }

// Encoder wraps a real-phase cfr.Encoder so the augmented game's Real nodes
// are keyed exactly like the underlying domain binding (e.g. nlhe.Encoder),
// while Prefix nodes get the trivial forced-edge info above. Meta is a
// Chance node, so walk.go never asks an Encoder for its Info.
type Encoder struct {
	Inner cfr.Encoder
}

func (e Encoder) Info(g cfr.Game) cfr.Info {
	ag := g.(*AugmentedGame)
	switch {
	case ag.real != nil:
		return e.Inner.Info(ag.real)
	case len(ag.prefix) > 0:
		return prefixInfo{edge: ag.prefix[0]}
	default:
		panic("subgame: Info requested at the Meta (Chance) node")
	}
}

func (e Encoder) Resume(edges []cfr.Edge, root cfr.Game) cfr.Info {
	g := root
	for _, edge := range edges {
		g = g.Apply(edge)
	}
	return e.Info(g)
}

// Package cfr implements a generic Monte-Carlo Counterfactual Regret
// Minimization core: a Game/Info/Encoder abstraction over extensive-form
// games, a shared Profile of regret-matching+ accumulators, and pluggable
// sampling schemes and discount schedules.
//
// Grounded in pokerforbots's sdk/solver/regret.go (the sharded, FNV-hashed
// RegretTable this package's Profile generalizes beyond poker) and in
// ehrlich-b-poker's pkg/solver/mccfr.go recursive outcome-sampling walk
// (the shape Walk follows), reworked to a tagged Game/Info/Encoder family
// general enough to drive both a toy game and a full NLHE tree.
package cfr

import "fmt"

// Kind tags what a Game node is: a chance draw, a player choice, or a
// terminal payoff node.
type Kind uint8

const (
	Chance Kind = iota
	Choice
	Terminal
)

// Edge is an abstract action; any comparable value works as a map key.
// Tagged sums or generics would serve equally well here — this package
// follows pokerforbots's dynamic-dispatch style instead.
type Edge = any

// Game is the abstract extensive-form game family: root(), turn(),
// apply(edge), payoff(t).
type Game interface {
	// Turn reports the node kind, and, when Kind == Choice, the acting
	// player index.
	Turn() (Kind, int)
	// Choices enumerates the legal edges at the current node (valid for
	// both Choice and Chance nodes).
	Choices() []Edge
	// Apply consumes edge and returns the resulting Game state.
	Apply(edge Edge) Game
	// Payoff returns player's utility; valid only at a Terminal node.
	Payoff(player int) float64
}

// Info groups game states indistinguishable to the acting player: it
// exposes the edges available to choose among and the observable history
// that got here.
type Info interface {
	// Key uniquely identifies this info set for Profile lookups.
	Key() string
	// Choices are the edges legal from this info set; same cardinality and
	// order as the underlying Game.Choices() for the states this info
	// groups.
	Choices() []Edge
}

// Encoder maps games to infos, both at the root and during tree growth, and
// can replay a path of edges to reconstruct an info without re-walking the
// whole game.
type Encoder interface {
	Info(g Game) Info
	Resume(edges []Edge, root Game) Info
}

// edgeKey renders an Edge to a map key; Edge is already `any` and comparable
// in every concrete instantiation this package ships (game.Edge, string
// action labels for toy games), so direct map indexing is sufficient — this
// helper exists for error messages only.
func edgeKey(e Edge) string { return fmt.Sprintf("%v", e) }

// Package nlhe binds the generic cfr.Game/Info/Encoder family (internal/cfr)
// to the concrete heads-up NLHE engine (internal/game): State implements
// cfr.Game over a game.Game, Encoder produces Info keyed by the abstraction
// bucket (via internal/iso + a hydrated internal/lookup table), and Strategy
// extracts a live policy from a trained Profile with the domain's own
// normalization floor.
//
// Grounded in pokerforbots's sdk/solver/bucket.go (BucketMapper: the
// game-state -> strategic-bucket binding this package's Encoder
// generalizes with a learned Lookup instead of a hand-coded heuristic) and
// sdk/solver/runtime/policy.go (the blueprint policy lookup Strategy
// mirrors at inference time).
package nlhe

import (
	"fmt"
	"math"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/combinatorics"
	"github.com/lox/holdem-cfr/internal/game"
)

// DrawEdge is the Chance-node abstract action: the concrete cards revealed.
// The one Edge variant carrying a payload other than a bet size (spec's
// Action::Draw(hand), lifted unchanged into the Edge vocabulary since a
// chance draw is never abstracted).
type DrawEdge struct {
	Cards card.Hand
}

func (d DrawEdge) String() string { return fmt.Sprintf("draw(%s)", d.Cards) }

// State wraps a game.Game into the cfr.Game family. Choice nodes expose
// game.Edge values (Edgify'd against the current street and pot); Chance
// nodes expose one DrawEdge per legal combination of the next street's
// revealed cards.
type State struct {
	g      *game.Game
	street card.Street
	path   game.Path // edges on the current street since the last Draw
}

// NewRoot builds the cfr.Game root for a freshly dealt heads-up hand.
func NewRoot(cfg game.Config, holes [2]card.Hole) *State {
	return &State{g: game.Root(cfg, holes), street: card.Preflop}
}

// Underlying exposes the wrapped game.Game, e.g. for live-play rendering or
// Showdown-driven payoff reporting outside the CFR walk.
func (s *State) Underlying() *game.Game { return s.g }

// Path is the current street's edge path since the last Draw, used by the
// Encoder to build Info.
func (s *State) Path() game.Path { return s.path }

func (s *State) Turn() (cfr.Kind, int) {
	t := s.g.Turn()
	switch t.Kind {
	case game.TurnChance:
		return cfr.Chance, -1
	case game.TurnChoice:
		return cfr.Choice, t.Actor
	default:
		return cfr.Terminal, -1
	}
}

func (s *State) Choices() []cfr.Edge {
	t := s.g.Turn()
	switch t.Kind {
	case game.TurnChance:
		return s.drawChoices()
	case game.TurnChoice:
		return s.edgeChoices()
	default:
		return nil
	}
}

// edgeChoices enumerates the current actor's abstract edges: Fold, Check,
// Call and Shove pass through from the engine's legal actions, and a legal
// Raise expands into one edge per odds in the aggression-narrowed street
// grid whose concrete raise-to amount lands strictly below all-in (an
// all-in sized raise is already the Shove edge). Several odds can clamp to
// the same concrete amount near the bounds; those collapse to one edge.
func (s *State) edgeChoices() []cfr.Edge {
	legal := s.g.Legal()
	out := make([]cfr.Edge, 0, len(legal))
	for _, a := range legal {
		if a.Kind != game.Raise {
			out = append(out, game.Edge{Kind: a.Kind})
			continue
		}
		min, max := s.g.RaiseBounds()
		grid := game.AggressedGrid(s.g.Street, s.path.Aggression())
		seenAmt := make(map[int]bool, len(grid))
		for _, o := range grid {
			target := int(math.Round(o.Ratio() * float64(s.g.Pot)))
			if target < min {
				target = min
			}
			if target >= max || seenAmt[target] {
				continue
			}
			seenAmt[target] = true
			out = append(out, game.Edge{Kind: game.Raise, Odds: o})
		}
	}
	return out
}

// drawChoices enumerates every legal combination of the next street's
// revealed cards, disjoint from every card already dealt.
func (s *State) drawChoices() []cfr.Edge {
	next, ok := s.g.Street.Next()
	if !ok {
		return nil
	}
	dead := s.g.Seats[0].Hole.Hand().Merge(s.g.Seats[1].Hole.Hand()).Merge(s.g.Board.Hand())
	it := combinatorics.NewHandIterator(next.NRevealed(), dead)
	var out []cfr.Edge
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, DrawEdge{Cards: h})
	}
	return out
}

// Apply consumes an edge and returns the resulting State: a DrawEdge deals
// the revealed cards and resets the current-street path; any other edge is
// concretized against the live game state and applied, extending the path.
func (s *State) Apply(edge cfr.Edge) cfr.Game {
	switch e := edge.(type) {
	case DrawEdge:
		ng := *s.g
		boardCards := append(append([]card.Card(nil), ng.Board.Hand().Cards()...), e.Cards.Cards()...)
		newBoard, err := card.NewBoard(boardCards...)
		if err != nil {
			panic(fmt.Errorf("nlhe: invalid board after draw: %w", err))
		}
		if err := ng.ApplyDraw(newBoard); err != nil {
			panic(fmt.Errorf("nlhe: apply draw: %w", err))
		}
		return &State{g: &ng, street: ng.Street}
	case game.Edge:
		ng := *s.g
		action := s.concretize(e)
		if err := ng.Apply(action); err != nil {
			panic(fmt.Errorf("nlhe: apply %v: %w", e, err))
		}
		return &State{g: &ng, street: s.street, path: s.path.Push(e, game.GridFor(s.street))}
	default:
		panic(fmt.Errorf("nlhe: unknown edge type %T", edge))
	}
}

// concretize turns an abstract Edge back into a concrete Action the engine
// can apply: Fold/Check pass through, Call/Shove adopt the engine's own
// legal amount, and Raise targets the pot-relative Odds fraction of the
// current pot, clamped into the actor's legal raise range.
func (s *State) concretize(e game.Edge) game.Action {
	switch e.Kind {
	case game.Fold:
		return game.Action{Kind: game.Fold}
	case game.Check:
		return game.Action{Kind: game.Check}
	case game.Call:
		return s.findLegal(game.Call)
	case game.Shove:
		return s.findLegal(game.Shove)
	case game.Raise:
		min, max := s.g.RaiseBounds()
		target := int(math.Round(e.Odds.Ratio() * float64(s.g.Pot)))
		if target < min {
			target = min
		}
		if target > max {
			target = max
		}
		return game.Action{Kind: game.Raise, Amount: target}
	default:
		panic(fmt.Errorf("nlhe: unknown edge kind %v", e.Kind))
	}
}

// Concretize exposes the edge-to-action projection for callers that need to
// report or apply the concrete form of a sampled abstract edge (the live
// play loop's Notify events).
func (s *State) Concretize(e game.Edge) game.Action { return s.concretize(e) }

func (s *State) findLegal(kind game.ActionKind) game.Action {
	for _, a := range s.g.Legal() {
		if a.Kind == kind {
			return a
		}
	}
	return game.Action{Kind: kind}
}

// Payoff returns player's net chip result (settlement payout minus what
// player risked), valid only at a Terminal node.
func (s *State) Payoff(player int) float64 {
	seats := s.g.Showdown()
	payouts := game.Settle(seats)
	return float64(payouts[player] - seats[player].Risked)
}

package nlhe

import (
	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/combinatorics"
	"github.com/lox/holdem-cfr/internal/eval"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/iso"
	"github.com/lox/holdem-cfr/internal/lookup"
)

// Tables hydrates one frozen Lookup per street; Preflop/Flop/Turn come from
// the offline clustering pipeline (internal/cluster) via internal/lookup,
// River is handled without a table (equity is computed directly, since it's
// a closed-form quantization rather than a learned cluster id per §4.5).
type Tables struct {
	Preflop, Flop, Turn *lookup.Table
	RiverBuckets        int // KMEANS_EQTY_CLUSTER_COUNT: quantization bucket count for river
}

// Encoder maps game states to Info per §4.9: info(game) = (current-street
// edges since the last Draw, bucket(iso(observation of the acting player)),
// legal edges with the bet-sizing grid selected by the current street).
type Encoder struct {
	tables Tables
}

// NewEncoder builds an Encoder over a hydrated Tables set.
func NewEncoder(tables Tables) *Encoder {
	if tables.RiverBuckets <= 0 {
		tables.RiverBuckets = 101
	}
	return &Encoder{tables: tables}
}

// Info implements cfr.Encoder.
func (enc *Encoder) Info(g cfr.Game) cfr.Info {
	s := g.(*State)
	kind, player := s.Turn()
	if kind != cfr.Choice {
		panic("nlhe: Info requested at a non-Choice node")
	}

	obs := card.Observation{Hole: s.g.Seats[player].Hole, Board: s.g.Board}
	bucket := enc.bucket(obs)

	edges := s.edgeChoices()
	grid := game.GridFor(s.street)
	gameEdges := make([]game.Edge, len(edges))
	for i, e := range edges {
		gameEdges[i] = e.(game.Edge)
	}
	choicesPath := game.NewPath(gameEdges, grid)

	return Info{Path: s.path, Bucket: bucket, ChoicesPath: choicesPath, choicesList: edges}
}

// Resume replays edges from root and reconstructs the Info at the resulting
// state, for deterministic path-based lookups rather than a live tree walk.
func (enc *Encoder) Resume(edges []cfr.Edge, root cfr.Game) cfr.Info {
	g := root
	for _, e := range edges {
		g = g.Apply(e)
	}
	return enc.Info(g)
}

// Bucket exposes bucket for callers outside this package that need to
// classify a hypothetical observation directly (e.g. the subgame binding's
// posterior builder, which buckets candidate opponent holes without a live
// cfr.Game to hand to Info).
func (enc *Encoder) Bucket(obs card.Observation) int16 { return enc.bucket(obs) }

// bucket resolves an Observation to its street-tagged abstraction (high
// byte street, low byte bucket index): the isomorphism is looked up in the
// street's frozen table when one is hydrated; Preflop is the identity
// abstraction (one bucket per isomorphism class); River is a direct equity
// quantization (no learned clustering at river, per §4.5). An unhydrated
// flop/turn table falls back to a coarse modular bucket so training stays a
// total function before clustering has produced a lookup.
func (enc *Encoder) bucket(obs card.Observation) int16 {
	canon := iso.Canonical(obs)
	street := obs.Street()

	switch street {
	case card.Preflop:
		if enc.tables.Preflop != nil {
			if b, ok := enc.tables.Preflop.Get(canon.ToI64()); ok {
				return b
			}
		}
		return card.NewAbstraction(card.Preflop, uint8(iso.PreflopIndex(canon))).ToI16()
	case card.Flop:
		if enc.tables.Flop != nil {
			if b, ok := enc.tables.Flop.Get(canon.ToI64()); ok {
				return b
			}
		}
	case card.Turn:
		if enc.tables.Turn != nil {
			if b, ok := enc.tables.Turn.Get(canon.ToI64()); ok {
				return b
			}
		}
	case card.River:
		equity := riverEquity(obs)
		b := int(equity * float64(enc.tables.RiverBuckets))
		if b >= enc.tables.RiverBuckets {
			b = enc.tables.RiverBuckets - 1
		}
		if b < 0 {
			b = 0
		}
		return card.NewAbstraction(card.River, uint8(b)).ToI16()
	}

	return card.NewAbstraction(street, uint8(uint64(canon.ToI64())%256)).ToI16()
}

// riverEquity computes the acting player's exact win probability at
// showdown: the fraction of the opponent's remaining possible holes against
// which the known 7-card hand wins outright (ties counted as half), via
// exhaustive enumeration of the opponent's C2 holes against the fixed board.
func riverEquity(obs card.Observation) float64 {
	dead := obs.Hole.Hand().Merge(obs.Board.Hand())
	my := eval.Evaluate(obs.Hole.Hand().Merge(obs.Board.Hand()))

	it := combinatorics.NewHandIterator(2, dead)
	var wins, total float64
	for {
		oppHole, ok := it.Next()
		if !ok {
			break
		}
		opp := eval.Evaluate(oppHole.Merge(obs.Board.Hand()))
		switch cmp := my.Compare(opp); {
		case cmp > 0:
			wins += 1
		case cmp == 0:
			wins += 0.5
		}
		total++
	}
	if total == 0 {
		return 0.5
	}
	return wins / total
}

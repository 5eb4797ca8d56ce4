// Package iso canonicalizes Observations under suit relabeling, collapsing
// the 4! suit permutations of an observation down to a single
// representative so downstream clustering never sees suit-isomorphic
// duplicates.
package iso

import (
	"sort"

	"github.com/lox/holdem-cfr/internal/card"
)

// Canonical returns the canonical representative of o in its suit-permutation
// orbit: suits are relabeled to C<D<H<S in the order suitPermutation ranks
// them (hole cards before the board).
//
// Canonical is idempotent and depends only on the unordered multiset of
// same-suit rank subsets.
func Canonical(o card.Observation) card.Observation {
	perm := suitPermutation(o)

	holeCards := o.Hole.Hand().Cards()
	remapped := make([]card.Card, len(holeCards))
	for i, c := range holeCards {
		remapped[i] = card.New(c.Rank(), perm[c.Suit()])
	}
	hole := card.NewHole(remapped[0], remapped[1])

	boardCards := o.Board.Hand().Cards()
	remappedBoard := make([]card.Card, len(boardCards))
	for i, c := range boardCards {
		remappedBoard[i] = card.New(c.Rank(), perm[c.Suit()])
	}
	board, err := card.NewBoard(remappedBoard...)
	if err != nil {
		panic(err)
	}

	return card.Observation{Hole: hole, Board: board}
}

// suitPermutation ranks the suits of o by their rank sets, the hole cards'
// ranks in that suit first and the board's second, higher sets first, and
// maps them in that order to the next unused canonical suit. This is the
// order of first appearance (hole then board, highest card first), except
// that suits whose first cards share a rank are ordered by the rest of their
// rank sets; suits with identical rank sets are interchangeable, so the
// result does not depend on o's suit labels.
func suitPermutation(o card.Observation) [card.NumSuits]card.Suit {
	var perm [card.NumSuits]card.Suit
	var assigned [card.NumSuits]bool
	next := card.Clubs

	assign := func(s card.Suit) {
		if assigned[s] {
			return
		}
		assigned[s] = true
		perm[s] = next
		next++
	}

	hole, board := o.Hole.Hand(), o.Board.Hand()
	key := func(s card.Suit) uint32 { return uint32(hole.SuitMask(s))<<16 | uint32(board.SuitMask(s)) }
	order := []card.Suit{card.Clubs, card.Diamonds, card.Hearts, card.Spades}
	sort.SliceStable(order, func(i, j int) bool { return key(order[i]) > key(order[j]) })
	for _, s := range order {
		assign(s)
	}
	for s := card.Suit(0); s < card.NumSuits; s++ {
		if !assigned[s] {
			assign(s)
		}
	}
	return perm
}

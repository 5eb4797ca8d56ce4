// Package combinatorics provides the exhaustive enumerators used while
// building abstraction tables: HandIterator walks every n-card combination
// disjoint from a dead mask, and ObservationIterator nests a board iterator
// inside a hole iterator.
package combinatorics

import (
	"math/bits"

	"github.com/lox/holdem-cfr/internal/card"
)

// HandIterator lazily enumerates all n-card hands disjoint from mask, in
// strictly increasing u64 order, via Gosper's hack: the standard
// next-same-popcount-bit-pattern trick applied to a compressed pattern over
// the cards not in mask, each set bit mapped back to its card.
type HandIterator struct {
	n     int
	dead  uint64
	slots []int // live bit position -> actual card index
	cur   uint64
	limit uint64
	done  bool
	first bool
}

// NewHandIterator builds an iterator over all n-card hands disjoint from dead.
func NewHandIterator(n int, dead card.Hand) *HandIterator {
	it := &HandIterator{n: n, dead: dead.ToU64(), first: true}
	for c := card.Card(0); c < card.NumCards; c++ {
		if !dead.Contains(c) {
			it.slots = append(it.slots, int(c))
		}
	}
	it.limit = uint64(1) << uint(len(it.slots))
	if n == 0 {
		it.cur = 0
	} else if n > len(it.slots) {
		it.done = true
	} else {
		it.cur = (uint64(1) << uint(n)) - 1
	}
	return it
}

// Next advances to the next combination and returns (hand, true), or
// (0, false) once exhausted.
func (it *HandIterator) Next() (card.Hand, bool) {
	if it.done {
		return 0, false
	}
	if it.n == 0 {
		it.done = true
		if it.first {
			it.first = false
			return 0, true
		}
		return 0, false
	}
	if it.cur >= it.limit {
		it.done = true
		return 0, false
	}

	var h card.Hand
	c := it.cur
	for c != 0 {
		slot := bits.TrailingZeros64(c)
		h = h.Add(card.Card(it.slots[slot]))
		c &= c - 1
	}

	it.cur = gosperNext(it.cur)
	return h, true
}

// gosperNext computes the next bit pattern with the same popcount as v,
// Gosper's hack.
func gosperNext(v uint64) uint64 {
	c := v & -v
	r := v + c
	return (((r ^ v) >> 2) / c) | r
}

// Count returns C(52-|dead|, n), the total number of hands HandIterator
// yields.
func Count(n int, dead card.Hand) uint64 {
	avail := card.NumCards - dead.Count()
	return binomial(avail, n)
}

func binomial(n, k int) uint64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := uint64(1)
	for i := 0; i < k; i++ {
		result = result * uint64(n-i) / uint64(i+1)
	}
	return result
}

// ObservationIterator walks an outer iterator over 2-card holes and, for
// each hole, an inner iterator over boards of size street.BoardSize()
// disjoint from that hole.
type ObservationIterator struct {
	street card.Street
	holes  *HandIterator
	hole   card.Hand
	boards *HandIterator
}

// NewObservationIterator builds an iterator over all observations on street.
func NewObservationIterator(street card.Street) *ObservationIterator {
	return &ObservationIterator{
		street: street,
		holes:  NewHandIterator(2, 0),
	}
}

// Next advances to the next observation.
func (it *ObservationIterator) Next() (card.Observation, bool) {
	for {
		if it.boards == nil {
			hole, ok := it.holes.Next()
			if !ok {
				return card.Observation{}, false
			}
			it.hole = hole
			it.boards = NewHandIterator(it.street.BoardSize(), hole)
		}
		board, ok := it.boards.Next()
		if !ok {
			it.boards = nil
			continue
		}
		cards := it.hole.Cards()
		hole := card.NewHole(cards[0], cards[1])
		b, err := card.NewBoard(board.Cards()...)
		if err != nil {
			panic(err)
		}
		return card.Observation{Hole: hole, Board: b}, true
	}
}

// ObservationCount returns the total number of raw (hole, board)
// observations NewObservationIterator yields for street: C(52,2)*C(50,k)
// for a k-card board, i.e. 1 326 / 25 989 600 / 305 377 800 /
// 2 809 475 760 for Preflop/Flop/Turn/River. These are pre-canonicalization
// counts; suit isomorphism collapses them to 169 / 1 286 792 / 13 960 050 /
// 123 156 254 distinct classes.
func ObservationCount(street card.Street) uint64 {
	holeCount := Count(2, 0)
	// Each hole removes 2 cards from the deck before the board is drawn, and
	// Count's binomial only depends on how many cards are dead, not which.
	boardCount := binomial(card.NumCards-2, street.BoardSize())
	return holeCount * boardCount
}

// Package eval implements a 5-to-7 card hand evaluator, grounded in the
// pokerforbots's poker/evaluator.go bit-packed approach: per-suit rank masks for
// flush/straight detection, and a rank-multiplicity vector derived by
// folding the 52-bit hand down to a 13-bit presence mask.
package eval

import (
	"math/bits"

	"github.com/lox/holdem-cfr/internal/card"
)

// Category is the hand's tagged ranking category, HighCard through
// StraightFlush, plus a sentinel Max used as an upper bound in comparisons.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	Max
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "high card"
	case Pair:
		return "pair"
	case TwoPair:
		return "two pair"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	default:
		return "unknown"
	}
}

// Ranking is the tagged category plus 0-2 rank slots carrying tie-break
// info: Primary is the quad/trips/top-pair/straight-high rank; Secondary is
// the pair rank in a full house, or the second pair's rank in two pair.
type Ranking struct {
	Category  Category
	Primary   card.Rank
	Secondary card.Rank
}

// Strength is (Ranking, Kickers), totally ordered. Kickers holds the 0-4
// remaining tie-break ranks the category doesn't already carry in Ranking,
// most significant first.
type Strength struct {
	Ranking Ranking
	Kickers [4]card.Rank
	nKick   int
}

// Compare returns <0, 0, >0 as a < b, a == b, a > b.
func (a Strength) Compare(b Strength) int {
	if d := int(a.Ranking.Category) - int(b.Ranking.Category); d != 0 {
		return d
	}
	if d := int(a.Ranking.Primary) - int(b.Ranking.Primary); d != 0 {
		return d
	}
	if d := int(a.Ranking.Secondary) - int(b.Ranking.Secondary); d != 0 {
		return d
	}
	n := a.nKick
	if b.nKick > n {
		n = b.nKick
	}
	for i := 0; i < n; i++ {
		if d := int(a.Kickers[i]) - int(b.Kickers[i]); d != 0 {
			return d
		}
	}
	return 0
}

func strength(cat Category, primary, secondary card.Rank, kickers ...card.Rank) Strength {
	s := Strength{Ranking: Ranking{Category: cat, Primary: primary, Secondary: secondary}, nKick: len(kickers)}
	copy(s.Kickers[:], kickers)
	return s
}

// wheelMask is the rank mask for the A-2-3-4-5 straight: ace plus 2,3,4,5.
const wheelMask = uint16(1<<uint(card.Ace)) | 0xF

// Evaluate returns the best Strength for a 5-to-7 card hand.
func Evaluate(h card.Hand) Strength {
	n := h.Count()
	if n < 5 || n > 7 {
		panic("eval: Evaluate requires 5 to 7 cards")
	}

	if s, ok := bestFlushOrStraightFlush(h); ok {
		return s
	}

	counts, mask := rankMultiplicities(h)

	if quad, ok := highestWithCount(counts, 4); ok {
		kicker := highestExcluding(mask, quad)
		return strength(FourOfAKind, quad, 0, kicker)
	}

	if trips, ok := highestWithCount(counts, 3); ok {
		if pair, ok := highestWithCountAtLeast(counts, 2, trips); ok {
			return strength(FullHouse, trips, pair)
		}
	}

	if high, ok := straightHigh(mask); ok {
		return strength(Straight, high, 0)
	}

	if trips, ok := highestWithCount(counts, 3); ok {
		kickers := topExcluding(mask, 2, trips)
		return strength(ThreeOfAKind, trips, 0, kickers...)
	}

	if pair1, ok := highestWithCount(counts, 2); ok {
		if pair2, ok := highestWithCountExcluding(counts, 2, pair1); ok {
			kicker := highestExcluding(mask, pair1, pair2)
			return strength(TwoPair, pair1, pair2, kicker)
		}
		kickers := topExcluding(mask, 3, pair1)
		return strength(Pair, pair1, 0, kickers...)
	}

	kickers := topExcluding(mask, 5)
	return strength(HighCard, kickers[0], 0, kickers[1:]...)
}

func bestFlushOrStraightFlush(h card.Hand) (Strength, bool) {
	var best Strength
	found := false
	for s := card.Suit(0); s < card.NumSuits; s++ {
		suitMask := h.SuitMask(s)
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		var cand Strength
		if high, ok := straightHigh(suitMask); ok {
			cand = strength(StraightFlush, high, 0)
		} else {
			top := topExcluding(suitMask, 5)
			cand = strength(Flush, top[0], 0, top[1:]...)
		}
		if !found || cand.Compare(best) > 0 {
			best, found = cand, true
		}
	}
	return best, found
}

// rankMultiplicities folds the hand into a per-rank count vector and the
// logical-OR rank presence mask (the "bit-spread folding trick").
func rankMultiplicities(h card.Hand) ([card.NumRanks]uint8, uint16) {
	var counts [card.NumRanks]uint8
	var mask uint16
	for _, c := range h.Cards() {
		counts[c.Rank()]++
		mask |= 1 << uint(c.Rank())
	}
	return counts, mask
}

func highestWithCount(counts [card.NumRanks]uint8, n uint8) (card.Rank, bool) {
	for r := card.NumRanks - 1; r >= 0; r-- {
		if counts[r] == n {
			return card.Rank(r), true
		}
	}
	return 0, false
}

func highestWithCountExcluding(counts [card.NumRanks]uint8, n uint8, except card.Rank) (card.Rank, bool) {
	for r := card.NumRanks - 1; r >= 0; r-- {
		if card.Rank(r) != except && counts[r] == n {
			return card.Rank(r), true
		}
	}
	return 0, false
}

func highestWithCountAtLeast(counts [card.NumRanks]uint8, n uint8, except card.Rank) (card.Rank, bool) {
	for r := card.NumRanks - 1; r >= 0; r-- {
		if card.Rank(r) != except && counts[r] >= n {
			return card.Rank(r), true
		}
	}
	return 0, false
}

func highestExcluding(mask uint16, used ...card.Rank) card.Rank {
	available := mask &^ ranksMask(used)
	if available == 0 {
		return 0
	}
	return card.Rank(bits.Len16(available) - 1)
}

func topExcluding(mask uint16, n int, used ...card.Rank) []card.Rank {
	available := mask &^ ranksMask(used)
	out := make([]card.Rank, 0, n)
	for len(out) < n && available != 0 {
		top := card.Rank(bits.Len16(available) - 1)
		out = append(out, top)
		available &^= 1 << uint(top)
	}
	for len(out) < n {
		out = append(out, 0)
	}
	return out
}

func ranksMask(ranks []card.Rank) uint16 {
	var m uint16
	for _, r := range ranks {
		m |= 1 << uint(r)
	}
	return m
}

// straightHigh returns the high card of the best 5-consecutive run in mask,
// handling the wheel (A-2-3-4-5) as a special case.
func straightHigh(mask uint16) (card.Rank, bool) {
	mask &= 0x1FFF
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		low := bits.Len16(seq) - 1
		return card.Rank(low + 4), true
	}
	if mask&wheelMask == wheelMask {
		return card.Five, true
	}
	return 0, false
}

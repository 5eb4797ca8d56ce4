package iso

import "github.com/lox/holdem-cfr/internal/card"

// NumPreflopClasses is the number of suit-isomorphic two-card starting
// hands: 13 pairs + 78 suited + 78 offsuit combinations.
const NumPreflopClasses = 169

// PreflopIndex maps a preflop observation to its isomorphism class index in
// [0, NumPreflopClasses): preflop abstraction is the identity (one bucket
// per isomorphism), and this is the bucket numbering. Pairs occupy 0-12 by
// rank, suited combinations 13-90, offsuit combinations 91-168, each
// non-pair block ordered by the (high, low) rank pair's triangular index.
func PreflopIndex(o card.Observation) int {
	cards := o.Hole.Hand().Cards()
	hi, lo := cards[0].Rank(), cards[1].Rank()
	if hi == lo {
		return int(hi)
	}
	tri := int(hi)*(int(hi)-1)/2 + int(lo)
	if cards[0].Suit() == cards[1].Suit() {
		return 13 + tri
	}
	return 13 + 78 + tri
}

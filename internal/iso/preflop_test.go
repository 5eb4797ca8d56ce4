package iso

import (
	"testing"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/combinatorics"
)

func TestPreflopIndexCovers169Classes(t *testing.T) {
	seen := make(map[int]bool)
	it := combinatorics.NewHandIterator(2, 0)
	count := 0
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		count++
		cards := h.Cards()
		o := card.Observation{Hole: card.NewHole(cards[0], cards[1])}
		idx := PreflopIndex(o)
		if idx < 0 || idx >= NumPreflopClasses {
			t.Fatalf("index %d out of range for hole %v", idx, h)
		}
		seen[idx] = true
	}
	if count != 1326 {
		t.Fatalf("expected 1326 holes, got %d", count)
	}
	if len(seen) != NumPreflopClasses {
		t.Fatalf("expected %d distinct classes, got %d", NumPreflopClasses, len(seen))
	}
}

func TestPreflopIndexInvariantUnderSuitPermutation(t *testing.T) {
	o := card.Observation{Hole: card.NewHole(card.MustParse("Ah"), card.MustParse("Kh"))}
	base := PreflopIndex(o)
	for _, perm := range allSuitPerms {
		if got := PreflopIndex(permute(o, perm)); got != base {
			t.Fatalf("preflop index not suit-invariant: got %d want %d under %v", got, base, perm)
		}
	}
}

package combinatorics

import (
	"testing"

	"github.com/lox/holdem-cfr/internal/card"
)

func TestHandIteratorCountAndDisjointness(t *testing.T) {
	dead := card.NewHand(card.MustParse("As"), card.MustParse("Kd"))
	it := NewHandIterator(3, dead)
	seen := map[card.Hand]bool{}
	var last card.Hand
	first := true
	count := 0
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		if h&dead != 0 {
			t.Fatalf("hand %v overlaps dead mask", h)
		}
		if seen[h] {
			t.Fatalf("duplicate hand %v", h)
		}
		seen[h] = true
		if !first && h.ToU64() <= last.ToU64() {
			t.Fatalf("hands not strictly increasing: %v then %v", last, h)
		}
		last = h
		first = false
		count++
	}
	want := Count(3, dead)
	if uint64(count) != want {
		t.Fatalf("got %d hands, want %d", count, want)
	}
}

func TestHandIteratorZeroCards(t *testing.T) {
	it := NewHandIterator(0, 0)
	h, ok := it.Next()
	if !ok || h != 0 {
		t.Fatalf("expected single empty hand, got %v %v", h, ok)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("expected exhaustion after one empty hand")
	}
}

func TestObservationIteratorPreflopCount(t *testing.T) {
	it := NewObservationIterator(card.Preflop)
	count := 0
	for {
		o, ok := it.Next()
		if !ok {
			break
		}
		if o.Board.Hand().Count() != 0 || o.Hole.Hand().Count() != 2 {
			t.Fatalf("unexpected observation shape: %v", o)
		}
		count++
	}
	if count != 1326 {
		t.Fatalf("got %d preflop observations, want 1326 (C(52,2))", count)
	}
}

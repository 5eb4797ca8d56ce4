package game

import (
	"testing"

	"github.com/lox/holdem-cfr/internal/card"
)

func TestActionU32RoundTripAllVariants(t *testing.T) {
	cases := []Action{
		{Kind: Fold},
		{Kind: Check},
		{Kind: Call, Amount: 350},
		{Kind: Raise, Amount: 12345},
		{Kind: Shove, Amount: 20000},
		{Kind: Blind, Amount: 100},
		{Kind: Draw},
		{Kind: Draw, Cards: card.NewHand(card.MustParse("As"))},
		{Kind: Draw, Cards: card.NewHand(card.MustParse("2c"), card.MustParse("Td"))},
		{Kind: Draw, Cards: card.NewHand(card.MustParse("Ah"), card.MustParse("Kh"), card.MustParse("Qh"))},
	}
	for _, a := range cases {
		if got := ActionFromU32(a.ToU32()); got != a {
			t.Fatalf("round trip failed for %v: got %v", a, got)
		}
	}
}

func TestActionStringRoundTrip(t *testing.T) {
	cases := []Action{
		{Kind: Fold},
		{Kind: Check},
		{Kind: Call, Amount: 100},
		{Kind: Raise, Amount: 300},
		{Kind: Shove, Amount: 20000},
		{Kind: Blind, Amount: 50},
		{Kind: Draw, Cards: card.NewHand(card.MustParse("Ah"), card.MustParse("Kh"), card.MustParse("Qh"))},
	}
	for _, a := range cases {
		got, err := ParseAction(a.String())
		if err != nil {
			t.Fatalf("parse %q: %v", a.String(), err)
		}
		if got != a {
			t.Fatalf("string round trip failed for %v: got %v", a, got)
		}
	}
}

func TestEdgeI64RoundTrip(t *testing.T) {
	for _, e := range []Edge{
		{Kind: Fold},
		{Kind: Check},
		{Kind: Call},
		{Kind: Shove},
		{Kind: Raise, Odds: Odds{1, 4}},
		{Kind: Raise, Odds: Odds{3, 1}},
	} {
		if got := EdgeFromI64(e.ToI64()); got != e {
			t.Fatalf("edge i64 round trip failed for %v: got %v", e, got)
		}
	}
}

func TestGridSizesPerStreet(t *testing.T) {
	want := map[card.Street]int{card.Preflop: 10, card.Flop: 5, card.Turn: 2, card.River: 1}
	for street, n := range want {
		if got := len(GridFor(street)); got != n {
			t.Fatalf("street %v: expected %d grid sizes, got %d", street, n, got)
		}
	}
}

func TestAggressedGridNarrowsWithAggression(t *testing.T) {
	full := GridFor(card.Preflop)
	if got := AggressedGrid(card.Preflop, 0); len(got) != len(full) {
		t.Fatalf("no aggression should see the full grid, got %d sizes", len(got))
	}
	one := AggressedGrid(card.Preflop, 1)
	if len(one) >= len(full) {
		t.Fatalf("one aggression should narrow the grid, got %d sizes", len(one))
	}
	two := AggressedGrid(card.Preflop, 2)
	if len(two) != 1 {
		t.Fatalf("heavy aggression should offer a single size, got %d", len(two))
	}
	// Every narrowed entry must still index into the full grid for Path
	// packing.
	for _, o := range one {
		found := false
		for _, f := range full {
			if o == f {
				found = true
			}
		}
		if !found {
			t.Fatalf("narrowed odds %v not present in the full grid", o)
		}
	}
}

func TestEdgifyShoveStaysShove(t *testing.T) {
	e := Edgify(Action{Kind: Shove, Amount: 20000}, card.Flop, 300)
	if e.Kind != Shove {
		t.Fatalf("expected shove to edgify to a shove edge, got %v", e)
	}
}

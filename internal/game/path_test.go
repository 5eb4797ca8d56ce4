package game

import (
	"reflect"
	"testing"

	"github.com/lox/holdem-cfr/internal/card"
)

func samplePathEdges() []Edge {
	grid := GridFor(card.Flop)
	return []Edge{
		{Kind: Check},
		{Kind: Raise, Odds: grid[0]},
		{Kind: Raise, Odds: grid[1]},
		{Kind: Call},
	}
}

func TestPathRoundTrip(t *testing.T) {
	grid := GridFor(card.Flop)
	edges := samplePathEdges()
	p := NewPath(edges, grid)

	round := FromU64(p.ToU64())
	if round != p {
		t.Fatalf("round trip mismatch: %v != %v", round, p)
	}
	if round.Length() != len(edges) {
		t.Fatalf("length mismatch: got %d want %d", round.Length(), len(edges))
	}
}

func TestPathForwardReverseAreMirrored(t *testing.T) {
	grid := GridFor(card.Flop)
	edges := samplePathEdges()
	p := NewPath(edges, grid)

	var forward []Edge
	p.ForEach(grid, func(_ int, e Edge) { forward = append(forward, e) })

	var reverse []Edge
	p.Reverse(grid, func(_ int, e Edge) { reverse = append(reverse, e) })

	if !reflect.DeepEqual(forward, edges) {
		t.Fatalf("forward order mismatch: got %v want %v", forward, edges)
	}
	for i := range reverse {
		if reverse[i] != forward[len(forward)-1-i] {
			t.Fatalf("reverse order mismatch at %d: %v vs %v", i, reverse, forward)
		}
	}
}

func TestPathLengthMatchesEdgeCount(t *testing.T) {
	grid := GridFor(card.Flop)
	for n := 0; n <= MaxDepthSubgame; n++ {
		edges := make([]Edge, n)
		for i := range edges {
			edges[i] = Edge{Kind: Check}
		}
		p := NewPath(edges, grid)
		if p.Length() != n {
			t.Fatalf("length mismatch for n=%d: got %d", n, p.Length())
		}
	}
}

func TestPathAggressionCountsTrailingRaises(t *testing.T) {
	grid := GridFor(card.Flop)
	edges := []Edge{
		{Kind: Check},
		{Kind: Raise, Odds: grid[0]},
		{Kind: Raise, Odds: grid[1]},
		{Kind: Raise, Odds: grid[2]},
	}
	p := NewPath(edges, grid)
	if got := p.Aggression(); got != 3 {
		t.Fatalf("expected trailing aggression 3, got %d", got)
	}

	withCall := p.Push(Edge{Kind: Call}, grid)
	if got := withCall.Aggression(); got != 0 {
		t.Fatalf("expected trailing aggression 0 after call, got %d", got)
	}
}

func TestPathRaiseNibblesCoverWidestGrid(t *testing.T) {
	// The preflop grid is the widest (10 sizes); every index must survive a
	// pack/unpack cycle in its 4-bit slot.
	grid := GridFor(card.Preflop)
	for i, o := range grid {
		p := NewPath([]Edge{{Kind: Raise, Odds: o}}, grid)
		var got Edge
		p.ForEach(grid, func(_ int, e Edge) { got = e })
		if got.Kind != Raise || got.Odds != o {
			t.Fatalf("grid index %d did not round trip: got %v want raise(%d/%d)", i, got, o.Num, o.Den)
		}
	}
}

func TestPathDrawEdgeRoundTrips(t *testing.T) {
	grid := GridFor(card.Flop)
	p := NewPath([]Edge{{Kind: Check}, {Kind: Draw}, {Kind: Call}}, grid)
	var kinds []ActionKind
	p.ForEach(grid, func(_ int, e Edge) { kinds = append(kinds, e.Kind) })
	want := []ActionKind{Check, Draw, Call}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("got %v want %v", kinds, want)
	}
}

func TestPathPushAppendsAtEnd(t *testing.T) {
	grid := GridFor(card.Flop)
	p := NewPath(nil, grid)
	p = p.Push(Edge{Kind: Check}, grid)
	p = p.Push(Edge{Kind: Raise, Odds: grid[0]}, grid)

	var got []Edge
	p.ForEach(grid, func(_ int, e Edge) { got = append(got, e) })
	want := []Edge{{Kind: Check}, {Kind: Raise, Odds: grid[0]}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

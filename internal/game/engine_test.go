package game

import (
	"testing"

	"github.com/lox/holdem-cfr/internal/card"
)

func twoHoles() [2]card.Hole {
	return [2]card.Hole{
		card.NewHole(card.MustParse("As"), card.MustParse("Ks")),
		card.NewHole(card.MustParse("2c"), card.MustParse("7d")),
	}
}

func TestRootIsChoiceForSmallBlind(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	turn := g.Turn()
	if turn.Kind != TurnChoice || turn.Actor != 0 {
		t.Fatalf("expected seat 0 to act first, got %+v", turn)
	}
}

func TestFoldEndsHand(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	if err := g.Apply(Action{Kind: Fold}); err != nil {
		t.Fatal(err)
	}
	if g.Turn().Kind != TurnTerminal {
		t.Fatalf("expected terminal after fold, got %+v", g.Turn())
	}
	seats := g.Showdown()
	payouts := Settle(seats)
	if payouts[1] <= payouts[0] {
		t.Fatalf("expected seat 1 (non-folder) to win the pot: %v", payouts)
	}
}

func TestCallClosesPreflopThenChance(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	// Seat 0 (small blind) calls to match the big blind.
	legal := g.Legal()
	var callAmt int
	for _, a := range legal {
		if a.Kind == Call {
			callAmt = a.Amount
		}
	}
	if err := g.Apply(Action{Kind: Call, Amount: callAmt}); err != nil {
		t.Fatal(err)
	}
	// Seat 1 (big blind) checks, closing the street.
	if err := g.Apply(Action{Kind: Check}); err != nil {
		t.Fatal(err)
	}
	if g.Turn().Kind != TurnChance {
		t.Fatalf("expected a chance node once preflop action closes, got %+v", g.Turn())
	}
}

func TestCheckIllegalWhenBehind(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	legal := g.Legal()
	for _, a := range legal {
		if a.Kind == Check {
			t.Fatal("expected Check to be illegal for the small blind facing a bet")
		}
	}
}

func TestSnapPicksNearestGridOdds(t *testing.T) {
	got := Snap(card.River, 100, 100) // pot-sized bet on the river
	if got != RiverGrid[0] {
		t.Fatalf("expected the only river grid odds, got %v", got)
	}
}

func TestActionU32RoundTrip(t *testing.T) {
	a := Action{Kind: Raise, Amount: 12345}
	if got := ActionFromU32(a.ToU32()); got != a {
		t.Fatalf("round trip failed: got %+v want %+v", got, a)
	}
}

func TestBigBlindKeepsOptionAfterLimp(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	if err := g.Apply(Action{Kind: Call, Amount: 50}); err != nil {
		t.Fatal(err)
	}
	turn := g.Turn()
	if turn.Kind != TurnChoice || turn.Actor != 1 {
		t.Fatalf("expected the big blind to retain its option after a limp, got %+v", turn)
	}
	var sawRaise bool
	for _, a := range g.Legal() {
		if a.Kind == Raise {
			sawRaise = true
		}
	}
	if !sawRaise {
		t.Fatal("expected the big blind's option to include a raise")
	}
}

func TestRaiseReopensAction(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	if err := g.Apply(Action{Kind: Call, Amount: 50}); err != nil {
		t.Fatal(err)
	}
	if err := g.Apply(Action{Kind: Raise, Amount: 300}); err != nil {
		t.Fatal(err)
	}
	turn := g.Turn()
	if turn.Kind != TurnChoice || turn.Actor != 0 {
		t.Fatalf("expected the raise to reopen action for the small blind, got %+v", turn)
	}
	if err := g.Apply(Action{Kind: Call, Amount: 200}); err != nil {
		t.Fatal(err)
	}
	if g.Turn().Kind != TurnChance {
		t.Fatalf("expected the calling close to surface a chance node, got %+v", g.Turn())
	}
}

func TestPostflopActionStartsWithBigBlind(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	if err := g.Apply(Action{Kind: Call, Amount: 50}); err != nil {
		t.Fatal(err)
	}
	if err := g.Apply(Action{Kind: Check}); err != nil {
		t.Fatal(err)
	}
	board, err := card.NewBoard(card.MustParse("2h"), card.MustParse("9s"), card.MustParse("Jd"))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.ApplyDraw(board); err != nil {
		t.Fatal(err)
	}
	turn := g.Turn()
	if turn.Kind != TurnChoice || turn.Actor != 1 {
		t.Fatalf("expected the big blind to open postflop action, got %+v", turn)
	}
	// Check-check closes the flop.
	if err := g.Apply(Action{Kind: Check}); err != nil {
		t.Fatal(err)
	}
	if g.Turn().Kind != TurnChoice {
		t.Fatalf("expected the button to still act after one check, got %+v", g.Turn())
	}
	if err := g.Apply(Action{Kind: Check}); err != nil {
		t.Fatal(err)
	}
	if g.Turn().Kind != TurnChance {
		t.Fatalf("expected check-check to close the flop, got %+v", g.Turn())
	}
}

func TestAllInCallRunsOutTheBoard(t *testing.T) {
	g := Root(DefaultConfig, twoHoles())
	if err := g.Apply(Action{Kind: Shove, Amount: DefaultConfig.Stack}); err != nil {
		t.Fatal(err)
	}
	if err := g.Apply(Action{Kind: Call, Amount: DefaultConfig.Stack - DefaultConfig.BigBlind}); err != nil {
		t.Fatal(err)
	}
	if g.Turn().Kind != TurnChance {
		t.Fatalf("expected a chance node for the all-in runout, got %+v", g.Turn())
	}
}

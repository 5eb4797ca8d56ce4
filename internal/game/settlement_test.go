package game

import "testing"

func assertPayouts(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("payout mismatch at seat %d: got %v want %v", i, got, want)
		}
	}
}

func TestSettleHeadsUpFold(t *testing.T) {
	seats := []Seat{
		{Risked: 100, Strength: 1}, // high card
		{Risked: 100, Strength: 2}, // one pair
	}
	assertPayouts(t, Settle(seats), []int{0, 200})
}

func TestSettleAllInSidePot(t *testing.T) {
	seats := []Seat{
		{Risked: 50, Strength: 3},  // nuts, shove
		{Risked: 100, Strength: 2}, // pair, bet
		{Risked: 100, Strength: 1}, // high, bet
	}
	assertPayouts(t, Settle(seats), []int{150, 100, 0})
}

func TestSettleMultiwaySplit(t *testing.T) {
	seats := []Seat{
		{Risked: 100, Strength: 2}, // two pair
		{Risked: 100, Strength: 2}, // two pair
		{Risked: 100, Strength: 1}, // pair
	}
	assertPayouts(t, Settle(seats), []int{150, 150, 0})
}

func TestSettleUnevenAllIns(t *testing.T) {
	seats := []Seat{
		{Risked: 150, Strength: 4}, // nuts
		{Risked: 200, Strength: 3}, // trips
		{Risked: 350, Strength: 2}, // pair
		{Risked: 50, Strength: 1},  // ace high
	}
	assertPayouts(t, Settle(seats), []int{500, 100, 150, 0})
}

func TestSettleLastManStanding(t *testing.T) {
	seats := []Seat{
		{Risked: 50, Folded: true, Strength: 4},
		{Risked: 100, Folded: false, Strength: 2},
		{Risked: 75, Folded: true, Strength: 4},
		{Risked: 25, Folded: true, Strength: 4},
	}
	assertPayouts(t, Settle(seats), []int{0, 250, 0, 0})
}

func TestSettleTotalConserved(t *testing.T) {
	seats := []Seat{
		{Risked: 37, Strength: 5},
		{Risked: 91, Strength: 2},
		{Risked: 60, Folded: true, Strength: 9},
	}
	payouts := Settle(seats)
	total := 0
	for _, s := range seats {
		total += s.Risked
	}
	sum := 0
	for _, p := range payouts {
		sum += p
	}
	if sum != total {
		t.Fatalf("payouts don't conserve total chips: got %d want %d", sum, total)
	}
}

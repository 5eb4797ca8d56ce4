package card

import "testing"

func TestAbstractionRoundTrip(t *testing.T) {
	for _, street := range []Street{Preflop, Flop, Turn, River} {
		for _, idx := range []uint8{0, 1, 100, 168, 255} {
			a := NewAbstraction(street, idx)
			if a.Street() != street || a.Index() != idx {
				t.Fatalf("abstraction (%v, %d) round trip failed: got (%v, %d)", street, idx, a.Street(), a.Index())
			}
			if AbstractionFromI16(a.ToI16()) != a {
				t.Fatalf("abstraction %v: i16 round trip failed", a)
			}
		}
	}
}

func TestAbstractionDisplayFormat(t *testing.T) {
	if got := NewAbstraction(Flop, 0xA3).String(); got != "F::a3" {
		t.Fatalf("expected F::a3, got %q", got)
	}
	if got := NewAbstraction(Preflop, 7).String(); got != "P::07" {
		t.Fatalf("expected P::07, got %q", got)
	}
}

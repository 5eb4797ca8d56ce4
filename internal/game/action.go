package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem-cfr/internal/card"
)

// ActionKind tags the variant of a concrete Action, grounded in the
// pokerforbots's betting.go Action enum (Fold/Check/Call/Raise/AllIn), extended
// with Shove (a raise to the entire remaining stack collapses to Shove),
// Blind (a forced preflop post) and Draw (a chance reveal of board cards).
type ActionKind uint8

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
	Shove
	Blind
	Draw
)

func (k ActionKind) String() string {
	switch k {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case Shove:
		return "shove"
	case Blind:
		return "blind"
	case Draw:
		return "draw"
	default:
		return "?"
	}
}

// Action is a concrete (not yet abstracted) game action. Amount is the chip
// size for Call/Raise/Shove/Blind (for Raise and Shove, the total stake the
// actor will have committed this street after acting); Cards carries the
// revealed board cards for Draw. Zero otherwise.
type Action struct {
	Kind   ActionKind
	Amount int
	Cards  card.Hand
}

// drawSlotBits is the per-card width inside a packed Draw payload: a card
// index (0..51) offset by 1 so an all-zero slot terminates, in 7-bit slots.
const drawSlotBits = 7

// ToU32 packs the action into a 4-bit tag plus 28-bit payload: a ==
// ActionFromU32(a.ToU32()) for every representable Action, including Draw of
// 0-3 cards (each card occupies one 7-bit slot, value card+1, 0 terminating).
func (a Action) ToU32() uint32 {
	v := uint32(a.Kind) << 28
	if a.Kind == Draw {
		slot := 0
		for _, c := range a.Cards.Cards() {
			v |= (uint32(c) + 1) << uint(drawSlotBits*slot)
			slot++
		}
		return v
	}
	return v | uint32(a.Amount)&0x0FFFFFFF
}

// ActionFromU32 decodes an Action packed by ToU32.
func ActionFromU32(v uint32) Action {
	kind := ActionKind(v >> 28)
	if kind == Draw {
		var h card.Hand
		for slot := 0; slot < 4; slot++ {
			raw := (v >> uint(drawSlotBits*slot)) & ((1 << drawSlotBits) - 1)
			if raw == 0 {
				break
			}
			h = h.Add(card.Card(raw - 1))
		}
		return Action{Kind: Draw, Cards: h}
	}
	return Action{Kind: kind, Amount: int(v & 0x0FFFFFFF)}
}

func (a Action) String() string {
	switch a.Kind {
	case Fold, Check:
		return a.Kind.String()
	case Draw:
		return fmt.Sprintf("draw(%s)", a.Cards)
	default:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Amount)
	}
}

// ParseAction parses the String() form back into an Action; the inverse used
// when actions cross the live wire as text.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Action{Kind: Fold}, nil
	case "check":
		return Action{Kind: Check}, nil
	}
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Action{}, fmt.Errorf("game: invalid action %q", s)
	}
	payload := s[open+1 : len(s)-1]
	switch s[:open] {
	case "draw":
		h, err := card.ParseHand(payload)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: Draw, Cards: h}, nil
	case "call", "raise", "shove", "blind":
		amt, err := strconv.Atoi(payload)
		if err != nil {
			return Action{}, fmt.Errorf("game: invalid action amount in %q", s)
		}
		kinds := map[string]ActionKind{"call": Call, "raise": Raise, "shove": Shove, "blind": Blind}
		return Action{Kind: kinds[s[:open]], Amount: amt}, nil
	default:
		return Action{}, fmt.Errorf("game: invalid action %q", s)
	}
}

// Odds is a pot-relative raise size: Raise(n) is abstracted to the nearest
// fraction n/pot in a street-dependent grid ("snapping").
type Odds struct {
	Num, Den int // fraction Num/Den of the pot
}

func (o Odds) float() float64 { return float64(o.Num) / float64(o.Den) }

// Ratio exposes the Num/Den fraction for callers outside this package that
// need to turn an abstract Raise(Odds) back into a concrete chip amount
// (the NLHE binding's concretize step).
func (o Odds) Ratio() float64 { return o.float() }

// Grids are fixed, street-indexed pot-relative odds tables rather than one
// grid shared across streets: preflop has 10 sizes, flop 5, turn 2, river 1.
var (
	PreflopGrid = []Odds{{1, 4}, {1, 3}, {1, 2}, {2, 3}, {3, 4}, {1, 1}, {5, 4}, {3, 2}, {2, 1}, {3, 1}}
	FlopGrid    = []Odds{{1, 2}, {3, 4}, {1, 1}, {3, 2}, {2, 1}}
	TurnGrid    = []Odds{{1, 2}, {1, 1}}
	RiverGrid   = []Odds{{1, 1}}
)

// GridFor returns the full bet-sizing grid for street from the fixed
// street-indexed table above. Paths and choice encodings are always packed
// against this full grid, regardless of how AggressedGrid narrows the sizes
// actually offered at a node.
func GridFor(street card.Street) []Odds {
	switch street {
	case card.Preflop:
		return PreflopGrid
	case card.Flop:
		return FlopGrid
	case card.Turn:
		return TurnGrid
	default:
		return RiverGrid
	}
}

// AggressedGrid narrows the street's grid by the trailing aggression count on
// the current street: the first raise sees the full grid, a re-raise sees the
// middle sizes only, and anything past a three-bet is offered a single
// pot-sized raise. Every returned slice is a subslice-compatible subset of
// GridFor(street), so the full-grid odds index used by Path packing stays
// well defined.
func AggressedGrid(street card.Street, aggression int) []Odds {
	grid := GridFor(street)
	switch {
	case aggression <= 0:
		return grid
	case aggression == 1:
		if len(grid) <= 3 {
			return grid
		}
		return middleOdds(grid, 3)
	default:
		return potOnly(grid)
	}
}

// middleOdds keeps n entries centered in the grid, dropping the extreme
// small and large sizes first.
func middleOdds(grid []Odds, n int) []Odds {
	start := (len(grid) - n) / 2
	return grid[start : start+n]
}

// potOnly returns the grid entry closest to a pot-sized raise.
func potOnly(grid []Odds) []Odds {
	best := 0
	for i, o := range grid {
		if absFloat(o.float()-1) < absFloat(grid[best].float()-1) {
			best = i
		}
	}
	return grid[best : best+1]
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Snap projects a concrete raise amount to the nearest pot-relative odds in
// street's grid, given the pot size the raise is measured against.
func Snap(street card.Street, raiseAmount, pot int) Odds {
	grid := GridFor(street)
	best := grid[0]
	bestDist := odsDist(raiseAmount, pot, best)
	for _, o := range grid[1:] {
		if d := odsDist(raiseAmount, pot, o); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

func odsDist(raiseAmount, pot int, o Odds) float64 {
	target := o.float() * float64(pot)
	d := float64(raiseAmount) - target
	if d < 0 {
		d = -d
	}
	return d
}

// Edge is the abstract action produced by Edgify: a compact, street-grid
// discretized action used to key CFR info sets. Odds is meaningful only when
// Kind == Raise.
type Edge struct {
	Kind ActionKind
	Odds Odds
}

func (e Edge) String() string {
	if e.Kind != Raise {
		return e.Kind.String()
	}
	return fmt.Sprintf("raise(%d/%d)", e.Odds.Num, e.Odds.Den)
}

// ParseEdge parses the String() form back into an Edge; the inverse used
// when edges round trip through snapshot keys.
func ParseEdge(s string) (Edge, error) {
	if strings.HasPrefix(s, "raise(") && strings.HasSuffix(s, ")") {
		parts := strings.SplitN(s[len("raise("):len(s)-1], "/", 2)
		if len(parts) != 2 {
			return Edge{}, fmt.Errorf("game: invalid raise edge %q", s)
		}
		num, err := strconv.Atoi(parts[0])
		if err != nil {
			return Edge{}, fmt.Errorf("game: invalid raise edge %q", s)
		}
		den, err := strconv.Atoi(parts[1])
		if err != nil {
			return Edge{}, fmt.Errorf("game: invalid raise edge %q", s)
		}
		return Edge{Kind: Raise, Odds: Odds{Num: num, Den: den}}, nil
	}
	for _, k := range []ActionKind{Fold, Check, Call, Shove, Blind, Draw} {
		if s == k.String() {
			return Edge{Kind: k}, nil
		}
	}
	return Edge{}, fmt.Errorf("game: invalid edge %q", s)
}

// ToI64 packs an Edge for use as a persisted blueprint row key.
func (e Edge) ToI64() int64 {
	return int64(e.Kind)<<16 | int64(e.Odds.Num)<<8 | int64(e.Odds.Den)
}

// EdgeFromI64 decodes an Edge packed by Edge.ToI64.
func EdgeFromI64(v int64) Edge {
	return Edge{
		Kind: ActionKind(v >> 16),
		Odds: Odds{Num: int((v >> 8) & 0xFF), Den: int(v & 0xFF)},
	}
}

// Edgify converts a concrete Action into its abstract Edge given the street
// and pot it occurred against; Raise is snapped to the nearest grid odds,
// every other action kind (including Shove, which is its own edge rather
// than a snapped raise) passes through unchanged.
func Edgify(a Action, street card.Street, pot int) Edge {
	if a.Kind != Raise {
		return Edge{Kind: a.Kind}
	}
	return Edge{Kind: Raise, Odds: Snap(street, a.Amount, pot)}
}

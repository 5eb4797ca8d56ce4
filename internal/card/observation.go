package card

import "fmt"

// Hole is a two-card hand. The type alias carries the invariant in its name;
// constructors enforce exactly two cards.
type Hole Hand

// NewHole builds a Hole from exactly two distinct cards.
func NewHole(a, b Card) Hole {
	h := NewHand(a, b)
	return Hole(h)
}

func (h Hole) Hand() Hand { return Hand(h) }
func (h Hole) String() string { return Hand(h).String() }

// Board is a 0, 3, 4, or 5 card hand.
type Board Hand

func (b Board) Hand() Hand   { return Hand(b) }
func (b Board) String() string { return Hand(b).String() }

// NewBoard builds a Board from 0, 3, 4, or 5 cards.
func NewBoard(cards ...Card) (Board, error) {
	switch len(cards) {
	case 0, 3, 4, 5:
	default:
		return 0, fmt.Errorf("card: board must have 0, 3, 4, or 5 cards, got %d", len(cards))
	}
	return Board(NewHand(cards...)), nil
}

// Observation is the (hole, board) pair visible to one player at one street,
// ignoring betting history.
type Observation struct {
	Hole  Hole
	Board Board
}

// Street infers the street implied by the board size.
func (o Observation) Street() Street {
	switch o.Board.Hand().Count() {
	case 0:
		return Preflop
	case 3:
		return Flop
	case 4:
		return Turn
	default:
		return River
	}
}

// ToI64 serializes the observation by packing card bytes offset by 1 (so a
// zero byte is an unambiguous terminator), hole first then board.
func (o Observation) ToI64() int64 {
	cards := append(o.Hole.Hand().Cards(), o.Board.Hand().Cards()...)
	if len(cards) > 7 {
		panic("card: observation too large to pack")
	}
	var v int64
	for i, c := range cards {
		v |= int64(uint64(c)+1) << (8 * uint(i))
	}
	return v
}

// FromI64 decodes an observation packed by ToI64, given the expected street
// (needed to split the trailing card list back into hole vs. board).
func FromI64(v int64, street Street) Observation {
	var cards []Card
	for i := 0; i < 8; i++ {
		b := byte(v >> (8 * uint(i)))
		if b == 0 {
			break
		}
		cards = append(cards, Card(b-1))
	}
	if len(cards) < 2 {
		panic("card: malformed packed observation")
	}
	hole := NewHole(cards[0], cards[1])
	board, err := NewBoard(cards[2:]...)
	if err != nil {
		panic(err)
	}
	if len(cards)-2 != street.BoardSize() {
		panic(fmt.Sprintf("card: packed observation has %d board cards, street %s expects %d",
			len(cards)-2, street, street.BoardSize()))
	}
	return Observation{Hole: hole, Board: board}
}

// String renders "pocket ~ board".
func (o Observation) String() string {
	return fmt.Sprintf("%s ~ %s", o.Hole, o.Board)
}

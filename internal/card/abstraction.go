package card

import "fmt"

// Abstraction is a tagged 16-bit bucket id: high byte street, low byte
// bucket index. River indices are quantized equity; preflop has one index
// per isomorphism; flop and turn carry learned cluster ids.
type Abstraction uint16

// NewAbstraction tags index with its street.
func NewAbstraction(street Street, index uint8) Abstraction {
	return Abstraction(uint16(street)<<8 | uint16(index))
}

// Street extracts the abstraction's street tag.
func (a Abstraction) Street() Street { return Street(a >> 8) }

// Index extracts the abstraction's per-street bucket index.
func (a Abstraction) Index() uint8 { return uint8(a) }

// ToI16 is the persisted form of the abstraction (§6 sink tables key
// abstractions as i16).
func (a Abstraction) ToI16() int16 { return int16(a) }

// AbstractionFromI16 decodes an abstraction persisted by ToI16.
func AbstractionFromI16(v int16) Abstraction { return Abstraction(v) }

// String renders "S::hh": street symbol, double colon, hex bucket index.
func (a Abstraction) String() string {
	return fmt.Sprintf("%s::%02x", a.Street(), a.Index())
}

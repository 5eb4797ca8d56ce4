package game

// MaxDepthSubgame is the Path capacity: up to 16 abstract edges packed 4
// bits per slot in a 64-bit word, 0 reserved as the empty-slot terminator.
const MaxDepthSubgame = 16

// Nibble layout. A Game is post-blind state, so Blind edges never enter a
// Path; the remaining vocabulary fits a nibble exactly: 0 is the empty-slot
// terminator, 1-5 the non-raise kinds, and 6-15 a Raise carrying its index
// into the street's full grid (the widest grid, preflop, has 10 sizes).
const (
	pathEmpty    = 0
	pathFold     = 1
	pathCheck    = 2
	pathCall     = 3
	pathShove    = 4
	pathDraw     = 5
	pathRaiseTag = 6 // plus the full-grid odds index (0-9)
)

// Path is a packed sequence of up to MaxDepthSubgame abstract edges, 4 bits
// per slot, least-significant slot first; 0 is the empty-slot terminator.
type Path uint64

// encodeEdge packs an Edge into a single nibble given the street's full grid
// it was drawn against (needed to recover the odds on decode). Raise slots
// store pathRaiseTag plus the odds' index within the full grid.
func encodeEdge(e Edge, grid []Odds) uint64 {
	switch e.Kind {
	case Fold:
		return pathFold
	case Check:
		return pathCheck
	case Call:
		return pathCall
	case Shove:
		return pathShove
	case Draw:
		return pathDraw
	case Raise:
		for i, o := range grid {
			if o == e.Odds {
				return pathRaiseTag + uint64(i)
			}
		}
		return pathRaiseTag
	default:
		panic("game: edge kind cannot appear in a path")
	}
}

func decodeEdge(nibble uint64, grid []Odds) Edge {
	switch nibble {
	case pathFold:
		return Edge{Kind: Fold}
	case pathCheck:
		return Edge{Kind: Check}
	case pathCall:
		return Edge{Kind: Call}
	case pathShove:
		return Edge{Kind: Shove}
	case pathDraw:
		return Edge{Kind: Draw}
	default:
		idx := int(nibble - pathRaiseTag)
		if idx < 0 || idx >= len(grid) {
			idx = 0
		}
		return Edge{Kind: Raise, Odds: grid[idx]}
	}
}

// NewPath builds a Path from a sequence of edges, each packed against the
// street's full grid (Push below is the usual way to grow a Path one edge at
// a time instead).
func NewPath(edges []Edge, grid []Odds) Path {
	var p Path
	for i, e := range edges {
		if i >= MaxDepthSubgame {
			panic("game: Path capacity exceeded")
		}
		p |= Path(encodeEdge(e, grid)) << uint(4*i)
	}
	return p
}

// Push appends edge to the end of the path, returning the new Path. Panics
// if the path is already at capacity.
func (p Path) Push(e Edge, grid []Odds) Path {
	n := p.Length()
	if n >= MaxDepthSubgame {
		panic("game: Path capacity exceeded")
	}
	return p | Path(encodeEdge(e, grid))<<uint(4*n)
}

// Length returns the number of non-empty slots.
func (p Path) Length() int {
	n := 0
	for i := 0; i < MaxDepthSubgame; i++ {
		if (p>>uint(4*i))&0xF == pathEmpty {
			break
		}
		n++
	}
	return n
}

// ToU64 is the round-trip bijection to a 64-bit integer.
func (p Path) ToU64() uint64 { return uint64(p) }

// FromU64 decodes a Path previously produced by ToU64.
func FromU64(v uint64) Path { return Path(v) }

// ForEach walks the path's edges forward (earliest first), decoding each
// slot against grid.
func (p Path) ForEach(grid []Odds, fn func(i int, e Edge)) {
	n := p.Length()
	for i := 0; i < n; i++ {
		nibble := uint64(p>>uint(4*i)) & 0xF
		fn(i, decodeEdge(nibble, grid))
	}
}

// Reverse walks the path's edges in reverse order (most recent first).
func (p Path) Reverse(grid []Odds, fn func(i int, e Edge)) {
	n := p.Length()
	for i := n - 1; i >= 0; i-- {
		nibble := uint64(p>>uint(4*i)) & 0xF
		fn(i, decodeEdge(nibble, grid))
	}
}

// Aggression returns the length of the trailing run of Raise edges at the
// end of the path: the number of consecutive raises just made on the
// current street, used to pick the aggression-narrowed bet-sizing grid.
func (p Path) Aggression() int {
	n := p.Length()
	count := 0
	for i := n - 1; i >= 0; i-- {
		nibble := uint64(p>>uint(4*i)) & 0xF
		if nibble < pathRaiseTag {
			break
		}
		count++
	}
	return count
}

// String renders the edge symbols separated by "/", decoding Raise slots
// against grid.
func (p Path) String(grid []Odds) string {
	s := ""
	p.ForEach(grid, func(i int, e Edge) {
		if i > 0 {
			s += "/"
		}
		s += e.String()
	})
	return s
}

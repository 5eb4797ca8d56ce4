package game

import (
	"fmt"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/eval"
)

// TurnKind tags what the engine expects next: a chance draw, a seat's
// choice, or hand-over.
type TurnKind uint8

const (
	TurnChance TurnKind = iota
	TurnChoice
	TurnTerminal
)

// Turn is the result of Game.Turn(): either Chance, Terminal, or
// Choice(actor).
type Turn struct {
	Kind  TurnKind
	Actor int // valid only when Kind == TurnChoice
}

// PlayerState is one seat's mutable state across a hand.
type PlayerState struct {
	Stack  int // chips not yet committed
	Stake  int // chips committed this betting round
	Risked int // total chips committed this hand, across all rounds
	Folded bool
	AllIn  bool
	Acted  bool // has acted since the street opened or the last aggression
	Hole   card.Hole
}

// Config holds the game defaults: starting stack, blind amounts, and the
// raise cap.
type Config struct {
	Stack      int
	SmallBlind int
	BigBlind   int
	MaxRaises  int // raise-cap policy: 0 means unlimited
}

// DefaultConfig matches the reference heads-up defaults used across the
// training and evaluation CLIs.
var DefaultConfig = Config{Stack: 20000, SmallBlind: 50, BigBlind: 100, MaxRaises: 4}

// Game is a two-seat (heads-up) No-Limit Hold'em hand in progress: the
// concrete state the turn() state machine operates over. The state is
// post-blind: Root has already posted both blinds, so the first Choice
// belongs to the small blind.
type Game struct {
	cfg Config

	Seats  [2]PlayerState
	Board  card.Board
	Street card.Street
	Pot    int

	Actor         int
	LastAggressor int
	RaiseCount    int
	lastRaise     int // previous raise increment this street, floor for the next
}

// Root builds the initial game state for a fresh heads-up hand. Seat 0 is
// the small blind / button in heads-up play, seat 1 the big blind.
func Root(cfg Config, holes [2]card.Hole) *Game {
	g := &Game{cfg: cfg, Street: card.Preflop}
	g.Seats[0] = PlayerState{Stack: cfg.Stack - cfg.SmallBlind, Stake: cfg.SmallBlind, Risked: cfg.SmallBlind, Hole: holes[0]}
	g.Seats[1] = PlayerState{Stack: cfg.Stack - cfg.BigBlind, Stake: cfg.BigBlind, Risked: cfg.BigBlind, Hole: holes[1]}
	g.Pot = cfg.SmallBlind + cfg.BigBlind
	g.Actor = 0
	g.LastAggressor = 1
	g.lastRaise = cfg.BigBlind - cfg.SmallBlind
	return g
}

func (g *Game) opponent(p int) int { return 1 - p }

// activeCount returns how many seats have not folded.
func (g *Game) activeCount() int {
	n := 0
	for _, s := range g.Seats {
		if !s.Folded {
			n++
		}
	}
	return n
}

// actableCount returns how many seats can still take an action this street.
func (g *Game) actableCount() int {
	n := 0
	for _, s := range g.Seats {
		if !s.Folded && !s.AllIn {
			n++
		}
	}
	return n
}

func (g *Game) maxStake() int {
	m := g.Seats[0].Stake
	if g.Seats[1].Stake > m {
		m = g.Seats[1].Stake
	}
	return m
}

// bettingClosed reports whether the current street's action is over: every
// non-folded, non-all-in seat has matched the max stake and acted since the
// last aggression. When at most one seat can act and the stakes are matched
// there is nobody left to bet against, so the street closes regardless of
// Acted flags (the all-in runout case).
func (g *Game) bettingClosed() bool {
	if g.activeCount() <= 1 {
		return true
	}
	m := g.maxStake()
	for _, s := range g.Seats {
		if s.Folded || s.AllIn {
			continue
		}
		if s.Stake != m {
			return false
		}
	}
	if g.actableCount() <= 1 {
		return true
	}
	for _, s := range g.Seats {
		if s.Folded || s.AllIn {
			continue
		}
		if !s.Acted {
			return false
		}
	}
	return true
}

// Turn reports what the engine expects next.
func (g *Game) Turn() Turn {
	if g.activeCount() <= 1 {
		return Turn{Kind: TurnTerminal}
	}
	if g.bettingClosed() {
		if g.Street == card.River {
			return Turn{Kind: TurnTerminal}
		}
		// An all-in runout still surfaces Chance for every remaining street,
		// so Showdown always sees a full board.
		return Turn{Kind: TurnChance}
	}
	// Skip a seat that cannot act (folded or all-in already).
	for g.Seats[g.Actor].Folded || g.Seats[g.Actor].AllIn {
		g.Actor = g.opponent(g.Actor)
	}
	return Turn{Kind: TurnChoice, Actor: g.Actor}
}

// Legal enumerates the legal concrete actions for the current actor: m =
// max stake this round, s = p's stake, k = p's stack.
func (g *Game) Legal() []Action {
	t := g.Turn()
	if t.Kind != TurnChoice {
		return nil
	}
	p := g.Seats[t.Actor]
	m := g.maxStake()
	s := p.Stake
	k := p.Stack

	raiseable := k > m-s &&
		(g.cfg.MaxRaises == 0 || g.RaiseCount < g.cfg.MaxRaises) &&
		g.opponentCanRespond(t.Actor)

	var out []Action
	if s < m {
		out = append(out, Action{Kind: Fold})
		callAmt := m - s
		if callAmt > k {
			callAmt = k
		}
		out = append(out, Action{Kind: Call, Amount: callAmt})
	} else {
		out = append(out, Action{Kind: Check})
		out = append(out, Action{Kind: Fold})
	}
	if raiseable {
		out = append(out, Action{Kind: Raise})
		out = append(out, Action{Kind: Shove, Amount: s + k})
	}
	return out
}

// opponentCanRespond reports whether any other seat could still call a
// raise; raising into a seat that is folded or all-in only moves chips into
// a side pot nobody contests.
func (g *Game) opponentCanRespond(actor int) bool {
	for i, s := range g.Seats {
		if i == actor {
			continue
		}
		if !s.Folded && !s.AllIn {
			return true
		}
	}
	return false
}

// minRaiseIncrement is the minimum legal raise increment: the previous raise
// increment this street, at least the big blind.
func (g *Game) minRaiseIncrement() int {
	if g.lastRaise < g.cfg.BigBlind {
		return g.cfg.BigBlind
	}
	return g.lastRaise
}

// RaiseBounds returns the minimum and maximum legal target stake (the
// actor's Stake after the raise) for a Raise by the current actor: min is
// the max stake plus the minimum increment, max is shoving the entire
// stack. Valid only when Turn().Kind == TurnChoice and Raise is legal.
func (g *Game) RaiseBounds() (min, max int) {
	t := g.Turn()
	p := g.Seats[t.Actor]
	min = g.maxStake() + g.minRaiseIncrement()
	max = p.Stake + p.Stack
	if min > max {
		min = max
	}
	return min, max
}

// Apply consumes one Action attributable to the current actor, mutating
// stacks, stakes, pot, last aggressor, player state, and advancing the actor.
func (g *Game) Apply(a Action) error {
	t := g.Turn()
	if t.Kind != TurnChoice {
		return fmt.Errorf("game: Apply called outside a Choice turn")
	}
	actor := t.Actor
	p := &g.Seats[actor]
	m := g.maxStake()

	switch a.Kind {
	case Fold:
		p.Folded = true
		p.Acted = true
	case Check:
		if p.Stake != m {
			return fmt.Errorf("game: Check illegal when behind the current stake")
		}
		p.Acted = true
	case Call:
		amt := a.Amount
		if amt == 0 {
			amt = m - p.Stake
		}
		if amt > p.Stack {
			return fmt.Errorf("game: Call amount exceeds stack")
		}
		p.Stack -= amt
		p.Stake += amt
		g.Pot += amt
		p.Risked += amt
		if p.Stack == 0 {
			p.AllIn = true
		}
		p.Acted = true
	case Raise, Shove:
		target := a.Amount
		if a.Kind == Raise && target == 0 {
			target = m + g.minRaiseIncrement()
		}
		delta := target - p.Stake
		if delta > p.Stack {
			delta = p.Stack
			target = p.Stake + delta
		}
		if delta <= 0 {
			return fmt.Errorf("game: raise target %d does not exceed current stake", target)
		}
		p.Stack -= delta
		p.Stake = target
		g.Pot += delta
		p.Risked += delta
		if p.Stack == 0 {
			p.AllIn = true
		}
		if target > m {
			g.lastRaise = target - m
			g.RaiseCount++
			g.LastAggressor = actor
			// An aggression reopens the action for every other seat.
			for i := range g.Seats {
				if i != actor {
					g.Seats[i].Acted = false
				}
			}
		}
		p.Acted = true
	default:
		return fmt.Errorf("game: unknown action kind %v", a.Kind)
	}

	g.Actor = g.opponent(actor)
	return nil
}

// ApplyDraw consumes a Chance draw revealing new board cards. Postflop
// action starts from the big blind (seat 1 in heads-up play).
func (g *Game) ApplyDraw(newBoard card.Board) error {
	if g.Turn().Kind != TurnChance {
		return fmt.Errorf("game: ApplyDraw called outside a Chance turn")
	}
	next, ok := g.Street.Next()
	if !ok {
		return fmt.Errorf("game: no street follows river")
	}
	g.Board = newBoard
	g.Street = next
	for i := range g.Seats {
		g.Seats[i].Stake = 0
		g.Seats[i].Acted = false
	}
	g.RaiseCount = 0
	g.lastRaise = 0
	g.Actor = 1
	return nil
}

// Showdown evaluates every non-folded seat's hand and returns settlement
// Seats suitable for Settle. Turn() reports Terminal both at a completed
// river and the instant a fold leaves a single seat standing, so the board
// isn't always complete here: evaluation only runs when the board has
// reached the river's 5 cards (eval.Evaluate requires 5-7 cards), since a
// sole non-folded seat wins Settle's distribution regardless of its
// Strength.
func (g *Game) Showdown() []Seat {
	out := make([]Seat, len(g.Seats))
	complete := g.Board.Hand().Count() == 5
	for i, s := range g.Seats {
		strength := 0
		if !s.Folded && complete {
			full := s.Hole.Hand().Merge(g.Board.Hand())
			strength = packStrength(eval.Evaluate(full))
		}
		out[i] = Seat{Risked: s.Risked, Folded: s.Folded, Strength: strength}
	}
	return out
}

// packStrength flattens an eval.Strength's (category, primary, secondary,
// kickers) tuple into a single monotone integer so Seat.Strength totally
// orders hands the same way Strength.Compare does; used only to bridge
// eval.Strength into the Settle payout algorithm's plain int comparisons.
func packStrength(s eval.Strength) int {
	r := int(s.Ranking.Category)<<24 | int(s.Ranking.Primary)<<20 | int(s.Ranking.Secondary)<<16
	for i, k := range s.Kickers {
		r |= int(k) << uint(12-4*i)
	}
	return r
}

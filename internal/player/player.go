// Package player defines the core's live wire protocol: the abstract
// Player a trained blueprint plays against, independent of whatever
// transport carries decisions back and forth (cmd/play wires a websocket
// implementation; tests use a scripted one).
//
// Grounded in pokerforbots's sdk protocol (sdk/protocol.go's MessageType
// enum and Message envelope) generalized from the teacher's multiplayer
// table events down to the two-seat core's narrower vocabulary.
package player

import (
	"context"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/game"
)

// EventKind tags a Notify call's payload, per §6: HandStart/HoleCards/Board/
// Action/Decision/Reveal/HandEnd/Disconnect.
type EventKind uint8

const (
	HandStart EventKind = iota
	HoleCards
	Board
	Action
	Decision
	Reveal
	HandEnd
	Disconnect
)

func (k EventKind) String() string {
	switch k {
	case HandStart:
		return "hand_start"
	case HoleCards:
		return "hole_cards"
	case Board:
		return "board"
	case Action:
		return "action"
	case Decision:
		return "decision"
	case Reveal:
		return "reveal"
	case HandEnd:
		return "hand_end"
	case Disconnect:
		return "disconnect"
	default:
		return "?"
	}
}

// Event is one informational notification the core sends a Player; Notify
// expects no reply. Only the fields relevant to Kind are populated.
type Event struct {
	Kind   EventKind
	Seat   int
	Hole   card.Hole
	Board  card.Board
	Street card.Street
	Action game.Action
	Payout int
}

// PartialRecall is the acting seat's legal view of the hand at a Decision
// event: their own hole cards, the shared board, the pot and street, and the
// concrete actions currently legal — everything decide needs without
// exposing the opponent's hole cards or the engine's internal bookkeeping.
type PartialRecall struct {
	Seat   int
	Hole   card.Hole
	Board  card.Board
	Street card.Street
	Pot    int
	Legal  []game.Action
}

// Player is the core's collaborator for live play: Notify delivers
// informational events, Decide requests a concrete action given a partial
// recall of the hand so far. Decide must honor ctx's deadline (§5
// "Cancellation and timeouts"); a Player that can't decide in time should
// return ctx.Err(), letting the caller apply the Check-else-Fold fallback
// (§7).
type Player interface {
	Notify(Event)
	Decide(ctx context.Context, recall PartialRecall) (game.Action, error)
}

// Fallback returns the Check-else-Fold default action applied when a
// Player's Decide call misses its deadline: Check if legal, Fold otherwise.
func Fallback(recall PartialRecall) game.Action {
	for _, a := range recall.Legal {
		if a.Kind == game.Check {
			return a
		}
	}
	return game.Action{Kind: game.Fold}
}

// DecideWithDeadline calls p.Decide and substitutes Fallback(recall) if ctx
// is canceled or its deadline elapses before Decide returns.
func DecideWithDeadline(ctx context.Context, p Player, recall PartialRecall) game.Action {
	type result struct {
		action game.Action
		err    error
	}
	done := make(chan result, 1)
	go func() {
		a, err := p.Decide(ctx, recall)
		done <- result{a, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return Fallback(recall)
		}
		return r.action
	case <-ctx.Done():
		return Fallback(recall)
	}
}

// DecideWithClock is DecideWithDeadline but drives the deadline off an
// injected quartz.Clock rather than the wall clock, so timeout behavior is
// testable with a quartz.Mock instead of a real sleep.
func DecideWithClock(clock quartz.Clock, p Player, recall PartialRecall, deadline time.Duration) game.Action {
	type result struct {
		action game.Action
		err    error
	}
	done := make(chan result, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		a, err := p.Decide(ctx, recall)
		done <- result{a, err}
	}()

	timer := clock.NewTimer(deadline)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return Fallback(recall)
		}
		return r.action
	case <-timer.C:
		cancel()
		return Fallback(recall)
	}
}

package player

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-cfr/internal/game"
)

type scriptedPlayer struct {
	action game.Action
	delay  time.Duration
	clock  quartz.Clock
}

func (s scriptedPlayer) Notify(Event) {}

func (s scriptedPlayer) Decide(ctx context.Context, recall PartialRecall) (game.Action, error) {
	select {
	case <-s.clock.After(s.delay):
		return s.action, nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

func TestFallbackPrefersCheckOverFold(t *testing.T) {
	recall := PartialRecall{Legal: []game.Action{{Kind: game.Fold}, {Kind: game.Check}}}
	require.Equal(t, game.Action{Kind: game.Check}, Fallback(recall))
}

func TestFallbackFoldsWhenCheckIllegal(t *testing.T) {
	recall := PartialRecall{Legal: []game.Action{{Kind: game.Fold}, {Kind: game.Call, Amount: 100}}}
	require.Equal(t, game.Action{Kind: game.Fold}, Fallback(recall))
}

func TestDecideWithClockReturnsPlayerActionBeforeDeadline(t *testing.T) {
	mock := quartz.NewMock(t)
	p := scriptedPlayer{action: game.Action{Kind: game.Call, Amount: 100}, delay: time.Second, clock: mock}
	recall := PartialRecall{Legal: []game.Action{{Kind: game.Call, Amount: 100}, {Kind: game.Fold}}}

	resultCh := make(chan game.Action, 1)
	go func() { resultCh <- DecideWithClock(mock, p, recall, 5*time.Second) }()

	mock.Advance(time.Second).MustWait(context.Background())
	require.Equal(t, game.Action{Kind: game.Call, Amount: 100}, <-resultCh)
}

func TestDecideWithClockFallsBackOnDeadline(t *testing.T) {
	mock := quartz.NewMock(t)
	p := scriptedPlayer{action: game.Action{Kind: game.Call, Amount: 100}, delay: time.Hour, clock: mock}
	recall := PartialRecall{Legal: []game.Action{{Kind: game.Check}, {Kind: game.Fold}}}

	resultCh := make(chan game.Action, 1)
	go func() { resultCh <- DecideWithClock(mock, p, recall, 5*time.Second) }()

	mock.Advance(5 * time.Second).MustWait(context.Background())
	require.Equal(t, game.Action{Kind: game.Check}, <-resultCh)
}

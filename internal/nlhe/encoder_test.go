package nlhe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/iso"
	"github.com/lox/holdem-cfr/internal/lookup"
)

func TestEncoderInfoFallsBackToIdentityBucketWithoutTable(t *testing.T) {
	enc := NewEncoder(Tables{})
	s := NewRoot(game.DefaultConfig, heroVillainHoles())

	info := enc.Info(s).(Info)
	require.NotEmpty(t, info.Choices())
	require.Equal(t, s.path, info.Path)
}

func TestEncoderInfoUsesHydratedPreflopTable(t *testing.T) {
	holes := heroVillainHoles()
	obs := card.Observation{Hole: holes[0], Board: card.Board(0)}

	b := lookup.NewBuilder()
	canon := iso.Canonical(obs)
	b.Set(canon.ToI64(), 7)
	table, err := b.Freeze()
	require.NoError(t, err)

	enc := NewEncoder(Tables{Preflop: table})
	s := NewRoot(game.DefaultConfig, holes)

	info := enc.Info(s).(Info)
	require.Equal(t, int16(7), info.Bucket)
}

func TestResumeReplaysEdgesBeforeEncoding(t *testing.T) {
	enc := NewEncoder(Tables{})
	s := NewRoot(game.DefaultConfig, heroVillainHoles())

	var callEdge game.Edge
	for _, e := range s.edgeChoices() {
		if ge := e.(game.Edge); ge.Kind == game.Call {
			callEdge = ge
		}
	}

	// Encoding the state reached by a live Apply and encoding via a replay
	// of the same edge sequence must agree exactly.
	live := enc.Info(s.Apply(callEdge)).(Info)
	resumed := enc.Resume([]cfr.Edge{callEdge}, s).(Info)
	require.Equal(t, live.Key(), resumed.Key())
	require.Equal(t, live.Path, resumed.Path)
	require.Equal(t, live.Bucket, resumed.Bucket)
	require.Equal(t, live.ChoicesPath, resumed.ChoicesPath)
}

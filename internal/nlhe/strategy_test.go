package nlhe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/game"
)

func TestStrategyPolicyNormalizesAcrossLegalEdges(t *testing.T) {
	profile := cfr.NewProfile(1e-3)
	enc := NewEncoder(Tables{})
	strat := NewStrategy(profile, enc)

	s := NewRoot(game.DefaultConfig, heroVillainHoles())
	policy := strat.Policy(s)

	require.NotEmpty(t, policy)
	var total float64
	for _, p := range policy {
		require.GreaterOrEqual(t, p, 0.0)
		total += p
	}
	require.InDelta(t, 1.0, total, 1e-9)
}

func TestStrategySampleAlwaysReturnsLegalEdge(t *testing.T) {
	profile := cfr.NewProfile(1e-3)
	enc := NewEncoder(Tables{})
	strat := NewStrategy(profile, enc)

	s := NewRoot(game.DefaultConfig, heroVillainHoles())
	legal := make(map[game.Edge]bool)
	for _, e := range s.edgeChoices() {
		legal[e.(game.Edge)] = true
	}

	for _, draw := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		got := strat.Sample(s, draw)
		require.True(t, legal[got], "sampled edge %v not in legal set", got)
	}
}

func TestSeedDefaultsBiasesTowardCheckCall(t *testing.T) {
	profile := cfr.NewProfile(1e-3)
	enc := NewEncoder(Tables{})
	s := NewRoot(game.DefaultConfig, heroVillainHoles())

	SeedDefaults(profile, enc, s)

	info := enc.Info(s)
	var sawFold, sawCall bool
	for _, e := range info.Choices() {
		ge := e.(game.Edge)
		switch ge.Kind {
		case game.Fold:
			require.Equal(t, 0.1, profile.Averaged(info, e))
			sawFold = true
		case game.Call:
			require.Equal(t, 0.5, profile.Averaged(info, e))
			sawCall = true
		}
	}
	require.True(t, sawFold)
	require.True(t, sawCall)
}

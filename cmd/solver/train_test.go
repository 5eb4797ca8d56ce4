package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/config"
)

func TestSamplingSchemeDefaultsToExternal(t *testing.T) {
	var pruning config.PruningConfig
	require.IsType(t, cfr.External{}, samplingScheme("unknown", pruning))
	require.IsType(t, cfr.External{}, samplingScheme("", pruning))
}

func TestSamplingSchemeRecognizesNames(t *testing.T) {
	pruning := config.PruningConfig{Threshold: -100, Warmup: 5, Explore: 0.05}
	require.IsType(t, cfr.Vanilla{}, samplingScheme("vanilla", pruning))
	require.IsType(t, cfr.Targeted{}, samplingScheme("targeted", pruning))

	got := samplingScheme("pruning", pruning)
	require.IsType(t, cfr.Pruning{}, got)
	require.Equal(t, pruning.Threshold, got.(cfr.Pruning).Threshold)

	gotP := samplingScheme("pluribus", pruning)
	require.IsType(t, cfr.Pluribus{}, gotP)
	require.Equal(t, pruning.Threshold, gotP.(cfr.Pluribus).Threshold)
	require.Equal(t, pruning.Warmup, gotP.(cfr.Pluribus).Warmup)
	require.Equal(t, pruning.Explore, gotP.(cfr.Pluribus).Explore)
}

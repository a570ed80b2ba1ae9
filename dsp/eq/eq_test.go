package eq

import (
	"testing"

	"github.com/cavernize/core/dsp/analyzer"
	"github.com/cavernize/core/dsp/biquad"
	"github.com/cavernize/core/dsp/graph"
	"github.com/stretchr/testify/require"
)

const fs = 48000.0

func TestPeakingFilterSpectrumHasExpectedPeak(t *testing.T) {
	section, err := biquad.NewSection(fs, 1000, 1, 6)
	require.NoError(t, err)

	a, err := analyzer.New(analyzer.DefaultResolution)
	require.NoError(t, err)

	spectrum, err := a.Spectrum(section)
	require.NoError(t, err)

	bins := a.Resolution() / 2
	binAt1k := int(1000 * float64(a.Resolution()) / fs)

	db := make([]float64, bins)
	copy(db, spectrum[:bins])
	graph.ToDecibels(db, graph.DefaultFloorDb)

	require.InDelta(t, 6, db[binAt1k], 0.5)
}

func TestBruteForceQConvergesOnSyntheticPeak(t *testing.T) {
	opts := DefaultOptions(fs)
	a, err := analyzer.New(2048)
	require.NoError(t, err)
	opts.Iterations = 8

	const bins = 512
	target := make([]float64, bins)

	section, err := biquad.NewSection(fs, 1000, 2, 8)
	require.NoError(t, err)
	spectrum, err := a.Spectrum(section)
	require.NoError(t, err)
	resampled := graph.ToLogGraph(spectrum, a.Resolution()/2, 20, fs/2, fs, bins)
	graph.ToDecibels(resampled, graph.DefaultFloorDb)
	copy(target, resampled)

	result, err := BruteForceBand(target, opts, a, 0, bins)
	require.NoError(t, err)

	require.InDelta(t, 1000, result.Freq, 10)
	require.InDelta(t, 2, result.Q, 0.3)
	require.InDelta(t, -8, result.Gain, 0.1)
}

package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cavernize/core/container/wave"
	"github.com/cavernize/core/internal/testutil"
	"github.com/cavernize/core/spatial"
	"github.com/stretchr/testify/require"
)

func TestResolveTargetPassthrough(t *testing.T) {
	layout, passthrough, err := resolveTarget("0", 2)
	require.NoError(t, err)
	require.True(t, passthrough)
	require.Empty(t, layout.Channels)
}

func TestResolveTargetAutoPicksByChannelCount(t *testing.T) {
	_, passthrough, err := resolveTarget("1", 2)
	require.NoError(t, err)
	require.False(t, passthrough)

	layout, _, err := resolveTarget("1", 2)
	require.NoError(t, err)
	require.Equal(t, spatial.Preset(spatial.Target402).Channels, layout.Channels)

	layout, _, err = resolveTarget("1", 6)
	require.NoError(t, err)
	require.Equal(t, spatial.Preset(spatial.Target512).Channels, layout.Channels)
}

func TestResolveTargetNamedPreset(t *testing.T) {
	layout, passthrough, err := resolveTarget("312", 6)
	require.NoError(t, err)
	require.False(t, passthrough)
	require.Equal(t, spatial.Preset(spatial.Target312).Channels, layout.Channels)
}

func TestResolveTargetRejectsUnknownValue(t *testing.T) {
	_, _, err := resolveTarget("999", 2)
	require.ErrorIs(t, err, ErrUnknownTargetLayout)

	_, _, err = resolveTarget("garbage", 2)
	require.ErrorIs(t, err, ErrUnknownTargetLayout)
}

func TestContainerOfDetectsExtension(t *testing.T) {
	require.Equal(t, containerWave, containerOf("foo.wav"))
	require.Equal(t, containerWave, containerOf("FOO.WAV"))
	require.Equal(t, containerLimitless, containerOf("foo.laf"))
	require.Equal(t, containerUnknown, containerOf("foo.mp3"))
}

type noopReporter struct{}

func (noopReporter) Started(string, string, int, int, int64) {}
func (noopReporter) Progress(int64, int64)                   {}
func (noopReporter) Finished(int64)                          {}

func writeTestWave(t *testing.T, path string, sampleRate, bitDepth, channels int, samples []float64) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := wave.NewWriter(f, sampleRate, bitDepth, channels)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrames(samples))
	require.NoError(t, w.Close())
}

func TestRunUpmixesStereoWaveToQuadPreset(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")

	tone := testutil.DeterministicSine(440, 48000, 0.5, 200)
	samples := make([]float64, 2*200)
	for i, s := range tone {
		samples[i*2] = s
		samples[i*2+1] = s
	}
	writeTestWave(t, inPath, 48000, 16, 2, samples)

	req := Request{
		InputPath:      inPath,
		OutputBitDepth: 16,
		TargetLayout:   "402",
		CenterStays:    true,
		EffectScalePct: 100,
		LFESeparation:  true,
		LFEVolumePct:   100,
		MatrixUpmix:    true,
		Smoothness:     50,
		OutputPath:     outPath,
	}
	require.NoError(t, Run(req, noopReporter{}))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	r, err := wave.NewReader(f)
	require.NoError(t, err)
	require.Equal(t, len(spatial.Preset(spatial.Target402).Channels), r.ChannelCount())

	out := make([]float64, 200*r.ChannelCount())
	n, err := r.ReadFrames(out)
	require.NoError(t, err)
	require.Equal(t, 200, n)
	testutil.RequireFinite(t, out)
}

func TestRunPassthroughCopiesWaveUnmixed(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")

	samples := []float64{0.25, -0.25, 0.5, -0.5}
	writeTestWave(t, inPath, 48000, 16, 2, samples)

	req := Request{
		InputPath:      inPath,
		OutputBitDepth: 16,
		TargetLayout:   "0",
		OutputPath:     outPath,
	}
	require.NoError(t, Run(req, noopReporter{}))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	r, err := wave.NewReader(f)
	require.NoError(t, err)
	require.Equal(t, 2, r.ChannelCount())

	out := make([]float64, len(samples))
	n, err := r.ReadFrames(out)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	for i, s := range samples {
		require.InDelta(t, s, out[i], 1e-3)
	}
}

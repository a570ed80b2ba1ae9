package wave

import (
	"os"
	"testing"

	"github.com/cavernize/core/internal/testutil"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, bitDepth int, samples []float64, channels int) []float64 {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "wave-*.wav")
	require.NoError(t, err)
	defer f.Close()

	w, err := NewWriter(f, 48000, bitDepth, channels)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrames(samples))
	require.NoError(t, w.Close())

	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	r, err := NewReader(f)
	require.NoError(t, err)
	require.Equal(t, channels, r.ChannelCount())
	require.Equal(t, bitDepth, r.BitDepth())

	out := make([]float64, len(samples))
	n, err := r.ReadFrames(out)
	require.NoError(t, err)
	require.Equal(t, len(samples)/channels, n)
	return out
}

func TestRoundTrip16Bit(t *testing.T) {
	samples := []float64{0.5, -0.5, 0.25, -0.25, 0, 0.999}
	out := roundTrip(t, 16, samples, 2)
	diff, err := testutil.MaxAbsDiff(samples, out)
	require.NoError(t, err)
	require.Less(t, diff, 1e-3)
}

func TestRoundTrip8Bit(t *testing.T) {
	samples := []float64{0.5, -0.5, 0, -1}
	out := roundTrip(t, 8, samples, 1)
	for i, s := range samples {
		require.InDelta(t, s, out[i], 0.02)
	}
}

func TestRoundTrip32BitFloat(t *testing.T) {
	samples := []float64{0.5, -0.5, 0.123456, -0.987654}
	out := roundTrip(t, 32, samples, 1)
	for i, s := range samples {
		require.InDelta(t, s, out[i], 1e-6)
	}
}

func TestRejectsUnsupportedBitDepth(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "wave-*.wav")
	require.NoError(t, err)
	defer f.Close()

	_, err = NewWriter(f, 48000, 24, 1)
	require.ErrorIs(t, err, ErrUnsupportedBitDepth)
}

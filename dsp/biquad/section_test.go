package biquad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnityGainPassesDC(t *testing.T) {
	s, err := NewSection(48000, 1000, 0.707, 0)
	require.NoError(t, err)

	const warmup = 50
	var out float64
	for i := 0; i < warmup; i++ {
		out = s.ProcessSample(1)
	}
	require.InDelta(t, 1, out, 1e-6)
}

func TestZeroGainPassesAnySinusoidUnchanged(t *testing.T) {
	for _, freq := range []float64{60, 440, 5000, 15000} {
		s, err := NewSection(48000, 1000, 1.0, 0)
		require.NoError(t, err)

		const n = 4096
		const warmup = 512
		maxDiff := 0.0
		for i := 0; i < n; i++ {
			x := math.Sin(2 * math.Pi * freq * float64(i) / 48000)
			y := s.ProcessSample(x)
			if i >= warmup {
				if d := math.Abs(x - y); d > maxDiff {
					maxDiff = d
				}
			}
		}
		require.Less(t, maxDiff, 1e-4)
	}
}

func TestResetDoesNotClearHistory(t *testing.T) {
	s, err := NewSection(48000, 1000, 1, 6)
	require.NoError(t, err)
	s.ProcessSample(1)
	s.ProcessSample(-1)
	x1, x2, y1, y2 := s.State()

	require.NoError(t, s.Reset(48000, 2000, 2, -3))

	gotX1, gotX2, gotY1, gotY2 := s.State()
	require.Equal(t, x1, gotX1)
	require.Equal(t, x2, gotX2)
	require.Equal(t, y1, gotY1)
	require.Equal(t, y2, gotY2)
}

func TestInvalidParameters(t *testing.T) {
	_, err := NewSection(0, 1000, 1, 0)
	require.ErrorIs(t, err, ErrInvalidSampleRate)
	_, err = NewSection(48000, 1000, 0, 0)
	require.ErrorIs(t, err, ErrInvalidQ)
}

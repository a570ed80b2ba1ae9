package dynamics

import (
	"testing"

	"github.com/cavernize/core/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestImmediateAttackLimitsPeak(t *testing.T) {
	n := New(48000, 1)
	samples := []float64{2.0, -2.0, 1.0, -1.0}
	n.Process(samples)

	peak := 0.0
	for _, s := range samples {
		if a := abs(s); a > peak {
			peak = a
		}
	}
	require.LessOrEqual(t, peak, 0.9)
}

func TestReleaseRecoversToUnityAfterTwoSeconds(t *testing.T) {
	const fs = 48000.0
	const channels = 2

	n := New(fs, channels)
	n.Process([]float64{2.0, -2.0})
	require.Less(t, n.Gain(), 1.0)

	silence := testutil.DC(0, channels*int(2*fs))
	n.Process(silence)

	require.InDelta(t, 1.0, n.Gain(), 1e-9)
}

func TestNoAttackWhenWithinRange(t *testing.T) {
	n := New(48000, 1)
	samples := []float64{0.5, -0.3, 0.2}
	n.Process(samples)
	require.Equal(t, 1.0, n.Gain())
	require.Equal(t, 0.5, samples[0])
}

package graph

import (
	"testing"

	"github.com/cavernize/core/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestToLogGraphProducesMonotonicIndices(t *testing.T) {
	const respLen = 32768
	response := make([]float64, respLen)
	for i := range response {
		response[i] = float64(i)
	}

	const fs = 48000.0
	const outLen = 256
	out := ToLogGraph(response, respLen, 20, fs/2, fs, outLen)

	require.Len(t, out, outLen)
	for i := 1; i < len(out); i++ {
		require.GreaterOrEqual(t, out[i], out[i-1], "index %d", i)
	}
}

func TestToLogGraphSingleSample(t *testing.T) {
	response := []float64{0, 1, 2, 3, 4, 5}
	out := ToLogGraph(response, 3, 100, 1000, 48000, 1)
	require.Len(t, out, 1)
}

func TestToDecibelsFloorsZero(t *testing.T) {
	curve := []float64{0, 1, 10}
	ToDecibels(curve, DefaultFloorDb)
	testutil.RequireSliceNearlyEqual(t, curve, []float64{DefaultFloorDb, 0, 20}, 1e-9)
}

func TestToDecibelsRespectsCustomFloor(t *testing.T) {
	curve := []float64{1e-9}
	ToDecibels(curve, -60)
	require.Equal(t, float64(-60), curve[0])
}

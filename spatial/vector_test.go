package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceInCubeFrontFloorEdge(t *testing.T) {
	// At azimuth +-45 both horizontal components snap to full scale, so
	// the speaker lands on the front floor corner.
	left := PlaceInCube(0, -45)
	require.InDelta(t, -1, left.X, 1e-6)
	require.InDelta(t, 0, left.Y, 1e-6)
	require.InDelta(t, 1, left.Z, 1e-6)

	right := PlaceInCube(0, 45)
	require.InDelta(t, 1, right.X, 1e-6)
	require.InDelta(t, 0, right.Y, 1e-6)
	require.InDelta(t, 1, right.Z, 1e-6)
}

func TestPlaceInCubeCeiling(t *testing.T) {
	v := PlaceInCube(-45, 0)
	require.InDelta(t, 1, v.Y, 1e-6)
}

func TestPresetsHaveEightOrFewerSpeakers(t *testing.T) {
	for _, target := range []Target{Target301, Target312, Target402, Target404, Target512} {
		layout := Preset(target)
		require.LessOrEqual(t, len(layout.Channels), 8)
		require.NotEmpty(t, layout.Channels)
	}
}

func Test512HasOneLFE(t *testing.T) {
	layout := Preset(Target512)
	count := 0
	for _, c := range layout.Channels {
		if c.LFE {
			count++
		}
	}
	require.Equal(t, 1, count)
}

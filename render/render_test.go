package render

import (
	"math"
	"testing"

	"github.com/cavernize/core/spatial"
	"github.com/stretchr/testify/require"
)

func sumGains(g []float64) float64 {
	sum := 0.0
	for _, v := range g {
		sum += v
	}
	return sum
}

func TestGainsSumToOne(t *testing.T) {
	layout := spatial.Preset(spatial.Target512)
	for _, pos := range []spatial.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.3, Y: 0.7, Z: -0.2},
		{X: -1, Y: 1, Z: 1},
	} {
		g := SpeakerGains(layout, pos)
		require.InDelta(t, 1, sumGains(g), 1e-9)
	}
}

func TestCoincidentPositionGetsFullGain(t *testing.T) {
	layout := spatial.Preset(spatial.Target402)
	for i, ch := range layout.Channels {
		g := SpeakerGains(layout, ch.CubicalPos)
		require.InDelta(t, 1, g[i], 1e-9, "speaker %d", i)

		target := make([]float64, len(layout.Channels))
		Render(layout, ch.CubicalPos, 1, target, 0, 1)
		for j, v := range target {
			if j == i {
				require.InDelta(t, 1, v, 1e-6)
			} else {
				require.InDelta(t, 0, v, 1e-6)
			}
		}
	}
}

func TestEdgeMidpointSplitsEvenly(t *testing.T) {
	// 402: (0,-45) and (0,45) are the front floor pair; their midpoint
	// on X splits evenly between them.
	layout := spatial.Preset(spatial.Target402)
	left := layout.Channels[0].CubicalPos
	right := layout.Channels[1].CubicalPos
	mid := spatial.Vector3{X: (left.X + right.X) / 2, Y: left.Y, Z: left.Z}

	g := SpeakerGains(layout, mid)
	require.InDelta(t, g[0], g[1], 1e-9)
	require.Greater(t, g[0], 0.0)
}

func TestEdgeMidpointIsConstantPower(t *testing.T) {
	// At an exact 50/50 split between two speakers, constant power
	// holds regardless of how many other slots are zero: sin(.5*pi/2)^2*2 == 1.
	layout := spatial.Preset(spatial.Target402)
	left := layout.Channels[0].CubicalPos
	right := layout.Channels[1].CubicalPos
	mid := spatial.Vector3{X: (left.X + right.X) / 2, Y: left.Y, Z: left.Z}

	target := make([]float64, len(layout.Channels))
	Render(layout, mid, 1, target, 0, 1)

	power := 0.0
	for _, v := range target {
		power += v * v
	}
	require.InDelta(t, 1, power, 1e-6)
}

func TestSinPowerLawValue(t *testing.T) {
	g := math.Sin(0.5 * math.Pi / 2)
	require.InDelta(t, 0.7071067811865476, g, 1e-9)
}

// Package render places a source at a position in the cube [-1,1]^3
// and pans it across the eight speakers bounding that position using
// a constant-power law.
package render

import (
	"math"

	"github.com/cavernize/core/spatial"
)

// speakerSlot indexes the eight corners of the bounding box a source
// position is panned across.
type speakerSlot int

const (
	bottomFrontLeft speakerSlot = iota
	bottomFrontRight
	bottomRearLeft
	bottomRearRight
	topFrontLeft
	topFrontRight
	topRearLeft
	topRearRight
	slotCount
)

const noSpeaker = -1

// box holds the eight speaker indices found for one render call, or
// noSpeaker where a face is missing before layer completion runs.
type box [slotCount]int

// findBox locates the closest non-LFE y-layer below and above pos.Y,
// then within each layer the closest z-layer in front of and behind
// pos.Z, then within each of those four sets the left/right speaker
// straddling pos.X.
func findBox(layout spatial.Layout, pos spatial.Vector3) box {
	var b box
	for i := range b {
		b[i] = noSpeaker
	}

	closestBottom := math.Inf(-1)
	closestTop := math.Inf(1)
	for _, c := range layout.Channels {
		if c.LFE {
			continue
		}
		y := c.CubicalPos.Y
		if y <= pos.Y && y > closestBottom {
			closestBottom = y
		}
		if y > pos.Y && y < closestTop {
			closestTop = y
		}
	}

	closestBF, closestBR := math.Inf(1), math.Inf(-1)
	closestTF, closestTR := math.Inf(1), math.Inf(-1)
	for _, c := range layout.Channels {
		if c.LFE {
			continue
		}
		y, z := c.CubicalPos.Y, c.CubicalPos.Z
		switch y {
		case closestBottom:
			if z > pos.Z && z < closestBF {
				closestBF = z
			}
			if z <= pos.Z && z > closestBR {
				closestBR = z
			}
		case closestTop:
			if z > pos.Z && z < closestTF {
				closestTF = z
			}
			if z <= pos.Z && z > closestTR {
				closestTR = z
			}
		}
	}

	assignLR := func(idx int, pos spatial.Vector3, channels []spatial.Channel, left, right *int) {
		x := channels[idx].CubicalPos.X
		switch {
		case x == pos.X:
			*left, *right = idx, idx
		case x < pos.X:
			if *left == noSpeaker || channels[*left].CubicalPos.X < x {
				*left = idx
			}
		default:
			if *right == noSpeaker || channels[*right].CubicalPos.X > x {
				*right = idx
			}
		}
	}

	for i, c := range layout.Channels {
		if c.LFE {
			continue
		}
		p := c.CubicalPos
		if p.Y == closestBottom {
			if p.Z == closestBF {
				assignLR(i, pos, layout.Channels, &b[bottomFrontLeft], &b[bottomFrontRight])
			}
			if p.Z == closestBR {
				assignLR(i, pos, layout.Channels, &b[bottomRearLeft], &b[bottomRearRight])
			}
		}
		if p.Y == closestTop {
			if p.Z == closestTF {
				assignLR(i, pos, layout.Channels, &b[topFrontLeft], &b[topFrontRight])
			}
			if p.Z == closestTR {
				assignLR(i, pos, layout.Channels, &b[topRearLeft], &b[topRearRight])
			}
		}
	}

	fixLayer(&b[bottomFrontLeft], &b[bottomFrontRight], &b[bottomRearLeft], &b[bottomRearRight])
	fixLayer(&b[topFrontLeft], &b[topFrontRight], &b[topRearLeft], &b[topRearRight])

	if allMissing(b[bottomFrontLeft], b[bottomFrontRight], b[bottomRearLeft], b[bottomRearRight]) {
		b[bottomFrontLeft], b[bottomFrontRight] = b[topFrontLeft], b[topFrontRight]
		b[bottomRearLeft], b[bottomRearRight] = b[topRearLeft], b[topRearRight]
	}
	if allMissing(b[topFrontLeft], b[topFrontRight], b[topRearLeft], b[topRearRight]) {
		b[topFrontLeft], b[topFrontRight] = b[bottomFrontLeft], b[bottomFrontRight]
		b[topRearLeft], b[topRearRight] = b[bottomRearLeft], b[bottomRearRight]
	}

	return b
}

func allMissing(vals ...int) bool {
	for _, v := range vals {
		if v != noSpeaker {
			return false
		}
	}
	return true
}

// fixLayer fills missing left/right and front/rear faces by copying
// from the opposite side, the way findBox's layer completion step
// requires.
func fixLayer(fl, fr, rl, rr *int) {
	if *fl != noSpeaker || *fr != noSpeaker {
		if *fl == noSpeaker {
			*fl = *fr
		}
		if *fr == noSpeaker {
			*fr = *fl
		}
		if *rl == noSpeaker && *rr == noSpeaker {
			*rl, *rr = *fl, *fr
		}
	}
	if *rl != noSpeaker || *rr != noSpeaker {
		if *rl == noSpeaker {
			*rl = *rr
		}
		if *rr == noSpeaker {
			*rr = *rl
		}
		if *fl == noSpeaker && *fr == noSpeaker {
			*fl, *fr = *rl, *rr
		}
	}
}

func ratio(a, b, x float64) float64 {
	if a == b {
		return 0.5
	}
	return (x - a) / (b - a)
}

// gains computes the per-slot panning gain given the resolved
// bounding box and source position.
func gains(layout spatial.Layout, pos spatial.Vector3, b box) [slotCount]float64 {
	ch := layout.Channels
	var out [slotCount]float64

	var topVol, bottomVol float64
	if b[topFrontLeft] != b[bottomFrontLeft] {
		topVol = ratio(ch[b[bottomFrontLeft]].CubicalPos.Y, ch[b[topFrontLeft]].CubicalPos.Y, pos.Y)
		bottomVol = 1 - topVol
	} else {
		topVol, bottomVol = 0.5, 0.5
	}

	bottomFront := ratio(ch[b[bottomRearLeft]].CubicalPos.Z, ch[b[bottomFrontLeft]].CubicalPos.Z, pos.Z)
	bottomRear := 1 - bottomFront
	topFront := ratio(ch[b[topRearLeft]].CubicalPos.Z, ch[b[topFrontLeft]].CubicalPos.Z, pos.Z)
	topRear := 1 - topFront

	bottomFrontWidth := ratio(ch[b[bottomFrontLeft]].CubicalPos.X, ch[b[bottomFrontRight]].CubicalPos.X, pos.X)
	bottomRearWidth := ratio(ch[b[bottomRearLeft]].CubicalPos.X, ch[b[bottomRearRight]].CubicalPos.X, pos.X)
	topFrontWidth := ratio(ch[b[topFrontLeft]].CubicalPos.X, ch[b[topFrontRight]].CubicalPos.X, pos.X)
	topRearWidth := ratio(ch[b[topRearLeft]].CubicalPos.X, ch[b[topRearRight]].CubicalPos.X, pos.X)

	out[bottomFrontLeft] = bottomVol * bottomFront * (1 - bottomFrontWidth)
	out[bottomFrontRight] = bottomVol * bottomFront * bottomFrontWidth
	out[bottomRearLeft] = bottomVol * bottomRear * (1 - bottomRearWidth)
	out[bottomRearRight] = bottomVol * bottomRear * bottomRearWidth
	out[topFrontLeft] = topVol * topFront * (1 - topFrontWidth)
	out[topFrontRight] = topVol * topFront * topFrontWidth
	out[topRearLeft] = topVol * topRear * (1 - topRearWidth)
	out[topRearRight] = topVol * topRear * topRearWidth

	return out
}

// SpeakerGains returns the linear gain landing on each physical
// speaker of layout for a source at pos, summing the box's eight
// sub-area contributions per speaker so that a position coincident
// with a real speaker (or with layer completion mapping several of
// the eight slots to the same speaker) yields that speaker's full,
// un-split share. The eight slot gains always sum to 1 by
// construction, so the returned slice sums to 1 as well.
func SpeakerGains(layout spatial.Layout, pos spatial.Vector3) []float64 {
	b := findBox(layout, pos)
	g := gains(layout, pos, b)

	out := make([]float64, len(layout.Channels))
	for slot := speakerSlot(0); slot < slotCount; slot++ {
		if speaker := b[slot]; speaker != noSpeaker {
			out[speaker] += g[slot]
		}
	}
	return out
}

// Render mixes one mono source sample into target's speakers at
// position pos using a constant-power law, per channelCount stride.
// target must have len(layout.Channels)*channelCount capacity at the
// given sample offset.
func Render(layout spatial.Layout, pos spatial.Vector3, sample float64, target []float64, offset, channelCount int) {
	for speaker, gain := range SpeakerGains(layout, pos) {
		if gain == 0 {
			continue
		}
		target[offset+speaker*channelCount] += sample * math.Sin(gain*math.Pi/2)
	}
}

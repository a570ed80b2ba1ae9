package cavernize

import (
	"errors"
	"fmt"

	"github.com/cavernize/core/spatial"
)

// ErrUnsupportedChannelCount is returned by SourceLayout for a channel
// count this package does not know a standard placement for.
var ErrUnsupportedChannelCount = errors.New("cavernize: unsupported source channel count")

// SourceChannel is one channel of an incoming mix: its nominal
// spherical placement and whether it carries low-frequency effects.
// CubicalPos is derived the same way a target speaker's is, via
// spatial.PlaceInCube, so a source channel's x/z can be fed directly
// into the renderer.
type SourceChannel struct {
	Elevation float64
	Azimuth   float64
	LFE       bool
}

// CubicalPos returns the channel's position in the render cube.
func (c SourceChannel) CubicalPos() spatial.Vector3 {
	return spatial.PlaceInCube(c.Elevation, c.Azimuth)
}

// IsCenter reports whether the channel sits at the listener's center:
// zero elevation and zero azimuth.
func (c SourceChannel) IsCenter() bool {
	return c.Elevation == 0 && c.Azimuth == 0
}

func sourceChannel(elevation, azimuth float64) SourceChannel {
	return SourceChannel{Elevation: elevation, Azimuth: azimuth}
}

func lfeChannel() SourceChannel {
	return SourceChannel{LFE: true}
}

// ChannelOverride replaces one source channel's nominal placement,
// addressed by its index in the layout SourceLayout returned.
type ChannelOverride struct {
	Index     int
	Elevation float64
	Azimuth   float64
	LFE       bool
}

// ApplyOverrides returns a copy of source with each override's index
// replaced by its given placement. Indices outside source's range are
// ignored.
func ApplyOverrides(source []SourceChannel, overrides []ChannelOverride) []SourceChannel {
	out := append([]SourceChannel(nil), source...)
	for _, o := range overrides {
		if o.Index < 0 || o.Index >= len(out) {
			continue
		}
		out[o.Index] = SourceChannel{Elevation: o.Elevation, Azimuth: o.Azimuth, LFE: o.LFE}
	}
	return out
}

// SourceLayout returns the nominal channel placement for a standard
// mix of the given channel count: mono, stereo, 3.0, quadraphonic,
// 5.0, 5.1 and 7.1. Placements and ordering follow the angle
// constants a conventional channel-based renderer keys its speaker
// table on (front left/right at +-30 deg, center at 0, rear/side
// surrounds at +-150/+-110 deg).
func SourceLayout(channelCount int) ([]SourceChannel, error) {
	switch channelCount {
	case 1:
		return []SourceChannel{sourceChannel(0, 0)}, nil
	case 2:
		return []SourceChannel{
			sourceChannel(0, -30),
			sourceChannel(0, 30),
		}, nil
	case 3:
		return []SourceChannel{
			sourceChannel(0, -30),
			sourceChannel(0, 30),
			sourceChannel(0, 0),
		}, nil
	case 4:
		return []SourceChannel{
			sourceChannel(0, -30),
			sourceChannel(0, 30),
			sourceChannel(0, -150),
			sourceChannel(0, 150),
		}, nil
	case 5:
		return []SourceChannel{
			sourceChannel(0, -30),
			sourceChannel(0, 30),
			sourceChannel(0, 0),
			sourceChannel(0, -150),
			sourceChannel(0, 150),
		}, nil
	case 6:
		return []SourceChannel{
			sourceChannel(0, -30),
			sourceChannel(0, 30),
			sourceChannel(0, 0),
			lfeChannel(),
			sourceChannel(0, -150),
			sourceChannel(0, 150),
		}, nil
	case 8:
		return []SourceChannel{
			sourceChannel(0, -30),
			sourceChannel(0, 30),
			sourceChannel(0, 0),
			lfeChannel(),
			sourceChannel(0, -150),
			sourceChannel(0, 150),
			sourceChannel(0, -110),
			sourceChannel(0, 110),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannelCount, channelCount)
	}
}

package spatial

// Channel is a speaker: its spherical placement, whether it carries
// low-frequency effects, and the cubical position PlaceInCube derives
// from its angles.
type Channel struct {
	Elevation  float64
	Azimuth    float64
	LFE        bool
	CubicalPos Vector3
}

// NewChannel builds a Channel, deriving CubicalPos from its angles.
func NewChannel(elevationDeg, azimuthDeg float64, lfe bool) Channel {
	return Channel{
		Elevation:  elevationDeg,
		Azimuth:    azimuthDeg,
		LFE:        lfe,
		CubicalPos: PlaceInCube(elevationDeg, azimuthDeg),
	}
}

// Layout is an ordered, immutable sequence of speakers. The renderer
// addresses speakers by index into this sequence; indices are stable
// for the lifetime of a rendering session.
type Layout struct {
	Channels []Channel
}

// NewLayout builds a Layout from channel descriptors.
func NewLayout(channels ...Channel) Layout {
	return Layout{Channels: append([]Channel(nil), channels...)}
}

// Target names the supported spatial presets of §6.
type Target int

const (
	Target301 Target = iota
	Target312
	Target402
	Target404
	Target512
)

// Preset builds the Layout for one of the named spatial targets.
func Preset(t Target) Layout {
	switch t {
	case Target301:
		return NewLayout(
			NewChannel(0, -45, false),
			NewChannel(0, 45, false),
			NewChannel(0, 180, false),
			NewChannel(-90, 0, false),
		)
	case Target312:
		return NewLayout(
			NewChannel(0, -45, false),
			NewChannel(0, 45, false),
			NewChannel(0, 180, false),
			NewChannel(0, 0, true),
			NewChannel(-45, -70, false),
			NewChannel(-45, 70, false),
		)
	case Target402:
		return NewLayout(
			NewChannel(0, -45, false),
			NewChannel(0, 45, false),
			NewChannel(0, -135, false),
			NewChannel(0, 135, false),
			NewChannel(-45, -90, false),
			NewChannel(-45, 90, false),
		)
	case Target404:
		return NewLayout(
			NewChannel(0, -45, false),
			NewChannel(0, 45, false),
			NewChannel(0, -135, false),
			NewChannel(0, 135, false),
			NewChannel(-45, -45, false),
			NewChannel(-45, 45, false),
			NewChannel(-45, -135, false),
			NewChannel(-45, 135, false),
		)
	case Target512:
		return NewLayout(
			NewChannel(0, -30, false),
			NewChannel(0, 30, false),
			NewChannel(0, 0, false),
			NewChannel(0, 0, true),
			NewChannel(0, -110, false),
			NewChannel(0, 110, false),
			NewChannel(-45, -70, false),
			NewChannel(-45, 70, false),
		)
	default:
		return Layout{}
	}
}

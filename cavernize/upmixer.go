// Package cavernize implements the height-aware upmixer: per-channel
// height estimation via an envelope follower, 3D panning through the
// renderer, LFE routing, matrix-derived center/surround channels, and
// output normalization.
package cavernize

import (
	"errors"
	"fmt"

	"github.com/cavernize/core/dsp/core"
	"github.com/cavernize/core/dynamics"
	"github.com/cavernize/core/render"
	"github.com/cavernize/core/spatial"
)

// ErrBufferLength is returned when a source or target buffer's
// length is not an exact multiple of its channel count, or the two
// buffers describe different numbers of sample frames.
var ErrBufferLength = errors.New("cavernize: buffer length does not match channel count")

// Upmixer holds one session's envelope state, target layout, and
// normalizer. It is bound to a fixed source channel count and target
// layout for its lifetime; processing is strictly sequential.
type Upmixer struct {
	cfg    Config
	layout spatial.Layout
	source []SourceChannel

	states        []envelope
	centerState   envelope
	surroundState envelope
	lfeBusState   float64

	centerBuf   []float64
	surroundBuf []float64

	normalizer *dynamics.Normalizer
}

// NewUpmixer builds an Upmixer for a source of sourceChannelCount
// channels rendering into layout.
func NewUpmixer(layout spatial.Layout, sourceChannelCount int, opts ...Option) (*Upmixer, error) {
	source, err := SourceLayout(sourceChannelCount)
	if err != nil {
		return nil, err
	}
	return NewUpmixerFromSource(layout, source, opts...), nil
}

// NewUpmixerFromSource builds an Upmixer for an explicit source
// channel layout, bypassing the standard placement SourceLayout
// derives. Used when individual channels' placement is overridden.
func NewUpmixerFromSource(layout spatial.Layout, source []SourceChannel, opts ...Option) *Upmixer {
	cfg := ApplyOptions(opts...)

	return &Upmixer{
		cfg:        cfg,
		layout:     layout,
		source:     source,
		states:     make([]envelope, len(source)),
		normalizer: dynamics.New(cfg.SampleRate, len(layout.Channels)),
	}
}

// Process upmixes one block of interleaved source samples into
// target, which must hold exactly as many sample frames as source
// does, at len(layout.Channels) channels per frame.
func (u *Upmixer) Process(source, target []float64) error {
	sourceChannels := len(u.source)
	targetChannels := len(u.layout.Channels)

	if sourceChannels == 0 || len(source)%sourceChannels != 0 {
		return fmt.Errorf("%w: source", ErrBufferLength)
	}
	numFrames := len(source) / sourceChannels
	if len(target) != numFrames*targetChannels {
		return fmt.Errorf("%w: target", ErrBufferLength)
	}

	core.Zero(target)

	u.renderSourceChannels(source, target, numFrames)
	if !u.cfg.LFESeparation {
		u.mixDerivedLFEBus(source, target, numFrames, sourceChannels, targetChannels)
	}
	if u.cfg.MatrixUpmix {
		u.renderMatrixUpmix(source, target, numFrames, sourceChannels, targetChannels)
	}

	u.normalizer.Process(target)
	return nil
}

// renderSourceChannels advances height estimation for every non-LFE
// source channel and pans it into target; LFE source channels are
// instead mixed flat into every target LFE speaker.
func (u *Upmixer) renderSourceChannels(source, target []float64, numFrames int) {
	sourceChannels := len(u.source)
	targetChannels := len(u.layout.Channels)

	for c, ch := range u.source {
		if ch.LFE {
			for i := 0; i < numFrames; i++ {
				sample := source[i*sourceChannels+c] * u.cfg.LFEVolume
				u.mixIntoLFESpeakers(target, i*targetChannels, sample)
			}
			continue
		}

		if !(u.cfg.CenterStays && ch.IsCenter()) {
			u.states[c].update(source, c, sourceChannels, numFrames, u.cfg)
		}

		pos := ch.CubicalPos()
		pos.Y = u.states[c].height
		for i := 0; i < numFrames; i++ {
			sample := source[i*sourceChannels+c]
			render.Render(u.layout, pos, sample, target, i*targetChannels, 1)
		}
	}
}

// mixIntoLFESpeakers adds sample to every LFE speaker of one target
// frame starting at offset.
func (u *Upmixer) mixIntoLFESpeakers(target []float64, offset int, sample float64) {
	for s, ch := range u.layout.Channels {
		if ch.LFE {
			target[offset+s] += sample
		}
	}
}

// mixDerivedLFEBus downmixes all source channels to mono, low-passes
// the result, and mixes it into every target LFE speaker. It runs
// whenever the session's source has no dedicated LFE separation.
func (u *Upmixer) mixDerivedLFEBus(source, target []float64, numFrames, sourceChannels, targetChannels int) {
	for i := 0; i < numFrames; i++ {
		mono := 0.0
		for c := 0; c < sourceChannels; c++ {
			mono += source[i*sourceChannels+c]
		}
		mono /= float64(sourceChannels)

		u.lfeBusState = 0.9995*u.lfeBusState + 0.0005*mono
		sample := u.lfeBusState * 6 * u.cfg.LFEVolume
		u.mixIntoLFESpeakers(target, i*targetChannels, sample)
	}
}

// renderMatrixUpmix derives and renders the matrix center and
// surround channels a stereo, 3.0 or quadraphonic source implies.
func (u *Upmixer) renderMatrixUpmix(source, target []float64, numFrames, sourceChannels, targetChannels int) {
	deriveCenter := sourceChannels == 2 || sourceChannels == 4
	deriveSurround := sourceChannels == 2 || sourceChannels == 3

	if deriveCenter {
		u.centerBuf = core.EnsureLen(u.centerBuf, numFrames)
	}
	if deriveSurround {
		u.surroundBuf = core.EnsureLen(u.surroundBuf, numFrames)
	}
	for i := 0; i < numFrames; i++ {
		l := source[i*sourceChannels+0]
		r := source[i*sourceChannels+1]
		if deriveCenter {
			u.centerBuf[i] = (l + r) / 2
		}
		if deriveSurround {
			u.surroundBuf[i] = (l - r) / 2
		}
	}

	if deriveCenter {
		if !u.cfg.CenterStays {
			u.centerState.updateFlat(u.centerBuf, u.cfg)
		}
		pos := spatial.Vector3{X: 0, Y: u.centerState.height, Z: 1}
		for i := 0; i < numFrames; i++ {
			render.Render(u.layout, pos, u.centerBuf[i], target, i*targetChannels, 1)
		}
	}

	if deriveSurround {
		u.surroundState.updateFlat(u.surroundBuf, u.cfg)
		h := u.surroundState.height
		left := spatial.Vector3{X: -1, Y: h, Z: -0.5}
		right := spatial.Vector3{X: 1, Y: h, Z: -0.5}
		for i := 0; i < numFrames; i++ {
			render.Render(u.layout, left, u.surroundBuf[i], target, i*targetChannels, 1)
			render.Render(u.layout, right, -u.surroundBuf[i], target, i*targetChannels, 1)
		}
	}
}

// Package analyzer derives the frequency response of an arbitrary
// filter by running its impulse response through an FFT.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/cavernize/core/dsp/fft"
)

// DefaultResolution is the analyzer's default FFT size.
const DefaultResolution = 65536

// ErrInvalidResolution is returned when a non-power-of-two or too
// small resolution is requested.
var ErrInvalidResolution = errors.New("analyzer: resolution must be a power of two >= 2")

// Filter is anything that can be applied sample-by-sample to a
// mono stream, matching biquad.Section's Process signature.
type Filter interface {
	Process(samples []float64, channel, channelCount int)
}

// Analyzer computes the magnitude frequency response of a Filter by
// running a unit impulse through it and taking the 1-D magnitude FFT.
type Analyzer struct {
	resolution int
	cache      *fft.Cache
	impulse    []float64
	spectrum   []float64
}

// New builds an Analyzer at the given resolution (FFT size).
func New(resolution int) (*Analyzer, error) {
	a := &Analyzer{}
	if err := a.SetResolution(resolution); err != nil {
		return nil, err
	}
	return a, nil
}

// SetResolution reallocates the analyzer's impulse/spectrum buffers
// and cache for a new resolution, and invalidates any previously
// computed spectrum.
func (a *Analyzer) SetResolution(resolution int) error {
	cache, err := fft.NewCache(resolution)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResolution, err)
	}

	a.resolution = resolution
	a.cache = cache
	a.impulse = make([]float64, resolution)
	a.spectrum = make([]float64, resolution)
	return nil
}

// Resolution returns the analyzer's current FFT size.
func (a *Analyzer) Resolution() int {
	return a.resolution
}

// Spectrum runs f over a fresh unit impulse and returns the magnitude
// spectrum. The first Resolution()/2 entries are the physical response
// on a linear frequency axis from 0 to fs/2; the remainder mirrors it.
// The returned slice is owned by the Analyzer and is overwritten by
// the next call.
func (a *Analyzer) Spectrum(f Filter) ([]float64, error) {
	for i := range a.impulse {
		a.impulse[i] = 0
	}
	a.impulse[0] = 1
	copy(a.spectrum, a.impulse)

	f.Process(a.spectrum, 0, 1)

	if err := fft.Magnitude1D(a.spectrum, a.cache); err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}
	return a.spectrum, nil
}

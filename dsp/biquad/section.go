// Package biquad implements a second-order IIR peaking equalizer in
// Direct Form I.
package biquad

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSampleRate is returned when a non-positive sample rate is
// supplied to Reset.
var ErrInvalidSampleRate = errors.New("biquad: sample rate must be positive")

// ErrInvalidQ is returned when a non-positive Q is supplied to Reset.
var ErrInvalidQ = errors.New("biquad: Q must be positive")

// Coefficients holds the transfer function coefficients for one
// second-order peaking section. a0 is normalized to 1 and not stored.
//
// Direct Form I:
//
//	y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Section is a peaking biquad filter with coefficients and the
// Direct-Form-I history it operates on.
type Section struct {
	Coefficients
	x1, x2, y1, y2 float64
}

// NewSection builds a Section for the given sample rate, center
// frequency, Q, and gain in dB. See Reset for the coefficient
// derivation.
func NewSection(sampleRate, centerFreq, q, gainDb float64) (*Section, error) {
	s := &Section{}
	if err := s.Reset(sampleRate, centerFreq, q, gainDb); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset recomputes the section's coefficients from (sampleRate,
// centerFreq, q, gainDb) using the RBJ "peakingEQ" form:
//
//	A = 10^(gainDb/40)
//
// The response at centerFreq is A^2 = 10^(gainDb/20), so the section
// boosts or cuts by gainDb dB there. History (x1,x2,y1,y2) is not cleared; callers
// that need a clean impulse response must zero it separately via
// Clear.
func (s *Section) Reset(sampleRate, centerFreq, q, gainDb float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSampleRate, sampleRate)
	}
	if q <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidQ, q)
	}

	w0 := 2 * math.Pi * centerFreq / sampleRate
	a := math.Pow(10, gainDb/40)
	alpha := math.Sin(w0) / (2 * q)
	cosW0 := math.Cos(w0)

	a0 := 1 + alpha/a
	s.B0 = (1 + alpha*a) / a0
	s.B1 = -2 * cosW0 / a0
	s.A1 = s.B1
	s.B2 = (1 - alpha*a) / a0
	s.A2 = (1 - alpha/a) / a0

	return nil
}

// Clear zeroes the Direct-Form-I history without touching coefficients.
func (s *Section) Clear() {
	s.x1, s.x2, s.y1, s.y2 = 0, 0, 0, 0
}

// ProcessSample filters one input sample and returns the output,
// updating history.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.B1*s.x1 + s.B2*s.x2 - s.A1*s.y1 - s.A2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

// Process filters samples in place, striding by channelCount and
// starting at channel. One Section must be applied to exactly one
// continuous stream.
func (s *Section) Process(samples []float64, channel, channelCount int) {
	for i := channel; i < len(samples); i += channelCount {
		samples[i] = s.ProcessSample(samples[i])
	}
}

// State returns the current Direct-Form-I history.
func (s *Section) State() (x1, x2, y1, y2 float64) {
	return s.x1, s.x2, s.y1, s.y2
}

// SetState overwrites the Direct-Form-I history.
func (s *Section) SetState(x1, x2, y1, y2 float64) {
	s.x1, s.x2, s.y1, s.y2 = x1, x2, y1, y2
}

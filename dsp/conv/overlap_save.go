// Package conv implements overlap-save FFT convolution against a
// fixed impulse response.
//
// The algorithm:
//  1. Zero-pad the impulse to L = 2*2^ceil(log2(len(impulse))) and FFT it once.
//  2. Split the input stream into blocks of B = L/2 samples.
//  3. FFT each zero-padded block, multiply pointwise by the impulse's
//     spectrum, inverse-FFT, and overlap-add the result into a tail
//     buffer that carries state between calls.
//  4. Emit the front of the tail buffer and shift it left by the block
//     length, zero-filling the vacated tail.
//
// One OverlapSave instance is bound to exactly one continuous stream;
// interleaving two unrelated streams through one instance corrupts
// its carry-over state.
package conv

import (
	"errors"
	"fmt"

	"github.com/cavernize/core/dsp/core"
	"github.com/cavernize/core/dsp/fft"
	"github.com/cavernize/core/internal/vecmath"
)

// ErrEmptyImpulse is returned when NewOverlapSave is given a
// zero-length impulse response.
var ErrEmptyImpulse = errors.New("conv: empty impulse response")

// ErrNegativeDelay is returned when NewOverlapSave is given a
// negative delay.
var ErrNegativeDelay = errors.New("conv: delay must be non-negative")

// OverlapSave is an overlap-save fast convolver bound to one fixed
// impulse response.
type OverlapSave struct {
	cache *fft.Cache
	L     int // FFT size, 2x the zero-padded impulse length
	delay int

	filter  []vecmath.Complex // frequency-domain zero-padded impulse
	present []vecmath.Complex // per-block scratch, length L
	future  []float64         // carry-over tail, length L+delay
}

// NewOverlapSave builds a convolver for impulse, with output delayed
// by delay samples.
func NewOverlapSave(impulse []float64, delay int) (*OverlapSave, error) {
	if len(impulse) == 0 {
		return nil, ErrEmptyImpulse
	}
	if delay < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeDelay, delay)
	}

	l := 2 << vecmath.CeilLog2(len(impulse))
	cache, err := fft.NewCache(l)
	if err != nil {
		return nil, fmt.Errorf("conv: %w", err)
	}

	filter := make([]vecmath.Complex, l)
	for i, v := range impulse {
		filter[i] = vecmath.Complex{Re: v}
	}
	if err := fft.FFT(filter, cache); err != nil {
		return nil, fmt.Errorf("conv: forward FFT of impulse failed: %w", err)
	}

	return &OverlapSave{
		cache:   cache,
		L:       l,
		delay:   delay,
		filter:  filter,
		present: make([]vecmath.Complex, l),
		future:  make([]float64, l+delay),
	}, nil
}

// Delay reports the configured output delay in samples.
func (o *OverlapSave) Delay() int {
	return o.delay
}

// Process filters samples in place, striding by channelCount and
// starting at channel, per the overlap-save block algorithm.
func (o *OverlapSave) Process(samples []float64, channel, channelCount int) error {
	blockLen := o.L / 2
	count := 0
	for i := channel; i < len(samples); i += channelCount {
		count++
	}

	for from := 0; from < count; from += blockLen {
		to := from + blockLen
		if to > count {
			to = count
		}
		n := to - from

		for i := 0; i < n; i++ {
			o.present[i] = vecmath.Complex{Re: samples[channel+(from+i)*channelCount]}
		}
		for i := n; i < o.L; i++ {
			o.present[i] = vecmath.Complex{}
		}

		if err := fft.FFT(o.present, o.cache); err != nil {
			return fmt.Errorf("conv: forward FFT failed: %w", err)
		}
		for i := range o.present {
			o.present[i] = vecmath.Mul(o.present[i], o.filter[i])
		}
		if err := fft.IFFT(o.present, o.cache); err != nil {
			return fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		addLen := n + o.L/2
		for i := 0; i < addLen; i++ {
			o.future[o.delay+i] += o.present[i].Re
		}

		for i := 0; i < n; i++ {
			samples[channel+(from+i)*channelCount] = o.future[i]
		}

		core.CopyInto(o.future, o.future[n:])
		core.Zero(o.future[len(o.future)-n:])
	}

	return nil
}

// Reset clears the carry-over tail, as if the stream were starting
// fresh. The impulse response and delay are unchanged.
func (o *OverlapSave) Reset() {
	core.Zero(o.future)
}

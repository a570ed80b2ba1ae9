package fft

import (
	"fmt"

	"github.com/cavernize/core/internal/vecmath"
)

// FFT performs an in-place forward Cooley-Tukey FFT of samples using
// cache. len(samples) must equal cache.Len().
func FFT(samples []vecmath.Complex, cache *Cache) error {
	if len(samples) != cache.n {
		return fmt.Errorf("%w: cache built for %d, got %d", ErrNotPowerOfTwo, cache.n, len(samples))
	}
	processFFT(samples, cache, vecmath.CeilLog2(len(samples))-1)
	return nil
}

// IFFT performs an in-place inverse FFT of samples using cache,
// including the final 1/N rescale. len(samples) must equal cache.Len().
func IFFT(samples []vecmath.Complex, cache *Cache) error {
	if len(samples) != cache.n {
		return fmt.Errorf("%w: cache built for %d, got %d", ErrNotPowerOfTwo, cache.n, len(samples))
	}
	conjugate(samples)
	processFFT(samples, cache, vecmath.CeilLog2(len(samples))-1)
	conjugate(samples)

	scale := 1 / float64(len(samples))
	for i := range samples {
		samples[i].Re *= scale
		samples[i].Im *= scale
	}
	return nil
}

// Magnitude1D performs a forward FFT of a real signal and writes the
// magnitude spectrum back in place. The output has the same length as
// the input; entries [0,N/2) are the physical spectrum and [N/2,N)
// are its mirror.
func Magnitude1D(samples []float64, cache *Cache) error {
	if len(samples) != cache.n {
		return fmt.Errorf("%w: cache built for %d, got %d", ErrNotPowerOfTwo, cache.n, len(samples))
	}
	if len(samples) == 1 {
		return nil
	}
	processMagnitude(samples, cache, vecmath.CeilLog2(len(samples))-1)
	return nil
}

func conjugate(samples []vecmath.Complex) {
	for i := range samples {
		samples[i].Im = -samples[i].Im
	}
}

// processFFT is the recursive radix-2 DIT combine step, grounded on
// the cache's per-depth even/odd scratch pairs.
func processFFT(samples []vecmath.Complex, cache *Cache, depth int) {
	if len(samples) == 1 {
		return
	}

	even, odd := cache.even[depth], cache.odd[depth]
	for sample, pair := 0, 0; pair < len(samples); sample, pair = sample+1, pair+2 {
		even[sample] = samples[pair]
		odd[sample] = samples[pair+1]
	}

	processFFT(even, cache, depth-1)
	processFFT(odd, cache, depth-1)

	halfLen := len(samples) >> 1
	stepMul := len(cache.cos) / halfLen
	for i := 0; i < halfLen; i++ {
		c, s := cache.cos[i*stepMul], cache.sin[i*stepMul]
		oddRe := odd[i].Re*c - odd[i].Im*s
		oddIm := odd[i].Re*s + odd[i].Im*c
		samples[i].Re = even[i].Re + oddRe
		samples[i].Im = even[i].Im + oddIm
		samples[i+halfLen].Re = even[i].Re - oddRe
		samples[i+halfLen].Im = even[i].Im - oddIm
	}
}

// processMagnitude mirrors processFFT for a real-valued input,
// writing |X[k]| straight into samples instead of recombining into a
// complex buffer.
func processMagnitude(samples []float64, cache *Cache, depth int) {
	even, odd := cache.even[depth], cache.odd[depth]
	for sample, pair := 0, 0; pair < len(samples); sample, pair = sample+1, pair+2 {
		even[sample] = vecmath.Complex{Re: samples[pair]}
		odd[sample] = vecmath.Complex{Re: samples[pair+1]}
	}

	processFFT(even, cache, depth-1)
	processFFT(odd, cache, depth-1)

	halfLen := len(samples) >> 1
	stepMul := len(cache.cos) / halfLen
	for i := 0; i < halfLen; i++ {
		c, s := cache.cos[i*stepMul], cache.sin[i*stepMul]
		oddRe := odd[i].Re*c - odd[i].Im*s
		oddIm := odd[i].Re*s + odd[i].Im*c

		re := even[i].Re + oddRe
		im := even[i].Im + oddIm
		samples[i] = vecmath.Complex{Re: re, Im: im}.Magnitude()

		re = even[i].Re - oddRe
		im = even[i].Im - oddIm
		samples[i+halfLen] = vecmath.Complex{Re: re, Im: im}.Magnitude()
	}
}

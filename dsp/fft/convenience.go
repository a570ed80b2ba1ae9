package fft

import "github.com/cavernize/core/internal/vecmath"

// InPlaceFFT runs a forward FFT of samples, building and discarding a
// temporary Cache if cache is nil. Reuse a Cache across calls whenever
// possible; constructing one is the expensive part.
func InPlaceFFT(samples []vecmath.Complex, cache *Cache) error {
	if cache == nil {
		var err error
		cache, err = NewCache(len(samples))
		if err != nil {
			return err
		}
	}
	return FFT(samples, cache)
}

// InPlaceIFFT runs an inverse FFT of samples, building and discarding
// a temporary Cache if cache is nil.
func InPlaceIFFT(samples []vecmath.Complex, cache *Cache) error {
	if cache == nil {
		var err error
		cache, err = NewCache(len(samples))
		if err != nil {
			return err
		}
	}
	return IFFT(samples, cache)
}

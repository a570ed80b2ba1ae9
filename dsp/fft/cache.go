// Package fft implements a radix-2 Cooley-Tukey FFT with a
// precomputed twiddle-factor and scratch cache, sized for a single
// fixed power-of-two transform length.
package fft

import (
	"errors"
	"fmt"
	"math"

	"github.com/cavernize/core/internal/vecmath"
)

var (
	// ErrSizeTooSmall is returned when a cache or transform is
	// requested for a length below 2.
	ErrSizeTooSmall = errors.New("fft: size must be at least 2")
	// ErrNotPowerOfTwo is returned when a cache or transform length
	// is not a power of two.
	ErrNotPowerOfTwo = errors.New("fft: size must be a power of two")
)

// Cache holds the twiddle-factor tables and per-recursion-depth
// scratch buffers for a fixed transform size N.
//
// A Cache is immutable after construction except for its scratch
// buffers, which are recursion-local working storage valid only for
// the duration of one FFT/IFFT call. Do not share a Cache across
// concurrently running transforms.
type Cache struct {
	n    int
	cos  []float64
	sin  []float64
	even [][]vecmath.Complex
	odd  [][]vecmath.Complex
}

// NewCache builds a Cache for transforms of length n. n must be a
// power of two and at least 2.
func NewCache(n int) (*Cache, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrSizeTooSmall, n)
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNotPowerOfTwo, n)
	}

	half := n / 2
	step := -2 * math.Pi / float64(n)
	cos := make([]float64, half)
	sin := make([]float64, half)
	for i := 0; i < half; i++ {
		rotation := float64(i) * step
		cos[i] = math.Cos(rotation)
		sin[i] = math.Sin(rotation)
	}

	depthCount := vecmath.CeilLog2(n)
	even := make([][]vecmath.Complex, depthCount)
	odd := make([][]vecmath.Complex, depthCount)
	for depth := 0; depth < depthCount; depth++ {
		even[depth] = make([]vecmath.Complex, 1<<depth)
		odd[depth] = make([]vecmath.Complex, 1<<depth)
	}

	return &Cache{n: n, cos: cos, sin: sin, even: even, odd: odd}, nil
}

// Size returns N/2, the number of physical (non-mirrored) spectrum
// bins for a transform built on this cache.
func (c *Cache) Size() int {
	return c.n / 2
}

// Len returns the transform length N this cache was built for.
func (c *Cache) Len() int {
	return c.n
}

package fft

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cavernize/core/internal/vecmath"
	"github.com/stretchr/testify/require"
)

func randomComplex(n int, seed int64) []vecmath.Complex {
	rng := rand.New(rand.NewSource(seed))
	out := make([]vecmath.Complex, n)
	for i := range out {
		out[i] = vecmath.Complex{Re: rng.Float64()*2 - 1, Im: rng.Float64()*2 - 1}
	}
	return out
}

func maxAbsComplex(x []vecmath.Complex) float64 {
	max := 0.0
	for _, c := range x {
		if m := c.Magnitude(); m > max {
			max = m
		}
	}
	return max
}

func TestRoundTrip(t *testing.T) {
	for n := 2; n <= 4096; n *= 2 {
		cache, err := NewCache(n)
		require.NoError(t, err)

		x := randomComplex(n, int64(n))
		y := make([]vecmath.Complex, n)
		copy(y, x)

		require.NoError(t, FFT(y, cache))
		require.NoError(t, IFFT(y, cache))

		tol := 1e-4 * maxAbsComplex(x)
		for i := range x {
			require.InDelta(t, x[i].Re, y[i].Re, tol+1e-9)
			require.InDelta(t, x[i].Im, y[i].Im, tol+1e-9)
		}
	}
}

func TestLinearity(t *testing.T) {
	const n = 64
	cache, err := NewCache(n)
	require.NoError(t, err)

	x := randomComplex(n, 1)
	y := randomComplex(n, 2)
	a, b := 1.7, -0.3

	combined := make([]vecmath.Complex, n)
	for i := range combined {
		combined[i] = vecmath.Complex{Re: a*x[i].Re + b*y[i].Re, Im: a*x[i].Im + b*y[i].Im}
	}
	require.NoError(t, FFT(combined, cache))

	fx := make([]vecmath.Complex, n)
	fy := make([]vecmath.Complex, n)
	copy(fx, x)
	copy(fy, y)
	require.NoError(t, FFT(fx, cache))
	require.NoError(t, FFT(fy, cache))

	for i := range combined {
		wantRe := a*fx[i].Re + b*fy[i].Re
		wantIm := a*fx[i].Im + b*fy[i].Im
		require.InDelta(t, wantRe, combined[i].Re, 1e-4)
		require.InDelta(t, wantIm, combined[i].Im, 1e-4)
	}
}

func TestDeltaFFT(t *testing.T) {
	const n = 16
	cache, err := NewCache(n)
	require.NoError(t, err)

	x := make([]vecmath.Complex, n)
	x[0] = vecmath.Complex{Re: 1}
	require.NoError(t, FFT(x, cache))

	for i, c := range x {
		require.InDeltaf(t, 1, c.Magnitude(), 1e-9, "bin %d", i)
	}
}

func TestMagnitude1DMatchesFFT(t *testing.T) {
	const n = 64
	cache, err := NewCache(n)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	real := make([]float64, n)
	for i := range real {
		real[i] = rng.Float64()*2 - 1
	}

	complexInput := make([]vecmath.Complex, n)
	for i, v := range real {
		complexInput[i] = vecmath.Complex{Re: v}
	}
	require.NoError(t, FFT(complexInput, cache))

	magnitude := make([]float64, n)
	copy(magnitude, real)
	require.NoError(t, Magnitude1D(magnitude, cache))

	for k := 0; k < n; k++ {
		require.InDelta(t, complexInput[k].Magnitude(), magnitude[k], 1e-6)
	}
}

func TestCosineBin(t *testing.T) {
	const n = 1024
	cache, err := NewCache(n)
	require.NoError(t, err)

	samples := make([]vecmath.Complex, n)
	for i := range samples {
		samples[i].Re = math.Cos(2 * math.Pi * 64 * float64(i) / n)
	}
	require.NoError(t, FFT(samples, cache))

	for k, c := range samples {
		m := c.Magnitude()
		switch k {
		case 64, 960:
			require.InDelta(t, 512, m, 1e-3)
		default:
			require.Less(t, m, 1e-3)
		}
	}
}

func TestInvalidSize(t *testing.T) {
	_, err := NewCache(1)
	require.ErrorIs(t, err, ErrSizeTooSmall)
	_, err = NewCache(3)
	require.ErrorIs(t, err, ErrNotPowerOfTwo)
}

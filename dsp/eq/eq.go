// Package eq implements the brute-force peaking-EQ Q search used by
// the room-correction workflow: given a target error curve, find the
// (frequency, Q, gain) triple of a peaking filter that best reduces
// it.
package eq

import (
	"math"

	"github.com/cavernize/core/dsp/analyzer"
	"github.com/cavernize/core/dsp/biquad"
	"github.com/cavernize/core/dsp/core"
	"github.com/cavernize/core/dsp/graph"
	"github.com/cavernize/core/internal/vecmath"
)

// PeakingEQ is an immutable (center frequency, Q, gain) descriptor.
type PeakingEQ struct {
	Freq float64
	Q    float64
	Gain float64
}

// Options configures a brute-force search.
type Options struct {
	SampleRate    float64
	StartQ        float64
	GainPrecision float64
	MinGain       float64
	MaxGain       float64
	Iterations    int
}

// DefaultOptions returns the search parameters used by the original
// room-correction workflow.
func DefaultOptions(sampleRate float64) Options {
	return Options{
		SampleRate:    sampleRate,
		StartQ:        10,
		GainPrecision: 0.01,
		MinGain:       -100,
		MaxGain:       20,
		Iterations:    8,
	}
}

// BruteForceQ finds a Q that minimizes sum(|target[i] + response_i|)
// for a peaking filter at freq whose gain is the negation of g (g is
// read from the target error curve, in dB, and snapped to the gain
// grid). target is corrected in place to the resulting residual curve,
// and the returned descriptor carries that correcting gain.
func BruteForceQ(target []float64, opts Options, a *analyzer.Analyzer, freq, g float64) (PeakingEQ, error) {
	gain := -math.Round(core.Clamp(-g, -opts.MaxGain, -opts.MinGain)/opts.GainPrecision) * opts.GainPrecision

	q := opts.StartQ
	qStep := q / 2
	targetSum := vecmath.SumAbs(target)
	source := make([]float64, len(target))
	copy(source, target)

	candidate := make([]float64, len(target))
	for i := 0; i < opts.Iterations; i++ {
		for _, qTry := range [2]float64{q - qStep, q + qStep} {
			section, err := biquad.NewSection(opts.SampleRate, freq, qTry, -gain)
			if err != nil {
				continue
			}
			spectrum, err := a.Spectrum(section)
			if err != nil {
				return PeakingEQ{}, err
			}

			resampled := graph.ToLogGraph(spectrum, a.Resolution()/2, 20, opts.SampleRate/2, opts.SampleRate, len(target))
			graph.ToDecibels(resampled, graph.DefaultFloorDb)

			copy(candidate, source)
			for i := range candidate {
				candidate[i] += resampled[i]
			}

			if sum := vecmath.SumAbs(candidate); sum < targetSum {
				targetSum = sum
				copy(target, candidate)
				q = qTry
			}
		}
		qStep /= 2
	}

	return PeakingEQ{Freq: freq, Q: q, Gain: -gain}, nil
}

// BruteForceBand locates the largest |target[i]| within [iStart,iStop)
// and invokes BruteForceQ at the corresponding frequency, using
// target[maxAt] as the initial gain. Ties favor the first maximum.
func BruteForceBand(target []float64, opts Options, a *analyzer.Analyzer, iStart, iStop int) (PeakingEQ, error) {
	maxAt := iStart
	maxAbs := math.Abs(target[iStart])
	for i := iStart + 1; i < iStop; i++ {
		if abs := math.Abs(target[i]); abs > maxAbs {
			maxAbs = abs
			maxAt = i
		}
	}

	startPow := math.Log10(20)
	powRange := math.Log10(opts.SampleRate/2) - startPow
	freq := math.Pow(10, startPow+powRange*float64(maxAt)/float64(len(target)))

	return BruteForceQ(target, opts, a, freq, target[maxAt])
}

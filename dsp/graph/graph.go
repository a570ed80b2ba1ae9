// Package graph resamples a linear-frequency magnitude response onto
// a logarithmic frequency axis and converts it to decibels.
package graph

import (
	"math"

	"github.com/cavernize/core/dsp/core"
)

// DefaultFloorDb is the default decibel floor used by ToDecibels.
const DefaultFloorDb = -100

// ToLogGraph resamples response (of length respLen, which is half a
// complex spectrum — i.e. the physical bins of a Magnitude1D result)
// onto outLen logarithmically spaced samples spanning [fStart,fEnd] of
// a signal sampled at fs.
func ToLogGraph(response []float64, respLen int, fStart, fEnd, fs float64, outLen int) []float64 {
	out := make([]float64, outLen)
	if outLen == 0 {
		return out
	}
	if outLen == 1 {
		out[0] = sampleAt(response, respLen, fStart, fs)
		return out
	}

	step := math.Pow(fEnd/fStart, 1/float64(outLen-1))
	positioner := fStart * (2 * float64(respLen) / fs)
	for i := 0; i < outLen; i++ {
		idx := positioner * math.Pow(step, float64(i))
		out[i] = response[clampIndex(int(math.Round(idx)), len(response))]
	}
	return out
}

func sampleAt(response []float64, respLen int, fStart, fs float64) float64 {
	positioner := fStart * (2 * float64(respLen) / fs)
	return response[clampIndex(int(math.Round(positioner)), len(response))]
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}

// ToDecibels converts curve in place to decibels, flooring any value
// (including zero, whose log10 is -Inf) at floorDb.
func ToDecibels(curve []float64, floorDb float64) {
	for i, v := range curve {
		db := core.LinearToDB(v)
		if db < floorDb || math.IsInf(db, -1) {
			db = floorDb
		}
		curve[i] = db
	}
}

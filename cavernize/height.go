package cavernize

import (
	"math"

	"github.com/cavernize/core/dsp/core"
)

// envelope tracks one channel's running height estimate across
// update ticks: the last raw sample, a high-passed and low-passed
// envelope of it, and the smoothed height itself.
type envelope struct {
	lastNormal float64
	lastHigh   float64
	lastLow    float64
	height     float64
}

// smoothFactor derives the per-tick smoothing coefficient from the
// configured smoothness, the sample rate, and the number of sample
// frames in this tick.
func smoothFactor(cfg Config, blockSamples int) float64 {
	fs := cfg.SampleRate
	b := float64(blockSamples)
	return 1 - ((fs-b)*math.Pow(cfg.Smoothness/100, 0.1)+b)/fs*0.999
}

// update runs the height-estimation envelope follower over n strided
// samples of data starting at offset and advances the smoothed
// height. Operating on the interleaved buffer directly avoids a
// per-channel scratch copy on every tick.
func (e *envelope) update(data []float64, offset, stride, n int, cfg Config) {
	height, depth := 0.0, 0.0
	for i := 0; i < n; i++ {
		s := data[offset+i*stride]
		e.lastHigh = 0.9 * (e.lastHigh + s - e.lastNormal)
		if a := math.Abs(e.lastHigh); a > height {
			height = a
		}
		e.lastLow = 0.99*e.lastLow + 0.01*e.lastHigh
		if a := math.Abs(e.lastLow); a > depth {
			depth = a
		}
		e.lastNormal = s
	}

	heightRaw := core.Clamp(-(depth*1.2-height)*cfg.EffectScale, 0, 1)
	sf := smoothFactor(cfg, n)
	e.height = core.Clamp((heightRaw-e.height)*sf+e.height, 0, 1)
}

// updateFlat runs the same envelope follower over a contiguous
// (non-interleaved) slice, for the derived center/surround buses.
func (e *envelope) updateFlat(samples []float64, cfg Config) {
	e.update(samples, 0, 1, len(samples), cfg)
}

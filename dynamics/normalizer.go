// Package dynamics implements a look-ahead peak limiter with a
// linear-per-second release, used to tame the summed output of the
// upmix renderer.
package dynamics

// Normalizer attenuates peaks above full scale with immediate attack
// and a slow linear release.
type Normalizer struct {
	sampleRate   float64
	channelCount int
	gain         float64
}

// New builds a Normalizer at unity gain.
func New(sampleRate float64, channelCount int) *Normalizer {
	return &Normalizer{sampleRate: sampleRate, channelCount: channelCount, gain: 1}
}

// Gain returns the normalizer's current attenuation factor.
func (n *Normalizer) Gain() float64 {
	return n.gain
}

// Process scans samples for its peak absolute value, attacks
// immediately if the configured gain would push that peak above full
// scale, applies the (possibly reduced) gain to every sample, then
// releases the gain linearly toward 1.0 at one full recovery per
// second of audio.
func (n *Normalizer) Process(samples []float64) {
	peak := 0.0
	for _, s := range samples {
		if a := abs(s); a > peak {
			peak = a
		}
	}

	if peak*n.gain > 1 {
		n.gain = 0.9 / peak
	}
	for i := range samples {
		samples[i] *= n.gain
	}

	frames := len(samples) / n.channelCount
	n.gain += float64(frames) / n.sampleRate
	if n.gain > 1 {
		n.gain = 1
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

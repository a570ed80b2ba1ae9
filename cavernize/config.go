package cavernize

import "github.com/cavernize/core/dsp/core"

// Config holds the tunables of one upmixing session. It embeds the
// shared processor config for sample rate and block size and adds the
// Cavernize-specific knobs the command-line surface exposes.
type Config struct {
	core.ProcessorConfig

	// EffectScale scales the raw height estimate before smoothing.
	EffectScale float64
	// Smoothness controls how quickly the height estimate settles;
	// 0 settles instantly, 100 settles slowly.
	Smoothness float64
	// LFEVolume scales everything routed to a target LFE speaker.
	LFEVolume float64
	// LFESeparation, when false, additionally derives an LFE bus by
	// low-passing the downmixed source and mixing it into every
	// target LFE speaker.
	LFESeparation bool
	// CenterStays, when true, exempts a source channel at zero
	// elevation and zero azimuth from height estimation.
	CenterStays bool
	// MatrixUpmix enables deriving extra center/surround channels
	// from stereo, 3.0 or quadraphonic sources.
	MatrixUpmix bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults a CLI run without overrides
// would use.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		EffectScale:     1,
		Smoothness:      50,
		LFEVolume:       1,
		LFESeparation:   true,
		CenterStays:     true,
		MatrixUpmix:     true,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(c *Config) {
		if sampleRate > 0 {
			c.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) Option {
	return func(c *Config) {
		if blockSize > 0 {
			c.BlockSize = blockSize
		}
	}
}

// WithEffectScale sets the height-estimate scale factor.
func WithEffectScale(v float64) Option {
	return func(c *Config) { c.EffectScale = v }
}

// WithSmoothness sets the height-estimate smoothing knob, 0..100.
func WithSmoothness(v float64) Option {
	return func(c *Config) { c.Smoothness = v }
}

// WithLFEVolume sets the gain applied to everything routed to a
// target LFE speaker.
func WithLFEVolume(v float64) Option {
	return func(c *Config) { c.LFEVolume = v }
}

// WithLFESeparation enables or disables the derived LFE downmix bus.
func WithLFESeparation(v bool) Option {
	return func(c *Config) { c.LFESeparation = v }
}

// WithCenterStays enables or disables the center-channel height
// exemption.
func WithCenterStays(v bool) Option {
	return func(c *Config) { c.CenterStays = v }
}

// WithMatrixUpmix enables or disables the derived center/surround
// channels.
func WithMatrixUpmix(v bool) Option {
	return func(c *Config) { c.MatrixUpmix = v }
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Package engine wires the command line's parsed request into the
// cavernize, container/wave, and container/limitless packages and
// drives one batch upmix from an input file to an output file.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cavernize/core/cavernize"
	"github.com/cavernize/core/container/limitless"
	"github.com/cavernize/core/container/wave"
	"github.com/cavernize/core/spatial"
)

// ChannelOverride mirrors cavernize.ChannelOverride at the CLI
// boundary, decoupling the flag parser from the cavernize package.
type ChannelOverride struct {
	Index     int
	Elevation float64
	Azimuth   float64
	LFE       bool
}

// Request holds one run's fully-parsed configuration.
type Request struct {
	InputPath          string
	OutputBitDepth     int
	TargetLayout       string
	SourceChannelCount int
	ChannelOverrides   []ChannelOverride
	CenterStays        bool
	EffectScalePct     float64
	LFESeparation      bool
	LFEVolumePct       float64
	MatrixUpmix        bool
	Smoothness         float64
	OutputPath         string
}

// ErrUnknownTargetLayout is returned for a -cav value outside the
// documented enum.
var ErrUnknownTargetLayout = errors.New("engine: unknown target layout")

// ErrUnknownContainer is returned when neither the input nor the
// output path ends in a recognized container extension.
var ErrUnknownContainer = errors.New("engine: unrecognized container extension")

// Reporter receives progress notifications as a run proceeds.
type Reporter interface {
	Started(inputPath, outputPath string, sourceChannels, targetChannels int, totalFrames int64)
	Progress(framesDone, totalFrames int64)
	Finished(framesDone int64)
}

// Run performs one batch upmix: it opens req.InputPath, resolves a
// target layout, upmixes every frame through a cavernize.Upmixer, and
// writes req.OutputPath in the container format its extension names.
func Run(req Request, report Reporter) error {
	in, err := os.Open(req.InputPath)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer in.Close()

	source, err := openSource(in, req.InputPath)
	if err != nil {
		return err
	}

	sourceChannels := req.SourceChannelCount
	if sourceChannels == 0 {
		sourceChannels = source.ChannelCount()
	}

	layout, passthrough, err := resolveTarget(req.TargetLayout, sourceChannels)
	if err != nil {
		return err
	}

	out, err := os.Create(req.OutputPath)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer out.Close()

	if passthrough {
		return copyThrough(source, out, req)
	}

	baseSource, err := cavernize.SourceLayout(sourceChannels)
	if err != nil {
		return err
	}
	baseSource = cavernize.ApplyOverrides(baseSource, convertOverrides(req.ChannelOverrides))

	upmixer := cavernize.NewUpmixerFromSource(layout, baseSource,
		cavernize.WithSampleRate(source.SampleRate()),
		cavernize.WithEffectScale(req.EffectScalePct/100),
		cavernize.WithSmoothness(req.Smoothness),
		cavernize.WithLFEVolume(req.LFEVolumePct/100),
		cavernize.WithLFESeparation(req.LFESeparation),
		cavernize.WithCenterStays(req.CenterStays),
		cavernize.WithMatrixUpmix(req.MatrixUpmix),
	)

	sink, err := createSink(out, req.OutputPath, int(source.SampleRate()), req.OutputBitDepth, layout)
	if err != nil {
		return err
	}

	return drive(source, upmixer, sink, sourceChannels, len(layout.Channels), report, req.InputPath, req.OutputPath)
}

// sourceStream abstracts over wave.Reader and limitless.Reader far
// enough to drive the upmix loop uniformly.
type sourceStream interface {
	SampleRate() float64
	ChannelCount() int
	ReadFrames(dst []float64) (int, error)
}

// sinkStream abstracts over wave.Writer and limitless.Writer.
type sinkStream interface {
	WriteFrames(samples []float64) error
	Close() error
}

func openSource(f *os.File, path string) (sourceStream, error) {
	switch containerOf(path) {
	case containerWave:
		r, err := wave.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		return waveSource{r}, nil
	case containerLimitless:
		r, err := limitless.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		return &limitlessSource{r: r}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContainer, path)
	}
}

func createSink(f *os.File, path string, sampleRate, bitDepth int, layout spatial.Layout) (sinkStream, error) {
	switch containerOf(path) {
	case containerWave:
		w, err := wave.NewWriter(f, sampleRate, bitDepth, len(layout.Channels))
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		return w, nil
	case containerLimitless:
		channels := make([]limitless.ChannelInfo, len(layout.Channels))
		for i, ch := range layout.Channels {
			channels[i] = limitless.ChannelInfo{X: float32(ch.Azimuth), Y: float32(ch.Elevation), LFE: ch.LFE}
		}
		w, err := limitless.NewWriter(f, qualityFor(bitDepth), channels, int32(sampleRate), 0)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		return &limitlessSink{w: w, channels: len(layout.Channels)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContainer, path)
	}
}

type waveSource struct{ r *wave.Reader }

func (s waveSource) SampleRate() float64                  { return s.r.SampleRate() }
func (s waveSource) ChannelCount() int                    { return s.r.ChannelCount() }
func (s waveSource) ReadFrames(dst []float64) (int, error) { return s.r.ReadFrames(dst) }

// limitlessSource adapts limitless.Reader's one-second block API to
// the frame-oriented sourceStream interface, buffering a block at a
// time.
type limitlessSource struct {
	r      *limitless.Reader
	block  []float64
	frames int
	pos    int
}

func (s *limitlessSource) SampleRate() float64 { return float64(s.r.Header().SampleRate) }
func (s *limitlessSource) ChannelCount() int    { return len(s.r.Header().Channels) }

func (s *limitlessSource) ReadFrames(dst []float64) (int, error) {
	channels := s.ChannelCount()
	want := len(dst) / channels
	n := 0
	for n < want {
		if s.pos >= s.frames {
			if err := s.fill(); err != nil {
				if err == io.EOF {
					break
				}
				return n, err
			}
		}
		avail := s.frames - s.pos
		take := want - n
		if take > avail {
			take = avail
		}
		copy(dst[n*channels:(n+take)*channels], s.block[s.pos*channels:(s.pos+take)*channels])
		s.pos += take
		n += take
	}
	return n, nil
}

func (s *limitlessSource) fill() error {
	channels := s.ChannelCount()
	if s.block == nil {
		s.block = make([]float64, int(s.r.Header().SampleRate)*channels)
	}
	n, err := s.r.ReadBlock(s.block)
	if err != nil {
		return err
	}
	s.frames = n
	s.pos = 0
	return nil
}

type limitlessSink struct {
	w        *limitless.Writer
	channels int
}

func (s *limitlessSink) WriteFrames(samples []float64) error {
	for i := 0; i+s.channels <= len(samples); i += s.channels {
		if err := s.w.WriteFrame(samples[i : i+s.channels]); err != nil {
			return err
		}
	}
	return nil
}

func (s *limitlessSink) Close() error { return s.w.Close() }

func qualityFor(bitDepth int) limitless.Quality {
	switch bitDepth {
	case 8:
		return limitless.QualityInt8
	case 16:
		return limitless.QualityInt16
	default:
		return limitless.QualityFloat32
	}
}

type container int

const (
	containerUnknown container = iota
	containerWave
	containerLimitless
)

func containerOf(path string) container {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return containerWave
	case ".laf", ".limitless":
		return containerLimitless
	default:
		return containerUnknown
	}
}

// resolveTarget turns the -cav flag's value into a speaker layout.
// "0" means passthrough: the output container is rewritten at the
// requested bit depth but otherwise left unmixed. "1" means auto:
// the layout is chosen from the source channel count, matching the
// closest preset able to carry every source channel plus height.
func resolveTarget(value string, sourceChannels int) (spatial.Layout, bool, error) {
	switch value {
	case "", "0":
		return spatial.Layout{}, true, nil
	case "1":
		return spatial.Preset(autoTarget(sourceChannels)), false, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return spatial.Layout{}, false, fmt.Errorf("%w: %s", ErrUnknownTargetLayout, value)
	}
	switch n {
	case 301:
		return spatial.Preset(spatial.Target301), false, nil
	case 312:
		return spatial.Preset(spatial.Target312), false, nil
	case 402:
		return spatial.Preset(spatial.Target402), false, nil
	case 404:
		return spatial.Preset(spatial.Target404), false, nil
	case 512:
		return spatial.Preset(spatial.Target512), false, nil
	default:
		return spatial.Layout{}, false, fmt.Errorf("%w: %s", ErrUnknownTargetLayout, value)
	}
}

func autoTarget(sourceChannels int) spatial.Target {
	switch {
	case sourceChannels <= 2:
		return spatial.Target402
	case sourceChannels <= 4:
		return spatial.Target404
	default:
		return spatial.Target512
	}
}

func convertOverrides(in []ChannelOverride) []cavernize.ChannelOverride {
	out := make([]cavernize.ChannelOverride, len(in))
	for i, o := range in {
		out[i] = cavernize.ChannelOverride{Index: o.Index, Elevation: o.Elevation, Azimuth: o.Azimuth, LFE: o.LFE}
	}
	return out
}

// copyThrough rewrites source into a new output container at the
// requested bit depth, without upmixing.
func copyThrough(source sourceStream, out *os.File, req Request) error {
	channels := source.ChannelCount()
	layout := spatial.Layout{}
	for i := 0; i < channels; i++ {
		layout.Channels = append(layout.Channels, spatial.Channel{})
	}
	sink, err := createSink(out, req.OutputPath, int(source.SampleRate()), req.OutputBitDepth, layout)
	if err != nil {
		return err
	}

	buf := make([]float64, channels*4096)
	for {
		n, err := source.ReadFrames(buf)
		if n > 0 {
			if werr := sink.WriteFrames(buf[:n*channels]); werr != nil {
				return fmt.Errorf("engine: %w", werr)
			}
		}
		if err != nil {
			if err == io.EOF || n == 0 {
				break
			}
			return fmt.Errorf("engine: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return sink.Close()
}

// drive reads the whole input in fixed-size blocks, upmixes each
// through upmixer, and writes it to sink.
func drive(source sourceStream, upmixer *cavernize.Upmixer, sink sinkStream, sourceChannels, targetChannels int, report Reporter, inputPath, outputPath string) error {
	const blockFrames = 4096
	srcBuf := make([]float64, blockFrames*sourceChannels)
	dstBuf := make([]float64, blockFrames*targetChannels)

	if report != nil {
		report.Started(inputPath, outputPath, sourceChannels, targetChannels, -1)
	}

	var done int64
	for {
		n, err := source.ReadFrames(srcBuf)
		if n > 0 {
			if uerr := upmixer.Process(srcBuf[:n*sourceChannels], dstBuf[:n*targetChannels]); uerr != nil {
				return fmt.Errorf("engine: %w", uerr)
			}
			if werr := sink.WriteFrames(dstBuf[:n*targetChannels]); werr != nil {
				return fmt.Errorf("engine: %w", werr)
			}
			done += int64(n)
			if report != nil {
				report.Progress(done, -1)
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("engine: %w", err)
		}
		if n == 0 {
			break
		}
	}

	if report != nil {
		report.Finished(done)
	}
	return sink.Close()
}

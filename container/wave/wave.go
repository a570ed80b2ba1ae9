// Package wave reads and writes canonical RIFF/WAVE files at 8-bit
// unsigned, 16-bit signed, or 32-bit IEEE-float PCM, converting to and
// from normalized float64 samples in [-1,1].
package wave

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedBitDepth is returned for any bit depth outside
// {8, 16, 32}.
var ErrUnsupportedBitDepth = errors.New("wave: unsupported bit depth")

// ErrInvalidFile is returned when the input is not a valid WAVE file.
var ErrInvalidFile = errors.New("wave: invalid WAVE file")

// Reader decodes a WAVE file into normalized float64 samples.
type Reader struct {
	dec      *wav.Decoder
	format   *audio.Format
	bitDepth int
}

// NewReader validates and opens r as a WAVE stream. The chunk search
// inside the decoder skips any chunks between fmt and data.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	format := dec.Format()
	bitDepth := int(dec.BitDepth)
	if err := checkBitDepth(bitDepth); err != nil {
		return nil, err
	}

	return &Reader{dec: dec, format: format, bitDepth: bitDepth}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (r *Reader) SampleRate() float64 {
	return float64(r.format.SampleRate)
}

// ChannelCount returns the file's interleaved channel count.
func (r *Reader) ChannelCount() int {
	return r.format.NumChannels
}

// BitDepth returns the file's sample bit depth.
func (r *Reader) BitDepth() int {
	return r.bitDepth
}

// ReadFrames fills dst, whose length must be a multiple of
// ChannelCount(), with interleaved normalized samples, returning the
// number of frames actually read.
func (r *Reader) ReadFrames(dst []float64) (int, error) {
	channels := r.ChannelCount()
	if channels == 0 || len(dst)%channels != 0 {
		return 0, fmt.Errorf("wave: destination length %d is not a multiple of %d channels", len(dst), channels)
	}

	buf := &audio.IntBuffer{
		Format:         r.format,
		Data:           make([]int, len(dst)),
		SourceBitDepth: r.bitDepth,
	}
	n, err := r.dec.PCMBuffer(buf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("wave: read: %w", err)
	}

	for i := 0; i < n; i++ {
		dst[i] = decodeSample(buf.Data[i], r.bitDepth)
	}
	return n / channels, nil
}

func decodeSample(v, bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return float64(v)/127 - 1
	case 16:
		return float64(v) / 32767
	case 32:
		return float64(math.Float32frombits(uint32(int32(v))))
	default:
		return 0
	}
}

// Writer encodes normalized float64 samples into a WAVE file.
type Writer struct {
	enc      *wav.Encoder
	bitDepth int
	channels int
	buf      *audio.IntBuffer
}

// NewWriter opens a WAVE stream for writing at the given sample rate,
// bit depth ({8, 16, 32}), and channel count. A bit depth of 32
// produces an IEEE-float fmt chunk; 8 and 16 produce integer PCM.
func NewWriter(w io.WriteSeeker, sampleRate, bitDepth, channels int) (*Writer, error) {
	if err := checkBitDepth(bitDepth); err != nil {
		return nil, err
	}

	audioFormat := 1 // WAVE_FORMAT_PCM
	if bitDepth == 32 {
		audioFormat = 3 // WAVE_FORMAT_IEEE_FLOAT
	}
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, audioFormat)

	return &Writer{
		enc:      enc,
		bitDepth: bitDepth,
		channels: channels,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteFrames encodes interleaved normalized samples, whose length
// must be a multiple of the writer's channel count.
func (w *Writer) WriteFrames(samples []float64) error {
	if w.channels == 0 || len(samples)%w.channels != 0 {
		return fmt.Errorf("wave: sample count %d is not a multiple of %d channels", len(samples), w.channels)
	}

	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = encodeSample(s, w.bitDepth)
	}
	w.buf.Data = ints

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wave: write: %w", err)
	}
	return nil
}

// Close flushes the encoder and patches the RIFF/data chunk sizes.
func (w *Writer) Close() error {
	return w.enc.Close()
}

func encodeSample(s float64, bitDepth int) int {
	switch bitDepth {
	case 8:
		return int(math.Floor((s + 1) * 127))
	case 16:
		return int(s * 32767)
	case 32:
		return int(int32(math.Float32bits(float32(s))))
	default:
		return 0
	}
}

func checkBitDepth(bitDepth int) error {
	switch bitDepth {
	case 8, 16, 32:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}

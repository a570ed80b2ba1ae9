// Package limitless reads and writes the "LAF" container: a custom
// little-endian binary format that stores a per-channel spatial
// layout alongside interleaved audio, block-sparse per second so a
// channel silent for an entire second is omitted from the stream.
package limitless

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var magic = [9]byte{'L', 'I', 'M', 'I', 'T', 'L', 'E', 'S', 'S'}
var head = [4]byte{'H', 'E', 'A', 'D'}

// Quality selects the on-disk sample width.
type Quality byte

const (
	QualityInt8    Quality = 0
	QualityInt16   Quality = 1
	QualityFloat32 Quality = 2
)

// ErrBadMagic is returned when the input does not start with the
// expected "LIMITLESSHEAD" signature.
var ErrBadMagic = errors.New("limitless: bad file signature")

// ErrUnsupportedQuality is returned for a quality byte outside the
// three defined values.
var ErrUnsupportedQuality = errors.New("limitless: unsupported quality")

// ChannelInfo is one channel's spatial placement and LFE flag, as
// stored in the file header.
type ChannelInfo struct {
	X, Y float32
	LFE  bool
}

// Header is the fixed-size file preamble: quality, channel layout,
// sample rate, and total sample count.
type Header struct {
	Quality      Quality
	Channels     []ChannelInfo
	SampleRate   int32
	TotalSamples int64
}

// Writer serializes a Header followed by one-second blocks of
// interleaved samples, each preceded by a per-channel write bitmask.
// A channel is "written" in a block iff at least one sample in that
// block is non-zero.
type Writer struct {
	w          *bufio.Writer
	header     Header
	blockLen   int // samples per channel per block (one second)
	flushed    int64
	pending    [][]float64 // per-channel sample queue for the current second
	pendingLen int
}

// NewWriter writes header immediately and returns a Writer ready to
// accept Write calls. sampleRate is samples per second per channel;
// one block is exactly sampleRate samples long. totalSamples is the
// total sample count across all channels, known up front since this
// container is produced by a batch, not streaming, writer.
func NewWriter(w io.Writer, quality Quality, channels []ChannelInfo, sampleRate int32, totalSamples int64) (*Writer, error) {
	if err := checkQuality(quality); err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, quality, channels, sampleRate, totalSamples); err != nil {
		return nil, err
	}

	pending := make([][]float64, len(channels))
	for c := range pending {
		pending[c] = make([]float64, 0, sampleRate)
	}

	return &Writer{
		w:        bw,
		header:   Header{Quality: quality, Channels: channels, SampleRate: sampleRate},
		blockLen: int(sampleRate),
		pending:  pending,
	}, nil
}

func writeHeader(w io.Writer, quality Quality, channels []ChannelInfo, sampleRate int32, totalSamples int64) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byte(quality)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byte(0)); err != nil { // channel mode, reserved
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(channels))); err != nil {
		return err
	}
	for _, c := range channels {
		if err := binary.Write(w, binary.LittleEndian, c.X); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, c.Y); err != nil {
			return err
		}
		lfe := byte(0)
		if c.LFE {
			lfe = 1
		}
		if err := binary.Write(w, binary.LittleEndian, lfe); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, sampleRate); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, totalSamples)
}

// WriteFrame appends one sample frame (one sample per channel, in
// channel order) to the writer's current one-second block, flushing
// a full block automatically.
func (w *Writer) WriteFrame(frame []float64) error {
	if len(frame) != len(w.pending) {
		return fmt.Errorf("limitless: frame has %d samples, want %d", len(frame), len(w.pending))
	}
	for c, s := range frame {
		w.pending[c] = append(w.pending[c], s)
	}
	w.pendingLen++
	w.flushed++

	if w.pendingLen == w.blockLen {
		return w.flushBlock()
	}
	return nil
}

// Close flushes any partial final block and the underlying writer.
func (w *Writer) Close() error {
	if w.pendingLen > 0 {
		if err := w.flushBlock(); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// flushBlock writes the current block's layout mask followed by the
// written channels' samples. A final, shorter-than-a-second block is
// zero-padded up to blockLen so every block on the wire has a fixed
// per-channel sample count; Header.TotalSamples tells a reader where
// the real data ends.
func (w *Writer) flushBlock() error {
	channels := len(w.pending)
	layoutBytes := (channels + 7) / 8
	mask := make([]byte, layoutBytes)

	written := make([]bool, channels)
	for c, samples := range w.pending {
		for _, s := range samples {
			if s != 0 {
				written[c] = true
				break
			}
		}
		if written[c] {
			mask[c/8] |= 1 << (uint(c) % 8)
		}
		for len(w.pending[c]) < w.blockLen {
			w.pending[c] = append(w.pending[c], 0)
		}
	}

	if _, err := w.w.Write(mask); err != nil {
		return err
	}
	for c := 0; c < channels; c++ {
		if !written[c] {
			continue
		}
		for _, s := range w.pending[c] {
			if err := encodeSample(w.w, s, w.header.Quality); err != nil {
				return err
			}
		}
	}

	for c := range w.pending {
		w.pending[c] = w.pending[c][:0]
	}
	w.pendingLen = 0
	return nil
}

func encodeSample(w io.Writer, s float64, q Quality) error {
	switch q {
	case QualityInt8:
		return binary.Write(w, binary.LittleEndian, int8(clampInt(s*127, -128, 127)))
	case QualityInt16:
		return binary.Write(w, binary.LittleEndian, int16(clampInt(s*32767, -32768, 32767)))
	case QualityFloat32:
		return binary.Write(w, binary.LittleEndian, float32(s))
	default:
		return ErrUnsupportedQuality
	}
}

func clampInt(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Reader deserializes a LAF stream, yielding one second's worth of
// interleaved channel samples at a time.
type Reader struct {
	r      io.Reader
	header Header
}

// NewReader reads and validates the Header, returning a Reader
// positioned at the first block.
func NewReader(r io.Reader) (*Reader, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, header: header}, nil
}

// Header returns the stream's parsed header.
func (r *Reader) Header() Header {
	return r.header
}

func readHeader(r io.Reader) (Header, error) {
	var gotMagic [9]byte
	var gotHead [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return Header{}, fmt.Errorf("limitless: %w", err)
	}
	if _, err := io.ReadFull(r, gotHead[:]); err != nil {
		return Header{}, fmt.Errorf("limitless: %w", err)
	}
	if gotMagic != magic || gotHead != head {
		return Header{}, ErrBadMagic
	}

	var quality, channelMode byte
	if err := binary.Read(r, binary.LittleEndian, &quality); err != nil {
		return Header{}, err
	}
	if err := checkQuality(Quality(quality)); err != nil {
		return Header{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &channelMode); err != nil {
		return Header{}, err
	}

	var channelCount int32
	if err := binary.Read(r, binary.LittleEndian, &channelCount); err != nil {
		return Header{}, err
	}

	channels := make([]ChannelInfo, channelCount)
	for i := range channels {
		if err := binary.Read(r, binary.LittleEndian, &channels[i].X); err != nil {
			return Header{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &channels[i].Y); err != nil {
			return Header{}, err
		}
		var lfe byte
		if err := binary.Read(r, binary.LittleEndian, &lfe); err != nil {
			return Header{}, err
		}
		channels[i].LFE = lfe != 0
	}

	var sampleRate int32
	if err := binary.Read(r, binary.LittleEndian, &sampleRate); err != nil {
		return Header{}, err
	}
	var totalSamples int64
	if err := binary.Read(r, binary.LittleEndian, &totalSamples); err != nil {
		return Header{}, err
	}

	return Header{
		Quality:      Quality(quality),
		Channels:     channels,
		SampleRate:   sampleRate,
		TotalSamples: totalSamples,
	}, nil
}

// ReadBlock reads one second's worth of frames (always sampleRate
// frames, including the zero padding of a final short block) into
// dst, which must be sized sampleRate*channelCount. It returns the
// number of frames filled, or io.EOF once no block remains;
// Header.TotalSamples marks where the real data ends.
func (r *Reader) ReadBlock(dst []float64) (int, error) {
	channels := len(r.header.Channels)
	layoutBytes := (channels + 7) / 8
	mask := make([]byte, layoutBytes)
	if _, err := io.ReadFull(r.r, mask); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("limitless: %w", err)
	}

	written := make([]bool, channels)
	for c := range written {
		written[c] = mask[c/8]&(1<<(uint(c)%8)) != 0
	}

	frames := int(r.header.SampleRate)
	if len(dst) < frames*channels {
		return 0, fmt.Errorf("limitless: destination too small: have %d, need %d", len(dst), frames*channels)
	}
	for i := 0; i < frames*channels; i++ {
		dst[i] = 0
	}

	for c := 0; c < channels; c++ {
		if !written[c] {
			continue
		}
		for i := 0; i < frames; i++ {
			s, err := decodeSample(r.r, r.header.Quality)
			if err != nil {
				return 0, fmt.Errorf("limitless: %w", err)
			}
			dst[i*channels+c] = s
		}
	}
	return frames, nil
}

func decodeSample(r io.Reader, q Quality) (float64, error) {
	switch q {
	case QualityInt8:
		var v int8
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return float64(v) / 127, nil
	case QualityInt16:
		var v int16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return float64(v) / 32767, nil
	case QualityFloat32:
		var v float32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return float64(v), nil
	default:
		return 0, ErrUnsupportedQuality
	}
}

func checkQuality(q Quality) error {
	switch q {
	case QualityInt8, QualityInt16, QualityFloat32:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedQuality, q)
	}
}

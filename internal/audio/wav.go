package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format tags accepted by the decoder.
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Decoder loads a track into memory.
type Decoder interface {
	Decode(ctx context.Context, path string) (PCM, error)
}

// Compile-time interface implementation check.
var _ Decoder = (*WAVDecoder)(nil)

// WAVDecoder decodes uncompressed integer PCM WAV files.
// 8, 16, 24 and 32-bit samples are converted to 16-bit.
type WAVDecoder struct {
	opener fileOpener
}

// WAVDecoderOption configures a WAVDecoder.
type WAVDecoderOption func(*WAVDecoder)

// WithFileOpener sets the file opener (for testing).
func WithFileOpener(o fileOpener) WAVDecoderOption {
	return func(d *WAVDecoder) { d.opener = o }
}

// NewWAVDecoder creates a WAVDecoder with the given options.
func NewWAVDecoder(opts ...WAVDecoderOption) *WAVDecoder {
	d := &WAVDecoder{opener: osFileOpener{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads the whole file at path.
func (d *WAVDecoder) Decode(ctx context.Context, path string) (PCM, error) {
	if err := ctx.Err(); err != nil {
		return PCM{}, err
	}

	f, err := d.opener.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PCM{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return PCM{}, fmt.Errorf("%w: open %s: %v", ErrDecode, path, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return PCM{}, fmt.Errorf("%s is not a valid WAV file: %w", path, ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return PCM{}, fmt.Errorf("%s uses WAV format tag %d, only integer PCM is supported: %w",
			path, dec.WavAudioFormat, ErrUnsupportedFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	samples, err := toInt16(buf, int(dec.BitDepth))
	if err != nil {
		return PCM{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(samples) == 0 {
		return PCM{}, fmt.Errorf("%w: %s", ErrEmptyAudio, path)
	}

	channels := int(dec.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels < 1 || dec.SampleRate == 0 {
		return PCM{}, fmt.Errorf("%s declares %d channels at %d Hz: %w",
			path, channels, dec.SampleRate, ErrUnsupportedFormat)
	}

	return PCM{
		Path:       path,
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		Samples:    samples[:len(samples)-len(samples)%channels],
	}, nil
}

// toInt16 narrows or widens integer samples to 16 bits.
// 8-bit WAV samples are unsigned and centered on 128.
func toInt16(buf *goaudio.IntBuffer, bitDepth int) ([]int16, error) {
	out := make([]int16, len(buf.Data))
	switch bitDepth {
	case 8:
		for i, v := range buf.Data {
			out[i] = int16((v - 128) << 8)
		}
	case 16:
		for i, v := range buf.Data {
			out[i] = int16(v)
		}
	case 24:
		for i, v := range buf.Data {
			out[i] = int16(v >> 8)
		}
	case 32:
		for i, v := range buf.Data {
			out[i] = int16(v >> 16)
		}
	default:
		return nil, fmt.Errorf("%d-bit samples: %w", bitDepth, ErrUnsupportedFormat)
	}
	return out, nil
}

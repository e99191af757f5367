package fingerprint

import (
	"context"
	"fmt"

	"github.com/alnah/go-reprise/internal/audio"
)

// Meta describes the timing of a fingerprint sequence.
// Delay and ItemDuration are counted in fingerprinter-internal samples;
// SampleRate converts them to seconds.
type Meta struct {
	Delay        int
	ItemDuration int
	SampleRate   int
}

// DelayItems returns the decode delay expressed in fingerprint items.
func (m Meta) DelayItems() int {
	if m.ItemDuration <= 0 {
		return 0
	}
	return m.Delay / m.ItemDuration
}

// ItemsPerSecond returns how many items cover one second of audio, rounded down.
func (m Meta) ItemsPerSecond() int {
	if m.ItemDuration <= 0 {
		return 0
	}
	return m.SampleRate / m.ItemDuration
}

// Seconds converts an item count to seconds.
func (m Meta) Seconds(items int) float64 {
	if m.SampleRate <= 0 {
		return 0
	}
	return float64(items) * float64(m.ItemDuration) / float64(m.SampleRate)
}

// Items converts a duration in seconds to a whole number of items, rounded down.
func (m Meta) Items(seconds float64) int {
	if m.ItemDuration <= 0 {
		return 0
	}
	return int(seconds * float64(m.SampleRate) / float64(m.ItemDuration))
}

// Validate reports whether the metadata can be used for time conversion.
func (m Meta) Validate() error {
	if m.ItemDuration <= 0 || m.SampleRate <= 0 || m.Delay < 0 {
		return fmt.Errorf("%w: delay=%d item_duration=%d sample_rate=%d",
			ErrInvalidMeta, m.Delay, m.ItemDuration, m.SampleRate)
	}
	return nil
}

func (m Meta) String() string {
	return fmt.Sprintf("delay=%d item_duration=%d rate=%d", m.Delay, m.ItemDuration, m.SampleRate)
}

// Sequence is the fingerprint of one (possibly trimmed) track.
type Sequence struct {
	Symbols []uint32
	Meta    Meta

	// Audio properties of the track the sequence was computed from.
	SampleRate    int
	Channels      int
	LengthSeconds float64
}

// Len returns the number of fingerprint items.
func (s Sequence) Len() int {
	return len(s.Symbols)
}

// Fingerprinter computes the fingerprint of a PCM buffer.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, pcm audio.PCM) (Sequence, error)
}

// FingerprinterFunc adapts a function to the Fingerprinter interface.
type FingerprinterFunc func(ctx context.Context, pcm audio.PCM) (Sequence, error)

// Fingerprint calls f.
func (f FingerprinterFunc) Fingerprint(ctx context.Context, pcm audio.PCM) (Sequence, error) {
	return f(ctx, pcm)
}

package audio

import (
	"fmt"
	"time"
)

// DefaultMaxShift bounds how much leading or trailing audio may be treated as
// a raw-sample match. Longer runs usually mean silence or a degenerate input,
// and fingerprint matching handles them better.
const DefaultMaxShift = 16 * time.Second

// Shift is the number of leading and trailing frames two tracks share exactly.
type Shift struct {
	LeadFrames  int
	TrailFrames int
}

// LeadSeconds returns the shared leading region in seconds.
func (s Shift) LeadSeconds(sampleRate int) float64 {
	return framesToSeconds(s.LeadFrames, sampleRate)
}

// TrailSeconds returns the shared trailing region in seconds.
func (s Shift) TrailSeconds(sampleRate int) float64 {
	return framesToSeconds(s.TrailFrames, sampleRate)
}

// IsZero reports whether no shared lead or trail was found.
func (s Shift) IsZero() bool {
	return s.LeadFrames == 0 && s.TrailFrames == 0
}

// CommonShift finds the longest bit-identical prefix and suffix of two tracks.
// Interleaved samples are compared one by one and the counts are rounded down
// to whole frames. A count longer than maxShift is reset to zero; maxShift <= 0
// disables the bound. The prefix and suffix never overlap.
//
// Neither track is modified.
func CommonShift(a, b PCM, maxShift time.Duration) (Shift, error) {
	if a.Channels != b.Channels {
		return Shift{}, fmt.Errorf("%d vs %d: %w", a.Channels, b.Channels, ErrChannelMismatch)
	}
	if a.SampleRate != b.SampleRate {
		return Shift{}, fmt.Errorf("%d Hz vs %d Hz: %w", a.SampleRate, b.SampleRate, ErrSampleRateMismatch)
	}
	if a.Channels <= 0 {
		return Shift{}, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, a.Channels)
	}

	sa, sb := a.Samples, b.Samples
	n := min(len(sa), len(sb))

	prefix := 0
	for prefix < n && sa[prefix] == sb[prefix] {
		prefix++
	}
	if prefix == n && len(sa) == len(sb) {
		return Shift{}, fmt.Errorf("%s and %s: %w", a.Path, b.Path, ErrIdenticalTracks)
	}

	suffix := 0
	for suffix < n && sa[len(sa)-1-suffix] == sb[len(sb)-1-suffix] {
		suffix++
	}

	minFrames := min(a.Frames(), b.Frames())
	lead := min(prefix/a.Channels, minFrames)
	trail := min(suffix/a.Channels, minFrames-lead)

	if maxShift > 0 {
		limit := int(maxShift.Seconds() * float64(a.SampleRate))
		if lead > limit {
			lead = 0
		}
		if trail > limit {
			trail = 0
		}
	}

	return Shift{LeadFrames: lead, TrailFrames: trail}, nil
}

func framesToSeconds(frames, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(frames) / float64(sampleRate)
}

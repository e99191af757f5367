package audio

import (
	"fmt"
	"time"
)

// PCM holds a decoded track as interleaved signed 16-bit samples.
type PCM struct {
	Path       string
	SampleRate int
	Channels   int
	Samples    []int16
}

// Frames returns the number of sample frames (one sample per channel).
func (p PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Seconds returns the track length in seconds.
func (p PCM) Seconds() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(p.Frames()) / float64(p.SampleRate)
}

// Duration returns the track length as a time.Duration.
func (p PCM) Duration() time.Duration {
	return time.Duration(p.Seconds() * float64(time.Second))
}

// Bytes returns the size of the sample data in bytes.
func (p PCM) Bytes() int64 {
	return int64(len(p.Samples)) * 2
}

// Trim returns the frames left after dropping lead frames from the start and
// trail frames from the end. The result shares storage with p.
// Out of range counts are clamped; the result is never negative in length.
func (p PCM) Trim(lead, trail int) PCM {
	frames := p.Frames()
	lead = clamp(lead, 0, frames)
	trail = clamp(trail, 0, frames-lead)

	out := p
	out.Samples = p.Samples[lead*p.Channels : (frames-trail)*p.Channels]
	return out
}

// String returns a short description for logging.
func (p PCM) String() string {
	return fmt.Sprintf("%s (%d Hz, %d ch, %.2fs)", p.Path, p.SampleRate, p.Channels, p.Seconds())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package match

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/alnah/go-reprise/internal/fingerprint"
)

// TimeRange is a half-open interval in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

// Duration returns the length of the range in seconds.
func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%.3f to %.3f", r.Start, r.End)
}

// Span describes one track around its fingerprinted window: the shared lead
// and trail trimmed before fingerprinting and the full track length.
type Span struct {
	LeadSeconds   float64
	TrailSeconds  float64
	LengthSeconds float64
}

// MapTimes converts matches to shared time ranges in each track. The trimmed
// lead and trail count as shared. Match positions are relative to the
// trimmed audio, so the lead is added back. Ranges are clamped to the track.
func MapTimes(alpha Alphabet, matches []Match, meta fingerprint.Meta, a, b Span) (sharedA, sharedB []TimeRange) {
	if a.LeadSeconds > 0 {
		sharedA = append(sharedA, clampRange(TimeRange{0, a.LeadSeconds}, a.LengthSeconds))
	}
	if b.LeadSeconds > 0 {
		sharedB = append(sharedB, clampRange(TimeRange{0, b.LeadSeconds}, b.LengthSeconds))
	}

	for _, m := range matches {
		startB := m.StartB - alpha.OffsetB
		sharedA = append(sharedA, clampRange(TimeRange{
			Start: a.LeadSeconds + meta.Seconds(m.StartA),
			End:   a.LeadSeconds + meta.Seconds(m.EndA()),
		}, a.LengthSeconds))
		sharedB = append(sharedB, clampRange(TimeRange{
			Start: b.LeadSeconds + meta.Seconds(startB),
			End:   b.LeadSeconds + meta.Seconds(startB+m.Length),
		}, b.LengthSeconds))
	}

	if a.TrailSeconds > 0 {
		sharedA = append(sharedA, clampRange(TimeRange{a.LengthSeconds - a.TrailSeconds, a.LengthSeconds}, a.LengthSeconds))
	}
	if b.TrailSeconds > 0 {
		sharedB = append(sharedB, clampRange(TimeRange{b.LengthSeconds - b.TrailSeconds, b.LengthSeconds}, b.LengthSeconds))
	}
	return sharedA, sharedB
}

func clampRange(r TimeRange, length float64) TimeRange {
	r.Start = min(max(r.Start, 0), length)
	r.End = min(max(r.End, r.Start), length)
	return r
}

// Segment is one piece of a track timeline.
type Segment struct {
	TimeRange
	Shared bool
}

// Label returns "shared" or "unique".
func (s Segment) Label() string {
	if s.Shared {
		return "shared"
	}
	return "unique"
}

// Timeline covers [0, length] with alternating unique and shared segments.
// Shared ranges may arrive unsorted or overlapping; they are sorted and
// coalesced. Empty ranges are ignored. A zero length yields no segments.
func Timeline(shared []TimeRange, length float64) []Segment {
	if length <= 0 {
		return nil
	}

	rs := make([]TimeRange, 0, len(shared))
	for _, r := range shared {
		r = clampRange(r, length)
		if r.End > r.Start {
			rs = append(rs, r)
		}
	}
	slices.SortFunc(rs, func(a, b TimeRange) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	var out []Segment
	cursor := 0.0
	for _, r := range rs {
		if r.End <= cursor {
			continue
		}
		if r.Start > cursor {
			out = append(out, Segment{TimeRange: TimeRange{cursor, r.Start}})
		}
		start := max(r.Start, cursor)
		if last := len(out) - 1; last >= 0 && out[last].Shared {
			out[last].End = r.End
		} else {
			out = append(out, Segment{TimeRange: TimeRange{start, r.End}, Shared: true})
		}
		cursor = r.End
	}
	if cursor < length {
		out = append(out, Segment{TimeRange: TimeRange{cursor, length}})
	}
	return out
}

// Unique returns the ranges of the segments not shared with the other track.
func Unique(segments []Segment) []TimeRange {
	var out []TimeRange
	for _, s := range segments {
		if !s.Shared {
			out = append(out, s.TimeRange)
		}
	}
	return out
}

package pipeline

import (
	"errors"
	"fmt"
)

// ErrNotEnoughTracks indicates fewer than two tracks were given.
var ErrNotEnoughTracks = errors.New("at least two tracks are required")

// ErrTrackTooShort indicates nothing is left of a track once its shared lead
// and trail are trimmed.
var ErrTrackTooShort = errors.New("track too short to fingerprint")

// PairError reports a bad input pair. No output is produced for the pair and
// the run stops.
type PairError struct {
	Index int // 1-based pair number
	PathA string
	PathB string
	Err   error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("pair %d (%s, %s): %v", e.Index, e.PathA, e.PathB, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}

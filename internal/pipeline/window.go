package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/fingerprint"
)

// windowState tracks how many tracks the window holds.
type windowState int

const (
	stateUninitialized windowState = iota
	statePairLoaded
	stateSliding
)

func (s windowState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case statePairLoaded:
		return "pair-loaded"
	case stateSliding:
		return "sliding"
	default:
		return fmt.Sprintf("windowState(%d)", int(s))
	}
}

// slot holds one decoded track and the fingerprint of its last trimmed view.
type slot struct {
	pcm audio.PCM

	seq     fingerprint.Sequence
	seqTrim trim
	hasSeq  bool
}

// trim is the number of frames dropped from each end before fingerprinting.
type trim struct {
	lead, trail int
}

func (s *slot) release() {
	*s = slot{}
}

// window holds at most two decoded tracks. The stale slot holds the older
// track and is the one replaced by the next decode.
type window struct {
	decoder audio.Decoder
	state   windowState
	slots   [2]slot
	stale   int
}

func newWindow(decoder audio.Decoder) *window {
	return &window{decoder: decoder}
}

// load decodes the first pair concurrently.
func (w *window) load(ctx context.Context, pathA, pathB string) error {
	if w.state != stateUninitialized {
		panic(fmt.Sprintf("pipeline: load in state %s", w.state))
	}

	var a, b audio.PCM
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = w.decoder.Decode(gctx, pathA)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = w.decoder.Decode(gctx, pathB)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	w.slots[0] = slot{pcm: a}
	w.slots[1] = slot{pcm: b}
	w.stale = 0
	w.state = statePairLoaded
	return nil
}

// slide releases the older track and decodes path in its place.
func (w *window) slide(ctx context.Context, path string) error {
	if w.state == stateUninitialized {
		panic("pipeline: slide before load")
	}

	w.slots[w.stale].release()
	pcm, err := w.decoder.Decode(ctx, path)
	if err != nil {
		return err
	}

	w.slots[w.stale] = slot{pcm: pcm}
	w.stale = 1 - w.stale
	w.state = stateSliding
	return nil
}

// pair returns the older and newer slots.
func (w *window) pair() (older, newer *slot) {
	return &w.slots[w.stale], &w.slots[1-w.stale]
}

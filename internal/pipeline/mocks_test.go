package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/fingerprint"
)

// unitMeta makes one fingerprint item equal one second at a 1 Hz sample rate.
var unitMeta = fingerprint.Meta{Delay: 0, ItemDuration: 1, SampleRate: 1}

// track builds a mono 1 Hz track whose samples double as fingerprint symbols.
func track(path string, samples ...int16) audio.PCM {
	return audio.PCM{Path: path, SampleRate: 1, Channels: 1, Samples: samples}
}

// seq returns n consecutive sample values starting at from.
func seq(from, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(from + i)
	}
	return out
}

func concat(parts ...[]int16) []int16 {
	return slices.Concat(parts...)
}

// mockDecoder serves tracks from memory and records decode order.
type mockDecoder struct {
	mu     sync.Mutex
	tracks map[string]audio.PCM
	errs   map[string]error
	calls  []string
}

func newMockDecoder(tracks ...audio.PCM) *mockDecoder {
	d := &mockDecoder{tracks: make(map[string]audio.PCM), errs: make(map[string]error)}
	for _, t := range tracks {
		d.tracks[t.Path] = t
	}
	return d
}

func (d *mockDecoder) Decode(_ context.Context, path string) (audio.PCM, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, path)
	if err := d.errs[path]; err != nil {
		return audio.PCM{}, err
	}
	pcm, ok := d.tracks[path]
	if !ok {
		return audio.PCM{}, fmt.Errorf("%w: %s", audio.ErrFileNotFound, path)
	}
	return pcm, nil
}

func (d *mockDecoder) decoded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// mockFingerprinter spreads each sample into a 32-bit symbol and counts calls per track.
type mockFingerprinter struct {
	mu    sync.Mutex
	calls map[string]int
	meta  map[string]fingerprint.Meta
}

func newMockFingerprinter() *mockFingerprinter {
	return &mockFingerprinter{calls: make(map[string]int), meta: make(map[string]fingerprint.Meta)}
}

func (f *mockFingerprinter) Fingerprint(_ context.Context, pcm audio.PCM) (fingerprint.Sequence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[pcm.Path]++

	meta, ok := f.meta[pcm.Path]
	if !ok {
		meta = unitMeta
	}
	symbols := make([]uint32, len(pcm.Samples))
	for i, s := range pcm.Samples {
		symbols[i] = uint32(s) * 2654435761
	}
	return fingerprint.Sequence{
		Symbols:       symbols,
		Meta:          meta,
		SampleRate:    pcm.SampleRate,
		Channels:      pcm.Channels,
		LengthSeconds: pcm.Seconds(),
	}, nil
}

func (f *mockFingerprinter) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

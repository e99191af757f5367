package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/OneOfOne/xxhash"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/fingerprint"
)

// keyVersion changes whenever the key or value layout changes.
const keyVersion = "v1"

// metaTrailerSize is the encoded size of fingerprint.Meta.
const metaTrailerSize = 12

// Key identifies the fingerprint of pcm under a chromaprint algorithm.
// It hashes the channel count, the sample rate and every sample.
func Key(algorithm int, pcm audio.PCM) []byte {
	h := xxhash.New64()

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(pcm.Channels))
	binary.LittleEndian.PutUint32(header[4:], uint32(pcm.SampleRate))
	_, _ = h.Write(header[:])

	const block = 4096
	buf := make([]byte, 0, block*2)
	for start := 0; start < len(pcm.Samples); start += block {
		end := min(start+block, len(pcm.Samples))
		buf = buf[:0]
		for _, s := range pcm.Samples[start:end] {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
		}
		_, _ = h.Write(buf)
	}

	return fmt.Appendf(nil, "fp/%s/%d/%016x", keyVersion, algorithm, h.Sum64())
}

// encode lays out symbols as little-endian uint32 followed by the Meta trailer.
func encode(symbols []uint32, meta fingerprint.Meta) []byte {
	out := make([]byte, 0, 4*len(symbols)+metaTrailerSize)
	for _, s := range symbols {
		out = binary.LittleEndian.AppendUint32(out, s)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(meta.Delay))
	out = binary.LittleEndian.AppendUint32(out, uint32(meta.ItemDuration))
	out = binary.LittleEndian.AppendUint32(out, uint32(meta.SampleRate))
	return out
}

func decode(value []byte) ([]uint32, fingerprint.Meta, error) {
	if len(value) < metaTrailerSize+4 || len(value)%4 != 0 {
		return nil, fingerprint.Meta{}, fmt.Errorf("%w: %d bytes", ErrCorruptEntry, len(value))
	}

	n := (len(value) - metaTrailerSize) / 4
	symbols := make([]uint32, n)
	for i := range symbols {
		symbols[i] = binary.LittleEndian.Uint32(value[4*i:])
	}

	t := value[4*n:]
	meta := fingerprint.Meta{
		Delay:        int(binary.LittleEndian.Uint32(t[0:])),
		ItemDuration: int(binary.LittleEndian.Uint32(t[4:])),
		SampleRate:   int(binary.LittleEndian.Uint32(t[8:])),
	}
	if err := meta.Validate(); err != nil {
		return nil, fingerprint.Meta{}, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return symbols, meta, nil
}

// Compile-time interface implementation check.
var _ fingerprint.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter serves fingerprints from a Backend and computes misses with next.
// Backend failures are logged and fall through to next.
type Fingerprinter struct {
	next      fingerprint.Fingerprinter
	backend   Backend
	algorithm int
	logger    logrus.FieldLogger
}

// Wrap returns a caching Fingerprinter around next.
// A nil logger discards log output.
func Wrap(next fingerprint.Fingerprinter, backend Backend, algorithm int, logger logrus.FieldLogger) *Fingerprinter {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Fingerprinter{next: next, backend: backend, algorithm: algorithm, logger: logger}
}

// Fingerprint returns the cached sequence for pcm or computes and stores it.
func (f *Fingerprinter) Fingerprint(ctx context.Context, pcm audio.PCM) (fingerprint.Sequence, error) {
	key := Key(f.algorithm, pcm)
	log := f.logger.WithFields(logrus.Fields{"track": pcm.Path, "key": string(key)})

	value, ok, err := f.backend.Get(key)
	switch {
	case err != nil:
		log.WithError(err).Warn("fingerprint cache read failed")
	case ok:
		symbols, meta, err := decode(value)
		if err == nil {
			log.WithField("items", humanize.Comma(int64(len(symbols)))).Debug("fingerprint cache hit")
			return fingerprint.Sequence{
				Symbols:       symbols,
				Meta:          meta,
				SampleRate:    pcm.SampleRate,
				Channels:      pcm.Channels,
				LengthSeconds: pcm.Seconds(),
			}, nil
		}
		log.WithError(err).Warn("ignoring fingerprint cache entry")
	}

	seq, err := f.next.Fingerprint(ctx, pcm)
	if err != nil {
		return fingerprint.Sequence{}, err
	}

	encoded := encode(seq.Symbols, seq.Meta)
	if err := f.backend.Put(key, encoded); err != nil {
		log.WithError(err).Warn("fingerprint cache write failed")
	} else {
		log.WithField("size", humanize.Bytes(uint64(len(encoded)))).Debug("fingerprint cached")
	}
	return seq, nil
}

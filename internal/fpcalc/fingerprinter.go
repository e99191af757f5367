package fpcalc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/fingerprint"
)

// DefaultAlgorithm is the chromaprint algorithm used when none is configured.
const DefaultAlgorithm = 5

// chromaprintRate is the sample rate chromaprint resamples to internally.
// Item durations and delays below are counted at this rate.
const chromaprintRate = 11025

// defaultChunkFrames is how many frames are written to fpcalc per write.
const defaultChunkFrames = 1 << 14

// fingerprintPrefix starts the line carrying the raw fingerprint.
const fingerprintPrefix = "FINGERPRINT="

// MetaFor returns the timing metadata of a chromaprint algorithm.
func MetaFor(algorithm int) (fingerprint.Meta, error) {
	switch algorithm {
	case 1, 2, 3, 4:
		return fingerprint.Meta{Delay: 28666, ItemDuration: 1365, SampleRate: chromaprintRate}, nil
	case 5:
		return fingerprint.Meta{Delay: 20480, ItemDuration: 1024, SampleRate: chromaprintRate}, nil
	default:
		return fingerprint.Meta{}, fmt.Errorf("%w: %d (supported: 1-5)", ErrUnsupportedAlgorithm, algorithm)
	}
}

// ProgressFunc reports how many PCM bytes of a track have been fed to fpcalc.
type ProgressFunc func(track string, done, total int64)

// Compile-time interface implementation check.
var _ fingerprint.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter runs fpcalc on in-memory PCM.
type Fingerprinter struct {
	path        string
	algorithm   int
	meta        fingerprint.Meta
	chunkFrames int
	newProcess  processFactory
	progress    ProgressFunc
}

// Option configures a Fingerprinter.
type Option func(*Fingerprinter)

// WithAlgorithm selects the chromaprint algorithm (1-5).
func WithAlgorithm(n int) Option {
	return func(f *Fingerprinter) { f.algorithm = n }
}

// WithChunkFrames sets how many frames are written per stdin write.
func WithChunkFrames(n int) Option {
	return func(f *Fingerprinter) {
		if n > 0 {
			f.chunkFrames = n
		}
	}
}

// WithProgress sets a callback invoked after each chunk is written.
func WithProgress(fn ProgressFunc) Option {
	return func(f *Fingerprinter) { f.progress = fn }
}

// withProcessFactory replaces process creation (for testing).
func withProcessFactory(pf processFactory) Option {
	return func(f *Fingerprinter) { f.newProcess = pf }
}

// New creates a Fingerprinter for the fpcalc binary at path.
func New(path string, opts ...Option) (*Fingerprinter, error) {
	f := &Fingerprinter{
		path:        path,
		algorithm:   DefaultAlgorithm,
		chunkFrames: defaultChunkFrames,
		newProcess:  execProcess,
	}
	for _, opt := range opts {
		opt(f)
	}

	meta, err := MetaFor(f.algorithm)
	if err != nil {
		return nil, err
	}
	f.meta = meta
	return f, nil
}

// Algorithm returns the configured chromaprint algorithm.
func (f *Fingerprinter) Algorithm() int {
	return f.algorithm
}

// Fingerprint streams pcm to fpcalc and parses the raw fingerprint.
func (f *Fingerprinter) Fingerprint(ctx context.Context, pcm audio.PCM) (fingerprint.Sequence, error) {
	if pcm.Frames() == 0 {
		return fingerprint.Sequence{}, fmt.Errorf("%s: %w", pcm.Path, ErrEmptyFingerprint)
	}

	var stderr bytes.Buffer
	proc := f.newProcess(ctx, f.path, f.args(pcm), &stderr)

	stdin, err := proc.StdinPipe()
	if err != nil {
		return fingerprint.Sequence{}, fmt.Errorf("%w: stdin pipe: %v", ErrFingerprintFailed, err)
	}
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return fingerprint.Sequence{}, fmt.Errorf("%w: stdout pipe: %v", ErrFingerprintFailed, err)
	}
	if err := proc.Start(); err != nil {
		return fingerprint.Sequence{}, fmt.Errorf("%w: start fpcalc: %v", ErrFingerprintFailed, err)
	}

	var symbols []uint32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() { _ = stdin.Close() }()
		return f.feed(gctx, stdin, pcm)
	})
	g.Go(func() error {
		var err error
		symbols, err = parseOutput(stdout)
		return err
	})
	pumpErr := g.Wait()
	waitErr := proc.Wait()

	if err := ctx.Err(); err != nil {
		return fingerprint.Sequence{}, err
	}
	if waitErr != nil {
		return fingerprint.Sequence{}, fmt.Errorf("%w: %s: %v\nOutput: %s",
			ErrFingerprintFailed, pcm.Path, waitErr, strings.TrimSpace(stderr.String()))
	}
	if pumpErr != nil {
		if errors.Is(pumpErr, ErrEmptyFingerprint) {
			return fingerprint.Sequence{}, fmt.Errorf("%s: %w", pcm.Path, pumpErr)
		}
		return fingerprint.Sequence{}, fmt.Errorf("%w: %s: %v", ErrFingerprintFailed, pcm.Path, pumpErr)
	}

	return fingerprint.Sequence{
		Symbols:       symbols,
		Meta:          f.meta,
		SampleRate:    pcm.SampleRate,
		Channels:      pcm.Channels,
		LengthSeconds: pcm.Seconds(),
	}, nil
}

// args builds the fpcalc command line for raw stdin input.
func (f *Fingerprinter) args(pcm audio.PCM) []string {
	return []string{
		"-raw",
		"-length", "0",
		"-algorithm", strconv.Itoa(f.algorithm),
		"-format", "s16le",
		"-rate", strconv.Itoa(pcm.SampleRate),
		"-channels", strconv.Itoa(pcm.Channels),
		"-",
	}
}

// feed writes the samples as little-endian 16-bit PCM in fixed-size chunks.
func (f *Fingerprinter) feed(ctx context.Context, w io.Writer, pcm audio.PCM) error {
	chunk := f.chunkFrames * pcm.Channels
	buf := make([]byte, 0, chunk*2)
	total := pcm.Bytes()
	var done int64

	for start := 0; start < len(pcm.Samples); start += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+chunk, len(pcm.Samples))

		buf = buf[:0]
		for _, s := range pcm.Samples[start:end] {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write pcm: %w", err)
		}

		done += int64(len(buf))
		if f.progress != nil {
			f.progress(pcm.Path, done, total)
		}
	}
	return nil
}

// parseOutput reads fpcalc output until the FINGERPRINT line.
// The remaining output is drained so the process never blocks on a full pipe.
func parseOutput(r io.Reader) ([]uint32, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var (
		symbols  []uint32
		found    bool
		parseErr error
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if found || !strings.HasPrefix(line, fingerprintPrefix) {
			continue
		}
		found = true
		symbols, parseErr = parseSymbols(strings.TrimPrefix(line, fingerprintPrefix))
	}
	if err := sc.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return nil, fmt.Errorf("read output: %w", err)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if !found {
		return nil, fmt.Errorf("no %s line in output", strings.TrimSuffix(fingerprintPrefix, "="))
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyFingerprint
	}
	return symbols, nil
}

// parseSymbols parses a comma-separated raw fingerprint.
// fpcalc prints items as unsigned or signed 32-bit integers depending on version.
func parseSymbols(s string) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]uint32, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		if strings.HasPrefix(field, "-") {
			v, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = uint32(int32(v))
			continue
		}
		v, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

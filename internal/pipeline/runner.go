package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/fingerprint"
	"github.com/alnah/go-reprise/internal/match"
)

// PairReport is the comparison of two adjacent tracks.
type PairReport struct {
	Index        int // 1-based pair number
	PathA, PathB string
	Shift        audio.Shift
	SampleRate   int
	Result       match.Result
}

// Runner compares a list of tracks two at a time.
type Runner struct {
	decoder       audio.Decoder
	fingerprinter fingerprint.Fingerprinter
	engine        *match.Engine
	maxShift      time.Duration
	logger        logrus.FieldLogger
}

// Option configures a Runner.
type Option func(*Runner)

// WithEngine sets the matching engine.
func WithEngine(e *match.Engine) Option {
	return func(r *Runner) { r.engine = e }
}

// WithMaxShift bounds the raw-sample lead and trail; <= 0 disables the bound.
func WithMaxShift(d time.Duration) Option {
	return func(r *Runner) { r.maxShift = d }
}

// WithLogger sets the logger for progress diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner that decodes with decoder and fingerprints with fp.
func NewRunner(decoder audio.Decoder, fp fingerprint.Fingerprinter, opts ...Option) *Runner {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	r := &Runner{
		decoder:       decoder,
		fingerprinter: fp,
		maxShift:      audio.DefaultMaxShift,
		logger:        quiet,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = match.NewEngine(match.WithLogger(r.logger))
	}
	return r
}

// Run compares every adjacent pair of paths in order and calls emit with each
// report. It stops at the first failing pair; bad input pairs are reported as
// *PairError. An error from emit stops the run and is returned unchanged.
func (r *Runner) Run(ctx context.Context, paths []string, emit func(PairReport) error) error {
	if len(paths) < 2 {
		return fmt.Errorf("%w (got %d)", ErrNotEnoughTracks, len(paths))
	}

	var rc fingerprint.RunContext
	w := newWindow(r.decoder)

	for i := 1; i < len(paths); i++ {
		pathA, pathB := paths[i-1], paths[i]
		pairErr := func(err error) error {
			return &PairError{Index: i, PathA: pathA, PathB: pathB, Err: err}
		}

		if i == 1 {
			if err := w.load(ctx, pathA, pathB); err != nil {
				return pairErr(err)
			}
		} else if err := w.slide(ctx, pathB); err != nil {
			return pairErr(err)
		}

		older, newer := w.pair()
		if i == 1 {
			if err := rc.CheckAudio(older.pcm); err != nil {
				return pairErr(err)
			}
		}
		if err := rc.CheckAudio(newer.pcm); err != nil {
			return pairErr(err)
		}

		report, err := r.compare(ctx, i, older, newer, &rc)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return pairErr(err)
		}
		report.PathA, report.PathB = pathA, pathB
		if err := emit(report); err != nil {
			return err
		}
	}
	return nil
}

// compare trims, fingerprints and matches one pair.
func (r *Runner) compare(ctx context.Context, index int, a, b *slot, rc *fingerprint.RunContext) (PairReport, error) {
	log := r.logger.WithField("pair", index)
	start := time.Now()

	shift, err := audio.CommonShift(a.pcm, b.pcm, r.maxShift)
	if err != nil {
		return PairReport{}, err
	}
	rate := a.pcm.SampleRate
	if !shift.IsZero() {
		log.WithFields(logrus.Fields{
			"lead":  fmt.Sprintf("%.3fs", shift.LeadSeconds(rate)),
			"trail": fmt.Sprintf("%.3fs", shift.TrailSeconds(rate)),
		}).Info("identical lead/trail trimmed")
	}

	t := trim{lead: shift.LeadFrames, trail: shift.TrailFrames}
	seqA, err := r.fingerprint(ctx, log, a, t)
	if err != nil {
		return PairReport{}, err
	}
	seqB, err := r.fingerprint(ctx, log, b, t)
	if err != nil {
		return PairReport{}, err
	}
	if err := rc.CheckSequence(seqA); err != nil {
		return PairReport{}, err
	}
	if err := rc.CheckSequence(seqB); err != nil {
		return PairReport{}, err
	}

	res, err := r.engine.Compare(ctx, match.Input{
		A: seqA,
		B: seqB,
		SpanA: match.Span{
			LeadSeconds:   shift.LeadSeconds(rate),
			TrailSeconds:  shift.TrailSeconds(rate),
			LengthSeconds: a.pcm.Seconds(),
		},
		SpanB: match.Span{
			LeadSeconds:   shift.LeadSeconds(rate),
			TrailSeconds:  shift.TrailSeconds(rate),
			LengthSeconds: b.pcm.Seconds(),
		},
	})
	if err != nil {
		return PairReport{}, err
	}

	log.WithFields(logrus.Fields{
		"matches": len(res.Matches),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("pair compared")

	return PairReport{
		Index:      index,
		Shift:      shift,
		SampleRate: rate,
		Result:     res,
	}, nil
}

// fingerprint returns the slot's fingerprint for trim t, reusing the cached
// one when the trim is unchanged.
func (r *Runner) fingerprint(ctx context.Context, log logrus.FieldLogger, s *slot, t trim) (fingerprint.Sequence, error) {
	log = log.WithField("track", s.pcm.Path)
	if s.hasSeq && s.seqTrim == t {
		log.Debug("reusing fingerprint")
		return s.seq, nil
	}

	view := s.pcm.Trim(t.lead, t.trail)
	if view.Frames() == 0 {
		return fingerprint.Sequence{}, fmt.Errorf("%s: %w", s.pcm.Path, ErrTrackTooShort)
	}

	log.WithField("size", humanize.Bytes(uint64(view.Bytes()))).Debug("fingerprinting")
	seq, err := r.fingerprinter.Fingerprint(ctx, view)
	if err != nil {
		return fingerprint.Sequence{}, err
	}
	log.WithField("items", humanize.Comma(int64(seq.Len()))).Debug("fingerprinted")

	s.seq, s.seqTrim, s.hasSeq = seq, t, true
	return seq, nil
}

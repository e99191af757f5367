package match

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-reprise/internal/fingerprint"
)

// Tuning overrides the defaults derived from fingerprint timing.
// Zero fields keep the default.
type Tuning struct {
	MinMatchSeconds float64
	MergeFactor     int
	MinSimilarity   float64
}

// Params resolves the tuning against the fingerprint timing.
func (t Tuning) Params(meta fingerprint.Meta) Params {
	p := DefaultParams(meta)
	if t.MinMatchSeconds > 0 {
		p.MinMatchItems = max(meta.Items(t.MinMatchSeconds), 1)
	}
	if t.MergeFactor > 0 {
		p.MergeWindow = t.MergeFactor * p.DelayItems
	}
	if t.MinSimilarity > 0 {
		p.MinSimilarity = t.MinSimilarity
	}
	return p
}

// Input is one pair of fingerprinted tracks. A is the earlier track.
type Input struct {
	A, B         fingerprint.Sequence
	SpanA, SpanB Span
}

// Result is the outcome of comparing two tracks.
type Result struct {
	Params     Params
	Candidates int
	Bridged    int
	Dropped    int

	// Matches are in combined coordinates; see LenA and OffsetB.
	Matches []Match
	LenA    int
	OffsetB int

	SharedA, SharedB     []TimeRange
	TimelineA, TimelineB []Segment
}

// Engine finds repeated segments between two fingerprint sequences.
type Engine struct {
	tuning Tuning
	logger logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTuning sets threshold overrides.
func WithTuning(t Tuning) Option {
	return func(e *Engine) { e.tuning = t }
}

// WithLogger sets the logger for stage diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	e := &Engine{logger: quiet}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare runs rank compression, suffix sorting, extraction, merging and time
// mapping over one pair of sequences.
func (e *Engine) Compare(ctx context.Context, in Input) (Result, error) {
	if in.A.Meta != in.B.Meta {
		return Result{}, fmt.Errorf("%w: %s vs %s", fingerprint.ErrMetaMismatch, in.A.Meta, in.B.Meta)
	}
	meta := in.A.Meta
	if err := meta.Validate(); err != nil {
		return Result{}, err
	}
	p := e.tuning.Params(meta)

	alpha, err := Compress(in.A.Symbols, in.B.Symbols)
	if err != nil {
		return Result{}, err
	}
	log := e.logger.WithFields(logrus.Fields{
		"items_a": alpha.LenA,
		"items_b": alpha.LenB(),
	})
	log.WithField("ranks", alpha.RankCount()).Debug("compressed alphabet")

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	sa := BuildSuffixArray(alpha)
	lcp := LCPArray(alpha.Combined, sa, RankArray(sa))
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	candidates := Extract(alpha, sa, lcp, p.MinMatchItems)
	log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"min_items":  p.MinMatchItems,
	}).Debug("extracted matches")

	merged := Merge(alpha, candidates, p)
	log.WithFields(logrus.Fields{
		"bridged": merged.Bridged,
		"dropped": merged.Dropped,
		"kept":    len(merged.Matches),
	}).Debug("merged matches")

	sharedA, sharedB := MapTimes(alpha, merged.Matches, meta, in.SpanA, in.SpanB)

	return Result{
		Params:     p,
		Candidates: len(candidates),
		Bridged:    merged.Bridged,
		Dropped:    merged.Dropped,
		Matches:    merged.Matches,
		LenA:       alpha.LenA,
		OffsetB:    alpha.OffsetB,
		SharedA:    sharedA,
		SharedB:    sharedB,
		TimelineA:  Timeline(sharedA, in.SpanA.LengthSeconds),
		TimelineB:  Timeline(sharedB, in.SpanB.LengthSeconds),
	}, nil
}

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/cache"
	"github.com/alnah/go-reprise/internal/config"
	"github.com/alnah/go-reprise/internal/format"
	"github.com/alnah/go-reprise/internal/fpcalc"
	"github.com/alnah/go-reprise/internal/match"
	"github.com/alnah/go-reprise/internal/pipeline"
)

// supportedFormats lists the extensions the WAV decoder accepts.
var supportedFormats = map[string]bool{
	".wav":  true,
	".wave": true,
}

// Flag names shared between the command and settings resolution.
const (
	flagAlgorithm     = "algorithm"
	flagCacheDir      = "cache-dir"
	flagMinSimilarity = "min-similarity"
	flagMaxShift      = "max-shift"
	flagMinMatch      = "min-match"
	flagMergeFactor   = "merge-factor"
)

// compareOptions holds the raw flag values of the compare command.
type compareOptions struct {
	output  string
	verbose bool
	all     bool

	algorithm     int
	cacheDir      string
	minSimilarity float64
	maxShift      time.Duration
	minMatch      float64
	mergeFactor   int
}

// register binds the matching flags. Defaults shown in help are the
// built-in ones; config values apply only when a flag is not given.
func (o *compareOptions) register(fs *pflag.FlagSet) {
	fs.StringVarP(&o.output, "file", "f", "", "Write the report to a file instead of stdout (must not exist)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log progress and show fingerprint progress bars")
	fs.BoolVar(&o.all, "all", false, "Print the full timeline, shared segments included")

	fs.IntVar(&o.algorithm, flagAlgorithm, fpcalc.DefaultAlgorithm, "Chromaprint algorithm (1-5)")
	fs.StringVar(&o.cacheDir, flagCacheDir, "", "Fingerprint cache directory (disabled when empty)")
	fs.Float64Var(&o.minSimilarity, flagMinSimilarity, match.DefaultMinSimilarity, "Similarity required to bridge a gap (0-1]")
	fs.DurationVar(&o.maxShift, flagMaxShift, audio.DefaultMaxShift, "Longest identical lead or trail to trim before fingerprinting (0 disables)")
	fs.Float64Var(&o.minMatch, flagMinMatch, 0, "Shortest exact match in seconds (default: derived from the algorithm)")
	fs.IntVar(&o.mergeFactor, flagMergeFactor, 0, "Bridge window as a multiple of the decode delay (default: derived)")
}

// settings are the effective values after flags, config and defaults.
type settings struct {
	algorithm int
	cacheDir  string
	maxShift  time.Duration
	tuning    match.Tuning
}

// resolveSettings applies precedence: explicit flag, then config (which
// already folds in environment variables), then the built-in default.
func resolveSettings(fs *pflag.FlagSet, o compareOptions, cfg config.Config) (settings, error) {
	s := settings{
		algorithm: fpcalc.DefaultAlgorithm,
		cacheDir:  cfg.CacheDir,
		maxShift:  audio.DefaultMaxShift,
		tuning: match.Tuning{
			MinMatchSeconds: o.minMatch,
			MergeFactor:     o.mergeFactor,
		},
	}

	switch {
	case fs.Changed(flagAlgorithm):
		s.algorithm = o.algorithm
	case cfg.Algorithm != 0:
		s.algorithm = cfg.Algorithm
	}
	if s.algorithm < 1 || s.algorithm > 5 {
		return s, fmt.Errorf("%w: --%s=%d (want 1-5)", ErrInvalidFlag, flagAlgorithm, s.algorithm)
	}

	if fs.Changed(flagCacheDir) {
		s.cacheDir = config.ExpandPath(o.cacheDir)
	}

	switch {
	case fs.Changed(flagMinSimilarity):
		if o.minSimilarity <= 0 || o.minSimilarity > 1 {
			return s, fmt.Errorf("%w: --%s=%g (want a number in (0, 1])", ErrInvalidFlag, flagMinSimilarity, o.minSimilarity)
		}
		s.tuning.MinSimilarity = o.minSimilarity
	case cfg.MinSimilarity != 0:
		s.tuning.MinSimilarity = cfg.MinSimilarity
	}

	switch {
	case fs.Changed(flagMaxShift):
		if o.maxShift < 0 {
			return s, fmt.Errorf("%w: --%s=%s (must not be negative)", ErrInvalidFlag, flagMaxShift, o.maxShift)
		}
		s.maxShift = o.maxShift
	case cfg.MaxShiftSet:
		s.maxShift = cfg.MaxShift
	}

	if o.minMatch < 0 {
		return s, fmt.Errorf("%w: --%s=%g (must not be negative)", ErrInvalidFlag, flagMinMatch, o.minMatch)
	}
	if o.mergeFactor < 0 {
		return s, fmt.Errorf("%w: --%s=%d (must not be negative)", ErrInvalidFlag, flagMergeFactor, o.mergeFactor)
	}

	return s, nil
}

// CompareCmd creates the root command that compares consecutive tracks.
// The env parameter provides injectable dependencies for testing.
func CompareCmd(env *Env) *cobra.Command {
	var opts compareOptions

	cmd := &cobra.Command{
		Use:   "reprise <track> <track> [track...]",
		Short: "Find intros and outros shared between consecutive tracks",
		Long: `Find repeated segments shared between consecutive audio tracks.

Each track is compared with the next one: 1 with 2, 2 with 3, and so on.
Tracks are fingerprinted with fpcalc (Chromaprint) and matched on their
fingerprints, so re-encoded copies of the same intro are still found.

For every pair, the report lists the parts of each track that are not
shared with its neighbor. Use --all to also print the shared segments.

Supported formats: wav (integer PCM)`,
		Example: `  reprise ep01.wav ep02.wav
  reprise ep*.wav -f segments.txt
  reprise ep01.wav ep02.wav --all -v
  reprise ep01.wav ep02.wav --cache-dir ~/.cache/reprise --min-similarity 0.8`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, env, args, opts)
		},
	}

	opts.register(cmd.Flags())

	return cmd
}

// runCompare executes the comparison pipeline.
// Validation order: tracks exist -> format -> output -> config -> flags -> fpcalc
func runCompare(cmd *cobra.Command, env *Env, paths []string, opts compareOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if len(paths) < 2 {
		return pipeline.ErrNotEnoughTracks
	}

	// 1. Tracks exist and have a supported extension
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", audio.ErrFileNotFound, p)
			}
			return fmt.Errorf("cannot access input file: %w", err)
		}
		ext := strings.ToLower(filepath.Ext(p))
		if !supportedFormats[ext] {
			return fmt.Errorf("unsupported format %q for %s (supported: wav): %w",
				ext, p, audio.ErrUnsupportedFormat)
		}
	}

	// 2. Output file must not exist
	if opts.output != "" {
		if err := checkOutputAvailable(opts.output); err != nil {
			return err
		}
	}

	// 3. Config and flag precedence
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	s, err := resolveSettings(cmd.Flags(), opts, cfg)
	if err != nil {
		return err
	}

	// === SETUP ===

	fpcalcPath, err := env.FpcalcResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FpcalcResolver.CheckVersion(ctx, fpcalcPath)

	logger := newLogger(env.Stderr, opts.verbose)

	var (
		bars     *progressBars
		progress fpcalc.ProgressFunc
	)
	if opts.verbose {
		bars = newProgressBars(env.Stderr)
		progress = bars.update
		defer bars.wait()
	}

	fp, err := env.FingerprinterFactory.NewFingerprinter(fpcalcPath, s.algorithm, progress)
	if err != nil {
		return err
	}

	if c := openCache(env, s.cacheDir); c != nil {
		defer func() {
			if err := c.Close(); err != nil {
				fmt.Fprintf(env.Stderr, "Warning: failed to close cache: %v\n", err)
			}
		}()
		fp = cache.Wrap(fp, c, s.algorithm, logger)
	}

	engine := match.NewEngine(match.WithTuning(s.tuning), match.WithLogger(logger))
	runner := pipeline.NewRunner(env.Decoder, fp,
		pipeline.WithEngine(engine),
		pipeline.WithMaxShift(s.maxShift),
		pipeline.WithLogger(logger),
	)

	// === COMPARE ===

	fmt.Fprintf(env.Stderr, "Comparing %d tracks...\n", len(paths))

	var (
		out io.Writer = env.Stdout
		buf strings.Builder
	)
	if opts.output != "" {
		out = &buf
	}

	start := env.Now()
	err = runner.Run(ctx, paths, func(rep pipeline.PairReport) error {
		logger.WithFields(logrus.Fields{
			"pair":    rep.Index,
			"matches": len(rep.Result.Matches),
		}).Debug("pair compared")
		return renderReport(out, rep, opts.all)
	})
	bars.wait()
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(env.Stderr, "Compared %d pairs in %s\n", len(paths)-1, format.Duration(env.Now().Sub(start)))
	}

	// === WRITE OUTPUT ===

	if opts.output == "" {
		return nil
	}
	if err := writeFileAtomic(opts.output, buf.String()); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Done: %s\n", opts.output)
	return nil
}

// openCache returns nil when caching is disabled or unavailable.
// An unusable cache only costs a warning.
func openCache(env *Env, dir string) Cache {
	if dir == "" {
		return nil
	}
	if err := config.EnsureCacheDir(dir); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: fingerprint cache disabled: %v\n", err)
		return nil
	}
	c, err := env.CacheOpener.Open(dir)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: fingerprint cache disabled: %v\n", err)
		return nil
	}
	return c
}

// newLogger builds the diagnostics logger: warnings only unless verbose.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

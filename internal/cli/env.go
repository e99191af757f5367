package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/cache"
	"github.com/alnah/go-reprise/internal/config"
	"github.com/alnah/go-reprise/internal/fingerprint"
	"github.com/alnah/go-reprise/internal/fpcalc"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	FpcalcResolver       FpcalcResolver
	ConfigLoader         ConfigLoader
	Decoder              audio.Decoder
	FingerprinterFactory FingerprinterFactory
	CacheOpener          CacheOpener
}

// FpcalcResolver resolves the path to the fpcalc binary.
type FpcalcResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, fpcalcPath string)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// FingerprinterFactory creates fingerprinters backed by fpcalc.
type FingerprinterFactory interface {
	NewFingerprinter(fpcalcPath string, algorithm int, progress fpcalc.ProgressFunc) (fingerprint.Fingerprinter, error)
}

// Cache is an open fingerprint cache.
type Cache interface {
	cache.Backend
	Close() error
}

// CacheOpener opens the on-disk fingerprint cache.
type CacheOpener interface {
	Open(dir string) (Cache, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithFpcalcResolver sets the fpcalc resolver.
func WithFpcalcResolver(r FpcalcResolver) EnvOption {
	return func(e *Env) {
		e.FpcalcResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithDecoder sets the audio decoder.
func WithDecoder(d audio.Decoder) EnvOption {
	return func(e *Env) {
		e.Decoder = d
	}
}

// WithFingerprinterFactory sets the fingerprinter factory.
func WithFingerprinterFactory(f FingerprinterFactory) EnvOption {
	return func(e *Env) {
		e.FingerprinterFactory = f
	}
}

// WithCacheOpener sets the cache opener.
func WithCacheOpener(o CacheOpener) EnvOption {
	return func(e *Env) {
		e.CacheOpener = o
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:               os.Stdout,
		Stderr:               os.Stderr,
		Getenv:               os.Getenv,
		Now:                  time.Now,
		FpcalcResolver:       &defaultFpcalcResolver{},
		ConfigLoader:         &defaultConfigLoader{},
		Decoder:              audio.NewWAVDecoder(),
		FingerprinterFactory: &defaultFingerprinterFactory{},
		CacheOpener:          &defaultCacheOpener{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFpcalcResolver implements FpcalcResolver using the fpcalc package.
type defaultFpcalcResolver struct{}

func (defaultFpcalcResolver) Resolve(ctx context.Context) (string, error) {
	return fpcalc.NewResolver().Resolve(ctx)
}

func (defaultFpcalcResolver) CheckVersion(ctx context.Context, fpcalcPath string) {
	fpcalc.NewVersionChecker().Check(ctx, fpcalcPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultFingerprinterFactory implements FingerprinterFactory using fpcalc.
type defaultFingerprinterFactory struct{}

func (defaultFingerprinterFactory) NewFingerprinter(fpcalcPath string, algorithm int, progress fpcalc.ProgressFunc) (fingerprint.Fingerprinter, error) {
	return fpcalc.New(fpcalcPath, fpcalc.WithAlgorithm(algorithm), fpcalc.WithProgress(progress))
}

// defaultCacheOpener implements CacheOpener using badger.
type defaultCacheOpener struct{}

func (defaultCacheOpener) Open(dir string) (Cache, error) {
	return cache.Open(dir)
}

// Compile-time interface verification.
var (
	_ FpcalcResolver       = (*defaultFpcalcResolver)(nil)
	_ ConfigLoader         = (*defaultConfigLoader)(nil)
	_ FingerprinterFactory = (*defaultFingerprinterFactory)(nil)
	_ CacheOpener          = (*defaultCacheOpener)(nil)
	_ Cache                = (*cache.Store)(nil)
)

package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/alnah/go-reprise/internal/audio"
)

// ---------------------------------------------------------------------------
// Tests for DefaultEnv
// ---------------------------------------------------------------------------

func TestDefaultEnvReturnsValidEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()

	if env.Stdout != os.Stdout {
		t.Errorf("DefaultEnv() Stdout = %v, want os.Stdout", env.Stdout)
	}
	if env.Stderr != os.Stderr {
		t.Errorf("DefaultEnv() Stderr = %v, want os.Stderr", env.Stderr)
	}
	if env.Getenv == nil || env.Now == nil {
		t.Error("DefaultEnv() Getenv/Now = nil, want non-nil")
	}
	if env.FpcalcResolver == nil {
		t.Error("DefaultEnv() FpcalcResolver = nil, want non-nil")
	}
	if env.ConfigLoader == nil {
		t.Error("DefaultEnv() ConfigLoader = nil, want non-nil")
	}
	if _, ok := env.Decoder.(*audio.WAVDecoder); !ok {
		t.Errorf("DefaultEnv() Decoder = %T, want *audio.WAVDecoder", env.Decoder)
	}
	if env.FingerprinterFactory == nil {
		t.Error("DefaultEnv() FingerprinterFactory = nil, want non-nil")
	}
	if env.CacheOpener == nil {
		t.Error("DefaultEnv() CacheOpener = nil, want non-nil")
	}
}

// ---------------------------------------------------------------------------
// Tests for NewEnv options
// ---------------------------------------------------------------------------

func TestNewEnvAppliesOptions(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resolver := &mockFpcalcResolver{}
	loader := &mockConfigLoader{}
	decoder := &mockDecoder{}
	factory := &mockFingerprinterFactory{}
	opener := &mockCacheOpener{}

	env := NewEnv(
		WithStdout(&stdout),
		WithStderr(&stderr),
		WithGetenv(staticEnv(map[string]string{"K": "v"})),
		WithNow(fixedTime(fixed)),
		WithFpcalcResolver(resolver),
		WithConfigLoader(loader),
		WithDecoder(decoder),
		WithFingerprinterFactory(factory),
		WithCacheOpener(opener),
	)

	if env.Stdout != &stdout || env.Stderr != &stderr {
		t.Error("NewEnv() did not apply writers")
	}
	if env.Getenv("K") != "v" {
		t.Errorf("Getenv(K) = %q, want v", env.Getenv("K"))
	}
	if !env.Now().Equal(fixed) {
		t.Errorf("Now() = %v, want %v", env.Now(), fixed)
	}
	if env.FpcalcResolver != resolver || env.ConfigLoader != loader {
		t.Error("NewEnv() did not apply resolver/loader")
	}
	if env.Decoder != decoder || env.FingerprinterFactory != factory || env.CacheOpener != opener {
		t.Error("NewEnv() did not apply decoder/factory/opener")
	}
}

func TestDefaultFingerprinterFactoryRejectsAlgorithm(t *testing.T) {
	t.Parallel()

	if _, err := (defaultFingerprinterFactory{}).NewFingerprinter("/usr/bin/fpcalc", 9, nil); err == nil {
		t.Error("NewFingerprinter(algorithm 9) expected error")
	}
}

func TestDefaultCacheOpenerOpensBadger(t *testing.T) {
	t.Parallel()

	c, err := (defaultCacheOpener{}).Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	if err := c.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() unexpected error: %v", err)
	}
}

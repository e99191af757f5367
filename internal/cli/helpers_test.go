package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-reprise/internal/audio"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	fpcalcResolver *mockFpcalcResolver
	configLoader   *mockConfigLoader
	decoder        *mockDecoder
	fingerprinter  *mockFingerprinterFactory
	cacheOpener    *mockCacheOpener
}

func newTestMocks() *testMocks {
	return &testMocks{
		fpcalcResolver: &mockFpcalcResolver{},
		configLoader:   &mockConfigLoader{},
		decoder:        &mockDecoder{tracks: make(map[string]audio.PCM)},
		fingerprinter:  &mockFingerprinterFactory{},
		cacheOpener:    &mockCacheOpener{},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

type testEnvOptions struct {
	getenv func(string) string
	now    func() time.Time
	mocks  *testMocks
}

type testEnvOption func(*testEnvOptions)

func withTestMocks(m *testMocks) testEnvOption {
	return func(o *testEnvOptions) { o.mocks = m }
}

func withTestGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env, stdout, stderr and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *syncBuffer, *syncBuffer, *testMocks) {
	options := &testEnvOptions{
		getenv: staticEnv(nil),
		now:    fixedTime(time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)),
		mocks:  newTestMocks(),
	}
	for _, opt := range opts {
		opt(options)
	}

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Env{
		Stdout:               stdout,
		Stderr:               stderr,
		Getenv:               options.getenv,
		Now:                  options.now,
		FpcalcResolver:       options.mocks.fpcalcResolver,
		ConfigLoader:         options.mocks.configLoader,
		Decoder:              options.mocks.decoder,
		FingerprinterFactory: options.mocks.fingerprinter,
		CacheOpener:          options.mocks.cacheOpener,
	}
	return env, stdout, stderr, options.mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// seq returns n consecutive sample values starting at from.
func seq(from, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(from + i)
	}
	return out
}

// addTrack writes a placeholder file named name in dir and registers a mono
// 1 Hz track for it with the mock decoder. Returns the file path.
func addTrack(t *testing.T, m *testMocks, dir, name string, parts ...[]int16) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		t.Fatalf("failed to create track file: %v", err)
	}
	m.decoder.tracks[path] = audio.PCM{
		Path:       path,
		SampleRate: 1,
		Channels:   1,
		Samples:    slices.Concat(parts...),
	}
	return path
}

// introPair registers the two-episode fixture shared by the command tests:
// a 5 s intro at 0 s in ep1 (13 s long) and at 4 s in ep2 (14 s long).
func introPair(t *testing.T, m *testMocks, dir string) (string, string) {
	t.Helper()
	intro := seq(1, 5)
	a := addTrack(t, m, dir, "ep1.wav", intro, seq(100, 8))
	b := addTrack(t, m, dir, "ep2.wav", seq(200, 4), intro, seq(300, 5))
	return a, b
}

// executeCompare runs the root command with args under ctx.
func executeCompare(ctx context.Context, env *Env, args ...string) error {
	cmd := CompareCmd(env)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd.ExecuteContext(ctx)
}

// executeCommand runs an arbitrary command tree with args.
func executeCommand(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd.Execute()
}

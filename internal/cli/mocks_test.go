package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/config"
	"github.com/alnah/go-reprise/internal/fingerprint"
	"github.com/alnah/go-reprise/internal/fpcalc"
)

// ---------------------------------------------------------------------------
// Mock FpcalcResolver
// ---------------------------------------------------------------------------

type mockFpcalcResolver struct {
	ResolveFunc      func(ctx context.Context) (string, error)
	CheckVersionFunc func(ctx context.Context, fpcalcPath string)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFpcalcResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/fpcalc", nil
}

func (m *mockFpcalcResolver) CheckVersion(ctx context.Context, fpcalcPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, fpcalcPath)
	}
}

func (m *mockFpcalcResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock Decoder
// ---------------------------------------------------------------------------

// mockDecoder serves tracks keyed by path. Tests create empty files on disk
// so the command's existence checks pass.
type mockDecoder struct {
	mu     sync.Mutex
	tracks map[string]audio.PCM
	calls  int
}

func (m *mockDecoder) Decode(_ context.Context, path string) (audio.PCM, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	pcm, ok := m.tracks[path]
	if !ok {
		return audio.PCM{}, fmt.Errorf("%w: %s", audio.ErrDecode, path)
	}
	return pcm, nil
}

func (m *mockDecoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ---------------------------------------------------------------------------
// Mock FingerprinterFactory + Fingerprinter
// ---------------------------------------------------------------------------

// unitMeta makes one fingerprint item equal one second at a 1 Hz sample rate.
var unitMeta = fingerprint.Meta{Delay: 0, ItemDuration: 1, SampleRate: 1}

// mockFingerprinter spreads each sample into a 32-bit symbol.
type mockFingerprinter struct {
	FingerprintFunc func(ctx context.Context, pcm audio.PCM) (fingerprint.Sequence, error)
	progress        fpcalc.ProgressFunc

	mu    sync.Mutex
	calls int
}

func (m *mockFingerprinter) Fingerprint(ctx context.Context, pcm audio.PCM) (fingerprint.Sequence, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FingerprintFunc != nil {
		return m.FingerprintFunc(ctx, pcm)
	}
	if m.progress != nil {
		m.progress(pcm.Path, pcm.Bytes(), pcm.Bytes())
	}
	symbols := make([]uint32, len(pcm.Samples))
	for i, s := range pcm.Samples {
		symbols[i] = uint32(s) * 2654435761
	}
	return fingerprint.Sequence{
		Symbols:       symbols,
		Meta:          unitMeta,
		SampleRate:    pcm.SampleRate,
		Channels:      pcm.Channels,
		LengthSeconds: pcm.Seconds(),
	}, nil
}

func (m *mockFingerprinter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockFingerprinterFactory struct {
	NewFingerprinterFunc func(fpcalcPath string, algorithm int) (fingerprint.Fingerprinter, error)
	fingerprinter        *mockFingerprinter

	mu            sync.Mutex
	lastPath      string
	lastAlgorithm int
	hadProgress   bool
}

func (m *mockFingerprinterFactory) NewFingerprinter(fpcalcPath string, algorithm int, progress fpcalc.ProgressFunc) (fingerprint.Fingerprinter, error) {
	m.mu.Lock()
	m.lastPath = fpcalcPath
	m.lastAlgorithm = algorithm
	m.hadProgress = progress != nil
	m.mu.Unlock()

	if m.NewFingerprinterFunc != nil {
		return m.NewFingerprinterFunc(fpcalcPath, algorithm)
	}
	if m.fingerprinter == nil {
		m.fingerprinter = &mockFingerprinter{}
	}
	m.fingerprinter.progress = progress
	return m.fingerprinter, nil
}

func (m *mockFingerprinterFactory) LastAlgorithm() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAlgorithm
}

func (m *mockFingerprinterFactory) LastPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPath
}

func (m *mockFingerprinterFactory) HadProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hadProgress
}

// ---------------------------------------------------------------------------
// Mock CacheOpener + Cache
// ---------------------------------------------------------------------------

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

func (m *mockCache) Get(key []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	return v, ok, nil
}

func (m *mockCache) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[string(key)] = value
	return nil
}

func (m *mockCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *mockCache) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type mockCacheOpener struct {
	OpenFunc func(dir string) (Cache, error)
	cache    *mockCache

	mu        sync.Mutex
	openCalls int
	lastDir   string
}

func (m *mockCacheOpener) Open(dir string) (Cache, error) {
	m.mu.Lock()
	m.openCalls++
	m.lastDir = dir
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(dir)
	}
	if m.cache == nil {
		m.cache = &mockCache{}
	}
	return m.cache, nil
}

func (m *mockCacheOpener) OpenCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openCalls
}

// Compile-time interface verification.
var (
	_ FpcalcResolver       = (*mockFpcalcResolver)(nil)
	_ ConfigLoader         = (*mockConfigLoader)(nil)
	_ audio.Decoder        = (*mockDecoder)(nil)
	_ FingerprinterFactory = (*mockFingerprinterFactory)(nil)
	_ CacheOpener          = (*mockCacheOpener)(nil)
)

package fpcalc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// binaryName is the base name of the fpcalc binary.
	binaryName = "fpcalc"

	// binaryExtWindows is the file extension for Windows executables.
	binaryExtWindows = ".exe"

	// Raw PCM on stdin with -format/-rate/-channels appeared in chromaprint 1.4.
	minMajorVersion = 1
	minMinorVersion = 4
)

// Environment variable for a custom fpcalc path.
const envFpcalcPath = "FPCALC_PATH"

// ---------------------------------------------------------------------------
// Resolver - testable fpcalc resolution with dependency injection
// ---------------------------------------------------------------------------

// Resolver finds the fpcalc binary.
type Resolver struct {
	stat fileStatter
	env  envProvider
	goos string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(r *Resolver) { r.stat = s }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithPlatform sets the target OS (for testing cross-platform behavior).
func WithPlatform(goos string) ResolverOption {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		stat: osFileStatter{},
		env:  osEnvProvider{},
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds fpcalc using the following precedence:
//  1. FPCALC_PATH environment variable (error if set but invalid)
//  2. ~/.reprise/bin/fpcalc
//  3. System PATH
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if envPath := r.env.Getenv(envFpcalcPath); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFpcalcPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.installedPath(); err == nil {
		if _, err := r.stat.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := r.env.LookPath(binaryName); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w\n\n%s", ErrNotFound, r.manualInstallInstructions())
}

// installedPath returns the per-user install location.
func (r *Resolver) installedPath() (string, error) {
	home, err := r.env.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	name := binaryName
	if r.goos == "windows" {
		name += binaryExtWindows
	}
	return filepath.Join(home, ".reprise", "bin", name), nil
}

// manualInstallInstructions returns platform-specific instructions.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install fpcalc:
  brew install chromaprint

Or set FPCALC_PATH environment variable to your fpcalc binary.`
	case "linux":
		return `To install fpcalc:
  Ubuntu/Debian: sudo apt install libchromaprint-tools
  Fedora:        sudo dnf install chromaprint-tools
  Arch:          sudo pacman -S chromaprint

Or set FPCALC_PATH environment variable to your fpcalc binary.`
	case "windows":
		return `To install fpcalc, download chromaprint from https://acoustid.org/chromaprint
and place fpcalc.exe in %USERPROFILE%\.reprise\bin

Or set FPCALC_PATH environment variable to your fpcalc.exe.`
	default:
		return `To install fpcalc, download chromaprint from https://acoustid.org/chromaprint
Or set FPCALC_PATH environment variable to your fpcalc binary.`
	}
}

// ---------------------------------------------------------------------------
// VersionChecker
// ---------------------------------------------------------------------------

// VersionChecker verifies fpcalc version requirements.
type VersionChecker struct {
	executor *Executor
	stderr   io.Writer
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor for running fpcalc.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionStderr sets the writer for warning messages.
func WithVersionStderr(w io.Writer) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.stderr = w }
}

// NewVersionChecker creates a VersionChecker with the given options.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: NewExecutor(),
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Check warns on stderr when fpcalc is older than 1.4 but never fails.
// Returns true if the version was parsed.
func (vc *VersionChecker) Check(ctx context.Context, fpcalcPath string) bool {
	output, err := vc.executor.RunOutput(ctx, fpcalcPath, []string{"-version"})
	if err != nil && output == "" {
		return false
	}

	// "fpcalc version 1.5.1"
	major, minor, ok := parseVersion(output)
	if !ok {
		return false
	}

	if major < minMajorVersion || (major == minMajorVersion && minor < minMinorVersion) {
		fmt.Fprintf(vc.stderr, "Warning: fpcalc version %d.%d detected, version %d.%d+ required for raw input\n",
			major, minor, minMajorVersion, minMinorVersion)
	}
	return true
}

// parseVersion reads the first "fpcalc version X.Y" line of output.
func parseVersion(output string) (major, minor int, ok bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "fpcalc version") {
			continue
		}
		if _, err := fmt.Sscanf(line, "fpcalc version %d.%d", &major, &minor); err != nil {
			return 0, 0, false
		}
		return major, minor, true
	}
	return 0, 0, false
}

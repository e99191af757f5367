package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-reprise/internal/audio"
	"github.com/alnah/go-reprise/internal/cli"
	"github.com/alnah/go-reprise/internal/config"
	"github.com/alnah/go-reprise/internal/fingerprint"
	"github.com/alnah/go-reprise/internal/fpcalc"
	"github.com/alnah/go-reprise/internal/interrupt"
	"github.com/alnah/go-reprise/internal/match"
	"github.com/alnah/go-reprise/internal/pipeline"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitSetup       = 3
	ExitValidation  = 4
	ExitFingerprint = 5
	ExitBadPair     = 6
	ExitInterrupt   = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels the context, a second one exits immediately.
	handler, ctx := interrupt.NewHandler(context.Background())

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	rootCmd := cli.CompareCmd(env)
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	// Silence Cobra's default error/usage printing; we handle it ourselves.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(cli.ConfigCmd(env))

	err := rootCmd.ExecuteContext(ctx)
	handler.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) || errors.Is(err, pipeline.ErrNotEnoughTracks) {
		return ExitUsage
	}

	// Setup errors.
	if errors.Is(err, fpcalc.ErrNotFound) {
		return ExitSetup
	}

	// Validation errors.
	if errors.Is(err, audio.ErrFileNotFound) || errors.Is(err, audio.ErrUnsupportedFormat) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, cli.ErrInvalidFlag) ||
		errors.Is(err, fpcalc.ErrUnsupportedAlgorithm) || errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrUnknownKey) || errors.Is(err, config.ErrNotDirectory) ||
		errors.Is(err, config.ErrNotWritable) {
		return ExitValidation
	}

	// Bad input pairs. Checked before decode errors: a pair error may wrap both.
	if errors.Is(err, audio.ErrChannelMismatch) || errors.Is(err, audio.ErrSampleRateMismatch) ||
		errors.Is(err, audio.ErrIdenticalTracks) || errors.Is(err, fingerprint.ErrMetaMismatch) ||
		errors.Is(err, fingerprint.ErrInvalidMeta) || errors.Is(err, pipeline.ErrTrackTooShort) ||
		errors.Is(err, fpcalc.ErrEmptyFingerprint) || errors.Is(err, match.ErrEmptySequence) {
		return ExitBadPair
	}

	// Decode and fingerprint failures.
	if errors.Is(err, audio.ErrDecode) || errors.Is(err, audio.ErrEmptyAudio) ||
		errors.Is(err, fpcalc.ErrFingerprintFailed) {
		return ExitFingerprint
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"unknown command",        // Subcommand doesn't exist
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value type
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
	"requires at most",       // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

package fingerprint

import "errors"

var (
	// ErrInvalidMeta indicates a fingerprinter reported unusable timing metadata.
	ErrInvalidMeta = errors.New("invalid fingerprint metadata")

	// ErrMetaMismatch indicates a track's fingerprint metadata differs from the first track of the run.
	ErrMetaMismatch = errors.New("fingerprint metadata mismatch")
)

package fpcalc

import "errors"

// ErrNotFound indicates the fpcalc binary could not be located.
var ErrNotFound = errors.New("fpcalc not found")

// ErrUnsupportedAlgorithm indicates an unknown chromaprint algorithm number.
var ErrUnsupportedAlgorithm = errors.New("unsupported fingerprint algorithm")

// ErrFingerprintFailed indicates fpcalc exited with an error or produced unreadable output.
var ErrFingerprintFailed = errors.New("fingerprinting failed")

// ErrEmptyFingerprint indicates fpcalc produced no items, usually because the audio is too short.
var ErrEmptyFingerprint = errors.New("fingerprint is empty, track too short")

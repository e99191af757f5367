package match

import "errors"

var (
	// ErrEmptySequence indicates one of the compared sequences has no items.
	ErrEmptySequence = errors.New("fingerprint sequence is empty")

	// ErrTooLong indicates the combined sequences do not fit in 32-bit indices.
	ErrTooLong = errors.New("fingerprint sequences too long")
)

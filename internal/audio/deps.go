package audio

import (
	"io"
	"os"
)

// fileOpener opens audio files for decoding.
type fileOpener interface {
	Open(name string) (io.ReadSeekCloser, error)
}

// --- Default implementations using real OS functions ---

// osFileOpener implements fileOpener using os.Open.
type osFileOpener struct{}

func (osFileOpener) Open(name string) (io.ReadSeekCloser, error) {
	// #nosec G304 -- path is a user-selected input track
	return os.Open(name)
}

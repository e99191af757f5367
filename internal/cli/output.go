package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alnah/go-reprise/internal/format"
	"github.com/alnah/go-reprise/internal/match"
	"github.com/alnah/go-reprise/internal/pipeline"
)

// renderReport writes one pair block. By default each track lists the
// ranges it does not share with its neighbor; with all set, the full
// timeline is printed with a label per segment.
func renderReport(w io.Writer, rep pipeline.PairReport, all bool) error {
	if _, err := fmt.Fprintf(w, "# pair %d: %s <-> %s\n", rep.Index, rep.PathA, rep.PathB); err != nil {
		return err
	}
	if err := renderTrack(w, rep.PathA, rep.Result.TimelineA, all); err != nil {
		return err
	}
	return renderTrack(w, rep.PathB, rep.Result.TimelineB, all)
}

func renderTrack(w io.Writer, path string, timeline []match.Segment, all bool) error {
	if _, err := fmt.Fprintln(w, path); err != nil {
		return err
	}

	var lines []string
	if all {
		for _, s := range timeline {
			lines = append(lines, fmt.Sprintf("%s to %s %s",
				format.Timestamp(s.Start), format.Timestamp(s.End), s.Label()))
		}
	} else {
		for _, r := range match.Unique(timeline) {
			lines = append(lines, fmt.Sprintf("%s to %s", format.Timestamp(r.Start), format.Timestamp(r.End)))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "(none)")
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "  %s\n", l); err != nil {
			return err
		}
	}
	return nil
}

// checkOutputAvailable fails early when the output file already exists,
// before any audio is decoded. writeFileAtomic repeats the check at write time.
func checkOutputAvailable(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
	}
	return nil
}

// writeFileAtomic writes content to path atomically.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
// On write failure, the partial file is removed.
func writeFileAtomic(path, content string) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}

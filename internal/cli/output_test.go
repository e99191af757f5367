package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-reprise/internal/match"
	"github.com/alnah/go-reprise/internal/pipeline"
)

// ---------------------------------------------------------------------------
// renderReport
// ---------------------------------------------------------------------------

func TestRenderReport(t *testing.T) {
	t.Parallel()

	rep := pipeline.PairReport{
		Index: 3,
		PathA: "ep3.wav",
		PathB: "ep4.wav",
		Result: match.Result{
			TimelineA: match.Timeline([]match.TimeRange{{Start: 0, End: 12.5}}, 1800),
			TimelineB: match.Timeline([]match.TimeRange{{Start: 0, End: 1805.25}}, 1805.25),
		},
	}

	tests := []struct {
		name string
		all  bool
		want string
	}{
		{
			name: "unique only",
			want: "# pair 3: ep3.wav <-> ep4.wav\n" +
				"ep3.wav\n" +
				"  00:00:12.500 to 00:30:00.000\n" +
				"ep4.wav\n" +
				"  (none)\n",
		},
		{
			name: "full timeline",
			all:  true,
			want: "# pair 3: ep3.wav <-> ep4.wav\n" +
				"ep3.wav\n" +
				"  00:00:00.000 to 00:00:12.500 shared\n" +
				"  00:00:12.500 to 00:30:00.000 unique\n" +
				"ep4.wav\n" +
				"  00:00:00.000 to 00:30:05.250 shared\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := RenderReport(&buf, rep, tt.all); err != nil {
				t.Fatalf("RenderReport() unexpected error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("RenderReport() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderReportEmptyTimeline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := pipeline.PairReport{Index: 1, PathA: "a", PathB: "b"}
	if err := RenderReport(&buf, rep, true); err != nil {
		t.Fatalf("RenderReport() unexpected error: %v", err)
	}
	want := "# pair 1: a <-> b\na\n  (none)\nb\n  (none)\n"
	if got := buf.String(); got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// writeFileAtomic
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := WriteFileAtomic(path, "hello\n"); err != nil {
		t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("content = %q, want %q", data, "hello\n")
	}

	err = WriteFileAtomic(path, "again")
	if !errors.Is(err, ErrOutputExists) {
		t.Errorf("second WriteFileAtomic() error = %v, want %v", err, ErrOutputExists)
	}
	if data, _ := os.ReadFile(path); string(data) != "hello\n" {
		t.Errorf("existing file overwritten: %q", data)
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "report.txt")
	err := WriteFileAtomic(path, "x")
	if err == nil || errors.Is(err, ErrOutputExists) {
		t.Errorf("WriteFileAtomic() error = %v, want create failure", err)
	}
}

package cli

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressBars renders one bar per fingerprint feed in verbose mode.
// A track fingerprinted twice (trim changed between pairs) gets a fresh bar.
type progressBars struct {
	p    *mpb.Progress
	mu   sync.Mutex
	bars map[string]*mpb.Bar
	done bool
}

func newProgressBars(w io.Writer) *progressBars {
	return &progressBars{
		p:    mpb.New(mpb.WithOutput(w), mpb.WithWidth(40)),
		bars: make(map[string]*mpb.Bar),
	}
}

// update matches fpcalc.ProgressFunc. done and total are PCM bytes.
func (pb *progressBars) update(track string, done, total int64) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.done {
		return
	}

	bar, ok := pb.bars[track]
	if !ok || bar.Completed() {
		bar = pb.p.AddBar(total,
			mpb.PrependDecorators(
				decor.Name(filepath.Base(track)+" "),
				decor.CountersKibiByte("% .1f / % .1f"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
			),
		)
		pb.bars[track] = bar
	}
	bar.SetCurrent(done)
}

// wait drops unfinished bars (cancelled or failed feeds) and flushes output.
// It is safe to call on a nil receiver and more than once.
func (pb *progressBars) wait() {
	if pb == nil {
		return
	}
	pb.mu.Lock()
	if pb.done {
		pb.mu.Unlock()
		return
	}
	pb.done = true
	for _, bar := range pb.bars {
		if !bar.Completed() {
			bar.Abort(true)
		}
	}
	pb.mu.Unlock()
	pb.p.Wait()
}

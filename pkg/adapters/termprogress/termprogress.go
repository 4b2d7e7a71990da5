// Package termprogress renders extraction progress as a terminal bar
// through schollz/progressbar. It implements ports.ProgressSink for the
// CLI; when stderr is not a terminal the sink stays silent so piped
// output remains clean.
package termprogress

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/user/unbundle/pkg/ports"
)

// Sink renders ProgressInfo snapshots. A new bar is created whenever the
// operation or total changes, so one sink serves a whole CLI run.
type Sink struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	op      ports.Operation
	total   int64
	done    int64
	enabled bool
}

// New returns a sink writing to stderr, active only when stderr is a
// terminal.
func New() *Sink {
	return &Sink{
		enabled: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// Report implements ports.ProgressSink.
func (s *Sink) Report(info ports.ProgressInfo) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar == nil || s.op != info.Operation || s.total != info.Total {
		s.bar = newBar(info)
		s.op = info.Operation
		s.total = info.Total
		s.done = 0
	}

	if info.Total > 0 {
		_ = s.bar.Set64(info.Done)
		if info.Done >= info.Total {
			_ = s.bar.Finish()
			s.bar = nil
		}
		return
	}

	// Unknown total renders as a spinner fed by increments.
	if delta := info.Done - s.done; delta > 0 {
		_ = s.bar.Add64(delta)
		s.done = info.Done
	}
}

// Finish closes out any bar still rendering, for operations that end
// before reaching their total.
func (s *Sink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		_ = s.bar.Finish()
		s.bar = nil
	}
}

func newBar(info ports.ProgressInfo) *progressbar.ProgressBar {
	total := info.Total
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(describe(info.Operation)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
}

func describe(op ports.Operation) string {
	return strings.ReplaceAll(op.String(), "_", " ")
}

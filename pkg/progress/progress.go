// Package progress provides batched progress reporting and cooperative
// cancellation for long-running extraction operations.
//
// A Tracker wraps a ports.ProgressSink and throttles notifications to a
// caller-chosen cadence. A Token is a shared flag polled by every decode
// loop; cancelling it makes the operation return ErrCancelled.
package progress

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/user/unbundle/pkg/ports"
)

// ErrCancelled is returned when an operation observes a cancelled Token.
var ErrCancelled = errors.New("unbundle: operation cancelled")

// Token signals cooperative cancellation to extraction pipelines.
//
// A Token may be shared across goroutines: Cancel can be called from any
// goroutine while pipelines poll Cancelled between units of work. The
// zero value is ready to use.
type Token struct {
	cancelled atomic.Bool
}

// NewToken creates a new, uncancelled Token.
func NewToken() *Token {
	return &Token{}
}

// Cancel requests cancellation. Safe to call multiple times.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether cancellation was requested.
func (t *Token) Cancelled() bool {
	if t == nil {
		return false
	}
	return t.cancelled.Load()
}

// Tracker reports progress snapshots at a batched cadence.
//
// Advance is called once per processed item; a snapshot is delivered every
// batchSize items. Finish always delivers a final snapshot so sinks see
// the terminal state even when the item count is not a batch multiple.
type Tracker struct {
	op      ports.Operation
	sink    ports.ProgressSink
	total   int64
	batch   int64
	done    int64
	started time.Time
}

// NewTracker creates a tracker for op reporting to sink.
//
// total may be 0 when the item count is unknown. batchSize values below 1
// are clamped to 1. A nil sink produces a tracker that never reports.
func NewTracker(op ports.Operation, sink ports.ProgressSink, total, batchSize int64) *Tracker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Tracker{
		op:      op,
		sink:    sink,
		total:   total,
		batch:   batchSize,
		started: time.Now(),
	}
}

// Advance records one completed item and reports when a batch boundary is
// crossed.
func (t *Tracker) Advance() {
	t.done++
	if t.sink == nil {
		return
	}
	if t.done%t.batch == 0 {
		t.sink.Report(t.snapshot())
	}
}

// AdvanceN records n completed items at once, reporting once if a batch
// boundary was crossed.
func (t *Tracker) AdvanceN(n int64) {
	if n <= 0 {
		return
	}
	before := t.done
	t.done += n
	if t.sink == nil {
		return
	}
	if t.done/t.batch != before/t.batch {
		t.sink.Report(t.snapshot())
	}
}

// Finish delivers the final snapshot unconditionally.
func (t *Tracker) Finish() {
	if t.sink == nil {
		return
	}
	t.sink.Report(t.snapshot())
}

// Done returns the number of items recorded so far.
func (t *Tracker) Done() int64 {
	return t.done
}

func (t *Tracker) snapshot() ports.ProgressInfo {
	elapsed := time.Since(t.started)

	percent := -1.0
	var eta time.Duration
	if t.total > 0 {
		percent = float64(t.done) / float64(t.total) * 100.0
		if t.done > 0 && t.done < t.total {
			perItem := elapsed / time.Duration(t.done)
			eta = perItem * time.Duration(t.total-t.done)
		}
	}

	return ports.ProgressInfo{
		Operation: t.op,
		Done:      t.done,
		Total:     t.total,
		Percent:   percent,
		Elapsed:   elapsed,
		ETA:       eta,
	}
}

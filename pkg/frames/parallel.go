package frames

import (
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

// splitRuns partitions ascending targets into runs where consecutive
// numbers differ by at most gap. Within a run, decoding forward after one
// seek beats per-frame seeking; across runs, parallel workers hide the
// seek latency.
func splitRuns(targets []int64, gap int64) [][]int64 {
	if len(targets) == 0 {
		return nil
	}
	var runs [][]int64
	start := 0
	for i := 1; i < len(targets); i++ {
		if targets[i]-targets[i-1] > gap {
			runs = append(runs, targets[start:i])
			start = i
		}
	}
	return append(runs, targets[start:])
}

// ExtractParallel decodes the frames selected by r across multiple
// workers, one independently opened handle per run, and returns the merged
// results in ascending frame-number order.
//
// The call is all-or-nothing: any worker's error, including cancellation,
// fails the whole call and partial results are discarded.
func (e *Extractor) ExtractParallel(r Range, opts *Options) ([]Frame, error) {
	o := opts.normalized()
	res, err := e.preflight(r, o)
	if err != nil {
		return nil, err
	}
	if res.empty() {
		return nil, nil
	}

	targets := res.materialize()
	runs := splitRuns(targets, o.RunGap)

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(runs) {
		workers = len(runs)
	}
	e.log.Info("splitting %d frames into %d runs", len(targets), len(runs))

	// Workers stay silent on progress; the coordinator reports whole
	// runs as they complete.
	tracker := progress.NewTracker(ports.OpFrameExtraction, o.Progress, int64(len(targets)), o.BatchSize)
	var mu sync.Mutex

	results := make([][]Frame, len(runs))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, run := range runs {
		if o.Token.Cancelled() {
			_ = g.Wait()
			return nil, progress.ErrCancelled
		}
		g.Go(func() error {
			wo := *o
			wo.Progress = nil
			out, err := extractRun(e.f.Path(), e.track, run, &wo, e.log)
			if err != nil {
				return err
			}
			results[i] = out
			mu.Lock()
			tracker.AdvanceN(int64(len(out)))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tracker.Finish()

	// Workers may finish out of order; restore global order before
	// returning.
	out := make([]Frame, 0, len(targets))
	for _, part := range results {
		out = append(out, part...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// extractRun decodes one contiguous run on a fresh handle, giving the
// worker its own demuxer and decoder with no state shared across workers.
func extractRun(path string, track int, run []int64, o *Options, log ports.Logger) ([]Frame, error) {
	file, err := media.Open(path, media.WithLogger(log))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ext, err := New(file, track)
	if err != nil {
		return nil, err
	}
	defer ext.Close()

	return ext.Extract(List(run), o)
}

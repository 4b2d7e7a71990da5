package frames

import (
	"fmt"

	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

// sceneAnalysisWidth is the width frames are downscaled to before
// differencing. Cuts survive heavy downscaling and the comparison gets
// two orders of magnitude cheaper.
const sceneAnalysisWidth = 64

// DefaultSceneThreshold is the minimum score treated as a cut.
const DefaultSceneThreshold = 10.0

// SceneChange marks a detected cut.
type SceneChange struct {
	FrameNumber int64
	TimeSeconds float64
	// Score is the mean absolute luma difference to the previous frame,
	// scaled to 0..100.
	Score float64
}

// SceneOptions configures DetectScenes.
type SceneOptions struct {
	Threshold float64

	Progress  ports.ProgressSink
	BatchSize int64
	Token     *progress.Token
}

// DefaultSceneOptions returns the baseline scene detection configuration.
func DefaultSceneOptions() *SceneOptions {
	return &SceneOptions{
		Threshold: DefaultSceneThreshold,
		BatchSize: 1,
	}
}

func (o *SceneOptions) normalized() *SceneOptions {
	if o == nil {
		return DefaultSceneOptions()
	}
	c := *o
	if c.Threshold <= 0 {
		c.Threshold = DefaultSceneThreshold
	}
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
	return &c
}

// DetectScenes decodes the whole track downscaled to grayscale and reports
// every frame whose luma difference to its predecessor crosses the
// threshold.
func (e *Extractor) DetectScenes(opts *SceneOptions) ([]SceneChange, error) {
	o := opts.normalized()

	r, err := e.wholeTrack()
	if err != nil {
		return nil, err
	}

	fo := DefaultOptions().
		WithSize(sceneAnalysisWidth, 0).
		WithFormat(Gray8).
		WithToken(o.Token)

	it, err := e.Iter(r, fo)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	tracker := progress.NewTracker(ports.OpSceneDetection, o.Progress, e.frameCount, o.BatchSize)

	var prev []byte
	var scenes []SceneChange
	for it.Next() {
		f := it.Frame()
		if prev != nil && len(prev) == len(f.Data) {
			score := meanAbsDiff(prev, f.Data)
			if score >= o.Threshold {
				scenes = append(scenes, SceneChange{
					FrameNumber: f.Number,
					TimeSeconds: f.TimeSeconds,
					Score:       score,
				})
			}
		}
		prev = f.Data
		tracker.Advance()
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	tracker.Finish()

	e.log.Debug("scene detection found %d cuts", len(scenes))
	return scenes, nil
}

// wholeTrack builds a range covering the full track from whichever length
// information the container records.
func (e *Extractor) wholeTrack() (Range, error) {
	if e.frameCount > 0 {
		return Span{Start: 0, End: e.frameCount - 1}, nil
	}
	if d := e.f.Duration(); d > 0 {
		return TimeSpan{Start: 0, End: d}, nil
	}
	return nil, fmt.Errorf("%w: track length unknown", media.ErrInvalidInput)
}

func meanAbsDiff(a, b []byte) float64 {
	var sum int64
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += int64(d)
	}
	return float64(sum) / float64(len(a)) / 255.0 * 100.0
}

package frames

import (
	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

// DefaultRunGap is the largest distance between consecutive frame numbers
// still considered one contiguous run by the parallel coordinator. Within
// a run, decoding forward past unwanted frames is cheaper than seeking;
// beyond it, a fresh seek wins. Tunable via Options.RunGap.
const DefaultRunGap = 30

// Options configures frame extraction. The zero-configured value from
// DefaultOptions extracts full-size RGB8 frames in software with no
// progress reporting.
type Options struct {
	// Width and Height select the output size; 0 keeps the source value.
	// With exactly one set and KeepAspect on, the other is derived from
	// the source aspect ratio.
	Width      int
	Height     int
	KeepAspect bool

	Format PixelFormat

	Hardware av.HardwareConfig

	// Progress, when set, receives a snapshot every BatchSize extracted
	// frames.
	Progress  ports.ProgressSink
	BatchSize int64

	// Token, when set, is polled once per demuxed packet and once per
	// flushed frame; cancelling it aborts with progress.ErrCancelled.
	Token *progress.Token

	// RunGap and Workers steer the parallel path only.
	RunGap  int64
	Workers int
}

// DefaultOptions returns the baseline configuration.
func DefaultOptions() *Options {
	return &Options{
		KeepAspect: true,
		Format:     RGB8,
		Hardware:   av.HardwareConfig{Mode: av.HardwareSoftware},
		BatchSize:  1,
		RunGap:     DefaultRunGap,
	}
}

// WithSize sets the output dimensions. Pass 0 to derive one from the
// other.
func (o *Options) WithSize(width, height int) *Options {
	o.Width = width
	o.Height = height
	return o
}

// WithFormat sets the output pixel layout.
func (o *Options) WithFormat(f PixelFormat) *Options {
	o.Format = f
	return o
}

// WithKeepAspect toggles aspect-ratio preservation for single-dimension
// resizes.
func (o *Options) WithKeepAspect(keep bool) *Options {
	o.KeepAspect = keep
	return o
}

// WithHardware selects the decoding backend.
func (o *Options) WithHardware(cfg av.HardwareConfig) *Options {
	o.Hardware = cfg
	return o
}

// WithProgress attaches a progress sink reporting every batchSize frames.
func (o *Options) WithProgress(sink ports.ProgressSink, batchSize int64) *Options {
	o.Progress = sink
	if batchSize >= 1 {
		o.BatchSize = batchSize
	}
	return o
}

// WithToken attaches a cancellation token.
func (o *Options) WithToken(t *progress.Token) *Options {
	o.Token = t
	return o
}

// WithWorkers caps the number of parallel extraction workers. 0 lets the
// coordinator pick.
func (o *Options) WithWorkers(n int) *Options {
	o.Workers = n
	return o
}

// normalized returns o with nil replaced by defaults and out-of-range
// values corrected, leaving the caller's value untouched.
func (o *Options) normalized() *Options {
	if o == nil {
		return DefaultOptions()
	}
	c := *o
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
	if c.RunGap < 1 {
		c.RunGap = DefaultRunGap
	}
	return &c
}

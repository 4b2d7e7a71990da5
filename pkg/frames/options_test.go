package frames

import (
	"testing"

	"github.com/user/unbundle/pkg/av"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()

	if o.Format != RGB8 {
		t.Errorf("default format = %v, want rgb8", o.Format)
	}
	if !o.KeepAspect {
		t.Error("aspect preservation must default on")
	}
	if o.Hardware.Mode != av.HardwareSoftware {
		t.Errorf("default hardware mode = %v, want software", o.Hardware.Mode)
	}
	if o.BatchSize != 1 {
		t.Errorf("default batch size = %d, want 1", o.BatchSize)
	}
	if o.RunGap != DefaultRunGap {
		t.Errorf("default run gap = %d, want %d", o.RunGap, DefaultRunGap)
	}
	if o.Width != 0 || o.Height != 0 {
		t.Error("default must keep source dimensions")
	}
}

func TestOptionsChaining(t *testing.T) {
	o := DefaultOptions().
		WithSize(320, 0).
		WithFormat(Gray8).
		WithKeepAspect(false).
		WithWorkers(4)

	if o.Width != 320 || o.Height != 0 || o.Format != Gray8 || o.KeepAspect || o.Workers != 4 {
		t.Errorf("chained options = %+v", o)
	}
}

func TestOptionsNormalized(t *testing.T) {
	o := (*Options)(nil).normalized()
	if o.Format != RGB8 || o.BatchSize != 1 {
		t.Errorf("nil options normalized = %+v", o)
	}

	bad := &Options{BatchSize: -3, RunGap: 0}
	n := bad.normalized()
	if n.BatchSize != 1 || n.RunGap != DefaultRunGap {
		t.Errorf("normalized = %+v", n)
	}
	// The caller's value stays untouched.
	if bad.BatchSize != -3 || bad.RunGap != 0 {
		t.Errorf("normalization mutated the input: %+v", bad)
	}
}

func TestWithProgressClampsBatch(t *testing.T) {
	o := DefaultOptions().WithProgress(nil, 0)
	if o.BatchSize != 1 {
		t.Errorf("batch size = %d, want clamp to 1", o.BatchSize)
	}

	o = DefaultOptions().WithProgress(nil, 25)
	if o.BatchSize != 25 {
		t.Errorf("batch size = %d, want 25", o.BatchSize)
	}
}

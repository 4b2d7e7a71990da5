package media

import (
	"math"
	"testing"
)

func TestFillIntervals(t *testing.T) {
	r := &GopReport{Keyframes: []KeyframeInfo{
		{TimeSeconds: 0},
		{TimeSeconds: 2},
		{TimeSeconds: 5},
		{TimeSeconds: 6},
	}}

	fillIntervals(r)

	if r.MinInterval != 1 {
		t.Errorf("min interval = %f, want 1", r.MinInterval)
	}
	if r.MaxInterval != 3 {
		t.Errorf("max interval = %f, want 3", r.MaxInterval)
	}
	if r.AverageInterval != 2 {
		t.Errorf("average interval = %f, want 2", r.AverageInterval)
	}
}

func TestFillIntervalsSingleKeyframe(t *testing.T) {
	r := &GopReport{Keyframes: []KeyframeInfo{{TimeSeconds: 0}}}

	fillIntervals(r)

	if r.AverageInterval != 0 || r.MinInterval != 0 || r.MaxInterval != 0 {
		t.Errorf("intervals with one keyframe must stay zero: %+v", r)
	}
}

func TestMeanAndStdDev(t *testing.T) {
	mean, sd := meanAndStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Errorf("mean = %f, want 5", mean)
	}
	if sd != 2 {
		t.Errorf("stddev = %f, want 2", sd)
	}

	mean, sd = meanAndStdDev(nil)
	if mean != 0 || sd != 0 {
		t.Errorf("empty input: mean=%f sd=%f, want zeros", mean, sd)
	}
}

func TestConstantRateClassification(t *testing.T) {
	// Uniform 1/30s intervals: stddev is zero, well under 10% of mean.
	intervals := make([]float64, 100)
	for i := range intervals {
		intervals[i] = 1.0 / 30.0
	}
	mean, sd := meanAndStdDev(intervals)
	if sd > mean*0.1 {
		t.Errorf("constant intervals classified as variable: mean=%f sd=%f", mean, sd)
	}
}

func TestVariableRateClassification(t *testing.T) {
	// Alternating long and short intervals spread far beyond 10%.
	intervals := make([]float64, 100)
	for i := range intervals {
		if i%2 == 0 {
			intervals[i] = 1.0 / 15.0
		} else {
			intervals[i] = 1.0 / 60.0
		}
	}
	mean, sd := meanAndStdDev(intervals)
	if sd <= mean*0.1 {
		t.Errorf("alternating intervals classified as constant: mean=%f sd=%f", mean, sd)
	}
}

func TestLayoutName(t *testing.T) {
	if got := layoutName(1); got != "mono" {
		t.Errorf("layoutName(1) = %q", got)
	}
	if got := layoutName(2); got != "stereo" {
		t.Errorf("layoutName(2) = %q", got)
	}
	if got := layoutName(6); got != "6ch" {
		t.Errorf("layoutName(6) = %q", got)
	}
}

func TestFrameNumberAt(t *testing.T) {
	if got := frameNumberAt(1.0, 30); got != 30 {
		t.Errorf("frameNumberAt(1.0, 30) = %d, want 30", got)
	}
	// Inside frame 29's display interval.
	if got := frameNumberAt(0.999, 30); got != 29 {
		t.Errorf("frameNumberAt(0.999, 30) = %d, want 29", got)
	}
	if got := frameNumberAt(1.0, 0); got != 0 {
		t.Errorf("frameNumberAt with zero fps = %d, want 0", got)
	}
	if math.IsNaN(float64(frameNumberAt(0, 30))) {
		t.Error("unexpected NaN")
	}
}

package audio

import (
	"math"
	"testing"
)

func TestBinSamplesExactCount(t *testing.T) {
	// Bin counts that do not divide the sample count evenly must still
	// come out exact, padded with zero bins when the samples run short.
	for _, tt := range []struct {
		samples int
		bins    int
	}{
		{samples: 44100, bins: 80},
		{samples: 1000, bins: 80},
		{samples: 100, bins: 80},
		{samples: 3, bins: 8},
		{samples: 0, bins: 80},
	} {
		samples := make([]float32, tt.samples)
		for i := range samples {
			samples[i] = float32(math.Sin(float64(i) / 100))
		}
		bins := binSamples(samples, tt.bins)
		if len(bins) != tt.bins {
			t.Errorf("binSamples(%d samples, %d bins) returned %d bins", tt.samples, tt.bins, len(bins))
		}
	}
}

func TestBinSamplesStats(t *testing.T) {
	bins := binSamples([]float32{0.5, -0.5, 1, -1}, 2)
	if len(bins) != 2 {
		t.Fatalf("got %d bins, want 2", len(bins))
	}
	if bins[0].Min != -0.5 || bins[0].Max != 0.5 {
		t.Errorf("bin 0 min/max = %v/%v, want -0.5/0.5", bins[0].Min, bins[0].Max)
	}
	if math.Abs(float64(bins[0].RMS)-0.5) > 1e-6 {
		t.Errorf("bin 0 rms = %v, want 0.5", bins[0].RMS)
	}
	if bins[1].Min != -1 || bins[1].Max != 1 {
		t.Errorf("bin 1 min/max = %v/%v, want -1/1", bins[1].Min, bins[1].Max)
	}
	if math.Abs(float64(bins[1].RMS)-1) > 1e-6 {
		t.Errorf("bin 1 rms = %v, want 1", bins[1].RMS)
	}
}

func TestBinSamplesZeroPad(t *testing.T) {
	bins := binSamples([]float32{0.25, 0.25, 0.25}, 8)
	if len(bins) != 8 {
		t.Fatalf("got %d bins, want 8", len(bins))
	}
	for i := 3; i < 8; i++ {
		if bins[i].Min != 0 || bins[i].Max != 0 || bins[i].RMS != 0 {
			t.Errorf("padding bin %d = %+v, want zeros", i, bins[i])
		}
	}
}

func TestBinSamplesInvariants(t *testing.T) {
	samples := make([]float32, 12345)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i)/7)) * 0.8
	}
	bins := binSamples(samples, 80)
	if len(bins) != 80 {
		t.Fatalf("got %d bins, want 80", len(bins))
	}
	for i, b := range bins {
		if b.Min > b.Max {
			t.Errorf("bin %d: min %v > max %v", i, b.Min, b.Max)
		}
		if b.RMS < 0 || b.RMS > 1 {
			t.Errorf("bin %d: rms %v outside 0..1", i, b.RMS)
		}
	}
}

func TestWaveformOptionsNormalized(t *testing.T) {
	var nilOpts *WaveformOptions
	o := nilOpts.normalized()
	if o.Bins != DefaultWaveformBins {
		t.Errorf("nil options bins = %d, want %d", o.Bins, DefaultWaveformBins)
	}

	o = (&WaveformOptions{Bins: -3}).normalized()
	if o.Bins != DefaultWaveformBins {
		t.Errorf("negative bins normalized to %d, want %d", o.Bins, DefaultWaveformBins)
	}

	o = DefaultWaveformOptions().WithBins(120).WithRange(1, 5).normalized()
	if o.Bins != 120 {
		t.Errorf("bins = %d, want 120", o.Bins)
	}
	if o.Start != 1 || o.End != 5 {
		t.Errorf("range = %v..%v, want 1..5", o.Start, o.End)
	}
}

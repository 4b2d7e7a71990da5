package export

import (
	"image/color"
	"testing"
)

func TestWaveformPNGOptionsNormalized(t *testing.T) {
	var nilOpts *WaveformPNGOptions
	o := nilOpts.normalized()
	if o.Width != 800 || o.Height != 240 {
		t.Errorf("nil options normalized to %d×%d", o.Width, o.Height)
	}
	if o.Background == nil || o.Envelope == nil || o.Body == nil {
		t.Error("nil options must fill in all colors")
	}

	o = (&WaveformPNGOptions{Width: -5}).normalized()
	if o.Width != 800 || o.Height != 240 {
		t.Errorf("degenerate size normalized to %d×%d", o.Width, o.Height)
	}

	o = DefaultWaveformPNGOptions().
		WithSize(1600, 400).
		WithColors(color.White, color.Black, color.Black)
	if o.Width != 1600 || o.Height != 400 {
		t.Errorf("chained size = %d×%d", o.Width, o.Height)
	}
	if o.Background != color.Color(color.White) {
		t.Error("chained background not applied")
	}
}

func TestClampUnit(t *testing.T) {
	for _, tt := range []struct {
		in, want float64
	}{
		{in: 0.5, want: 0.5},
		{in: 1.2, want: 1},
		{in: -1.7, want: -1},
		{in: -1, want: -1},
	} {
		if got := clampUnit(tt.in); got != tt.want {
			t.Errorf("clampUnit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRectHeight(t *testing.T) {
	if got := rectHeight(0); got != 1 {
		t.Errorf("rectHeight(0) = %v, want 1", got)
	}
	if got := rectHeight(5.5); got != 5.5 {
		t.Errorf("rectHeight(5.5) = %v, want 5.5", got)
	}
}

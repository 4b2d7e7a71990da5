package export

import (
	"image"
	"testing"
)

func TestFitDimensions(t *testing.T) {
	for _, tt := range []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{name: "landscape down", w: 1920, h: 1080, maxDim: 640, wantW: 640, wantH: 360},
		{name: "portrait down", w: 1080, h: 1920, maxDim: 640, wantW: 360, wantH: 640},
		{name: "square", w: 100, h: 100, maxDim: 50, wantW: 50, wantH: 50},
		{name: "upscale", w: 320, h: 180, maxDim: 640, wantW: 640, wantH: 360},
		{name: "already fits", w: 640, h: 360, maxDim: 640, wantW: 640, wantH: 360},
		{name: "extreme aspect clamps to 1", w: 2000, h: 2, maxDim: 640, wantW: 640, wantH: 1},
		{name: "zero dims go square", w: 0, h: 0, maxDim: 640, wantW: 640, wantH: 640},
	} {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitDimensions(tt.w, tt.h, tt.maxDim)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitDimensions(%d, %d, %d) = %d×%d, want %d×%d",
					tt.w, tt.h, tt.maxDim, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPixelVariance(t *testing.T) {
	if v := pixelVariance(nil); v != 0 {
		t.Errorf("variance of empty input = %v, want 0", v)
	}
	if v := pixelVariance([]byte{42, 42, 42, 42}); v != 0 {
		t.Errorf("variance of uniform input = %v, want 0", v)
	}

	// Alternating extremes: mean 127.5, every deviation 127.5.
	checker := []byte{0, 255, 0, 255}
	if v := pixelVariance(checker); v != 127.5*127.5 {
		t.Errorf("variance of alternating input = %v, want %v", v, 127.5*127.5)
	}

	flat := []byte{100, 101, 100, 101}
	if pixelVariance(checker) <= pixelVariance(flat) {
		t.Error("high-contrast input must outscore low-contrast input")
	}
}

func TestSampleFrameNumbers(t *testing.T) {
	for _, tt := range []struct {
		name  string
		count int64
		n     int
		want  []int64
	}{
		{name: "even spread", count: 160, n: 4, want: []int64{0, 40, 80, 120}},
		{name: "short track caps at count", count: 3, n: 8, want: []int64{0, 1, 2}},
		{name: "single sample", count: 100, n: 1, want: []int64{0}},
		{name: "exact fit", count: 5, n: 5, want: []int64{0, 1, 2, 3, 4}},
		{name: "empty track", count: 0, n: 4, want: nil},
		{name: "no samples", count: 100, n: 0, want: nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleFrameNumbers(tt.count, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestScaleImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))

	if out := scaleImage(src, 8, 4); out != src {
		t.Error("matching size must return the source image untouched")
	}

	out := scaleImage(src, 4, 2)
	if b := out.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("scaled bounds = %v, want 4×2", b)
	}
}

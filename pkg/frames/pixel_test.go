package frames

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/user/unbundle/pkg/media"
)

func TestBytesPerPixel(t *testing.T) {
	if RGB8.BytesPerPixel() != 3 || RGBA8.BytesPerPixel() != 4 || Gray8.BytesPerPixel() != 1 {
		t.Error("unexpected pixel sizes")
	}
}

func TestParsePixelFormat(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want PixelFormat
	}{
		{"rgb", RGB8},
		{"rgb8", RGB8},
		{"rgba", RGBA8},
		{"rgba8", RGBA8},
		{"gray", Gray8},
		{"gray8", Gray8},
		{"grey", Gray8},
	} {
		got, err := ParsePixelFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParsePixelFormat(%q) = %v, %v", tc.in, got, err)
		}
	}

	if _, err := ParsePixelFormat("yuv420p"); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("unknown format: err = %v", err)
	}
}

func TestPackBufferMatchingStride(t *testing.T) {
	// 2x2 RGB, stride already tight: whole-plane copy.
	src := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	got := packBuffer(src, 6, 2, 2, 3)
	if !bytes.Equal(got, src) {
		t.Errorf("packBuffer tight = %v", got)
	}
}

func TestPackBufferStripsPadding(t *testing.T) {
	// 2x2 RGB with 2 bytes of row padding (stride 8).
	src := []byte{
		1, 2, 3, 4, 5, 6, 0xee, 0xee,
		7, 8, 9, 10, 11, 12, 0xee, 0xee,
	}
	want := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	got := packBuffer(src, 8, 2, 2, 3)
	if !bytes.Equal(got, want) {
		t.Errorf("packBuffer padded = %v, want %v", got, want)
	}
}

func TestPackBufferGray(t *testing.T) {
	src := []byte{
		9, 8, 0xee,
		7, 6, 0xee,
	}
	got := packBuffer(src, 3, 2, 2, 1)
	if !bytes.Equal(got, []byte{9, 8, 7, 6}) {
		t.Errorf("packBuffer gray = %v", got)
	}
}

func TestResolveDimensions(t *testing.T) {
	// Width-only request derives height from the source aspect ratio.
	w, h := resolveDimensions(640, 480, 320, 0, true)
	if w != 320 || h != 240 {
		t.Errorf("640x480 at width 320 = %dx%d, want 320x240", w, h)
	}

	// Height-only request, symmetric.
	w, h = resolveDimensions(640, 480, 0, 240, true)
	if w != 320 || h != 240 {
		t.Errorf("640x480 at height 240 = %dx%d, want 320x240", w, h)
	}

	// Both given win regardless of aspect.
	w, h = resolveDimensions(640, 480, 100, 100, true)
	if w != 100 || h != 100 {
		t.Errorf("explicit dimensions = %dx%d", w, h)
	}

	// Neither given keeps the source.
	w, h = resolveDimensions(640, 480, 0, 0, true)
	if w != 640 || h != 480 {
		t.Errorf("no request = %dx%d", w, h)
	}

	// Aspect preservation off keeps the source's other dimension.
	w, h = resolveDimensions(640, 480, 320, 0, false)
	if w != 320 || h != 480 {
		t.Errorf("no aspect = %dx%d", w, h)
	}

	// Extreme ratios clamp to 1 instead of 0.
	w, h = resolveDimensions(1000, 10, 1, 0, true)
	if w != 1 || h != 1 {
		t.Errorf("clamped = %dx%d, want 1x1", w, h)
	}
}

func TestResolveDimensionsRoundTrip(t *testing.T) {
	// Asking for the derived height back must return the original width
	// within a pixel of rounding.
	for _, src := range [][2]int{{640, 480}, {1920, 1080}, {720, 576}, {854, 480}} {
		srcW, srcH := src[0], src[1]
		reqW := 333
		_, derivedH := resolveDimensions(srcW, srcH, reqW, 0, true)
		backW, _ := resolveDimensions(srcW, srcH, 0, derivedH, true)
		if math.Abs(float64(backW-reqW)) > 1 {
			t.Errorf("%dx%d: width %d -> height %d -> width %d", srcW, srcH, reqW, derivedH, backW)
		}
	}
}

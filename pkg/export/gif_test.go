package export

import (
	"image"
	"image/color"
	"testing"
)

func TestGIFOptionsNormalized(t *testing.T) {
	var nilOpts *GIFOptions
	o := nilOpts.normalized()
	if o.Delay != DefaultGIFDelay || o.Width != 0 || o.LoopCount != 0 {
		t.Errorf("nil options normalized to %+v", o)
	}

	o = (&GIFOptions{Delay: 0}).normalized()
	if o.Delay != DefaultGIFDelay {
		t.Errorf("zero delay normalized to %d, want %d", o.Delay, DefaultGIFDelay)
	}

	o = DefaultGIFOptions().WithWidth(320).WithDelay(4).WithLoopCount(-1)
	if o.Width != 320 || o.Delay != 4 || o.LoopCount != -1 {
		t.Errorf("chained options = %+v", o)
	}
}

func TestPalettize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{R: 0xff, A: 0xff}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, red)
		}
	}

	dst := palettize(src)
	if got := dst.Bounds(); got != src.Bounds() {
		t.Fatalf("palettized bounds = %v, want %v", got, src.Bounds())
	}
	if len(dst.Palette) == 0 || len(dst.Palette) > 256 {
		t.Fatalf("palette size = %d", len(dst.Palette))
	}

	// A uniform primary color must survive quantization close to intact.
	r, g, b, _ := dst.At(2, 2).RGBA()
	if r>>8 < 0xd0 || g>>8 > 0x30 || b>>8 > 0x30 {
		t.Errorf("quantized red became #%02x%02x%02x", r>>8, g>>8, b>>8)
	}
}

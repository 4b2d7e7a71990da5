package frames

import (
	"fmt"
	"math"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/media"
)

// PixelFormat is the packed layout of extracted frame buffers.
type PixelFormat int

const (
	// RGB8 is packed 24-bit RGB, 3 bytes per pixel.
	RGB8 PixelFormat = iota
	// RGBA8 is packed 32-bit RGBA, 4 bytes per pixel.
	RGBA8
	// Gray8 is 8-bit grayscale, 1 byte per pixel.
	Gray8
)

// BytesPerPixel returns the packed size of one pixel.
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case RGBA8:
		return 4
	case Gray8:
		return 1
	default:
		return 3
	}
}

func (p PixelFormat) String() string {
	switch p {
	case RGBA8:
		return "rgba8"
	case Gray8:
		return "gray8"
	default:
		return "rgb8"
	}
}

// ParsePixelFormat converts a name such as "rgb8" or "gray8" to a
// PixelFormat.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "rgb", "rgb8":
		return RGB8, nil
	case "rgba", "rgba8":
		return RGBA8, nil
	case "gray", "gray8", "grey", "grey8":
		return Gray8, nil
	default:
		return RGB8, fmt.Errorf("%w: unknown pixel format %q", media.ErrInvalidArgument, s)
	}
}

func (p PixelFormat) native() astiav.PixelFormat {
	switch p {
	case RGBA8:
		return astiav.PixelFormatRgba
	case Gray8:
		return astiav.PixelFormatGray8
	default:
		return astiav.PixelFormatRgb24
	}
}

// packBuffer copies a converted plane into a tightly packed buffer. When
// the source stride already equals width*bpp the plane is copied whole;
// otherwise each row is copied individually to strip the padding.
func packBuffer(src []byte, stride, width, height, bpp int) []byte {
	rowBytes := width * bpp
	dst := make([]byte, rowBytes*height)

	if stride == rowBytes {
		copy(dst, src[:len(dst)])
		return dst
	}

	for y := 0; y < height; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*stride:y*stride+rowBytes])
	}
	return dst
}

// resolveDimensions computes the output size. With both dimensions given
// they are used as-is. With one given and keepAspect set, the other is
// derived from the source aspect ratio, rounded and clamped to at least 1.
// With neither given the source size is kept.
func resolveDimensions(srcW, srcH, reqW, reqH int, keepAspect bool) (int, int) {
	switch {
	case reqW > 0 && reqH > 0:
		return reqW, reqH
	case reqW > 0:
		if keepAspect && srcW > 0 {
			return reqW, clampDim(math.Round(float64(srcH) * float64(reqW) / float64(srcW)))
		}
		return reqW, srcH
	case reqH > 0:
		if keepAspect && srcH > 0 {
			return clampDim(math.Round(float64(srcW) * float64(reqH) / float64(srcH))), reqH
		}
		return srcW, reqH
	default:
		return srcW, srcH
	}
}

func clampDim(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

package export

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/user/unbundle/pkg/frames"
	"github.com/user/unbundle/pkg/media"
)

// smartProbeWidth is the width candidate frames are decoded at when
// scoring them for SmartThumbnail. Variance ranking is stable under
// downscaling, so the probes stay small.
const smartProbeWidth = 160

// DefaultSmartSamples is how many candidate frames SmartThumbnail scores
// when the caller passes samples <= 0.
const DefaultSmartSamples = 9

// Thumbnail extracts the frame displayed at ts seconds and scales it to
// fit maxDim pixels on its longest edge, preserving aspect ratio. A
// 1920×1080 source with maxDim 640 yields a 640×360 thumbnail.
func Thumbnail(f *media.File, ts float64, maxDim int) (image.Image, error) {
	if maxDim < 1 {
		return nil, fmt.Errorf("%w: max dimension %d", media.ErrInvalidArgument, maxDim)
	}
	ext, err := frames.New(f, -1)
	if err != nil {
		return nil, err
	}
	defer ext.Close()

	fr, err := ext.FrameAtTime(ts, nil)
	if err != nil {
		return nil, err
	}
	w, h := fitDimensions(fr.Width, fr.Height, maxDim)
	return scaleImage(fr.Image(), w, h), nil
}

// ThumbnailFrame is Thumbnail addressed by frame number instead of
// timestamp.
func ThumbnailFrame(f *media.File, n int64, maxDim int) (image.Image, error) {
	if maxDim < 1 {
		return nil, fmt.Errorf("%w: max dimension %d", media.ErrInvalidArgument, maxDim)
	}
	ext, err := frames.New(f, -1)
	if err != nil {
		return nil, err
	}
	defer ext.Close()

	fr, err := ext.Frame(n, nil)
	if err != nil {
		return nil, err
	}
	w, h := fitDimensions(fr.Width, fr.Height, maxDim)
	return scaleImage(fr.Image(), w, h), nil
}

// SmartThumbnail samples candidate frames evenly across the track, scores
// each by grayscale pixel variance, and returns the highest-scoring one
// scaled to fit maxDim. Near-uniform frames (fades, title cards) score
// close to zero, so the pick lands on visual detail rather than on a
// fixed timestamp. samples <= 0 uses DefaultSmartSamples.
func SmartThumbnail(f *media.File, samples int, maxDim int) (image.Image, error) {
	if maxDim < 1 {
		return nil, fmt.Errorf("%w: max dimension %d", media.ErrInvalidArgument, maxDim)
	}
	if samples < 1 {
		samples = DefaultSmartSamples
	}
	ext, err := frames.New(f, -1)
	if err != nil {
		return nil, err
	}
	defer ext.Close()

	count := ext.FrameCount()
	if count <= 0 {
		return nil, fmt.Errorf("%w: track length unknown", media.ErrInvalidInput)
	}
	numbers := sampleFrameNumbers(count, samples)

	// Candidates decode small and grayscale; only the winner is decoded
	// again at full resolution.
	probeOpts := frames.DefaultOptions().
		WithSize(smartProbeWidth, 0).
		WithFormat(frames.Gray8)
	candidates, err := ext.Extract(frames.List(numbers), probeOpts)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no frames decoded", media.ErrDecode)
	}

	best := candidates[0].Number
	bestScore := -1.0
	for i := range candidates {
		if v := pixelVariance(candidates[i].Data); v > bestScore {
			bestScore = v
			best = candidates[i].Number
		}
	}

	fr, err := ext.Frame(best, nil)
	if err != nil {
		return nil, err
	}
	w, h := fitDimensions(fr.Width, fr.Height, maxDim)
	return scaleImage(fr.Image(), w, h), nil
}

// fitDimensions scales width×height so the longest edge becomes maxDim,
// preserving aspect ratio. Results are clamped to at least 1 pixel;
// degenerate inputs come back square.
func fitDimensions(width, height, maxDim int) (int, int) {
	if width <= 0 || height <= 0 {
		return maxDim, maxDim
	}
	longest := width
	if height > longest {
		longest = height
	}
	scale := float64(maxDim) / float64(longest)
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// scaleImage resizes src to w×h with Catmull-Rom resampling. A no-op when
// the size already matches.
func scaleImage(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// sampleFrameNumbers spreads up to n frame numbers evenly across a track
// of frameCount frames, starting at 0.
func sampleFrameNumbers(frameCount int64, n int) []int64 {
	if frameCount <= 0 || n < 1 {
		return nil
	}
	step := frameCount / int64(n)
	if step < 1 {
		step = 1
	}
	numbers := make([]int64, 0, n)
	for i := int64(0); i < int64(n); i++ {
		num := i * step
		if num >= frameCount {
			break
		}
		numbers = append(numbers, num)
	}
	return numbers
}

// pixelVariance returns the variance of 8-bit pixel values; higher means
// more visual detail.
func pixelVariance(pixels []byte) float64 {
	if len(pixels) == 0 {
		return 0
	}
	count := float64(len(pixels))
	var sum float64
	for _, p := range pixels {
		sum += float64(p)
	}
	mean := sum / count
	var ss float64
	for _, p := range pixels {
		d := float64(p) - mean
		ss += d * d
	}
	return ss / count
}

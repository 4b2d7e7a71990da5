package export

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/user/unbundle/pkg/audio"
	"github.com/user/unbundle/pkg/media"
)

// WaveformPNGOptions controls waveform rendering.
type WaveformPNGOptions struct {
	Width  int
	Height int
	// Background fills the canvas; Envelope draws the min/max extent of
	// each bin; Body draws the ±RMS core on top of it.
	Background color.Color
	Envelope   color.Color
	Body       color.Color
}

// DefaultWaveformPNGOptions returns an 800×240 render, one pixel column
// per bin at the default bin count.
func DefaultWaveformPNGOptions() *WaveformPNGOptions {
	return &WaveformPNGOptions{
		Width:      800,
		Height:     240,
		Background: color.Black,
		Envelope:   color.RGBA{R: 0x3a, G: 0x6e, B: 0xa5, A: 0xff},
		Body:       color.RGBA{R: 0x8f, G: 0xc1, B: 0xf0, A: 0xff},
	}
}

// WithSize sets the canvas dimensions in pixels.
func (o *WaveformPNGOptions) WithSize(width, height int) *WaveformPNGOptions {
	o.Width = width
	o.Height = height
	return o
}

// WithColors sets the background, envelope, and RMS body colors.
func (o *WaveformPNGOptions) WithColors(background, envelope, body color.Color) *WaveformPNGOptions {
	o.Background = background
	o.Envelope = envelope
	o.Body = body
	return o
}

func (o *WaveformPNGOptions) normalized() *WaveformPNGOptions {
	def := DefaultWaveformPNGOptions()
	if o == nil {
		return def
	}
	out := *o
	if out.Width < 1 {
		out.Width = def.Width
	}
	if out.Height < 1 {
		out.Height = def.Height
	}
	if out.Background == nil {
		out.Background = def.Background
	}
	if out.Envelope == nil {
		out.Envelope = def.Envelope
	}
	if out.Body == nil {
		out.Body = def.Body
	}
	return &out
}

// WaveformPNG renders the min/max envelope and RMS body of each bin
// around a horizontal midline and writes the result to path as PNG.
func WaveformPNG(data *audio.WaveformData, path string, opts *WaveformPNGOptions) error {
	o := opts.normalized()
	if data == nil || len(data.Bins) == 0 {
		return fmt.Errorf("%w: waveform has no bins", media.ErrInvalidInput)
	}

	dc := gg.NewContext(o.Width, o.Height)
	dc.SetColor(o.Background)
	dc.Clear()

	mid := float64(o.Height) / 2
	binW := float64(o.Width) / float64(len(data.Bins))
	colW := binW
	if colW < 1 {
		colW = 1
	}

	for i, bin := range data.Bins {
		x := float64(i) * binW

		top := mid - clampUnit(float64(bin.Max))*mid
		bottom := mid - clampUnit(float64(bin.Min))*mid
		dc.SetColor(o.Envelope)
		dc.DrawRectangle(x, top, colW, rectHeight(bottom-top))
		dc.Fill()

		r := clampUnit(float64(bin.RMS)) * mid
		dc.SetColor(o.Body)
		dc.DrawRectangle(x, mid-r, colW, rectHeight(2*r))
		dc.Fill()
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("writing waveform PNG: %w", err)
	}
	return nil
}

// clampUnit confines a sample value to [-1, 1]; float decode can
// overshoot slightly.
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// rectHeight keeps silent bins visible as a 1px line.
func rectHeight(h float64) float64 {
	if h < 1 {
		return 1
	}
	return h
}

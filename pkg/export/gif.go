package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/user/unbundle/pkg/frames"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

// DefaultGIFDelay is the per-frame delay in hundredths of a second.
const DefaultGIFDelay = 10

// GIFOptions controls animated GIF encoding.
type GIFOptions struct {
	// Width is the target width in pixels; height follows the source
	// aspect ratio. Zero keeps the source size.
	Width int
	// Delay between frames in hundredths of a second.
	Delay int
	// LoopCount follows image/gif semantics: 0 loops forever, -1 plays
	// once, n > 0 plays n+1 times.
	LoopCount int

	Progress ports.ProgressSink
	Token    *progress.Token
}

// DefaultGIFOptions returns source-width output at 10 cs per frame,
// looping forever.
func DefaultGIFOptions() *GIFOptions {
	return &GIFOptions{Delay: DefaultGIFDelay}
}

// WithWidth sets the target width (height is auto-scaled).
func (o *GIFOptions) WithWidth(width int) *GIFOptions {
	o.Width = width
	return o
}

// WithDelay sets the inter-frame delay in hundredths of a second.
func (o *GIFOptions) WithDelay(delay int) *GIFOptions {
	o.Delay = delay
	return o
}

// WithLoopCount sets the repeat behaviour (0 = forever).
func (o *GIFOptions) WithLoopCount(n int) *GIFOptions {
	o.LoopCount = n
	return o
}

// WithProgress attaches a sink that receives one update per encoded
// frame.
func (o *GIFOptions) WithProgress(sink ports.ProgressSink) *GIFOptions {
	o.Progress = sink
	return o
}

// WithToken attaches a cancellation token.
func (o *GIFOptions) WithToken(t *progress.Token) *GIFOptions {
	o.Token = t
	return o
}

func (o *GIFOptions) normalized() *GIFOptions {
	if o == nil {
		return DefaultGIFOptions()
	}
	out := *o
	if out.Delay < 1 {
		out.Delay = DefaultGIFDelay
	}
	return &out
}

// GIF extracts the frames selected by r and writes them to path as an
// animated GIF.
func GIF(f *media.File, path string, r frames.Range, opts *GIFOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating GIF file: %w", err)
	}
	defer file.Close()

	if err := EncodeGIF(f, file, r, opts); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing GIF file: %w", err)
	}
	return nil
}

// EncodeGIF extracts the frames selected by r and encodes them to w as an
// animated GIF. Frames are quantized to the Plan 9 palette with
// Floyd-Steinberg dithering. Decoded frames stream through one at a time;
// only the palettized copies are held until the final encode.
func EncodeGIF(f *media.File, w io.Writer, r frames.Range, opts *GIFOptions) error {
	o := opts.normalized()

	ext, err := frames.New(f, -1)
	if err != nil {
		return err
	}
	defer ext.Close()

	fopts := frames.DefaultOptions().
		WithFormat(frames.RGBA8).
		WithToken(o.Token)
	if o.Width > 0 {
		fopts = fopts.WithSize(o.Width, 0)
	}
	if o.Progress != nil {
		fopts = fopts.WithProgress(o.Progress, 1)
	}

	it, err := ext.Iter(r, fopts)
	if err != nil {
		return err
	}
	defer it.Close()

	anim := &gif.GIF{LoopCount: o.LoopCount}
	for it.Next() {
		anim.Image = append(anim.Image, palettize(it.Frame().Image()))
		anim.Delay = append(anim.Delay, o.Delay)
	}
	if err := it.Err(); err != nil {
		return err
	}
	if len(anim.Image) == 0 {
		return fmt.Errorf("%w: range selects no frames", media.ErrInvalidInput)
	}

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("%w: encoding GIF: %v", media.ErrEncode, err)
	}
	return nil
}

func palettize(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(dst, b, src, b.Min)
	return dst
}

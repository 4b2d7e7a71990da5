package export

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/user/unbundle/pkg/frames"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

const (
	captionHeight   = 18.0
	captionFontSize = 13.0
	captionInset    = 6.0
)

// GridOptions controls contact-sheet layout. The zero value is not
// useful; start from DefaultGridOptions.
type GridOptions struct {
	// Columns and Rows define the sheet layout; Columns*Rows frames are
	// sampled evenly across the track.
	Columns int
	Rows    int
	// CellWidth is the width each sampled frame is scaled to. Height
	// follows the source aspect ratio.
	CellWidth int
	// Captions overlays each cell with its timestamp.
	Captions bool
	// FontPath optionally points at a TTF for captions. When empty or
	// unloadable the built-in face is used.
	FontPath string

	Progress ports.ProgressSink
	Token    *progress.Token
}

// DefaultGridOptions returns a 4×4 sheet of 320px cells with captions on.
func DefaultGridOptions() *GridOptions {
	return &GridOptions{
		Columns:   4,
		Rows:      4,
		CellWidth: 320,
		Captions:  true,
	}
}

// WithLayout sets the column and row counts.
func (o *GridOptions) WithLayout(columns, rows int) *GridOptions {
	o.Columns = columns
	o.Rows = rows
	return o
}

// WithCellWidth sets the per-cell width in pixels.
func (o *GridOptions) WithCellWidth(width int) *GridOptions {
	o.CellWidth = width
	return o
}

// WithCaptions toggles per-cell timestamp captions.
func (o *GridOptions) WithCaptions(on bool) *GridOptions {
	o.Captions = on
	return o
}

// WithProgress attaches a sink that receives one update per decoded cell.
func (o *GridOptions) WithProgress(sink ports.ProgressSink) *GridOptions {
	o.Progress = sink
	return o
}

// WithToken attaches a cancellation token.
func (o *GridOptions) WithToken(t *progress.Token) *GridOptions {
	o.Token = t
	return o
}

func (o *GridOptions) normalized() *GridOptions {
	if o == nil {
		return DefaultGridOptions()
	}
	out := *o
	if out.Columns < 1 {
		out.Columns = 1
	}
	if out.Rows < 1 {
		out.Rows = 1
	}
	if out.CellWidth < 1 {
		out.CellWidth = 320
	}
	return &out
}

// Grid renders a Columns×Rows contact sheet: frames sampled evenly across
// the track, scaled to CellWidth, composited left to right, top to
// bottom. Tracks shorter than the cell count fill partially.
func Grid(f *media.File, opts *GridOptions) (image.Image, error) {
	o := opts.normalized()

	ext, err := frames.New(f, -1)
	if err != nil {
		return nil, err
	}
	defer ext.Close()

	count := ext.FrameCount()
	if count <= 0 {
		return nil, fmt.Errorf("%w: track length unknown", media.ErrInvalidInput)
	}
	numbers := sampleFrameNumbers(count, o.Columns*o.Rows)

	fopts := frames.DefaultOptions().
		WithSize(o.CellWidth, 0).
		WithToken(o.Token)
	if o.Progress != nil {
		fopts = fopts.WithProgress(o.Progress, 1)
	}
	cells, err := ext.Extract(frames.List(numbers), fopts)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no frames decoded", media.ErrDecode)
	}

	cellW, cellH := cells[0].Width, cells[0].Height
	dc := gg.NewContext(o.Columns*cellW, o.Rows*cellH)
	dc.SetColor(color.Black)
	dc.Clear()

	if o.Captions && o.FontPath != "" {
		if err := dc.LoadFontFace(o.FontPath, captionFontSize); err != nil {
			// Fall back to default
		}
	}

	for i := range cells {
		col := i % o.Columns
		row := i / o.Columns
		if row >= o.Rows {
			break
		}
		x := col * cellW
		y := row * cellH
		dc.DrawImage(cells[i].Image(), x, y)
		if o.Captions {
			drawCaption(dc, captionTimestamp(cells[i].TimeSeconds), x, y, cellW, cellH)
		}
	}
	return dc.Image(), nil
}

func drawCaption(dc *gg.Context, text string, x, y, w, h int) {
	dc.SetColor(color.RGBA{A: 0xa0})
	dc.DrawRectangle(float64(x), float64(y+h)-captionHeight, float64(w), captionHeight)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawStringAnchored(text, float64(x)+captionInset, float64(y+h)-captionHeight/2, 0, 0.5)
}

// captionTimestamp renders seconds as MM:SS, or H:MM:SS past the hour.
func captionTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	t := int64(seconds)
	h := t / 3600
	m := (t % 3600) / 60
	s := t % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

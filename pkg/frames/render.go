package frames

import (
	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
)

// renderer turns decoded frames into output Frames. It owns the converter
// and rebuilds it whenever the incoming frame shape changes, which is how
// hardware paths get their converter built from the first real frame
// instead of the nominal decoder format.
type renderer struct {
	conv *converter
	opts *Options
}

// render converts src into a packed buffer and assembles the Frame.
// origin is the frame as the decoder produced it; metadata flags are read
// from it while pixels come from src, which may be the same frame or the
// system-memory transfer of a device frame.
func (r *renderer) render(origin, src *astiav.Frame, n, pts int64, tb astiav.Rational) (*Frame, error) {
	if err := r.ensure(src); err != nil {
		return nil, err
	}
	data, err := r.conv.convert(src)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Number:      n,
		Width:       r.conv.width,
		Height:      r.conv.height,
		Format:      r.conv.format,
		Data:        data,
		PTS:         pts,
		TimeSeconds: av.PtsSeconds(pts, tb),
		Keyframe:    origin.Flags().Has(astiav.FrameFlagKey),
		PictureType: pictureTypeName(origin.PictureType()),
	}, nil
}

func (r *renderer) ensure(src *astiav.Frame) error {
	w, h, pf := src.Width(), src.Height(), src.PixelFormat()
	if r.conv != nil && r.conv.matches(w, h, pf) {
		return nil
	}
	if r.conv != nil {
		r.conv.close()
		r.conv = nil
	}
	conv, err := newConverter(w, h, pf, r.opts)
	if err != nil {
		return err
	}
	r.conv = conv
	return nil
}

func (r *renderer) close() {
	if r.conv != nil {
		r.conv.close()
		r.conv = nil
	}
}

package frames

import (
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/media"
)

// converter scales decoded frames to the requested size and pixel format
// and packs the result into stride-free buffers.
type converter struct {
	ctx    *astiav.SoftwareScaleContext
	dst    *astiav.Frame
	srcW   int
	srcH   int
	srcPF  astiav.PixelFormat
	width  int
	height int
	format PixelFormat
}

func newConverter(srcW, srcH int, srcPF astiav.PixelFormat, o *Options) (*converter, error) {
	w, h := resolveDimensions(srcW, srcH, o.Width, o.Height, o.KeepAspect)

	ctx, err := astiav.CreateSoftwareScaleContext(
		srcW, srcH, srcPF,
		w, h, o.Format.native(),
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBilinear),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating converter %dx%d %s to %dx%d %s: %v",
			media.ErrDecode, srcW, srcH, srcPF.Name(), w, h, o.Format, err)
	}

	return &converter{
		ctx:    ctx,
		dst:    astiav.AllocFrame(),
		srcW:   srcW,
		srcH:   srcH,
		srcPF:  srcPF,
		width:  w,
		height: h,
		format: o.Format,
	}, nil
}

// matches reports whether the converter was built for this source shape.
// Hardware transfers can change shape mid-stream, forcing a rebuild.
func (c *converter) matches(srcW, srcH int, srcPF astiav.PixelFormat) bool {
	return c.srcW == srcW && c.srcH == srcH && c.srcPF == srcPF
}

// convert scales src and returns its pixels tightly packed.
func (c *converter) convert(src *astiav.Frame) ([]byte, error) {
	c.dst.Unref()
	if err := c.ctx.ScaleFrame(src, c.dst); err != nil {
		return nil, fmt.Errorf("%w: scaling frame: %v", media.ErrDecode, err)
	}

	buf, err := c.dst.Data().Bytes(1)
	if err != nil {
		return nil, fmt.Errorf("%w: reading converted frame: %v", media.ErrDecode, err)
	}

	bpp := c.format.BytesPerPixel()
	rowBytes := c.width * bpp
	if len(buf) < rowBytes*c.height {
		return nil, fmt.Errorf("%w: converted frame has %d bytes, need %d", media.ErrDecode, len(buf), rowBytes*c.height)
	}

	stride := rowBytes
	if c.height > 0 && len(buf)%c.height == 0 {
		stride = len(buf) / c.height
	}
	return packBuffer(buf, stride, c.width, c.height, bpp), nil
}

func (c *converter) close() {
	if c == nil {
		return
	}
	if c.ctx != nil {
		c.ctx.Free()
		c.ctx = nil
	}
	if c.dst != nil {
		c.dst.Free()
		c.dst = nil
	}
}

package frames

import (
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
)

// decoder wraps an open video codec context, optionally backed by a
// hardware device.
type decoder struct {
	cc    *astiav.CodecContext
	accel *av.Accelerator
}

// newDecoder opens a decoder for the stream. Hardware setup failures fall
// back to software without surfacing an error; only a software open
// failure is fatal.
func newDecoder(s *astiav.Stream, hw av.HardwareConfig, log ports.Logger) (*decoder, error) {
	cp := s.CodecParameters()
	codec := astiav.FindDecoder(cp.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("%w: no decoder for codec %s", media.ErrUnsupported, cp.CodecID().Name())
	}

	accel := av.NewAccelerator(hw, codec, log)
	cc, err := openContext(codec, cp, accel)
	if err != nil && accel != nil {
		log.Debug("hardware decoder open failed, falling back to software: %v", err)
		accel.Close()
		accel = nil
		cc, err = openContext(codec, cp, nil)
	}
	if err != nil {
		return nil, err
	}

	return &decoder{cc: cc, accel: accel}, nil
}

func openContext(codec *astiav.Codec, cp *astiav.CodecParameters, accel *av.Accelerator) (*astiav.CodecContext, error) {
	cc := astiav.AllocCodecContext(codec)
	if cc == nil {
		return nil, fmt.Errorf("%w: allocating decoder context", media.ErrDecode)
	}
	if err := cc.FromCodecParameters(cp); err != nil {
		cc.Free()
		return nil, fmt.Errorf("%w: configuring decoder: %v", media.ErrDecode, err)
	}
	accel.Apply(cc)
	if err := cc.Open(codec, nil); err != nil {
		cc.Free()
		return nil, fmt.Errorf("%w: opening decoder %s: %v", media.ErrDecode, codec.Name(), err)
	}
	return cc, nil
}

func (d *decoder) sendPacket(pkt *astiav.Packet) error {
	return d.cc.SendPacket(pkt)
}

func (d *decoder) receiveFrame(fr *astiav.Frame) error {
	return d.cc.ReceiveFrame(fr)
}

func (d *decoder) flushBuffers() {
	d.cc.FlushBuffers()
}

// resolveFrame returns the system-memory view of fr. Frames decoded on a
// hardware device are transferred first; a failed transfer means the frame
// already lives in system memory and is used as-is.
func (d *decoder) resolveFrame(fr, sw *astiav.Frame) *astiav.Frame {
	if d.accel == nil || fr.PixelFormat() != d.accel.PixelFormat() {
		return fr
	}
	sw.Unref()
	if err := fr.TransferHardwareData(sw); err != nil {
		return fr
	}
	sw.SetPts(fr.Pts())
	return sw
}

func (d *decoder) hardware() bool {
	return d.accel != nil
}

func (d *decoder) nominalShape() (w, h int, pf astiav.PixelFormat) {
	return d.cc.Width(), d.cc.Height(), d.cc.PixelFormat()
}

func (d *decoder) close() {
	if d == nil {
		return
	}
	if d.cc != nil {
		d.cc.Free()
		d.cc = nil
	}
	if d.accel != nil {
		d.accel.Close()
		d.accel = nil
	}
}

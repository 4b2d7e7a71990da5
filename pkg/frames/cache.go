package frames

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/media"
)

// reseekAheadSeconds is how far ahead of the last decoded position a
// single-frame target may lie before seeking beats decoding forward. A
// heuristic knob, not a derived constant.
const reseekAheadSeconds = 2.0

// cachedDecoder keeps one decoder alive across repeated single-frame
// lookups on the same handle and output shape. One slot is enough: only
// one output shape is active at a time, and a shape change discards the
// whole state.
type cachedDecoder struct {
	fc          *astiav.FormatContext
	streamIndex int
	tb          astiav.Rational
	fps         float64

	dec  *decoder
	rend renderer

	// Shape the cache was built for; any difference rebuilds it.
	width  int
	height int
	format PixelFormat

	lastPTS int64
	hasPos  bool
	eof     bool

	reseekAhead int64 // reseekAheadSeconds in stream time base

	pkt *astiav.Packet
	fr  *astiav.Frame
	sw  *astiav.Frame
}

func newCachedDecoder(e *Extractor, o *Options) (*cachedDecoder, error) {
	dec, err := newDecoder(e.s, o.Hardware, e.log)
	if err != nil {
		return nil, err
	}

	c := &cachedDecoder{
		fc:          e.f.Container(),
		streamIndex: e.s.Index(),
		tb:          e.s.TimeBase(),
		fps:         e.fps,
		dec:         dec,
		width:       o.Width,
		height:      o.Height,
		format:      o.Format,
		reseekAhead: av.SecondsToStreamTimestamp(reseekAheadSeconds, e.s.TimeBase()),
		pkt:         astiav.AllocPacket(),
		fr:          astiav.AllocFrame(),
		sw:          astiav.AllocFrame(),
	}
	c.rend.opts = o
	return c, nil
}

// shapeMatches reports whether the cache serves the requested output
// shape.
func (c *cachedDecoder) shapeMatches(o *Options) bool {
	return c.width == o.Width && c.height == o.Height && c.format == o.Format
}

// lookup returns the first frame at or after target. Seek imprecision
// means the exact number may never be decoded, so the nearest following
// frame stands in for it rather than failing the call.
func (c *cachedDecoder) lookup(target int64) (*Frame, error) {
	// A previous lookup that drained the stream leaves the decoder at
	// end-of-stream; reset and treat this call as a fresh run.
	if c.eof {
		c.dec.flushBuffers()
		c.eof = false
		c.hasPos = false
	}

	targetTS := av.SecondsToStreamTimestamp(float64(target)/c.fps, c.tb)
	if !c.hasPos || targetTS < c.lastPTS || targetTS > c.lastPTS+c.reseekAhead {
		if err := c.fc.SeekFrame(-1, av.SeekTimestamp(target, c.fps), astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
			return nil, fmt.Errorf("%w: seeking to frame %d: %v", media.ErrDecode, target, err)
		}
		c.dec.flushBuffers()
		c.hasPos = false
	}

	// Frames buffered from a previous lookup may already cover the
	// target.
	if f, err := c.drainBuffered(target); f != nil || err != nil {
		return f, err
	}

	if f, err := c.decodeForward(target); f != nil || err != nil {
		return f, err
	}

	// End of input: flush and inspect what the decoder still holds.
	if f, err := c.drainFlush(target); f != nil || err != nil {
		return f, err
	}

	return nil, fmt.Errorf("%w: could not locate frame %d", media.ErrDecode, target)
}

// drainBuffered receives frames already sitting in the decoder.
func (c *cachedDecoder) drainBuffered(target int64) (*Frame, error) {
	for {
		err := c.dec.receiveFrame(c.fr)
		if err != nil {
			if errors.Is(err, astiav.ErrEagain) {
				return nil, nil
			}
			if errors.Is(err, astiav.ErrEof) {
				c.eof = true
				return nil, nil
			}
			return nil, fmt.Errorf("%w: receiving frame: %v", media.ErrDecode, err)
		}
		f, err := c.consider(target)
		if f != nil || err != nil {
			return f, err
		}
	}
}

// decodeForward feeds packets until the target frame emerges or the
// container runs out.
func (c *cachedDecoder) decodeForward(target int64) (*Frame, error) {
	for {
		if err := c.fc.ReadFrame(c.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: reading packet: %v", media.ErrDecode, err)
		}
		if c.pkt.StreamIndex() != c.streamIndex {
			c.pkt.Unref()
			continue
		}

		for {
			err := c.dec.sendPacket(c.pkt)
			if err == nil {
				break
			}
			if !errors.Is(err, astiav.ErrEagain) {
				c.pkt.Unref()
				return nil, fmt.Errorf("%w: decoding packet: %v", media.ErrDecode, err)
			}
			// Decoder full: make room before retrying.
			if f, err := c.drainBuffered(target); f != nil || err != nil {
				c.pkt.Unref()
				return f, err
			}
		}
		c.pkt.Unref()

		if f, err := c.drainBuffered(target); f != nil || err != nil {
			return f, err
		}
	}
}

// drainFlush signals end-of-input and receives the reordering backlog.
func (c *cachedDecoder) drainFlush(target int64) (*Frame, error) {
	if err := c.dec.sendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return nil, fmt.Errorf("%w: flushing decoder: %v", media.ErrDecode, err)
	}
	for {
		err := c.dec.receiveFrame(c.fr)
		if err != nil {
			if errors.Is(err, astiav.ErrEof) || errors.Is(err, astiav.ErrEagain) {
				c.eof = true
				return nil, nil
			}
			return nil, fmt.Errorf("%w: receiving flushed frame: %v", media.ErrDecode, err)
		}
		f, err := c.consider(target)
		if f != nil || err != nil {
			return f, err
		}
	}
}

// consider numbers the frame in c.fr, updates the position bookkeeping
// and renders it when it lies at or after the target.
func (c *cachedDecoder) consider(target int64) (*Frame, error) {
	defer c.fr.Unref()

	pts := c.fr.Pts()
	if pts == astiav.NoPtsValue {
		return nil, nil
	}
	c.lastPTS = pts
	c.hasPos = true

	n := av.PtsToFrameNumber(pts, c.tb, c.fps)
	if n < target {
		return nil, nil
	}
	src := c.dec.resolveFrame(c.fr, c.sw)
	return c.rend.render(c.fr, src, n, pts, c.tb)
}

func (c *cachedDecoder) close() {
	if c == nil {
		return
	}
	if c.pkt != nil {
		c.pkt.Free()
		c.pkt = nil
	}
	if c.fr != nil {
		c.fr.Free()
		c.fr = nil
	}
	if c.sw != nil {
		c.sw.Free()
		c.sw = nil
	}
	c.rend.close()
	if c.dec != nil {
		c.dec.close()
		c.dec = nil
	}
}

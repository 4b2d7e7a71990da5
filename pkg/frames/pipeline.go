package frames

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

// errExhausted signals internally that every target was handled and the
// pipeline completed successfully.
var errExhausted = errors.New("frames: targets exhausted")

type pipelineState int

const (
	stateReading pipelineState = iota
	stateDraining
	stateDone
)

// pipeline decodes one resolved request: it seeks once to the first
// target, then decodes forward, emitting converted frames in ascending
// frame-number order. next returns one emitted frame per call so the
// eager, iterator and streaming paths all share the same loop.
type pipeline struct {
	fc          *astiav.FormatContext
	streamIndex int
	tb          astiav.Rational
	fps         float64

	dec  *decoder
	rend renderer
	opts *Options

	// Cursor over the targets. Either list/idx (materialized numbers) or
	// span/nextSpan (contiguous request kept unmaterialized).
	list     []int64
	idx      int
	span     *Span
	nextSpan int64
	spanDone bool

	tracker *progress.Tracker
	token   *progress.Token

	pkt        *astiav.Packet
	pktPending bool
	fr         *astiav.Frame
	sw         *astiav.Frame

	state pipelineState
	log   ports.Logger
}

func newPipeline(fc *astiav.FormatContext, s *astiav.Stream, fps float64, r resolved, o *Options, log ports.Logger) (*pipeline, error) {
	dec, err := newDecoder(s, o.Hardware, log)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		fc:          fc,
		streamIndex: s.Index(),
		tb:          s.TimeBase(),
		fps:         fps,
		dec:         dec,
		opts:        o,
		list:        r.list,
		span:        r.span,
		tracker:     progress.NewTracker(ports.OpFrameExtraction, o.Progress, r.count(), o.BatchSize),
		token:       o.Token,
		pkt:         astiav.AllocPacket(),
		fr:          astiav.AllocFrame(),
		sw:          astiav.AllocFrame(),
		log:         log,
	}
	p.rend.opts = o
	if p.span != nil {
		p.nextSpan = p.span.Start
	}

	// Software decoders expose their real frame shape up front; hardware
	// paths report a device format, so their converter waits for the
	// first transferred frame.
	if !dec.hardware() {
		if w, h, pf := dec.nominalShape(); w > 0 && h > 0 {
			conv, err := newConverter(w, h, pf, o)
			if err != nil {
				p.close()
				return nil, err
			}
			p.rend.conv = conv
		}
	}

	// One coarse container-level seek; decoding runs forward from the
	// keyframe at or before the first target.
	first := r.min()
	if err := fc.SeekFrame(-1, av.SeekTimestamp(first, fps), astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		p.close()
		return nil, fmt.Errorf("%w: seeking to frame %d: %v", media.ErrDecode, first, err)
	}

	return p, nil
}

func (p *pipeline) targetsExhausted() bool {
	if p.span != nil {
		return p.spanDone
	}
	return p.idx >= len(p.list)
}

// next produces the next emitted frame. It returns errExhausted once every
// target was handled, progress.ErrCancelled on cancellation, and wrapped
// decode errors otherwise.
func (p *pipeline) next() (*Frame, error) {
	if p.state == stateDone {
		return nil, errExhausted
	}

	for {
		if p.targetsExhausted() {
			return nil, p.finish(nil)
		}

		if p.state == stateDraining && p.token.Cancelled() {
			return nil, p.finish(progress.ErrCancelled)
		}

		err := p.dec.receiveFrame(p.fr)
		if err == nil {
			out, err := p.handleDecoded()
			if err != nil {
				return nil, p.finish(err)
			}
			if out != nil {
				return out, nil
			}
			continue
		}
		if errors.Is(err, astiav.ErrEof) {
			return nil, p.finish(p.unsatisfied())
		}
		if !errors.Is(err, astiav.ErrEagain) {
			return nil, p.finish(fmt.Errorf("%w: receiving frame: %v", media.ErrDecode, err))
		}

		if p.state == stateDraining {
			// Nothing left after the flush.
			return nil, p.finish(p.unsatisfied())
		}
		if err := p.feedPacket(); err != nil {
			return nil, p.finish(err)
		}
	}
}

// feedPacket pushes one packet of the target stream into the decoder, or
// the flush signal at end of input. A decoder-full packet stays pending
// and is retried after frames were drained.
func (p *pipeline) feedPacket() error {
	if p.pktPending {
		err := p.dec.sendPacket(p.pkt)
		switch {
		case err == nil:
			p.pktPending = false
			p.pkt.Unref()
			return nil
		case errors.Is(err, astiav.ErrEagain):
			return nil
		default:
			p.pktPending = false
			p.pkt.Unref()
			return fmt.Errorf("%w: decoding packet: %v", media.ErrDecode, err)
		}
	}

	for {
		if p.token.Cancelled() {
			return progress.ErrCancelled
		}

		if err := p.fc.ReadFrame(p.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				p.state = stateDraining
				if err := p.dec.sendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
					return fmt.Errorf("%w: flushing decoder: %v", media.ErrDecode, err)
				}
				return nil
			}
			return fmt.Errorf("%w: reading packet: %v", media.ErrDecode, err)
		}

		if p.pkt.StreamIndex() != p.streamIndex {
			p.pkt.Unref()
			continue
		}

		err := p.dec.sendPacket(p.pkt)
		switch {
		case err == nil:
			p.pkt.Unref()
			return nil
		case errors.Is(err, astiav.ErrEagain):
			p.pktPending = true
			return nil
		default:
			p.pkt.Unref()
			return fmt.Errorf("%w: decoding packet: %v", media.ErrDecode, err)
		}
	}
}

// handleDecoded numbers the frame in p.fr, advances the target cursor and
// converts the frame when it matches. Returns nil when the frame is not a
// target.
func (p *pipeline) handleDecoded() (*Frame, error) {
	defer p.fr.Unref()

	pts := p.fr.Pts()
	if pts == astiav.NoPtsValue {
		// Without a timestamp the frame cannot be numbered.
		return nil, nil
	}
	n := av.PtsToFrameNumber(pts, p.tb, p.fps)

	if p.span != nil {
		switch {
		case n > p.span.End:
			// Past the end of a contiguous request: terminal success.
			p.spanDone = true
			return nil, nil
		case n >= p.span.Start && n >= p.nextSpan:
			out, err := p.emit(n, pts)
			if err != nil {
				return nil, err
			}
			p.nextSpan = n + 1
			if n == p.span.End {
				p.spanDone = true
			}
			return out, nil
		default:
			return nil, nil
		}
	}

	// Targets below the current position were overshot by the seek;
	// skip the cursor past them.
	for p.idx < len(p.list) && p.list[p.idx] < n {
		p.idx++
	}
	if p.idx < len(p.list) && p.list[p.idx] == n {
		out, err := p.emit(n, pts)
		if err != nil {
			return nil, err
		}
		p.idx++
		return out, nil
	}
	return nil, nil
}

func (p *pipeline) emit(n, pts int64) (*Frame, error) {
	src := p.dec.resolveFrame(p.fr, p.sw)
	f, err := p.rend.render(p.fr, src, n, pts, p.tb)
	if err != nil {
		return nil, err
	}
	p.tracker.Advance()
	return f, nil
}

// unsatisfied classifies running out of stream. Materialized lists with
// targets left are an error; contiguous requests end successfully.
func (p *pipeline) unsatisfied() error {
	if p.span != nil || p.idx >= len(p.list) {
		return nil
	}
	return fmt.Errorf("%w: stream ended before frame %d could be decoded (%d of %d targets left)",
		media.ErrDecode, p.list[p.idx], len(p.list)-p.idx, len(p.list))
}

// finish moves the pipeline to its terminal state. A nil err is reported
// as errExhausted; the final progress snapshot fires on success only.
func (p *pipeline) finish(err error) error {
	if p.state != stateDone {
		p.state = stateDone
		if err == nil {
			p.tracker.Finish()
		}
	}
	if err == nil {
		return errExhausted
	}
	return err
}

func (p *pipeline) close() {
	p.state = stateDone
	if p.pkt != nil {
		p.pkt.Free()
		p.pkt = nil
	}
	if p.fr != nil {
		p.fr.Free()
		p.fr = nil
	}
	if p.sw != nil {
		p.sw.Free()
		p.sw = nil
	}
	p.rend.close()
	if p.dec != nil {
		p.dec.close()
		p.dec = nil
	}
}

func pictureTypeName(t astiav.PictureType) string {
	switch t {
	case astiav.PictureTypeI:
		return "I"
	case astiav.PictureTypeP:
		return "P"
	case astiav.PictureTypeB:
		return "B"
	default:
		return ""
	}
}

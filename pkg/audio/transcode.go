package audio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/progress"
)

// encoder owns the output side of a transcode: the muxer, its IO context
// and the codec context feeding it. Exactly one of path and buf selects
// the sink.
type encoder struct {
	ofc  *astiav.FormatContext
	cc   *astiav.CodecContext
	st   *astiav.Stream
	io   *astiav.IOContext
	file bool
	pkt  *astiav.Packet
}

func newEncoder(format Format, rate int, layout astiav.ChannelLayout, path string, buf *bytes.Buffer) (*encoder, error) {
	ofc, err := astiav.AllocOutputFormatContext(nil, format.muxerName(), path)
	if err != nil {
		return nil, fmt.Errorf("%w: allocating %s muxer: %v", media.ErrEncode, format.muxerName(), err)
	}
	n := &encoder{ofc: ofc}

	if err := n.addStream(format, rate, layout); err != nil {
		n.close()
		return nil, err
	}
	if err := n.openIO(path, buf); err != nil {
		n.close()
		return nil, err
	}

	n.pkt = astiav.AllocPacket()
	if err := ofc.WriteHeader(nil); err != nil {
		n.close()
		return nil, fmt.Errorf("%w: writing %s header: %v", media.ErrEncode, format.muxerName(), err)
	}
	return n, nil
}

// addStream opens the codec context and binds it to a new output stream.
// The encoder time base is one tick per sample, so presentation timestamps
// are running sample counts.
func (n *encoder) addStream(format Format, rate int, layout astiav.ChannelLayout) error {
	codec := astiav.FindEncoderByName(format.codecName())
	if codec == nil {
		return fmt.Errorf("%w: encoder %s not available", media.ErrUnsupported, format.codecName())
	}
	cc := astiav.AllocCodecContext(codec)
	if cc == nil {
		return fmt.Errorf("%w: allocating encoder context", media.ErrEncode)
	}
	cc.SetSampleRate(rate)
	cc.SetChannelLayout(layout)
	cc.SetSampleFormat(format.sampleFormat())
	cc.SetTimeBase(astiav.NewRational(1, rate))
	if format.lossy() {
		cc.SetBitRate(lossyBitRate)
	}
	if n.ofc.OutputFormat().Flags().Has(astiav.IOFormatFlagGlobalheader) {
		cc.SetFlags(cc.Flags().Add(astiav.CodecContextFlagGlobalHeader))
	}
	if err := cc.Open(codec, nil); err != nil {
		cc.Free()
		return fmt.Errorf("%w: opening encoder %s: %v", media.ErrEncode, format.codecName(), err)
	}
	n.cc = cc

	st := n.ofc.NewStream(codec)
	if st == nil {
		return fmt.Errorf("%w: adding output stream", media.ErrEncode)
	}
	if err := st.CodecParameters().FromCodecContext(cc); err != nil {
		return fmt.Errorf("%w: copying encoder parameters: %v", media.ErrEncode, err)
	}
	st.SetTimeBase(cc.TimeBase())
	n.st = st
	return nil
}

func (n *encoder) openIO(path string, buf *bytes.Buffer) error {
	if path != "" {
		if n.ofc.OutputFormat().Flags().Has(astiav.IOFormatFlagNofile) {
			return nil
		}
		io, err := astiav.OpenIOContext(path, astiav.NewIOContextFlags(astiav.IOContextFlagWrite), nil, nil)
		if err != nil {
			return fmt.Errorf("%w: opening %q: %v", media.ErrEncode, path, err)
		}
		n.io = io
		n.file = true
		n.ofc.SetPb(io)
		return nil
	}

	io, err := astiav.AllocIOContext(4096, true, nil, nil, func(b []byte) (int, error) {
		return buf.Write(b)
	})
	if err != nil {
		return fmt.Errorf("%w: allocating memory sink: %v", media.ErrEncode, err)
	}
	n.io = io
	n.ofc.SetPb(io)
	return nil
}

// encode sends one resampled frame and writes whatever packets come out.
func (n *encoder) encode(fr *astiav.Frame) error {
	if err := n.cc.SendFrame(fr); err != nil {
		return fmt.Errorf("%w: sending frame to encoder: %v", media.ErrEncode, err)
	}
	return n.drain()
}

func (n *encoder) drain() error {
	for {
		if err := n.cc.ReceivePacket(n.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) || errors.Is(err, astiav.ErrEagain) {
				return nil
			}
			return fmt.Errorf("%w: receiving packet from encoder: %v", media.ErrEncode, err)
		}
		n.pkt.SetStreamIndex(n.st.Index())
		n.pkt.RescaleTs(n.cc.TimeBase(), n.st.TimeBase())
		if err := n.ofc.WriteInterleavedFrame(n.pkt); err != nil {
			return fmt.Errorf("%w: writing packet: %v", media.ErrEncode, err)
		}
	}
}

// finish flushes the encoder, writes its trailing packets and finalizes
// the container.
func (n *encoder) finish() error {
	if err := n.cc.SendFrame(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("%w: flushing encoder: %v", media.ErrEncode, err)
	}
	if err := n.drain(); err != nil {
		return err
	}
	if err := n.ofc.WriteTrailer(); err != nil {
		return fmt.Errorf("%w: writing trailer: %v", media.ErrEncode, err)
	}
	return nil
}

func (n *encoder) close() {
	if n.pkt != nil {
		n.pkt.Free()
		n.pkt = nil
	}
	if n.cc != nil {
		n.cc.Free()
		n.cc = nil
	}
	if n.io != nil {
		if n.file {
			n.io.Close()
		} else {
			n.io.Free()
		}
		n.io = nil
	}
	if n.ofc != nil {
		n.ofc.Free()
		n.ofc = nil
	}
}

// transcode runs the decode, resample, encode, mux loop over the track,
// bounded by start and end seconds when non-negative.
func (e *Extractor) transcode(format Format, path string, buf *bytes.Buffer, start, end float64) error {
	if err := e.preflight(); err != nil {
		return err
	}

	dec, err := openAudioDecoder(e.s)
	if err != nil {
		return err
	}
	defer dec.Free()

	enc, err := newEncoder(format, dec.SampleRate(), dec.ChannelLayout(), path, buf)
	if err != nil {
		return err
	}
	defer enc.close()

	if err := e.position(start); err != nil {
		return err
	}

	res := newResampler(dec.ChannelLayout(), dec.SampleRate(), format.sampleFormat())
	defer res.close()

	t := &transcoder{
		fc:     e.f.Container(),
		si:     e.s.Index(),
		dec:    dec,
		res:    res,
		enc:    enc,
		endPTS: e.endTimestamp(end),
		token:  e.token,
	}
	if err := t.run(); err != nil {
		return err
	}

	e.log.Debug("transcoded %d samples to %s", t.written, format)
	return enc.finish()
}

// transcoder drives one transcode pass. The written counter doubles as the
// output presentation clock: with a one-tick-per-sample time base, each
// resampled frame is stamped with the number of samples before it.
type transcoder struct {
	fc      *astiav.FormatContext
	si      int
	dec     *astiav.CodecContext
	res     *resampler
	enc     *encoder
	endPTS  int64
	written int64
	token   *progress.Token
}

func (t *transcoder) run() error {
	pkt := astiav.AllocPacket()
	defer pkt.Free()
	fr := astiav.AllocFrame()
	defer fr.Free()

	for {
		if t.token.Cancelled() {
			return progress.ErrCancelled
		}
		if err := t.fc.ReadFrame(pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				break
			}
			return fmt.Errorf("%w: reading packet: %v", media.ErrDecode, err)
		}
		if pkt.StreamIndex() != t.si {
			pkt.Unref()
			continue
		}
		// The packet filter is coarse: a packet at the bound may still
		// decode to frames past it, which the frame filter catches.
		if t.pastEnd(pkt.Pts()) {
			pkt.Unref()
			return nil
		}

		err := t.dec.SendPacket(pkt)
		pkt.Unref()
		if err != nil {
			return fmt.Errorf("%w: sending packet to decoder: %v", media.ErrDecode, err)
		}
		done, err := t.drainDecoder(fr)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	// End of input: flush the decoder and run its last frames through the
	// same resample and encode step.
	if err := t.dec.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("%w: flushing decoder: %v", media.ErrDecode, err)
	}
	_, err := t.drainDecoder(fr)
	return err
}

// drainDecoder receives decoded frames until the decoder wants more input.
// Returns done when a frame past the end bound terminates the pass.
func (t *transcoder) drainDecoder(fr *astiav.Frame) (bool, error) {
	for {
		if err := t.dec.ReceiveFrame(fr); err != nil {
			if errors.Is(err, astiav.ErrEof) || errors.Is(err, astiav.ErrEagain) {
				return false, nil
			}
			return false, fmt.Errorf("%w: receiving audio frame: %v", media.ErrDecode, err)
		}
		if t.pastEnd(fr.Pts()) {
			fr.Unref()
			return true, nil
		}
		err := t.res.convert(fr, t.encodeResampled)
		fr.Unref()
		if err != nil {
			return false, err
		}
	}
}

func (t *transcoder) encodeResampled(res *astiav.Frame) error {
	res.SetPts(t.written)
	t.written += int64(res.NbSamples())
	return t.enc.encode(res)
}

func (t *transcoder) pastEnd(pts int64) bool {
	return t.endPTS >= 0 && pts != astiav.NoPtsValue && pts > t.endPTS
}

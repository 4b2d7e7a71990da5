package audio

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/progress"
)

// Chunk is one batch of decoded audio, downmixed to mono float samples in
// the -1..1 range. Each chunk corresponds roughly to one decoded frame.
type Chunk struct {
	Samples []float32
	// Timestamp of the first sample in seconds, derived from the running
	// sample count rather than stream timestamps.
	Timestamp  float64
	SampleRate int
}

// iterState tracks which stage of the decode loop the iterator is in.
type iterState int

const (
	iterReading iterState = iota
	iterDraining
	iterFlushing
	iterDone
)

// SampleIter pulls mono float chunks from the track one decoded frame at a
// time, without collecting the whole track in memory.
//
//	it, err := ex.Samples()
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//	    use(it.Chunk())
//	}
//	if err := it.Err(); err != nil { ... }
type SampleIter struct {
	fc       *astiav.FormatContext
	si       int
	dec      *astiav.CodecContext
	res      *resampler
	rate     int
	yielded  int64
	startPTS int64
	endPTS   int64
	token    *progress.Token

	pkt   *astiav.Packet
	fr    *astiav.Frame
	state iterState
	cur   Chunk
	err   error
}

// Samples returns an iterator over the whole track. It rewinds and then
// consumes the handle's demuxer position as it advances.
func (e *Extractor) Samples() (*SampleIter, error) {
	if err := e.f.Rewind(); err != nil {
		return nil, err
	}
	return e.samplesBounded(-1, -1)
}

// samplesBounded builds an iterator whose packet feed is clipped to the
// given bounds in seconds. Negative bounds are open. The bounds filter
// packets only; the caller decides where the demuxer starts.
func (e *Extractor) samplesBounded(start, end float64) (*SampleIter, error) {
	if err := e.preflight(); err != nil {
		return nil, err
	}
	dec, err := openAudioDecoder(e.s)
	if err != nil {
		return nil, err
	}

	it := &SampleIter{
		fc:       e.f.Container(),
		si:       e.s.Index(),
		dec:      dec,
		res:      monoResampler(dec.SampleRate()),
		rate:     dec.SampleRate(),
		startPTS: -1,
		endPTS:   -1,
		token:    e.token,
		pkt:      astiav.AllocPacket(),
		fr:       astiav.AllocFrame(),
	}
	if start > 0 {
		it.startPTS = av.SecondsToStreamTimestamp(start, e.s.TimeBase())
	}
	if end >= 0 {
		it.endPTS = av.SecondsToStreamTimestamp(end, e.s.TimeBase())
	}
	return it, nil
}

// Next advances to the next chunk. It returns false when the track is
// exhausted or an error occurred; Err tells the two apart.
func (it *SampleIter) Next() bool {
	if it.state == iterDone || it.err != nil {
		return false
	}
	for {
		switch it.state {
		case iterReading, iterDraining:
			got, err := it.receiveChunk()
			if err != nil {
				return it.fail(err)
			}
			if got {
				return true
			}
			if it.state == iterReading {
				if err := it.feedPacket(); err != nil {
					return it.fail(err)
				}
			} else {
				it.state = iterFlushing
			}
		case iterFlushing:
			// Decoder exhausted: drain what the resampler still buffers.
			got, err := it.flushResampler()
			if err != nil {
				return it.fail(err)
			}
			it.state = iterDone
			it.close()
			return got
		default:
			return false
		}
	}
}

// Chunk returns the current chunk. Valid until the next call to Next.
func (it *SampleIter) Chunk() Chunk {
	return it.cur
}

// Err returns the error that stopped iteration, nil on normal exhaustion.
func (it *SampleIter) Err() error {
	return it.err
}

// Close releases the decoder state. The iterator is unusable afterwards.
func (it *SampleIter) Close() {
	it.state = iterDone
	it.close()
}

// receiveChunk converts the next decoded frame into the current chunk.
// Returns false without error when the decoder wants more input.
func (it *SampleIter) receiveChunk() (bool, error) {
	for {
		if err := it.dec.ReceiveFrame(it.fr); err != nil {
			if errors.Is(err, astiav.ErrEagain) {
				return false, nil
			}
			if errors.Is(err, astiav.ErrEof) {
				it.state = iterDraining
				return false, nil
			}
			return false, fmt.Errorf("%w: receiving audio frame: %v", media.ErrDecode, err)
		}

		var samples []float32
		err := it.res.convert(it.fr, func(res *astiav.Frame) error {
			s, err := samplesFromFrame(res)
			samples = s
			return err
		})
		it.fr.Unref()
		if err != nil {
			return false, err
		}
		if len(samples) == 0 {
			continue
		}
		it.emit(samples)
		return true, nil
	}
}

// feedPacket reads packets until one for the target stream is sent to the
// decoder or the container ends.
func (it *SampleIter) feedPacket() error {
	for {
		if it.token.Cancelled() {
			return progress.ErrCancelled
		}
		if err := it.fc.ReadFrame(it.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				if err := it.dec.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
					return fmt.Errorf("%w: flushing decoder: %v", media.ErrDecode, err)
				}
				return nil
			}
			return fmt.Errorf("%w: reading packet: %v", media.ErrDecode, err)
		}
		if it.pkt.StreamIndex() != it.si || it.skipPacket() {
			it.pkt.Unref()
			continue
		}
		if it.pastEnd() {
			// Treat the bound like end of input so buffered samples
			// still come out.
			it.pkt.Unref()
			if err := it.dec.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
				return fmt.Errorf("%w: flushing decoder: %v", media.ErrDecode, err)
			}
			return nil
		}
		err := it.dec.SendPacket(it.pkt)
		it.pkt.Unref()
		if err != nil {
			return fmt.Errorf("%w: sending packet to decoder: %v", media.ErrDecode, err)
		}
		return nil
	}
}

// skipPacket reports whether the packet ends before the start bound. The
// filter is coarse: packets overlapping the bound pass through.
func (it *SampleIter) skipPacket() bool {
	if it.startPTS < 0 || it.pkt.Pts() == astiav.NoPtsValue {
		return false
	}
	return it.pkt.Pts()+it.pkt.Duration() < it.startPTS
}

func (it *SampleIter) pastEnd() bool {
	return it.endPTS >= 0 && it.pkt.Pts() != astiav.NoPtsValue && it.pkt.Pts() > it.endPTS
}

func (it *SampleIter) flushResampler() (bool, error) {
	var samples []float32
	err := it.res.flush(func(res *astiav.Frame) error {
		s, err := samplesFromFrame(res)
		samples = append(samples, s...)
		return err
	})
	if err != nil {
		return false, err
	}
	if len(samples) == 0 {
		return false, nil
	}
	it.emit(samples)
	return true, nil
}

func (it *SampleIter) emit(samples []float32) {
	it.cur = Chunk{
		Samples:    samples,
		Timestamp:  float64(it.yielded) / float64(it.rate),
		SampleRate: it.rate,
	}
	it.yielded += int64(len(samples))
}

func (it *SampleIter) fail(err error) bool {
	it.err = err
	it.state = iterDone
	it.close()
	return false
}

func (it *SampleIter) close() {
	if it.pkt != nil {
		it.pkt.Free()
		it.pkt = nil
	}
	if it.fr != nil {
		it.fr.Free()
		it.fr = nil
	}
	if it.res != nil {
		it.res.close()
		it.res = nil
	}
	if it.dec != nil {
		it.dec.Free()
		it.dec = nil
	}
}

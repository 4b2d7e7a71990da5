// Package audio extracts and analyzes audio tracks. Extraction runs the
// track through a decode, resample, encode, mux loop into WAV, MP3, FLAC
// or AAC, written to a file or an in-memory buffer. Analysis resamples to
// mono float samples and reduces them to waveform bins or loudness
// statistics.
package audio

import (
	"bytes"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

// Extractor extracts and analyzes one audio track of an open file.
//
// An Extractor shares the file's demuxer and is not safe for concurrent
// use. Stream opens its own handle internally and is the one exception.
type Extractor struct {
	f     *media.File
	s     *astiav.Stream
	track int
	rate  int
	log   ports.Logger
	token *progress.Token
}

// New binds an extractor to an audio track of f. Track -1 selects the
// first audio track.
func New(f *media.File, track int) (*Extractor, error) {
	s, err := f.AudioStream(track)
	if err != nil {
		return nil, err
	}
	rate := s.CodecParameters().SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("%w: audio track %d has no usable sample rate", media.ErrInvalidInput, track)
	}

	return &Extractor{
		f:     f,
		s:     s,
		track: track,
		rate:  rate,
		log:   f.Logger().WithComponent("audio"),
	}, nil
}

// WithToken attaches a cancellation token polled once per demuxed packet.
func (e *Extractor) WithToken(t *progress.Token) *Extractor {
	e.token = t
	return e
}

// SampleRate returns the track's sample rate. Extraction and analysis keep
// it unchanged.
func (e *Extractor) SampleRate() int {
	return e.rate
}

// Extract transcodes the whole track and returns the encoded bytes.
func (e *Extractor) Extract(format Format) ([]byte, error) {
	return e.extractToMemory(format, -1, -1)
}

// ExtractRange transcodes the audio between start and end seconds and
// returns the encoded bytes. The demuxer seeks to start, so the result
// begins at the nearest preceding keyframe packet.
func (e *Extractor) ExtractRange(format Format, start, end float64) ([]byte, error) {
	if err := e.validateRange(start, end); err != nil {
		return nil, err
	}
	return e.extractToMemory(format, start, end)
}

// Save transcodes the whole track to a file. The format parameter decides
// the encoding, not the file extension.
func (e *Extractor) Save(path string, format Format) error {
	return e.saveToFile(path, format, -1, -1)
}

// SaveRange transcodes the audio between start and end seconds to a file.
func (e *Extractor) SaveRange(path string, format Format, start, end float64) error {
	if err := e.validateRange(start, end); err != nil {
		return err
	}
	return e.saveToFile(path, format, start, end)
}

func (e *Extractor) extractToMemory(format Format, start, end float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.transcode(format, "", &buf, start, end); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Extractor) saveToFile(path string, format Format, start, end float64) error {
	return e.transcode(format, path, nil, start, end)
}

// preflight applies the checks every operation shares: closed handles and
// pre-cancelled tokens.
func (e *Extractor) preflight() error {
	if e.f.Container() == nil {
		return media.ErrClosed
	}
	if e.token.Cancelled() {
		return progress.ErrCancelled
	}
	return nil
}

func (e *Extractor) validateRange(start, end float64) error {
	if start < 0 || end <= start {
		return fmt.Errorf("%w: audio range %.3fs..%.3fs", media.ErrInvalidArgument, start, end)
	}
	if d := e.f.Duration(); d > 0 {
		if start > d {
			return fmt.Errorf("%w: start %.3fs beyond %.3fs duration", media.ErrTimestampOutOfRange, start, d)
		}
		if end > d {
			return fmt.Errorf("%w: end %.3fs beyond %.3fs duration", media.ErrTimestampOutOfRange, end, d)
		}
	}
	return nil
}

// position moves the demuxer to where decoding starts: the start bound
// when one is set, the beginning of the container otherwise.
func (e *Extractor) position(start float64) error {
	if start < 0 {
		return e.f.Rewind()
	}
	ts := av.SecondsToSeekTimestamp(start)
	if err := e.f.Container().SeekFrame(-1, ts, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return fmt.Errorf("%w: seeking to %.3fs: %v", media.ErrDecode, start, err)
	}
	return nil
}

// endTimestamp converts an end bound in seconds to the stream's time base.
// Returns -1 when the bound is unset.
func (e *Extractor) endTimestamp(end float64) int64 {
	if end < 0 {
		return -1
	}
	return av.SecondsToStreamTimestamp(end, e.s.TimeBase())
}

// openAudioDecoder opens a software decoder for the stream.
func openAudioDecoder(s *astiav.Stream) (*astiav.CodecContext, error) {
	cp := s.CodecParameters()
	codec := astiav.FindDecoder(cp.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("%w: no decoder for codec %s", media.ErrUnsupported, cp.CodecID().Name())
	}
	cc := astiav.AllocCodecContext(codec)
	if cc == nil {
		return nil, fmt.Errorf("%w: allocating decoder context", media.ErrDecode)
	}
	if err := cc.FromCodecParameters(cp); err != nil {
		cc.Free()
		return nil, fmt.Errorf("%w: configuring decoder: %v", media.ErrDecode, err)
	}
	if err := cc.Open(codec, nil); err != nil {
		cc.Free()
		return nil, fmt.Errorf("%w: opening decoder %s: %v", media.ErrDecode, codec.Name(), err)
	}
	return cc, nil
}

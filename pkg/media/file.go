// Package media opens compressed containers and exposes the handle, the
// stream metadata and the error taxonomy shared by every extraction
// package in this module.
package media

import (
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/ports"
)

// File is an open media container.
//
// A File is not safe for concurrent use. Extraction operations share the
// demuxer position and decoder state, so run one operation at a time per
// handle and open one handle per goroutine when working in parallel.
type File struct {
	path string
	fc   *astiav.FormatContext
	log  ports.Logger
	meta *Metadata
}

// Open opens the container at path and reads its stream metadata.
func Open(path string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.WithComponent("media")

	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, fmt.Errorf("media: allocating format context")
	}

	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, &OpenError{Path: path, Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}

	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, &OpenError{Path: path, Err: fmt.Errorf("%w: reading stream info: %v", ErrInvalidInput, err)}
	}

	f := &File{
		path: path,
		fc:   fc,
		log:  log,
		meta: readMetadata(path, fc),
	}
	log.Debug("opened %s: %d streams, %.2fs", path, f.meta.StreamCount, f.meta.Duration)
	return f, nil
}

// Close releases the container. The handle must not be used afterwards.
// Close is idempotent.
func (f *File) Close() error {
	if f.fc == nil {
		return nil
	}
	f.fc.CloseInput()
	f.fc.Free()
	f.fc = nil
	f.log.Debug("closed %s", f.path)
	return nil
}

// Path returns the path the file was opened from.
func (f *File) Path() string {
	return f.path
}

// Metadata returns the stream metadata read at open time.
func (f *File) Metadata() *Metadata {
	return f.meta
}

// Duration returns the container duration in seconds, 0 when unknown.
func (f *File) Duration() float64 {
	return f.meta.Duration
}

// Logger returns the handle's logger for extraction packages to derive
// component loggers from.
func (f *File) Logger() ports.Logger {
	return f.log
}

// Container exposes the underlying demuxer to the extraction packages.
// Returns nil after Close.
func (f *File) Container() *astiav.FormatContext {
	return f.fc
}

// Rewind seeks the demuxer back to the start of the container.
func (f *File) Rewind() error {
	if f.closed() {
		return ErrClosed
	}
	if err := f.fc.SeekFrame(-1, 0, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return fmt.Errorf("%w: seeking to start: %v", ErrDecode, err)
	}
	return nil
}

func (f *File) closed() bool {
	return f.fc == nil
}

// VideoStream returns the stream of the given video track. Track counts
// video streams only; -1 selects the first video track.
func (f *File) VideoStream(track int) (*astiav.Stream, error) {
	return f.streamByTrack(astiav.MediaTypeVideo, track)
}

// AudioStream returns the stream of the given audio track. Track counts
// audio streams only; -1 selects the first audio track.
func (f *File) AudioStream(track int) (*astiav.Stream, error) {
	return f.streamByTrack(astiav.MediaTypeAudio, track)
}

// SubtitleStream returns the stream of the given subtitle track. Track
// counts subtitle streams only; -1 selects the first subtitle track.
func (f *File) SubtitleStream(track int) (*astiav.Stream, error) {
	return f.streamByTrack(astiav.MediaTypeSubtitle, track)
}

func (f *File) streamByTrack(mt astiav.MediaType, track int) (*astiav.Stream, error) {
	if f.closed() {
		return nil, ErrClosed
	}
	n := 0
	for _, s := range f.fc.Streams() {
		if s.CodecParameters().MediaType() != mt {
			continue
		}
		if track < 0 || n == track {
			return s, nil
		}
		n++
	}
	return nil, fmt.Errorf("%w: %s track %d in %q", ErrStreamNotFound, mt.String(), track, f.path)
}

// FrameRate returns the frame rate to use for frame number math on s,
// preferring the container's guess and falling back to the stream's
// average and nominal rates.
func (f *File) FrameRate(s *astiav.Stream) float64 {
	if f.closed() {
		return 0
	}
	if fps := av.RationalFloat(f.fc.GuessFrameRate(s, nil)); fps > 0 {
		return fps
	}
	if fps := av.RationalFloat(s.AvgFrameRate()); fps > 0 {
		return fps
	}
	return av.RationalFloat(s.RFrameRate())
}

// VideoFrameCount returns the number of frames in s, estimating from the
// duration and frame rate when the container does not record a count.
// Returns 0 when the count cannot be determined.
func (f *File) VideoFrameCount(s *astiav.Stream) int64 {
	if n := s.NbFrames(); n > 0 {
		return n
	}
	d := streamDuration(s, f.meta.Duration)
	fps := f.FrameRate(s)
	if d <= 0 || fps <= 0 {
		return 0
	}
	return int64(d * fps)
}

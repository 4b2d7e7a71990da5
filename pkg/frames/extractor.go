// Package frames extracts still images from video tracks. The core is a
// seek-and-decode pipeline: a request resolves to ascending frame numbers,
// the demuxer seeks once to the first of them, and decoding runs forward,
// converting and emitting exactly the requested frames in order. On top of
// that sit an eager path, a pull iterator, a channel facade, a cached
// single-frame path and a parallel coordinator.
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

// Extractor extracts frames from one video track of an open file.
//
// An Extractor shares the file's demuxer and is not safe for concurrent
// use. ExtractParallel opens its own handles internally and is the one
// exception callers need.
type Extractor struct {
	f          *media.File
	s          *astiav.Stream
	track      int
	fps        float64
	frameCount int64
	log        ports.Logger

	cache *cachedDecoder
}

// New binds an extractor to a video track of f. Track -1 selects the
// first video track.
func New(f *media.File, track int) (*Extractor, error) {
	s, err := f.VideoStream(track)
	if err != nil {
		return nil, err
	}
	fps := f.FrameRate(s)
	if fps <= 0 {
		return nil, fmt.Errorf("%w: video track %d has no usable frame rate", media.ErrInvalidInput, track)
	}

	return &Extractor{
		f:          f,
		s:          s,
		track:      track,
		fps:        fps,
		frameCount: f.VideoFrameCount(s),
		log:        f.Logger().WithComponent("frames"),
	}, nil
}

// Close releases the cached single-frame decoder state. The underlying
// file stays open.
func (e *Extractor) Close() {
	if e.cache != nil {
		e.cache.close()
		e.cache = nil
	}
}

// FrameCount returns the track's frame count, estimated from duration and
// frame rate when the container does not record one. 0 when unknown.
func (e *Extractor) FrameCount() int64 {
	return e.frameCount
}

// FrameRate returns the frame rate used for frame number math.
func (e *Extractor) FrameRate() float64 {
	return e.fps
}

func (e *Extractor) trackInfo() trackInfo {
	return trackInfo{
		frameCount: e.frameCount,
		fps:        e.fps,
		duration:   e.f.Duration(),
	}
}

// preflight resolves r and applies the checks every path shares: closed
// handles, pre-cancelled tokens and named frame numbers beyond the track.
func (e *Extractor) preflight(r Range, o *Options) (resolved, error) {
	if e.f.Container() == nil {
		return resolved{}, media.ErrClosed
	}
	if o.Token.Cancelled() {
		return resolved{}, progress.ErrCancelled
	}
	res, err := r.resolve(e.trackInfo())
	if err != nil {
		return resolved{}, err
	}
	if !res.empty() && e.frameCount > 0 && res.max() >= e.frameCount {
		return resolved{}, fmt.Errorf("%w: frame %d requested, track has %d frames",
			media.ErrFrameOutOfRange, res.max(), e.frameCount)
	}
	return res, nil
}

// Extract decodes every frame selected by r and returns them in ascending
// frame-number order.
func (e *Extractor) Extract(r Range, opts *Options) ([]Frame, error) {
	o := opts.normalized()
	res, err := e.preflight(r, o)
	if err != nil {
		return nil, err
	}
	if res.empty() {
		return nil, nil
	}

	e.log.Debug("extracting %d frames starting at %d", res.count(), res.min())

	p, err := newPipeline(e.f.Container(), e.s, e.fps, res, o, e.log)
	if err != nil {
		return nil, err
	}
	defer p.close()

	out := make([]Frame, 0, res.count())
	for {
		f, err := p.next()
		if errors.Is(err, errExhausted) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
}

// Iter returns a pull iterator over the frames selected by r. It decodes
// lazily: each Next call runs the pipeline just far enough to produce one
// frame. The iterator must be closed.
func (e *Extractor) Iter(r Range, opts *Options) (*Iter, error) {
	o := opts.normalized()
	res, err := e.preflight(r, o)
	if err != nil {
		return nil, err
	}
	if res.empty() {
		return &Iter{}, nil
	}

	p, err := newPipeline(e.f.Container(), e.s, e.fps, res, o, e.log)
	if err != nil {
		return nil, err
	}
	return &Iter{p: p}, nil
}

// EachFrame calls fn for every frame selected by r, in ascending order,
// without collecting them. Returning an error from fn stops the walk and
// surfaces that error.
func (e *Extractor) EachFrame(r Range, opts *Options, fn func(*Frame) error) error {
	it, err := e.Iter(r, opts)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		if err := fn(it.Frame()); err != nil {
			return err
		}
	}
	return it.Err()
}

// Frame returns the single frame n, reusing the handle's cached decoder
// state across calls. Seek imprecision is absorbed by returning the first
// decodable frame at or after n.
func (e *Extractor) Frame(n int64, opts *Options) (*Frame, error) {
	o := opts.normalized()
	if e.f.Container() == nil {
		return nil, media.ErrClosed
	}
	if o.Token.Cancelled() {
		return nil, progress.ErrCancelled
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative frame number %d", media.ErrInvalidArgument, n)
	}
	if e.frameCount > 0 && n >= e.frameCount {
		return nil, fmt.Errorf("%w: frame %d requested, track has %d frames",
			media.ErrFrameOutOfRange, n, e.frameCount)
	}

	if err := e.ensureCache(o); err != nil {
		return nil, err
	}
	return e.cache.lookup(n)
}

// FrameAtTime returns the frame whose display interval contains the given
// time.
func (e *Extractor) FrameAtTime(seconds float64, opts *Options) (*Frame, error) {
	if seconds < 0 {
		return nil, fmt.Errorf("%w: negative timestamp %.3fs", media.ErrInvalidArgument, seconds)
	}
	if d := e.f.Duration(); d > 0 && seconds > d {
		return nil, fmt.Errorf("%w: %.3fs exceeds duration %.3fs", media.ErrTimestampOutOfRange, seconds, d)
	}
	return e.Frame(av.SecondsToFrameNumber(seconds, e.fps), opts)
}

// ensureCache applies the cache invalidation rule: a changed output shape
// discards the state wholesale, anything else keeps it.
func (e *Extractor) ensureCache(o *Options) error {
	if e.cache != nil && !e.cache.shapeMatches(o) {
		e.log.Debug("output shape changed, rebuilding cached decoder")
		e.cache.close()
		e.cache = nil
	}
	if e.cache == nil {
		c, err := newCachedDecoder(e, o)
		if err != nil {
			return err
		}
		e.cache = c
	}
	return nil
}

package frames

import (
	"fmt"
	"sort"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/media"
)

// Range selects which frames of a video track to extract. The variants
// are Span, List, Stride, TimeSpan, TimeStride and Segments; every variant
// resolves deterministically to ascending, deduplicated frame numbers.
type Range interface {
	resolve(t trackInfo) (resolved, error)
}

// Span selects the inclusive frame number range Start through End.
type Span struct {
	Start, End int64
}

// List selects explicit frame numbers. Order and duplicates do not matter;
// resolution sorts and deduplicates, so List{10, 0, 5} and List{0, 5, 10}
// extract the same frames.
type List []int64

// Stride selects every Step-th frame across the whole track, starting at
// frame 0.
type Stride struct {
	Step int64
}

// TimeSpan selects all frames whose display time falls between Start and
// End seconds.
type TimeSpan struct {
	Start, End float64
}

// TimeStride selects one frame every Period seconds across the whole
// track, starting at time 0.
type TimeStride struct {
	Period float64
}

// Segments selects the union of several time spans.
type Segments []TimeSpan

// trackInfo carries the per-track facts resolution needs. frameCount and
// duration may be 0 when the container does not record them.
type trackInfo struct {
	frameCount int64
	fps        float64
	duration   float64
}

// resolved is either a materialized target list or an unmaterialized
// contiguous span. The two forms must decode identically; the span form
// exists so dense ranges avoid allocating one number per frame.
type resolved struct {
	list []int64
	span *Span
}

func (r resolved) empty() bool {
	if r.span != nil {
		return false
	}
	return len(r.list) == 0
}

func (r resolved) count() int64 {
	if r.span != nil {
		return r.span.End - r.span.Start + 1
	}
	return int64(len(r.list))
}

func (r resolved) min() int64 {
	if r.span != nil {
		return r.span.Start
	}
	return r.list[0]
}

func (r resolved) max() int64 {
	if r.span != nil {
		return r.span.End
	}
	return r.list[len(r.list)-1]
}

// materialize expands the span form into explicit numbers. The parallel
// coordinator needs a concrete list to split into runs.
func (r resolved) materialize() []int64 {
	if r.span == nil {
		return r.list
	}
	out := make([]int64, 0, r.span.End-r.span.Start+1)
	for n := r.span.Start; n <= r.span.End; n++ {
		out = append(out, n)
	}
	return out
}

func (s Span) resolve(trackInfo) (resolved, error) {
	if s.Start < 0 {
		return resolved{}, fmt.Errorf("%w: negative frame number %d", media.ErrInvalidArgument, s.Start)
	}
	if s.Start > s.End {
		return resolved{}, fmt.Errorf("%w: frame range start %d after end %d", media.ErrInvalidArgument, s.Start, s.End)
	}
	return resolved{span: &s}, nil
}

func (l List) resolve(trackInfo) (resolved, error) {
	if len(l) == 0 {
		return resolved{}, nil
	}
	out := make([]int64, 0, len(l))
	for _, n := range l {
		if n < 0 {
			return resolved{}, fmt.Errorf("%w: negative frame number %d", media.ErrInvalidArgument, n)
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return resolved{list: dedupSorted(out)}, nil
}

func (s Stride) resolve(t trackInfo) (resolved, error) {
	if s.Step <= 0 {
		return resolved{}, fmt.Errorf("%w: frame interval must be positive, got %d", media.ErrInvalidArgument, s.Step)
	}
	if t.frameCount <= 0 {
		return resolved{}, fmt.Errorf("%w: frame interval needs a known frame count", media.ErrInvalidArgument)
	}
	var out []int64
	for n := int64(0); n < t.frameCount; n += s.Step {
		out = append(out, n)
	}
	return resolved{list: out}, nil
}

func (s TimeSpan) resolve(t trackInfo) (resolved, error) {
	span, err := s.toSpan(t)
	if err != nil {
		return resolved{}, err
	}
	return resolved{span: span}, nil
}

func (s TimeSpan) toSpan(t trackInfo) (*Span, error) {
	if s.Start < 0 {
		return nil, fmt.Errorf("%w: negative start time %.3fs", media.ErrInvalidArgument, s.Start)
	}
	if s.Start >= s.End {
		return nil, fmt.Errorf("%w: time range start %.3fs not before end %.3fs", media.ErrInvalidArgument, s.Start, s.End)
	}
	if t.duration > 0 && s.End > t.duration {
		return nil, fmt.Errorf("%w: time %.3fs exceeds duration %.3fs", media.ErrTimestampOutOfRange, s.End, t.duration)
	}

	span := &Span{
		Start: av.SecondsToFrameNumber(s.Start, t.fps),
		End:   av.SecondsToFrameNumber(s.End, t.fps),
	}
	// A full-duration request floors to one past the last frame; clamp so
	// it stays satisfiable.
	if t.frameCount > 0 && span.End >= t.frameCount {
		span.End = t.frameCount - 1
	}
	if span.End < span.Start {
		span.End = span.Start
	}
	return span, nil
}

func (s TimeStride) resolve(t trackInfo) (resolved, error) {
	if s.Period <= 0 {
		return resolved{}, fmt.Errorf("%w: time interval must be positive, got %.3fs", media.ErrInvalidArgument, s.Period)
	}
	if t.duration <= 0 {
		return resolved{}, fmt.Errorf("%w: time interval needs a known duration", media.ErrInvalidArgument)
	}
	var out []int64
	for ts := 0.0; ts < t.duration; ts += s.Period {
		n := av.SecondsToFrameNumber(ts, t.fps)
		if t.frameCount > 0 && n >= t.frameCount {
			break
		}
		out = append(out, n)
	}
	return resolved{list: dedupSorted(out)}, nil
}

func (s Segments) resolve(t trackInfo) (resolved, error) {
	if len(s) == 0 {
		return resolved{}, nil
	}
	var out []int64
	for _, seg := range s {
		span, err := seg.toSpan(t)
		if err != nil {
			return resolved{}, err
		}
		for n := span.Start; n <= span.End; n++ {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return resolved{list: dedupSorted(out)}, nil
}

// dedupSorted removes duplicates from an ascending slice in place.
func dedupSorted(xs []int64) []int64 {
	if len(xs) < 2 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

package frames

import (
	"errors"
	"reflect"
	"testing"

	"github.com/user/unbundle/pkg/media"
)

// A 10 second, 30fps, 300 frame track.
func fixtureTrack() trackInfo {
	return trackInfo{frameCount: 300, fps: 30, duration: 10}
}

func TestSpanResolve(t *testing.T) {
	res, err := Span{Start: 5, End: 20}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.span == nil {
		t.Fatal("contiguous range must stay unmaterialized")
	}
	if res.count() != 16 || res.min() != 5 || res.max() != 20 {
		t.Errorf("count=%d min=%d max=%d", res.count(), res.min(), res.max())
	}

	// Single-frame span.
	res, err = Span{Start: 0, End: 0}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.count() != 1 {
		t.Errorf("single-frame span count = %d", res.count())
	}
}

func TestSpanResolveInvalid(t *testing.T) {
	if _, err := (Span{Start: 9, End: 3}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("start after end: err = %v", err)
	}
	if _, err := (Span{Start: -1, End: 3}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("negative start: err = %v", err)
	}
}

func TestListResolveNormalizes(t *testing.T) {
	a, err := List{10, 0, 5}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	b, err := List{0, 5, 10}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(a.list, b.list) {
		t.Errorf("input order must not matter: %v vs %v", a.list, b.list)
	}
	if !reflect.DeepEqual(a.list, []int64{0, 5, 10}) {
		t.Errorf("resolved list = %v", a.list)
	}

	dup, err := List{3, 3, 3, 1}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(dup.list, []int64{1, 3}) {
		t.Errorf("duplicates must collapse: %v", dup.list)
	}
}

func TestListResolveEmptyAndInvalid(t *testing.T) {
	res, err := List{}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if !res.empty() {
		t.Error("empty list must resolve empty")
	}

	if _, err := (List{4, -2}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("negative number: err = %v", err)
	}
}

func TestStrideResolve(t *testing.T) {
	res, err := Stride{Step: 100}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(res.list, []int64{0, 100, 200}) {
		t.Errorf("stride 100 over 300 frames = %v", res.list)
	}

	if _, err := (Stride{Step: 0}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("zero step: err = %v", err)
	}
	if _, err := (Stride{Step: 10}).resolve(trackInfo{fps: 30}); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("unknown frame count: err = %v", err)
	}
}

func TestTimeSpanResolve(t *testing.T) {
	res, err := TimeSpan{Start: 1.0, End: 2.0}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.span == nil || res.span.Start != 30 || res.span.End != 60 {
		t.Errorf("1s..2s at 30fps = %+v", res.span)
	}

	// Conversion floors into the frame's display interval.
	res, err = TimeSpan{Start: 0.999, End: 1.999}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.span.Start != 29 || res.span.End != 59 {
		t.Errorf("floored span = %+v", res.span)
	}
}

func TestTimeSpanFullDurationClamps(t *testing.T) {
	res, err := TimeSpan{Start: 0, End: 10}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("full-duration request: %v", err)
	}
	if res.span.End != 299 {
		t.Errorf("end frame = %d, want clamp to 299", res.span.End)
	}
}

func TestTimeSpanValidation(t *testing.T) {
	if _, err := (TimeSpan{Start: 2, End: 2}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("start == end: err = %v", err)
	}
	if _, err := (TimeSpan{Start: 3, End: 1}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("start after end: err = %v", err)
	}
	if _, err := (TimeSpan{Start: 0, End: 11}).resolve(fixtureTrack()); !errors.Is(err, media.ErrTimestampOutOfRange) {
		t.Errorf("end beyond duration: err = %v", err)
	}
	if _, err := (TimeSpan{Start: -1, End: 2}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("negative start: err = %v", err)
	}
}

func TestTimeStrideResolve(t *testing.T) {
	res, err := TimeStride{Period: 1.0}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []int64{0, 30, 60, 90, 120, 150, 180, 210, 240, 270}
	if !reflect.DeepEqual(res.list, want) {
		t.Errorf("1s period over 10s = %v", res.list)
	}

	if _, err := (TimeStride{Period: 0}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("zero period: err = %v", err)
	}
	if _, err := (TimeStride{Period: 1}).resolve(trackInfo{fps: 30, frameCount: 300}); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("unknown duration: err = %v", err)
	}
}

func TestSegmentsResolve(t *testing.T) {
	res, err := Segments{
		{Start: 0, End: 0.1},
		{Start: 0.05, End: 0.2}, // overlaps the first
	}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []int64{0, 1, 2, 3, 4, 5, 6}
	if !reflect.DeepEqual(res.list, want) {
		t.Errorf("overlapping segments = %v", res.list)
	}

	if _, err := (Segments{{Start: 2, End: 1}}).resolve(fixtureTrack()); !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("bad segment: err = %v", err)
	}
}

func TestMaterializeSpanEqualsList(t *testing.T) {
	res, err := Span{Start: 10, End: 14}.resolve(fixtureTrack())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(res.materialize(), []int64{10, 11, 12, 13, 14}) {
		t.Errorf("materialized span = %v", res.materialize())
	}
}

func TestDedupSorted(t *testing.T) {
	got := dedupSorted([]int64{1, 1, 2, 3, 3, 3, 9})
	if !reflect.DeepEqual(got, []int64{1, 2, 3, 9}) {
		t.Errorf("dedupSorted = %v", got)
	}
	if got := dedupSorted(nil); len(got) != 0 {
		t.Errorf("dedupSorted(nil) = %v", got)
	}
}

package remux

import (
	"errors"
	"fmt"
	"testing"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/media"
)

func TestOptionsDefaults(t *testing.T) {
	var nilOpts *Options
	o := nilOpts.normalized()
	if !o.Video || !o.Audio || !o.Subtitles {
		t.Errorf("nil options normalized to %+v, want all streams included", o)
	}
}

func TestOptionsExcludes(t *testing.T) {
	o := DefaultOptions().ExcludeVideo().ExcludeSubtitles()
	if o.Video || !o.Audio || o.Subtitles {
		t.Errorf("exclusions produced %+v", o)
	}
}

func TestOptionsIncludes(t *testing.T) {
	o := DefaultOptions().ExcludeAudio()
	for _, tt := range []struct {
		mt   astiav.MediaType
		want bool
	}{
		{mt: astiav.MediaTypeVideo, want: true},
		{mt: astiav.MediaTypeAudio, want: false},
		{mt: astiav.MediaTypeSubtitle, want: true},
		{mt: astiav.MediaTypeData, want: false},
		{mt: astiav.MediaTypeAttachment, want: false},
	} {
		if got := o.includes(tt.mt); got != tt.want {
			t.Errorf("includes(%s) = %v, want %v", tt.mt, got, tt.want)
		}
	}
}

func TestStreamCopyErrorUnwraps(t *testing.T) {
	err := &StreamCopyError{
		StreamIndex: 2,
		Err:         fmt.Errorf("%w: writing packet: disk full", media.ErrEncode),
	}

	if !errors.Is(err, media.ErrEncode) {
		t.Error("StreamCopyError must unwrap to media.ErrEncode")
	}

	var sce *StreamCopyError
	if !errors.As(error(err), &sce) || sce.StreamIndex != 2 {
		t.Errorf("errors.As did not recover the stream index, got %+v", sce)
	}

	if msg := err.Error(); msg == "" {
		t.Error("empty error message")
	}
}

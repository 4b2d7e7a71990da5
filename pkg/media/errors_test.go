package media

import (
	"errors"
	"fmt"
	"testing"
)

func TestOpenErrorClassifies(t *testing.T) {
	err := error(&OpenError{
		Path: "/tmp/missing.mp4",
		Err:  fmt.Errorf("%w: no such file", ErrInvalidInput),
	})

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("OpenError must classify as ErrInvalidInput")
	}

	var oe *OpenError
	if !errors.As(err, &oe) || oe.Path != "/tmp/missing.mp4" {
		t.Errorf("errors.As did not recover the path, got %+v", oe)
	}
}

func TestSentinelWrapping(t *testing.T) {
	// The wrapping idiom used throughout: sentinel first, detail after.
	err := fmt.Errorf("%w: frame 500 requested, track has 100 frames", ErrFrameOutOfRange)

	if !errors.Is(err, ErrFrameOutOfRange) {
		t.Error("wrapped sentinel lost its identity")
	}
	if errors.Is(err, ErrTimestampOutOfRange) {
		t.Error("wrapped sentinel matched a different class")
	}
}

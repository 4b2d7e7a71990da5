package media

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying extraction failures. Call sites wrap these
// with fmt.Errorf("%w: ...", ...) so errors.Is keeps working while the
// message carries the specifics.
var (
	// ErrInvalidInput means the input could not be opened or parsed as
	// a media container.
	ErrInvalidInput = errors.New("media: invalid input")

	// ErrStreamNotFound means the file has no stream matching the
	// requested media type and track index.
	ErrStreamNotFound = errors.New("media: stream not found")

	// ErrFrameOutOfRange means a requested frame number lies at or beyond
	// the track's frame count.
	ErrFrameOutOfRange = errors.New("media: frame out of range")

	// ErrTimestampOutOfRange means a requested timestamp exceeds the
	// container duration.
	ErrTimestampOutOfRange = errors.New("media: timestamp out of range")

	// ErrDecode means demuxing or decoding failed, or a requested frame
	// could not be located in the decoded output.
	ErrDecode = errors.New("media: decode failed")

	// ErrEncode means encoding or muxing failed.
	ErrEncode = errors.New("media: encode failed")

	// ErrUnsupported means the requested output or codec combination is
	// not supported.
	ErrUnsupported = errors.New("media: unsupported format")

	// ErrInvalidArgument means the caller passed an impossible request,
	// such as an empty frame range or zero interval.
	ErrInvalidArgument = errors.New("media: invalid argument")

	// ErrClosed means the file handle was used after Close.
	ErrClosed = errors.New("media: file is closed")
)

// OpenError reports a failure to open a container. The path is carried as
// a field so batch callers can tell which input failed; the wrapped error
// classifies as ErrInvalidInput.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

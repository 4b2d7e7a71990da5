// Package av wraps the libav binding with the small set of conversions and
// process-wide controls the extraction pipelines share: timestamp math
// between frame numbers, seconds and stream time bases, the native log
// level switch, and hardware decoder setup.
package av

import (
	"math"

	"github.com/asticode/go-astiav"
)

// Container-level seeks address the whole file in microseconds rather than
// any single stream's time base.
const microsPerSecond = 1_000_000

// SeekTimestamp converts a frame number to the microsecond timestamp passed
// to a container-level seek.
func SeekTimestamp(frame int64, fps float64) int64 {
	return int64(float64(frame) / fps * microsPerSecond)
}

// SecondsToSeekTimestamp converts a position in seconds to the microsecond
// timestamp passed to a container-level seek.
func SecondsToSeekTimestamp(seconds float64) int64 {
	return int64(seconds * microsPerSecond)
}

// PtsToFrameNumber converts a stream timestamp to the number of the frame
// it lands on. The fractional part is truncated so a timestamp anywhere
// inside a frame's display interval maps to that frame.
func PtsToFrameNumber(pts int64, timeBase astiav.Rational, fps float64) int64 {
	seconds := float64(pts) * float64(timeBase.Num()) / float64(timeBase.Den())
	return int64(seconds * fps)
}

// SecondsToFrameNumber converts a position in seconds to the frame number
// whose display interval contains it.
func SecondsToFrameNumber(seconds, fps float64) int64 {
	return int64(math.Floor(seconds * fps))
}

// SecondsToStreamTimestamp converts a duration in seconds to a timestamp
// expressed in the given stream time base.
func SecondsToStreamTimestamp(seconds float64, timeBase astiav.Rational) int64 {
	return int64(seconds * float64(timeBase.Den()) / float64(timeBase.Num()))
}

// PtsSeconds converts a stream timestamp to seconds.
func PtsSeconds(pts int64, timeBase astiav.Rational) float64 {
	return float64(pts) * float64(timeBase.Num()) / float64(timeBase.Den())
}

// RationalFloat converts a rational to a float, returning 0 for an unset
// (zero-denominator) value.
func RationalFloat(r astiav.Rational) float64 {
	if r.Den() == 0 {
		return 0
	}
	return float64(r.Num()) / float64(r.Den())
}

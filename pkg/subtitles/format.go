package subtitles

import (
	"fmt"
	"strings"

	"github.com/user/unbundle/pkg/media"
)

// Format selects the serialization of extracted entries.
type Format int

const (
	// SRT is SubRip text: numbered cues with comma millisecond separators.
	SRT Format = iota
	// WebVTT is web video text tracks: a WEBVTT header and dot separators.
	WebVTT
	// Raw is one line per entry with bracketed timestamps, for inspection.
	Raw
)

func (f Format) String() string {
	switch f {
	case SRT:
		return "srt"
	case WebVTT:
		return "vtt"
	case Raw:
		return "raw"
	}
	return "unknown"
}

// Extension returns the conventional file extension, dot included.
func (f Format) Extension() string {
	switch f {
	case SRT:
		return ".srt"
	case WebVTT:
		return ".vtt"
	default:
		return ".txt"
	}
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srt":
		return SRT, nil
	case "vtt", "webvtt":
		return WebVTT, nil
	case "raw", "txt", "text":
		return Raw, nil
	default:
		return SRT, fmt.Errorf("%w: unknown subtitle format %q", media.ErrInvalidArgument, s)
	}
}

// formatEntries renders entries in the given format. Cue numbers restart
// at one regardless of the entries' decode-order indexes.
func formatEntries(entries []Entry, format Format) string {
	var b strings.Builder
	switch format {
	case WebVTT:
		b.WriteString("WEBVTT\n\n")
		for i, e := range entries {
			fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
				i+1, vttTimestamp(e.Start), vttTimestamp(e.End), e.Text)
		}
	case Raw:
		for _, e := range entries {
			fmt.Fprintf(&b, "[%s --> %s] %s\n",
				srtTimestamp(e.Start), srtTimestamp(e.End), e.Text)
		}
	default:
		for i, e := range entries {
			fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
				i+1, srtTimestamp(e.Start), srtTimestamp(e.End), e.Text)
		}
	}
	return b.String()
}

// srtTimestamp renders seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	h, m, s, ms := splitTimestamp(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// vttTimestamp renders seconds as HH:MM:SS.mmm.
func vttTimestamp(seconds float64) string {
	h, m, s, ms := splitTimestamp(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func splitTimestamp(seconds float64) (h, m, s, ms int64) {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds * 1000)
	ms = total % 1000
	sec := total / 1000
	return sec / 3600, (sec % 3600) / 60, sec % 60, ms
}

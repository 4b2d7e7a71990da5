package subtitles

import (
	"encoding/binary"
	"strings"
)

// parsePayload extracts the display text from one subtitle packet. Returns
// "" when the payload has no text.
func parsePayload(codec string, data []byte) string {
	switch codec {
	case "ass", "ssa":
		return parseASSEvent(string(data))
	case "mov_text":
		return parseMovText(data)
	default:
		// subrip, webvtt and raw text packets carry the cue text as-is.
		return strings.TrimSpace(string(data))
	}
}

// parseASSEvent isolates the text field of an ASS event and cleans it up.
//
// Two framings exist: full script lines start with "Dialogue:" and carry
// the text after the ninth comma, while Matroska packets drop the prefix,
// lead with a read order number and carry the text after the eighth comma.
func parseASSEvent(s string) string {
	s = strings.TrimSpace(s)
	text := s
	if strings.HasPrefix(s, "Dialogue:") {
		if fields := strings.SplitN(s, ",", 10); len(fields) == 10 {
			text = fields[9]
		}
	} else if fields := strings.SplitN(s, ",", 9); len(fields) == 9 {
		text = fields[8]
	}
	return cleanASSText(text)
}

// cleanASSText removes {\...} override blocks and turns ASS line breaks
// into newlines.
func cleanASSText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, c := range s {
		switch {
		case c == '{' && !inTag:
			inTag = true
		case c == '}' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(c)
		}
	}
	out := b.String()
	out = strings.ReplaceAll(out, `\N`, "\n")
	out = strings.ReplaceAll(out, `\n`, "\n")
	return strings.TrimSpace(out)
}

// parseMovText reads an MP4 timed-text sample: a big-endian two byte text
// length followed by UTF-8 text. Trailing style boxes are ignored.
func parseMovText(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	n := int(binary.BigEndian.Uint16(data))
	if n > len(data)-2 {
		n = len(data) - 2
	}
	return strings.TrimSpace(string(data[2 : 2+n]))
}

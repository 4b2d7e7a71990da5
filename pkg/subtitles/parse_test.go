package subtitles

import "testing"

func TestParseASSEventMatroskaFraming(t *testing.T) {
	// Matroska ASS packets lead with a read order number and carry the
	// text after the eighth comma.
	got := parseASSEvent("1,0,Default,,0,0,0,,Hello world")
	if got != "Hello world" {
		t.Errorf("got %q, want %q", got, "Hello world")
	}
}

func TestParseASSEventDialogueFraming(t *testing.T) {
	got := parseASSEvent("Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello world")
	if got != "Hello world" {
		t.Errorf("got %q, want %q", got, "Hello world")
	}
}

func TestParseASSEventKeepsCommasInText(t *testing.T) {
	got := parseASSEvent("1,0,Default,,0,0,0,,Wait, what, really?")
	if got != "Wait, what, really?" {
		t.Errorf("got %q, want %q", got, "Wait, what, really?")
	}
}

func TestParseASSEventStripsOverrides(t *testing.T) {
	got := parseASSEvent(`1,0,Default,,0,0,0,,{\i1}Emphasis{\i0} here`)
	if got != "Emphasis here" {
		t.Errorf("got %q, want %q", got, "Emphasis here")
	}
}

func TestParseASSEventLineBreaks(t *testing.T) {
	got := parseASSEvent(`1,0,Default,,0,0,0,,First\NSecond`)
	if got != "First\nSecond" {
		t.Errorf("got %q, want %q", got, "First\nSecond")
	}
}

func TestParseASSEventPlainText(t *testing.T) {
	// Payloads that are not event lines pass through with only the
	// override cleanup applied.
	got := parseASSEvent("just some text")
	if got != "just some text" {
		t.Errorf("got %q, want %q", got, "just some text")
	}
}

func TestParseMovText(t *testing.T) {
	data := append([]byte{0x00, 0x05}, []byte("Hello, trailing box")...)
	if got := parseMovText(data[:7]); got != "Hello" {
		t.Errorf("got %q, want %q", got, "Hello")
	}
}

func TestParseMovTextTruncatedLength(t *testing.T) {
	// A length prefix larger than the payload clamps to what is there.
	data := append([]byte{0x00, 0xFF}, []byte("short")...)
	if got := parseMovText(data); got != "short" {
		t.Errorf("got %q, want %q", got, "short")
	}
}

func TestParseMovTextEmpty(t *testing.T) {
	if got := parseMovText([]byte{0x00}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := parseMovText(nil); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestParsePayloadByCodec(t *testing.T) {
	if got := parsePayload("subrip", []byte("  A line.  \n")); got != "A line." {
		t.Errorf("subrip: got %q", got)
	}
	if got := parsePayload("webvtt", []byte("Cue text")); got != "Cue text" {
		t.Errorf("webvtt: got %q", got)
	}
	if got := parsePayload("ass", []byte(`1,0,Default,,0,0,0,,Styled`)); got != "Styled" {
		t.Errorf("ass: got %q", got)
	}
	if got := parsePayload("mov_text", []byte{0x00, 0x02, 'h', 'i'}); got != "hi" {
		t.Errorf("mov_text: got %q", got)
	}
}

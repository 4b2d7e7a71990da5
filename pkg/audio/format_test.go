package audio

import (
	"errors"
	"testing"

	"github.com/user/unbundle/pkg/media"
)

func TestFormatTable(t *testing.T) {
	tests := []struct {
		format Format
		name   string
		codec  string
		muxer  string
		ext    string
		lossy  bool
	}{
		{Wav, "wav", "pcm_s16le", "wav", ".wav", false},
		{Mp3, "mp3", "libmp3lame", "mp3", ".mp3", true},
		{Flac, "flac", "flac", "flac", ".flac", false},
		{Aac, "aac", "aac", "adts", ".aac", true},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.name {
			t.Errorf("%v.String() = %q, want %q", tt.format, got, tt.name)
		}
		if got := tt.format.codecName(); got != tt.codec {
			t.Errorf("%s codec = %q, want %q", tt.name, got, tt.codec)
		}
		if got := tt.format.muxerName(); got != tt.muxer {
			t.Errorf("%s muxer = %q, want %q", tt.name, got, tt.muxer)
		}
		if got := tt.format.Extension(); got != tt.ext {
			t.Errorf("%s extension = %q, want %q", tt.name, got, tt.ext)
		}
		if got := tt.format.lossy(); got != tt.lossy {
			t.Errorf("%s lossy = %v, want %v", tt.name, got, tt.lossy)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"wav", Wav},
		{"WAV", Wav},
		{" mp3 ", Mp3},
		{"flac", Flac},
		{"aac", Aac},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatUnknown(t *testing.T) {
	_, err := ParseFormat("ogg")
	if !errors.Is(err, media.ErrInvalidArgument) {
		t.Fatalf("ParseFormat(ogg) error = %v, want ErrInvalidArgument", err)
	}
}

package audio

import (
	"fmt"
	"strings"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/media"
)

// Format selects the container and codec extracted audio is encoded to.
type Format int

const (
	// Wav is PCM signed 16-bit little-endian. Lossless, plays anywhere.
	Wav Format = iota
	// Mp3 is MPEG audio layer III via libmp3lame. Lossy.
	Mp3
	// Flac is the free lossless audio codec.
	Flac
	// Aac is advanced audio coding in an ADTS stream. Lossy.
	Aac
)

// lossyBitRate is the encoder bit rate for the lossy formats. The lossless
// formats derive their rate from the sample format and sample rate.
const lossyBitRate = 128_000

func (f Format) String() string {
	switch f {
	case Wav:
		return "wav"
	case Mp3:
		return "mp3"
	case Flac:
		return "flac"
	case Aac:
		return "aac"
	}
	return "unknown"
}

// Extension returns the conventional file extension, dot included.
func (f Format) Extension() string {
	switch f {
	case Wav:
		return ".wav"
	case Mp3:
		return ".mp3"
	case Flac:
		return ".flac"
	case Aac:
		return ".aac"
	}
	return ""
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wav":
		return Wav, nil
	case "mp3":
		return Mp3, nil
	case "flac":
		return Flac, nil
	case "aac":
		return Aac, nil
	default:
		return Wav, fmt.Errorf("%w: unknown audio format %q", media.ErrInvalidArgument, s)
	}
}

// muxerName returns the libav muxer writing this format. AAC goes into a
// raw ADTS stream rather than an MP4 container.
func (f Format) muxerName() string {
	switch f {
	case Mp3:
		return "mp3"
	case Flac:
		return "flac"
	case Aac:
		return "adts"
	default:
		return "wav"
	}
}

// codecName returns the libav encoder for this format.
func (f Format) codecName() string {
	switch f {
	case Mp3:
		return "libmp3lame"
	case Flac:
		return "flac"
	case Aac:
		return "aac"
	default:
		return "pcm_s16le"
	}
}

// sampleFormat returns the sample format the encoder is fed, the first one
// each encoder advertises.
func (f Format) sampleFormat() astiav.SampleFormat {
	switch f {
	case Mp3:
		return astiav.SampleFormatS16P
	case Aac:
		return astiav.SampleFormatFltp
	default:
		return astiav.SampleFormatS16
	}
}

func (f Format) lossy() bool {
	return f == Mp3 || f == Aac
}

// Package probe inspects media files without holding them open. Probe
// runs the full FFmpeg demuxer analysis; ProbeMP4 walks MP4 box structure
// in pure Go for the common case where spinning up the AV stack is not
// worth it.
package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/unbundle/pkg/media"
)

// Probe opens path, reads its metadata, and closes it again.
func Probe(path string, opts ...media.Option) (*media.Metadata, error) {
	f, err := media.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Metadata(), nil
}

// MP4Info is the reduced record ProbeMP4 fills from the moov box alone.
type MP4Info struct {
	// MajorBrand and CompatibleBrands come from the ftyp box; empty for
	// files without one.
	MajorBrand       string
	CompatibleBrands []string
	Fragmented       bool
	// Duration is the movie duration in seconds per the mvhd box. Often
	// zero for fragmented files, which declare durations per segment.
	Duration float64
	Tracks   []MP4Track
}

// MP4Track describes one trak box.
type MP4Track struct {
	ID   uint32
	Kind string
	// Codec is the sample entry type mapped to a codec name; unmapped
	// entries report the raw four-character code.
	Codec string
	// Duration is in seconds per the track's mdhd box.
	Duration  float64
	Timescale uint32
	// Width and Height are set for video tracks, from tkhd fixed-point
	// values.
	Width  int
	Height int
}

// ProbeMP4 reads MP4 family files (mp4, m4a, mov, cmaf segments) without
// cgo. It walks box structure only; samples are never demuxed. Non-MP4
// input fails with ErrInvalidInput.
func ProbeMP4(path string) (*MP4Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrInvalidInput, err)
	}
	defer file.Close()
	return ProbeMP4Reader(file)
}

// ProbeMP4Reader is ProbeMP4 over an io.ReadSeeker.
func ProbeMP4Reader(r io.ReadSeeker) (*MP4Info, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding mp4 boxes: %v", media.ErrInvalidInput, err)
	}
	return readMP4Info(mp4File), nil
}

func readMP4Info(f *mp4.File) *MP4Info {
	info := &MP4Info{Fragmented: f.IsFragmented()}

	if f.Ftyp != nil {
		info.MajorBrand = f.Ftyp.MajorBrand
		info.CompatibleBrands = f.Ftyp.CompatibleBrands
	}

	moov := f.Moov
	if moov == nil && f.Init != nil {
		moov = f.Init.Moov
	}
	if moov == nil {
		return info
	}

	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
		info.Duration = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
	}

	for _, trak := range moov.Traks {
		info.Tracks = append(info.Tracks, readMP4Track(trak))
	}
	return info
}

func readMP4Track(trak *mp4.TrakBox) MP4Track {
	var t MP4Track
	if trak.Tkhd != nil {
		t.ID = trak.Tkhd.TrackID
		t.Width = int(trak.Tkhd.Width >> 16)
		t.Height = int(trak.Tkhd.Height >> 16)
	}
	if trak.Mdia == nil {
		return t
	}
	if trak.Mdia.Hdlr != nil {
		t.Kind = trackKind(trak.Mdia.Hdlr.HandlerType)
	}
	if trak.Mdia.Mdhd != nil {
		t.Timescale = trak.Mdia.Mdhd.Timescale
		if t.Timescale > 0 {
			t.Duration = float64(trak.Mdia.Mdhd.Duration) / float64(t.Timescale)
		}
	}
	if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
		if children := trak.Mdia.Minf.Stbl.Stsd.Children; len(children) > 0 {
			t.Codec = codecName(children[0].Type())
		}
	}
	return t
}

func trackKind(handlerType string) string {
	switch handlerType {
	case "vide":
		return "video"
	case "soun":
		return "audio"
	case "subt", "sbtl", "text":
		return "subtitle"
	default:
		return handlerType
	}
}

// codecName maps a sample entry four-character code to a codec name.
// Unmapped entries pass through so callers still see what the file
// carries.
func codecName(sampleEntry string) string {
	switch sampleEntry {
	case "avc1", "avc3":
		return "h264"
	case "hvc1", "hev1":
		return "hevc"
	case "av01":
		return "av1"
	case "vp08":
		return "vp8"
	case "vp09":
		return "vp9"
	case "mp4v":
		return "mpeg4"
	case "mp4a":
		return "aac"
	case "ac-3":
		return "ac3"
	case "ec-3":
		return "eac3"
	case "Opus":
		return "opus"
	case "fLaC":
		return "flac"
	case "alac":
		return "alac"
	case "twos", "sowt", "lpcm":
		return "pcm"
	case "tx3g":
		return "mov_text"
	case "wvtt":
		return "webvtt"
	case "stpp":
		return "ttml"
	default:
		return sampleEntry
	}
}

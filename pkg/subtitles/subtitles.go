// Package subtitles extracts text subtitle tracks. Text codecs carry their
// events in packet payloads, so extraction is a demux pass: each packet's
// timing comes from its timestamps and its text from the payload, parsed
// per codec. Bitmap subtitle tracks have no text to extract and are
// rejected up front.
package subtitles

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
)

// Entry is a single subtitle event.
type Entry struct {
	// Index is the zero-based position of the event in decode order.
	Index int
	// Start and End bound the display interval in seconds.
	Start float64
	End   float64
	// Text is the event's text with codec framing removed. ASS override
	// blocks are stripped and ASS line breaks become newlines.
	Text string
}

// textCodecs lists the subtitle codecs whose packets carry text. Bitmap
// codecs (PGS, DVB, DVD) are not extractable as text.
var textCodecs = map[string]bool{
	"subrip":   true,
	"srt":      true,
	"ass":      true,
	"ssa":      true,
	"webvtt":   true,
	"mov_text": true,
	"text":     true,
}

// Extractor extracts events from one subtitle track of an open file.
//
// An Extractor shares the file's demuxer and is not safe for concurrent
// use.
type Extractor struct {
	f     *media.File
	s     *astiav.Stream
	codec string
	log   ports.Logger
}

// New binds an extractor to a subtitle track of f. Track -1 selects the
// first subtitle track. Bitmap subtitle tracks are rejected.
func New(f *media.File, track int) (*Extractor, error) {
	s, err := f.SubtitleStream(track)
	if err != nil {
		return nil, err
	}
	codec := s.CodecParameters().CodecID().Name()
	if !textCodecs[codec] {
		return nil, fmt.Errorf("%w: subtitle codec %s carries no text", media.ErrUnsupported, codec)
	}

	return &Extractor{
		f:     f,
		s:     s,
		codec: codec,
		log:   f.Logger().WithComponent("subtitles"),
	}, nil
}

// Entries demuxes the track and returns its events sorted by start time.
// Events whose payload has no text after parsing are dropped.
func (e *Extractor) Entries() ([]Entry, error) {
	if e.f.Container() == nil {
		return nil, media.ErrClosed
	}
	if err := e.f.Rewind(); err != nil {
		return nil, err
	}

	tb := e.s.TimeBase()
	si := e.s.Index()

	pkt := astiav.AllocPacket()
	defer pkt.Free()

	var entries []Entry
	for {
		if err := e.f.Container().ReadFrame(pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				break
			}
			return nil, fmt.Errorf("%w: reading packet: %v", media.ErrDecode, err)
		}
		if pkt.StreamIndex() != si {
			pkt.Unref()
			continue
		}

		text := parsePayload(e.codec, pkt.Data())
		if text != "" {
			start := av.PtsSeconds(packetPts(pkt), tb)
			entries = append(entries, Entry{
				Index: len(entries),
				Start: start,
				End:   start + av.PtsSeconds(pkt.Duration(), tb),
				Text:  text,
			})
		}
		pkt.Unref()
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
	e.log.Debug("extracted %d subtitle entries from %s track", len(entries), e.codec)
	return entries, nil
}

// Text extracts the track and renders it in the given format.
func (e *Extractor) Text(format Format) (string, error) {
	entries, err := e.Entries()
	if err != nil {
		return "", err
	}
	return formatEntries(entries, format), nil
}

// Save extracts the track and writes it to path in the given format.
func (e *Extractor) Save(path string, format Format) error {
	content, err := e.Text(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing subtitles: %w", err)
	}
	return nil
}

// packetPts returns the packet's presentation timestamp, falling back to
// the decode timestamp and clamping unset or negative values to zero.
func packetPts(pkt *astiav.Packet) int64 {
	pts := pkt.Pts()
	if pts == astiav.NoPtsValue {
		pts = pkt.Dts()
	}
	if pts == astiav.NoPtsValue || pts < 0 {
		return 0
	}
	return pts
}

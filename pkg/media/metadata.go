package media

import (
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
)

// Metadata describes a container and its streams. It is read once when the
// file is opened and is plain data after that.
type Metadata struct {
	Path           string
	FormatName     string
	FormatLongName string
	// Duration of the container in seconds, 0 when unknown.
	Duration    float64
	BitRate     int64
	StreamCount int

	VideoTracks    []VideoTrack
	AudioTracks    []AudioTrack
	SubtitleTracks []SubtitleTrack

	// Tags holds the container-level metadata dictionary (title, artist,
	// encoder and so on).
	Tags map[string]string
}

// VideoTrack describes one video stream.
//
// TrackIndex counts video streams only (the first video stream is track 0)
// while StreamIndex is the stream's position in the container. Operations
// in this module address streams by track index.
type VideoTrack struct {
	TrackIndex  int
	StreamIndex int
	Codec       string
	Width       int
	Height      int
	// FrameRate is the stream's nominal rate, AvgFrameRate the average
	// measured across the stream. They differ on variable rate content.
	FrameRate    float64
	AvgFrameRate float64
	TimeBase     string
	Duration     float64
	FrameCount   int64
	BitRate      int64
	PixelFormat  string
	ColorSpace   string
	ColorRange   string
}

// AudioTrack describes one audio stream.
type AudioTrack struct {
	TrackIndex    int
	StreamIndex   int
	Codec         string
	SampleRate    int
	Channels      int
	ChannelLayout string
	Duration      float64
	BitRate       int64
	Language      string
}

// SubtitleTrack describes one subtitle stream.
type SubtitleTrack struct {
	TrackIndex  int
	StreamIndex int
	Codec       string
	Language    string
}

// HasVideo reports whether the container carries at least one video stream.
func (m *Metadata) HasVideo() bool {
	return len(m.VideoTracks) > 0
}

// HasAudio reports whether the container carries at least one audio stream.
func (m *Metadata) HasAudio() bool {
	return len(m.AudioTracks) > 0
}

// HasSubtitles reports whether the container carries at least one subtitle
// stream.
func (m *Metadata) HasSubtitles() bool {
	return len(m.SubtitleTracks) > 0
}

// PrimaryVideo returns the first video track, or nil when there is none.
func (m *Metadata) PrimaryVideo() *VideoTrack {
	if len(m.VideoTracks) == 0 {
		return nil
	}
	return &m.VideoTracks[0]
}

func readMetadata(path string, fc *astiav.FormatContext) *Metadata {
	m := &Metadata{
		Path:        path,
		StreamCount: len(fc.Streams()),
		BitRate:     fc.BitRate(),
		Tags:        dictMap(fc.Metadata()),
	}

	if f := fc.InputFormat(); f != nil {
		m.FormatName = f.Name()
		m.FormatLongName = f.LongName()
	}

	if d := fc.Duration(); d > 0 {
		m.Duration = float64(d) / 1e6
	}

	for _, s := range fc.Streams() {
		cp := s.CodecParameters()
		switch cp.MediaType() {
		case astiav.MediaTypeVideo:
			m.VideoTracks = append(m.VideoTracks, videoTrack(fc, s, len(m.VideoTracks), m.Duration))
		case astiav.MediaTypeAudio:
			m.AudioTracks = append(m.AudioTracks, audioTrack(s, len(m.AudioTracks), m.Duration))
		case astiav.MediaTypeSubtitle:
			m.SubtitleTracks = append(m.SubtitleTracks, subtitleTrack(s, len(m.SubtitleTracks)))
		}
	}

	return m
}

func videoTrack(fc *astiav.FormatContext, s *astiav.Stream, track int, containerDuration float64) VideoTrack {
	cp := s.CodecParameters()
	tb := s.TimeBase()

	t := VideoTrack{
		TrackIndex:   track,
		StreamIndex:  s.Index(),
		Codec:        cp.CodecID().Name(),
		Width:        cp.Width(),
		Height:       cp.Height(),
		FrameRate:    av.RationalFloat(fc.GuessFrameRate(s, nil)),
		AvgFrameRate: av.RationalFloat(s.AvgFrameRate()),
		TimeBase:     fmt.Sprintf("%d/%d", tb.Num(), tb.Den()),
		Duration:     streamDuration(s, containerDuration),
		FrameCount:   s.NbFrames(),
		BitRate:      cp.BitRate(),
		PixelFormat:  cp.PixelFormat().Name(),
		ColorSpace:   cp.ColorSpace().Name(),
		ColorRange:   cp.ColorRange().Name(),
	}
	if t.FrameRate == 0 {
		t.FrameRate = av.RationalFloat(s.RFrameRate())
	}
	return t
}

func audioTrack(s *astiav.Stream, track int, containerDuration float64) AudioTrack {
	cp := s.CodecParameters()
	channels := cp.ChannelLayout().Channels()

	return AudioTrack{
		TrackIndex:    track,
		StreamIndex:   s.Index(),
		Codec:         cp.CodecID().Name(),
		SampleRate:    cp.SampleRate(),
		Channels:      channels,
		ChannelLayout: layoutName(channels),
		Duration:      streamDuration(s, containerDuration),
		BitRate:       cp.BitRate(),
		Language:      dictMap(s.Metadata())["language"],
	}
}

func subtitleTrack(s *astiav.Stream, track int) SubtitleTrack {
	return SubtitleTrack{
		TrackIndex:  track,
		StreamIndex: s.Index(),
		Codec:       s.CodecParameters().CodecID().Name(),
		Language:    dictMap(s.Metadata())["language"],
	}
}

func streamDuration(s *astiav.Stream, containerDuration float64) float64 {
	if d := s.Duration(); d > 0 {
		return av.PtsSeconds(d, s.TimeBase())
	}
	return containerDuration
}

func layoutName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

func dictMap(d *astiav.Dictionary) map[string]string {
	m := map[string]string{}
	if d == nil {
		return m
	}
	var e *astiav.DictionaryEntry
	for {
		e = d.Get("", e, astiav.NewDictionaryFlags(astiav.DictionaryFlagIgnoreSuffix))
		if e == nil {
			break
		}
		m[e.Key()] = e.Value()
	}
	return m
}

// Package remux converts media between container formats without
// re-encoding, the library form of `ffmpeg -i in.mkv -c copy out.mp4`.
// All selected streams are copied packet by packet with their timestamps
// rescaled to the output streams' time bases.
package remux

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

// Options selects which stream kinds the output keeps. Anything that is
// not video, audio, or subtitles (data and attachment streams) is never
// copied.
type Options struct {
	Video     bool
	Audio     bool
	Subtitles bool

	Token *progress.Token
}

// DefaultOptions copies every video, audio, and subtitle stream.
func DefaultOptions() *Options {
	return &Options{Video: true, Audio: true, Subtitles: true}
}

// ExcludeVideo drops video streams from the output.
func (o *Options) ExcludeVideo() *Options {
	o.Video = false
	return o
}

// ExcludeAudio drops audio streams from the output.
func (o *Options) ExcludeAudio() *Options {
	o.Audio = false
	return o
}

// ExcludeSubtitles drops subtitle streams from the output.
func (o *Options) ExcludeSubtitles() *Options {
	o.Subtitles = false
	return o
}

// WithToken attaches a cancellation token checked once per packet.
func (o *Options) WithToken(t *progress.Token) *Options {
	o.Token = t
	return o
}

func (o *Options) normalized() *Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	return &out
}

func (o *Options) includes(mt astiav.MediaType) bool {
	switch mt {
	case astiav.MediaTypeVideo:
		return o.Video
	case astiav.MediaTypeAudio:
		return o.Audio
	case astiav.MediaTypeSubtitle:
		return o.Subtitles
	default:
		return false
	}
}

// StreamCopyError reports a failure while copying one stream's packets.
// It unwraps to media.ErrEncode.
type StreamCopyError struct {
	StreamIndex int
	Err         error
}

func (e *StreamCopyError) Error() string {
	return fmt.Sprintf("copying stream %d: %v", e.StreamIndex, e.Err)
}

func (e *StreamCopyError) Unwrap() error {
	return e.Err
}

// Remuxer copies streams from an open file into a new container. The
// output format is inferred from the destination extension.
type Remuxer struct {
	f          *media.File
	outputPath string
	o          *Options
	log        ports.Logger
}

// New prepares a remux from f to outputPath. The file handle stays usable
// afterwards; Run rewinds it before copying.
func New(f *media.File, outputPath string, opts *Options) (*Remuxer, error) {
	if f.Container() == nil {
		return nil, media.ErrClosed
	}
	if outputPath == "" {
		return nil, fmt.Errorf("%w: empty output path", media.ErrInvalidArgument)
	}
	return &Remuxer{
		f:          f,
		outputPath: outputPath,
		o:          opts.normalized(),
		log:        f.Logger(),
	}, nil
}

type streamPair struct {
	in  *astiav.Stream
	out *astiav.Stream
}

// Run copies all selected packets into the output container and finalizes
// it. The output file is written even when the source and destination
// container formats match.
func (r *Remuxer) Run() error {
	if r.f.Container() == nil {
		return media.ErrClosed
	}
	if r.o.Token.Cancelled() {
		return progress.ErrCancelled
	}

	ofc, err := astiav.AllocOutputFormatContext(nil, "", r.outputPath)
	if err != nil {
		return fmt.Errorf("%w: allocating output for %q: %v", media.ErrEncode, r.outputPath, err)
	}
	if ofc == nil {
		return fmt.Errorf("%w: allocating output for %q", media.ErrEncode, r.outputPath)
	}
	defer ofc.Free()

	pairs, err := r.addStreams(ofc)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("%w: no streams selected", media.ErrInvalidInput)
	}
	r.log.Debug("remuxing %d of %d streams to %s", len(pairs), len(r.f.Container().Streams()), r.outputPath)

	var io *astiav.IOContext
	if !ofc.OutputFormat().Flags().Has(astiav.IOFormatFlagNofile) {
		io, err = astiav.OpenIOContext(r.outputPath, astiav.NewIOContextFlags(astiav.IOContextFlagWrite), nil, nil)
		if err != nil {
			return fmt.Errorf("%w: opening %q: %v", media.ErrEncode, r.outputPath, err)
		}
		defer io.Close()
		ofc.SetPb(io)
	}

	if err := r.f.Rewind(); err != nil {
		return err
	}
	if err := ofc.WriteHeader(nil); err != nil {
		return fmt.Errorf("%w: writing header: %v", media.ErrEncode, err)
	}
	if err := r.copyPackets(ofc, pairs); err != nil {
		return err
	}
	if err := ofc.WriteTrailer(); err != nil {
		return fmt.Errorf("%w: writing trailer: %v", media.ErrEncode, err)
	}
	return nil
}

// addStreams mirrors every selected input stream in the output container,
// copying codec parameters verbatim. The codec tag is cleared so the
// target muxer picks its own.
func (r *Remuxer) addStreams(ofc *astiav.FormatContext) (map[int]streamPair, error) {
	pairs := make(map[int]streamPair)
	for _, is := range r.f.Container().Streams() {
		if !r.o.includes(is.CodecParameters().MediaType()) {
			continue
		}
		os := ofc.NewStream(nil)
		if os == nil {
			return nil, fmt.Errorf("%w: allocating output stream", media.ErrEncode)
		}
		if err := is.CodecParameters().Copy(os.CodecParameters()); err != nil {
			return nil, fmt.Errorf("%w: copying codec parameters of stream %d: %v",
				media.ErrEncode, is.Index(), err)
		}
		os.CodecParameters().SetCodecTag(0)
		pairs[is.Index()] = streamPair{in: is, out: os}
	}
	return pairs, nil
}

func (r *Remuxer) copyPackets(ofc *astiav.FormatContext, pairs map[int]streamPair) error {
	pkt := astiav.AllocPacket()
	defer pkt.Free()

	var copied int64
	for {
		if r.o.Token.Cancelled() {
			return progress.ErrCancelled
		}
		if err := r.f.Container().ReadFrame(pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				break
			}
			return fmt.Errorf("%w: reading packet: %v", media.ErrDecode, err)
		}

		pair, ok := pairs[pkt.StreamIndex()]
		if !ok {
			pkt.Unref()
			continue
		}

		pkt.SetStreamIndex(pair.out.Index())
		pkt.RescaleTs(pair.in.TimeBase(), pair.out.TimeBase())
		pkt.SetPos(-1)
		if err := ofc.WriteInterleavedFrame(pkt); err != nil {
			return &StreamCopyError{
				StreamIndex: pair.in.Index(),
				Err:         fmt.Errorf("%w: writing packet: %v", media.ErrEncode, err),
			}
		}
		copied++
	}

	r.log.Debug("remux copied %d packets", copied)
	return nil
}

package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/media"
)

// resampler converts decoded frames to one fixed target layout, rate and
// sample format. The underlying context configures itself from the first
// frame pair it sees.
type resampler struct {
	ctx    *astiav.SoftwareResampleContext
	layout astiav.ChannelLayout
	rate   int
	format astiav.SampleFormat
}

func newResampler(layout astiav.ChannelLayout, rate int, format astiav.SampleFormat) *resampler {
	return &resampler{
		ctx:    astiav.CreateSoftwareResampleContext(),
		layout: layout,
		rate:   rate,
		format: format,
	}
}

// convert resamples one decoded frame and hands the produced frame to fn.
// The resampler may buffer internally and produce nothing for early input.
func (r *resampler) convert(src *astiav.Frame, fn func(*astiav.Frame) error) error {
	dst := astiav.AllocFrame()
	defer dst.Free()
	r.prepare(dst)

	if err := r.ctx.ConvertFrame(src, dst); err != nil {
		return fmt.Errorf("%w: resampling audio: %v", media.ErrDecode, err)
	}
	if dst.NbSamples() == 0 {
		return nil
	}
	return fn(dst)
}

// flush drains the samples still buffered inside the resampler.
func (r *resampler) flush(fn func(*astiav.Frame) error) error {
	for {
		dst := astiav.AllocFrame()
		r.prepare(dst)

		if err := r.ctx.ConvertFrame(nil, dst); err != nil {
			dst.Free()
			return fmt.Errorf("%w: flushing resampler: %v", media.ErrDecode, err)
		}
		if dst.NbSamples() == 0 {
			dst.Free()
			return nil
		}
		err := fn(dst)
		dst.Free()
		if err != nil {
			return err
		}
	}
}

func (r *resampler) prepare(dst *astiav.Frame) {
	dst.SetChannelLayout(r.layout)
	dst.SetSampleRate(r.rate)
	dst.SetSampleFormat(r.format)
}

func (r *resampler) close() {
	if r.ctx != nil {
		r.ctx.Free()
		r.ctx = nil
	}
}

// monoResampler returns a resampler producing the mono packed float frames
// the analysis reductions consume.
func monoResampler(rate int) *resampler {
	return newResampler(astiav.ChannelLayoutMono, rate, astiav.SampleFormatFlt)
}

// samplesFromFrame copies a mono packed float frame into a float slice.
// Sample bytes are native endian; every target this module builds for is
// little endian.
func samplesFromFrame(fr *astiav.Frame) ([]float32, error) {
	n := fr.NbSamples()
	if n == 0 {
		return nil, nil
	}
	b, err := fr.Data().Bytes(1)
	if err != nil {
		return nil, fmt.Errorf("%w: reading samples: %v", media.ErrDecode, err)
	}
	if len(b) < n*4 {
		return nil, fmt.Errorf("%w: short sample buffer: %d bytes for %d samples", media.ErrDecode, len(b), n)
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

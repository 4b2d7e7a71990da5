package audio

import (
	"fmt"
	"math"

	"github.com/user/unbundle/pkg/media"
)

// DefaultWaveformBins is the number of bins a waveform is reduced to when
// the options do not say otherwise. One bin per output column is the
// intended use.
const DefaultWaveformBins = 800

// WaveformOptions configures the waveform reduction.
type WaveformOptions struct {
	// Bins is the exact number of output bins.
	Bins int
	// Start and End clip the analyzed range in seconds. Zero or negative
	// values leave the corresponding side open.
	Start float64
	End   float64
}

// DefaultWaveformOptions returns the default waveform configuration.
func DefaultWaveformOptions() *WaveformOptions {
	return &WaveformOptions{Bins: DefaultWaveformBins}
}

// WithBins sets the number of output bins.
func (o *WaveformOptions) WithBins(n int) *WaveformOptions {
	o.Bins = n
	return o
}

// WithRange clips the analysis to start..end seconds.
func (o *WaveformOptions) WithRange(start, end float64) *WaveformOptions {
	o.Start = start
	o.End = end
	return o
}

// normalized returns a defensive copy with defaults applied. A nil
// receiver yields the defaults.
func (o *WaveformOptions) normalized() WaveformOptions {
	if o == nil {
		return *DefaultWaveformOptions()
	}
	n := *o
	if n.Bins < 1 {
		n.Bins = DefaultWaveformBins
	}
	return n
}

// WaveformBin aggregates one span of consecutive samples.
type WaveformBin struct {
	// Min and Max bound the sample values in the span, -1..1.
	Min float32
	Max float32
	// RMS is the root mean square amplitude of the span.
	RMS float32
}

// WaveformData is the reduction of a track to a fixed number of bins.
type WaveformData struct {
	Bins []WaveformBin
	// Duration of the analyzed audio in seconds.
	Duration float64
	// SampleRate of the decoded audio.
	SampleRate int
	// TotalSamples is the number of mono samples analyzed.
	TotalSamples int64
}

// Waveform decodes the track to mono samples and reduces them to exactly
// opts.Bins bins. The whole track is read unless the options clip it.
func (e *Extractor) Waveform(opts *WaveformOptions) (*WaveformData, error) {
	o := opts.normalized()
	if err := e.validateWaveformBounds(o); err != nil {
		return nil, err
	}
	if err := e.f.Rewind(); err != nil {
		return nil, err
	}
	e.log.Debug("generating waveform: %d bins", o.Bins)

	it, err := e.samplesBounded(o.Start, o.End)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var all []float32
	for it.Next() {
		all = append(all, it.Chunk().Samples...)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	return &WaveformData{
		Bins:         binSamples(all, o.Bins),
		Duration:     float64(len(all)) / float64(e.rate),
		SampleRate:   e.rate,
		TotalSamples: int64(len(all)),
	}, nil
}

func (e *Extractor) validateWaveformBounds(o WaveformOptions) error {
	if o.End > 0 && o.Start > 0 && o.End <= o.Start {
		return fmt.Errorf("%w: waveform range %.3fs..%.3fs", media.ErrInvalidArgument, o.Start, o.End)
	}
	if d := e.f.Duration(); d > 0 {
		if o.Start > d {
			return fmt.Errorf("%w: start %.3fs beyond %.3fs duration", media.ErrTimestampOutOfRange, o.Start, d)
		}
		if o.End > d {
			return fmt.Errorf("%w: end %.3fs beyond %.3fs duration", media.ErrTimestampOutOfRange, o.End, d)
		}
	}
	return nil
}

// binSamples buckets samples into exactly the requested number of bins.
// Each bin covers ceil(len/bins) consecutive samples; when the samples run
// out early the remaining bins are zero.
func binSamples(samples []float32, bins int) []WaveformBin {
	if bins < 1 {
		bins = 1
	}
	per := (len(samples) + bins - 1) / bins
	if per < 1 {
		per = 1
	}

	out := make([]WaveformBin, 0, bins)
	for i := 0; i < len(samples); i += per {
		end := i + per
		if end > len(samples) {
			end = len(samples)
		}
		out = append(out, reduceBin(samples[i:end]))
	}
	for len(out) < bins {
		out = append(out, WaveformBin{})
	}
	return out
}

func reduceBin(span []float32) WaveformBin {
	b := WaveformBin{Min: span[0], Max: span[0]}
	var sumSq float64
	for _, s := range span {
		if s < b.Min {
			b.Min = s
		}
		if s > b.Max {
			b.Max = s
		}
		sumSq += float64(s) * float64(s)
	}
	b.RMS = float32(math.Sqrt(sumSq / float64(len(span))))
	return b
}

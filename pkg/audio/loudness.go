package audio

import "math"

// LoudnessInfo holds loudness statistics over a track's mono samples.
type LoudnessInfo struct {
	// Peak is the largest absolute sample value, linear 0..1.
	Peak float32
	// PeakDBFS is the peak relative to full scale: 0 dBFS is the maximum,
	// negative infinity is silence.
	PeakDBFS float64
	// RMS is the root mean square amplitude, linear.
	RMS float32
	// RMSDBFS is the RMS relative to full scale.
	RMSDBFS float64
	// Duration of the analyzed audio in seconds.
	Duration float64
	// TotalSamples is the number of mono samples analyzed.
	TotalSamples int64
}

// Loudness decodes the whole track to mono samples and computes its peak
// and RMS amplitudes, in linear and dBFS terms.
func (e *Extractor) Loudness() (LoudnessInfo, error) {
	if err := e.f.Rewind(); err != nil {
		return LoudnessInfo{}, err
	}
	e.log.Debug("analyzing loudness")

	it, err := e.samplesBounded(-1, -1)
	if err != nil {
		return LoudnessInfo{}, err
	}
	defer it.Close()

	var sums loudnessSums
	for it.Next() {
		sums.add(it.Chunk().Samples)
	}
	if err := it.Err(); err != nil {
		return LoudnessInfo{}, err
	}
	return sums.info(e.rate), nil
}

// loudnessSums accumulates loudness statistics without holding samples.
type loudnessSums struct {
	peak  float32
	sumSq float64
	total int64
}

func (l *loudnessSums) add(samples []float32) {
	for _, s := range samples {
		a := s
		if a < 0 {
			a = -a
		}
		if a > l.peak {
			l.peak = a
		}
		l.sumSq += float64(s) * float64(s)
	}
	l.total += int64(len(samples))
}

func (l *loudnessSums) info(rate int) LoudnessInfo {
	var rms float64
	if l.total > 0 {
		rms = math.Sqrt(l.sumSq / float64(l.total))
	}
	return LoudnessInfo{
		Peak:         l.peak,
		PeakDBFS:     dbfs(float64(l.peak)),
		RMS:          float32(rms),
		RMSDBFS:      dbfs(rms),
		Duration:     float64(l.total) / float64(rate),
		TotalSamples: l.total,
	}
}

// dbfs converts a linear amplitude to decibels relative to full scale.
// Silence maps to negative infinity.
func dbfs(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

package media

import (
	"fmt"
	"math"
	"sort"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
)

// TimingReport describes the measured frame timing of a video stream.
type TimingReport struct {
	// IsVariable is true when the spread of frame intervals exceeds 10%
	// of the mean interval.
	IsVariable bool
	// MeanInterval and StdDev are in seconds.
	MeanInterval float64
	StdDev       float64
	// NominalFPS comes from the container, MeasuredFPS from the mean of
	// the observed intervals.
	NominalFPS  float64
	MeasuredFPS float64
	SampleCount int
}

// AnalyzeTiming measures the presentation intervals of a video track and
// classifies the stream as constant or variable frame rate. Intervals are
// computed from packet timestamps, no frame is decoded.
func (f *File) AnalyzeTiming(track int) (*TimingReport, error) {
	s, err := f.VideoStream(track)
	if err != nil {
		return nil, err
	}
	if err := f.Rewind(); err != nil {
		return nil, err
	}

	tb := s.TimeBase()
	var stamps []int64
	err = f.Packets(s.Index(), func(p PacketInfo) bool {
		if p.PTS != astiav.NoPtsValue {
			stamps = append(stamps, p.PTS)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing timing: %w", err)
	}

	report := &TimingReport{
		NominalFPS:  f.FrameRate(s),
		SampleCount: len(stamps),
	}
	if len(stamps) < 2 {
		return report, nil
	}

	// Packets arrive in decode order; presentation intervals need
	// presentation order.
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	intervals := make([]float64, 0, len(stamps)-1)
	for i := 1; i < len(stamps); i++ {
		intervals = append(intervals, av.PtsSeconds(stamps[i]-stamps[i-1], tb))
	}

	report.MeanInterval, report.StdDev = meanAndStdDev(intervals)
	if report.MeanInterval > 0 {
		report.MeasuredFPS = 1 / report.MeanInterval
		report.IsVariable = report.StdDev > report.MeanInterval*0.1
	}

	f.log.Debug("timing scan: mean interval %.6fs, stddev %.6fs, variable=%v",
		report.MeanInterval, report.StdDev, report.IsVariable)
	return report, nil
}

func meanAndStdDev(xs []float64) (mean, stdDev float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	stdDev = math.Sqrt(sq / float64(len(xs)))
	return mean, stdDev
}

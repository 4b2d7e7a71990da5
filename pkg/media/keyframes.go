package media

import (
	"fmt"

	"github.com/user/unbundle/pkg/av"
)

// KeyframeInfo locates one keyframe in a video stream.
type KeyframeInfo struct {
	FrameNumber int64
	PTS         int64
	TimeSeconds float64
}

// GopReport summarizes the keyframe structure of a video stream. Interval
// statistics are in seconds between consecutive keyframes and are zero
// when the stream has fewer than two keyframes.
type GopReport struct {
	Keyframes       []KeyframeInfo
	PacketCount     int64
	AverageInterval float64
	MinInterval     float64
	MaxInterval     float64
}

// AnalyzeKeyframes scans the packets of a video track and reports every
// keyframe and the GOP interval statistics. The scan works on packet flags
// alone, no frame is decoded.
func (f *File) AnalyzeKeyframes(track int) (*GopReport, error) {
	s, err := f.VideoStream(track)
	if err != nil {
		return nil, err
	}
	if err := f.Rewind(); err != nil {
		return nil, err
	}

	fps := f.FrameRate(s)
	report := &GopReport{}

	err = f.Packets(s.Index(), func(p PacketInfo) bool {
		report.PacketCount++
		if !p.Keyframe || p.TimeSeconds < 0 {
			return true
		}
		report.Keyframes = append(report.Keyframes, KeyframeInfo{
			FrameNumber: frameNumberAt(p.TimeSeconds, fps),
			PTS:         p.PTS,
			TimeSeconds: p.TimeSeconds,
		})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing keyframes: %w", err)
	}

	fillIntervals(report)
	f.log.Debug("keyframe scan: %d keyframes in %d packets", len(report.Keyframes), report.PacketCount)
	return report, nil
}

func fillIntervals(r *GopReport) {
	if len(r.Keyframes) < 2 {
		return
	}
	var sum float64
	for i := 1; i < len(r.Keyframes); i++ {
		d := r.Keyframes[i].TimeSeconds - r.Keyframes[i-1].TimeSeconds
		sum += d
		if i == 1 || d < r.MinInterval {
			r.MinInterval = d
		}
		if d > r.MaxInterval {
			r.MaxInterval = d
		}
	}
	r.AverageInterval = sum / float64(len(r.Keyframes)-1)
}

func frameNumberAt(seconds, fps float64) int64 {
	if fps <= 0 {
		return 0
	}
	return av.SecondsToFrameNumber(seconds, fps)
}

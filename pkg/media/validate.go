package media

import "fmt"

// ValidationReport lists findings about a container's structural health,
// grouped by severity. A file is considered valid when no errors were
// found; warnings and infos are advisory.
type ValidationReport struct {
	Errors   []string
	Warnings []string
	Info     []string
}

// Valid reports whether the file passed validation.
func (r *ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) infof(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Validate checks the opened file's metadata for structural problems.
func (f *File) Validate() *ValidationReport {
	return ValidateMetadata(f.meta)
}

// ValidateMetadata checks container metadata for structural problems. It
// operates on metadata alone and never touches packet data.
func ValidateMetadata(m *Metadata) *ValidationReport {
	r := &ValidationReport{}

	if m.StreamCount == 0 {
		r.errorf("container has no streams")
		return r
	}
	if !m.HasVideo() && !m.HasAudio() {
		r.errorf("container has neither video nor audio streams")
	}

	if m.Duration <= 0 {
		r.warnf("container duration is unknown")
	}
	if m.BitRate <= 0 {
		r.infof("container bit rate is unknown")
	}

	for _, v := range m.VideoTracks {
		if v.Width <= 0 || v.Height <= 0 {
			r.errorf("video track %d has invalid dimensions %dx%d", v.TrackIndex, v.Width, v.Height)
		}
		switch {
		case v.FrameRate <= 0:
			r.warnf("video track %d has unknown frame rate", v.TrackIndex)
		case v.FrameRate > 1000:
			r.warnf("video track %d reports implausible frame rate %.2f", v.TrackIndex, v.FrameRate)
		}
		if v.FrameCount == 0 {
			r.infof("video track %d does not record a frame count", v.TrackIndex)
		}
		if v.Codec == "" {
			r.warnf("video track %d has unknown codec", v.TrackIndex)
		}
		if v.AvgFrameRate > 0 && v.FrameRate > 0 {
			drift := v.AvgFrameRate / v.FrameRate
			if drift < 0.9 || drift > 1.1 {
				r.infof("video track %d average rate %.2f differs from nominal %.2f, frame timing may vary",
					v.TrackIndex, v.AvgFrameRate, v.FrameRate)
			}
		}
	}

	for _, a := range m.AudioTracks {
		if a.SampleRate <= 0 {
			r.errorf("audio track %d has invalid sample rate %d", a.TrackIndex, a.SampleRate)
		}
		if a.Channels <= 0 {
			r.errorf("audio track %d has no channels", a.TrackIndex)
		}
		if a.Codec == "" {
			r.warnf("audio track %d has unknown codec", a.TrackIndex)
		}
	}

	return r
}

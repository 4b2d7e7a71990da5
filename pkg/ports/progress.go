package ports

import "time"

// Operation identifies the kind of work a progress notification refers to.
type Operation string

const (
	OpFrameExtraction     Operation = "frame_extraction"
	OpAudioExtraction     Operation = "audio_extraction"
	OpSubtitleExtraction  Operation = "subtitle_extraction"
	OpSceneDetection      Operation = "scene_detection"
	OpThumbnailGeneration Operation = "thumbnail_generation"
	OpGifExport           Operation = "gif_export"
	OpWaveformGeneration  Operation = "waveform_generation"
	OpLoudnessAnalysis    Operation = "loudness_analysis"
	OpValidation          Operation = "validation"
	OpStreamCopy          Operation = "stream_copy"
)

// String returns the operation name.
func (o Operation) String() string { return string(o) }

// ProgressInfo is an immutable snapshot of an operation in flight.
//
// Sinks receive it by value and must not assume later snapshots share
// state with earlier ones.
type ProgressInfo struct {
	// Operation is the kind of work being reported.
	Operation Operation
	// Done is the number of items processed so far.
	Done int64
	// Total is the expected number of items, or 0 when unknown.
	Total int64
	// Percent is Done/Total*100, or -1 when Total is unknown.
	Percent float64
	// Elapsed is the wall time since the operation started.
	Elapsed time.Duration
	// ETA is the estimated time remaining, or 0 when unknown.
	ETA time.Duration
}

// ProgressSink receives progress snapshots.
//
// Implementations must be fast and non-blocking: they are called from
// inside decode loops and a slow sink stalls extraction.
type ProgressSink interface {
	// Report delivers one snapshot. The cadence is controlled by the
	// tracker's batch size, not by the sink.
	Report(info ProgressInfo)
}

// ProgressFunc adapts a plain function to the ProgressSink interface.
type ProgressFunc func(info ProgressInfo)

// Report implements ProgressSink.
func (f ProgressFunc) Report(info ProgressInfo) { f(info) }

// Package config loads YAML job files for the command line tool. A job
// names one input and the artifacts to produce from it, so batch work
// runs from a file instead of long flag strings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/unbundle/pkg/media"
)

// Job is one input file and the outputs to extract from it.
type Job struct {
	Input string `yaml:"input"`

	// LogLevel is debug, info, warn, error, or quiet.
	LogLevel string `yaml:"log_level"`
	// FFmpegLogLevel is the native library verbosity: quiet, error,
	// warning, info, or debug.
	FFmpegLogLevel string `yaml:"ffmpeg_log_level"`
	// Hardware selects decode acceleration: auto, none, or a device
	// type such as cuda or vaapi.
	Hardware string `yaml:"hardware"`

	Outputs []Output `yaml:"outputs"`
}

// Output describes one artifact. Type selects the operation; the other
// fields apply where they make sense for that type and keep their zero
// values otherwise.
type Output struct {
	// Type is frames, audio, subtitles, thumbnail, grid, gif, waveform,
	// loudness, or remux.
	Type string `yaml:"type"`
	// Path is the output file, or the output directory for frames.
	Path string `yaml:"path"`

	// Track selects the source track among streams of the operation's
	// kind; 0 is the first.
	Track int `yaml:"track"`

	// Frame selection for frames and gif outputs. Start/End bound the
	// time span in seconds; Every thins it to one frame per period;
	// Frames lists explicit frame numbers instead.
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
	Every  float64 `yaml:"every"`
	Frames []int64 `yaml:"frames"`

	// Output shape for frames and gif.
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	PixelFormat string `yaml:"pixel_format"`
	Workers     int    `yaml:"workers"`

	// Format names the image type for frames (png, jpg), the audio
	// codec (wav, mp3, flac, aac), or the subtitle format (srt, vtt,
	// raw).
	Format string `yaml:"format"`

	// Thumbnail controls.
	Timestamp float64 `yaml:"timestamp"`
	MaxDim    int     `yaml:"max_dim"`
	Smart     bool    `yaml:"smart"`
	Samples   int     `yaml:"samples"`

	// Grid controls.
	Columns    int  `yaml:"columns"`
	Rows       int  `yaml:"rows"`
	CellWidth  int  `yaml:"cell_width"`
	NoCaptions bool `yaml:"no_captions"`

	// GIF controls.
	Delay int `yaml:"delay"`
	Loop  int `yaml:"loop"`

	// Waveform controls.
	Bins int `yaml:"bins"`

	// Remux stream selection.
	ExcludeVideo     bool `yaml:"exclude_video"`
	ExcludeAudio     bool `yaml:"exclude_audio"`
	ExcludeSubtitles bool `yaml:"exclude_subtitles"`
}

// outputTypes is the set Validate accepts.
var outputTypes = map[string]bool{
	"frames":    true,
	"audio":     true,
	"subtitles": true,
	"thumbnail": true,
	"grid":      true,
	"gif":       true,
	"waveform":  true,
	"loudness":  true,
	"remux":     true,
}

// Defaults returns a Job with default values.
func Defaults() Job {
	return Job{
		LogLevel:       "info",
		FFmpegLogLevel: "error",
		Hardware:       "none",
	}
}

// Load reads a YAML job file, layered over Defaults.
func Load(path string) (Job, error) {
	job := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return job, err
	}

	if err := yaml.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("%w: parsing job file %s: %v", media.ErrInvalidArgument, path, err)
	}

	return job, nil
}

// Validate checks the job is runnable before any media work starts.
func (j Job) Validate() error {
	if j.Input == "" {
		return fmt.Errorf("%w: job has no input", media.ErrInvalidArgument)
	}
	if len(j.Outputs) == 0 {
		return fmt.Errorf("%w: job has no outputs", media.ErrInvalidArgument)
	}
	for i, out := range j.Outputs {
		if !outputTypes[out.Type] {
			return fmt.Errorf("%w: output %d has unknown type %q", media.ErrInvalidArgument, i, out.Type)
		}
		if out.Path == "" {
			return fmt.Errorf("%w: output %d (%s) has no path", media.ErrInvalidArgument, i, out.Type)
		}
		if out.Track < 0 {
			return fmt.Errorf("%w: output %d has negative track %d", media.ErrInvalidArgument, i, out.Track)
		}
	}
	return nil
}

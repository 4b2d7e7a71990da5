package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/unbundle/pkg/media"
)

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing job file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeJobFile(t, `
input: movie.mkv
outputs:
  - type: thumbnail
    path: thumb.png
    timestamp: 30
    max_dim: 640
`)

	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if job.Input != "movie.mkv" {
		t.Errorf("input = %q", job.Input)
	}
	if job.LogLevel != "info" || job.FFmpegLogLevel != "error" || job.Hardware != "none" {
		t.Errorf("defaults not applied: %+v", job)
	}
	if len(job.Outputs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(job.Outputs))
	}
	out := job.Outputs[0]
	if out.Type != "thumbnail" || out.Path != "thumb.png" || out.Timestamp != 30 || out.MaxDim != 640 {
		t.Errorf("output = %+v", out)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeJobFile(t, `
input: movie.mkv
log_level: debug
hardware: cuda
outputs:
  - type: audio
    path: track.mp3
    format: mp3
  - type: remux
    path: movie.mp4
    exclude_subtitles: true
`)

	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if job.LogLevel != "debug" || job.Hardware != "cuda" {
		t.Errorf("overrides not applied: %+v", job)
	}
	if job.FFmpegLogLevel != "error" {
		t.Errorf("untouched default changed: %q", job.FFmpegLogLevel)
	}
	if len(job.Outputs) != 2 || !job.Outputs[1].ExcludeSubtitles {
		t.Errorf("outputs = %+v", job.Outputs)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeJobFile(t, "input: [unclosed")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !errors.Is(err, media.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	good := Job{
		Input: "in.mp4",
		Outputs: []Output{
			{Type: "frames", Path: "out/"},
			{Type: "waveform", Path: "wave.png", Bins: 400},
		},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("valid job rejected: %v", err)
	}

	for name, job := range map[string]Job{
		"no input":       {Outputs: []Output{{Type: "audio", Path: "a.wav"}}},
		"no outputs":     {Input: "in.mp4"},
		"unknown type":   {Input: "in.mp4", Outputs: []Output{{Type: "hologram", Path: "x"}}},
		"missing path":   {Input: "in.mp4", Outputs: []Output{{Type: "gif"}}},
		"negative track": {Input: "in.mp4", Outputs: []Output{{Type: "audio", Path: "a.wav", Track: -2}}},
	} {
		if err := job.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		} else if !errors.Is(err, media.ErrInvalidArgument) {
			t.Errorf("%s: error = %v, want ErrInvalidArgument", name, err)
		}
	}
}

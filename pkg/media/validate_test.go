package media

import (
	"testing"
)

func healthyMetadata() *Metadata {
	return &Metadata{
		Path:        "sample.mp4",
		FormatName:  "mov,mp4,m4a,3gp,3g2,mj2",
		Duration:    10.0,
		BitRate:     1_200_000,
		StreamCount: 2,
		VideoTracks: []VideoTrack{{
			TrackIndex:   0,
			StreamIndex:  0,
			Codec:        "h264",
			Width:        640,
			Height:       480,
			FrameRate:    30,
			AvgFrameRate: 30,
			FrameCount:   300,
		}},
		AudioTracks: []AudioTrack{{
			TrackIndex:  0,
			StreamIndex: 1,
			Codec:       "aac",
			SampleRate:  44_100,
			Channels:    2,
		}},
		Tags: map[string]string{},
	}
}

func TestValidateHealthyFile(t *testing.T) {
	r := ValidateMetadata(healthyMetadata())

	if !r.Valid() {
		t.Fatalf("healthy metadata reported errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
}

func TestValidateNoStreams(t *testing.T) {
	r := ValidateMetadata(&Metadata{})

	if r.Valid() {
		t.Fatal("empty container must not validate")
	}
	if len(r.Errors) != 1 {
		t.Errorf("expected exactly the no-streams error, got %v", r.Errors)
	}
}

func TestValidateBadDimensions(t *testing.T) {
	m := healthyMetadata()
	m.VideoTracks[0].Width = 0

	r := ValidateMetadata(m)
	if r.Valid() {
		t.Error("zero width must be an error")
	}
}

func TestValidateImplausibleFrameRate(t *testing.T) {
	m := healthyMetadata()
	m.VideoTracks[0].FrameRate = 12_000
	m.VideoTracks[0].AvgFrameRate = 12_000

	r := ValidateMetadata(m)
	if !r.Valid() {
		t.Errorf("frame rate issues are warnings, got errors %v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a frame rate warning")
	}
}

func TestValidateUnknownDuration(t *testing.T) {
	m := healthyMetadata()
	m.Duration = 0

	r := ValidateMetadata(m)
	if !r.Valid() {
		t.Errorf("unknown duration is a warning, got errors %v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a duration warning")
	}
}

func TestValidateBadAudio(t *testing.T) {
	m := healthyMetadata()
	m.AudioTracks[0].SampleRate = 0
	m.AudioTracks[0].Channels = 0

	r := ValidateMetadata(m)
	if len(r.Errors) != 2 {
		t.Errorf("expected sample rate and channel errors, got %v", r.Errors)
	}
}

func TestValidateRateDrift(t *testing.T) {
	m := healthyMetadata()
	m.VideoTracks[0].AvgFrameRate = 20 // nominal stays 30

	r := ValidateMetadata(m)
	if !r.Valid() {
		t.Errorf("rate drift is informational, got errors %v", r.Errors)
	}
	if len(r.Info) == 0 {
		t.Error("expected a rate drift info entry")
	}
}

func TestMetadataHelpers(t *testing.T) {
	m := healthyMetadata()

	if !m.HasVideo() || !m.HasAudio() {
		t.Error("helpers must see the configured tracks")
	}
	if m.HasSubtitles() {
		t.Error("no subtitle tracks configured")
	}
	if v := m.PrimaryVideo(); v == nil || v.Codec != "h264" {
		t.Errorf("PrimaryVideo = %+v", v)
	}

	empty := &Metadata{}
	if empty.PrimaryVideo() != nil {
		t.Error("PrimaryVideo on empty metadata must be nil")
	}
}

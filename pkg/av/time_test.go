package av

import (
	"math"
	"testing"

	"github.com/asticode/go-astiav"
)

func TestSeekTimestamp(t *testing.T) {
	// Frame 30 at 30fps sits exactly at 1 second.
	if got := SeekTimestamp(30, 30); got != 1_000_000 {
		t.Errorf("SeekTimestamp(30, 30) = %d, want 1000000", got)
	}
	if got := SeekTimestamp(0, 30); got != 0 {
		t.Errorf("SeekTimestamp(0, 30) = %d, want 0", got)
	}
	if got := SeekTimestamp(299, 29.97); got != int64(299.0/29.97*1e6) {
		t.Errorf("SeekTimestamp(299, 29.97) = %d", got)
	}
}

func TestPtsToFrameNumber(t *testing.T) {
	tb := astiav.NewRational(1, 1000)

	if got := PtsToFrameNumber(1000, tb, 30); got != 30 {
		t.Errorf("pts 1000 in 1/1000 at 30fps = frame %d, want 30", got)
	}
	if got := PtsToFrameNumber(0, tb, 30); got != 0 {
		t.Errorf("pts 0 = frame %d, want 0", got)
	}

	// 0.999s * 30fps = 29.97: truncation keeps the timestamp inside
	// frame 29's display interval.
	if got := PtsToFrameNumber(999, tb, 30); got != 29 {
		t.Errorf("pts 999 in 1/1000 at 30fps = frame %d, want 29", got)
	}
}

func TestSecondsToFrameNumber(t *testing.T) {
	if got := SecondsToFrameNumber(1.999, 30); got != 59 {
		t.Errorf("1.999s at 30fps = frame %d, want 59", got)
	}
	if got := SecondsToFrameNumber(2.0, 30); got != 60 {
		t.Errorf("2.0s at 30fps = frame %d, want 60", got)
	}
	if got := SecondsToFrameNumber(0, 30); got != 0 {
		t.Errorf("0s at 30fps = frame %d, want 0", got)
	}
}

func TestSecondsToStreamTimestamp(t *testing.T) {
	tb := astiav.NewRational(1, 90_000)
	if got := SecondsToStreamTimestamp(2.5, tb); got != 225_000 {
		t.Errorf("2.5s in 1/90000 = %d, want 225000", got)
	}
}

func TestPtsSeconds(t *testing.T) {
	tb := astiav.NewRational(1, 90_000)
	if got := PtsSeconds(90_000, tb); got != 1.0 {
		t.Errorf("pts 90000 in 1/90000 = %fs, want 1", got)
	}
}

func TestRationalFloat(t *testing.T) {
	if got := RationalFloat(astiav.NewRational(30_000, 1001)); math.Abs(got-29.97) > 0.01 {
		t.Errorf("30000/1001 = %f, want about 29.97", got)
	}
	if got := RationalFloat(astiav.NewRational(0, 0)); got != 0 {
		t.Errorf("0/0 = %f, want 0", got)
	}
}

func TestParseNativeLogLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want NativeLogLevel
	}{
		{"quiet", NativeLogQuiet},
		{"error", NativeLogError},
		{"warning", NativeLogWarning},
		{"info", NativeLogInfo},
		{"debug", NativeLogDebug},
	} {
		got, err := ParseNativeLogLevel(tc.in)
		if err != nil {
			t.Errorf("ParseNativeLogLevel(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseNativeLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseNativeLogLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseHardware(t *testing.T) {
	tests := []struct {
		in     string
		mode   HardwareMode
		device string
	}{
		{"auto", HardwareAuto, ""},
		{"", HardwareSoftware, ""},
		{"none", HardwareSoftware, ""},
		{"software", HardwareSoftware, ""},
		{"cuda", HardwareSpecific, "cuda"},
		{"vaapi", HardwareSpecific, "vaapi"},
	}
	for _, tt := range tests {
		got := ParseHardware(tt.in)
		if got.Mode != tt.mode || got.DeviceName != tt.device {
			t.Errorf("ParseHardware(%q) = %+v, want mode %v device %q", tt.in, got, tt.mode, tt.device)
		}
	}
}

func TestHardwareConfigCandidates(t *testing.T) {
	if got := (HardwareConfig{Mode: HardwareSoftware}).candidates(); got != nil {
		t.Errorf("software mode candidates = %v, want none", got)
	}

	got := HardwareConfig{Mode: HardwareSpecific, DeviceName: "cuda"}.candidates()
	if len(got) != 1 || got[0] != "cuda" {
		t.Errorf("specific mode candidates = %v, want [cuda]", got)
	}

	if got := (HardwareConfig{Mode: HardwareSpecific}).candidates(); got != nil {
		t.Errorf("specific mode without a name = %v, want none", got)
	}

	auto := HardwareConfig{Mode: HardwareAuto}.candidates()
	if len(auto) != len(hardwareDevicePriority) || auto[0] != "cuda" {
		t.Errorf("auto mode candidates = %v", auto)
	}
}

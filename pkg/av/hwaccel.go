package av

import (
	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/ports"
)

// HardwareMode controls whether video decoding may use a hardware device.
type HardwareMode int

const (
	// HardwareAuto probes the known device types in priority order and
	// falls back to software when none works.
	HardwareAuto HardwareMode = iota
	// HardwareSoftware forces software decoding.
	HardwareSoftware
	// HardwareSpecific tries exactly the named device type.
	HardwareSpecific
)

// HardwareConfig selects the decoding backend for a video stream.
type HardwareConfig struct {
	Mode HardwareMode
	// DeviceName is the libav device type name ("cuda", "vaapi", ...)
	// consulted when Mode is HardwareSpecific.
	DeviceName string
}

// ParseHardware maps a user-facing mode string to a HardwareConfig.
// "auto" probes devices, "none" (or empty) forces software, and any
// other value names a specific device type. Unknown device names are
// not rejected here; they simply fail to open and decoding falls back
// to software.
func ParseHardware(s string) HardwareConfig {
	switch s {
	case "auto":
		return HardwareConfig{Mode: HardwareAuto}
	case "", "none", "software":
		return HardwareConfig{Mode: HardwareSoftware}
	default:
		return HardwareConfig{Mode: HardwareSpecific, DeviceName: s}
	}
}

// Probed in this order under HardwareAuto. Availability depends on the
// build of the underlying libraries and the host machine.
var hardwareDevicePriority = []string{
	"cuda",
	"vaapi",
	"dxva2",
	"d3d11va",
	"videotoolbox",
	"qsv",
}

func (c HardwareConfig) candidates() []string {
	switch c.Mode {
	case HardwareSoftware:
		return nil
	case HardwareSpecific:
		if c.DeviceName == "" {
			return nil
		}
		return []string{c.DeviceName}
	default:
		return hardwareDevicePriority
	}
}

// Accelerator owns a hardware device context bound to a specific decoder.
// Frames decoded through it arrive in the device pixel format and must be
// transferred to system memory before conversion.
type Accelerator struct {
	device      *astiav.HardwareDeviceContext
	pixelFormat astiav.PixelFormat
	name        string
}

// NewAccelerator resolves cfg against the decoder's hardware capabilities.
// It returns nil when cfg selects software decoding or when no candidate
// device can be created; callers then decode in software. Setup failures
// never surface as errors, only as debug logs.
func NewAccelerator(cfg HardwareConfig, codec *astiav.Codec, log ports.Logger) *Accelerator {
	if codec == nil {
		return nil
	}
	for _, name := range cfg.candidates() {
		deviceType := astiav.FindHardwareDeviceTypeByName(name)
		if deviceType == astiav.HardwareDeviceTypeNone {
			continue
		}

		var pixelFormat astiav.PixelFormat
		found := false
		for _, hc := range codec.HardwareConfigs() {
			if !hc.MethodFlags().Has(astiav.CodecHardwareConfigMethodFlagHwDeviceCtx) {
				continue
			}
			if hc.HardwareDeviceType() != deviceType {
				continue
			}
			pixelFormat = hc.PixelFormat()
			found = true
			break
		}
		if !found {
			continue
		}

		device, err := astiav.CreateHardwareDeviceContext(deviceType, "", nil, 0)
		if err != nil {
			log.Debug("hardware device %s unavailable: %v", name, err)
			continue
		}

		log.Debug("hardware decoding via %s", name)
		return &Accelerator{
			device:      device,
			pixelFormat: pixelFormat,
			name:        name,
		}
	}
	return nil
}

// Apply attaches the device context to a decoder context. Must be called
// before the decoder is opened.
func (a *Accelerator) Apply(cc *astiav.CodecContext) {
	if a == nil {
		return
	}
	cc.SetHardwareDeviceContext(a.device)
}

// PixelFormat returns the format hardware frames arrive in.
func (a *Accelerator) PixelFormat() astiav.PixelFormat {
	return a.pixelFormat
}

// Name returns the device type name in use.
func (a *Accelerator) Name() string {
	return a.name
}

// Close frees the device context.
func (a *Accelerator) Close() {
	if a == nil || a.device == nil {
		return
	}
	a.device.Free()
	a.device = nil
}

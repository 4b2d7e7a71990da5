package av

import (
	"fmt"

	"github.com/asticode/go-astiav"
)

// NativeLogLevel selects how chatty the underlying libav libraries are on
// stderr. This is process-wide state, independent of the ports.Logger used
// by this module's own code.
type NativeLogLevel int

const (
	NativeLogQuiet NativeLogLevel = iota
	NativeLogError
	NativeLogWarning
	NativeLogInfo
	NativeLogDebug
)

func (l NativeLogLevel) String() string {
	switch l {
	case NativeLogQuiet:
		return "quiet"
	case NativeLogError:
		return "error"
	case NativeLogWarning:
		return "warning"
	case NativeLogInfo:
		return "info"
	case NativeLogDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseNativeLogLevel converts a string such as "quiet" or "debug" to a
// NativeLogLevel.
func ParseNativeLogLevel(s string) (NativeLogLevel, error) {
	switch s {
	case "quiet":
		return NativeLogQuiet, nil
	case "error":
		return NativeLogError, nil
	case "warning":
		return NativeLogWarning, nil
	case "info":
		return NativeLogInfo, nil
	case "debug":
		return NativeLogDebug, nil
	default:
		return NativeLogQuiet, fmt.Errorf("av: unknown native log level %q", s)
	}
}

// SetNativeLogLevel applies the level to the libav libraries. The setting
// affects every handle in the process.
func SetNativeLogLevel(l NativeLogLevel) {
	switch l {
	case NativeLogError:
		astiav.SetLogLevel(astiav.LogLevelError)
	case NativeLogWarning:
		astiav.SetLogLevel(astiav.LogLevelWarning)
	case NativeLogInfo:
		astiav.SetLogLevel(astiav.LogLevelInfo)
	case NativeLogDebug:
		astiav.SetLogLevel(astiav.LogLevelDebug)
	default:
		astiav.SetLogLevel(astiav.LogLevelQuiet)
	}
}

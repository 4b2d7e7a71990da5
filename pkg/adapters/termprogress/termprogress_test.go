package termprogress

import (
	"testing"
	"time"

	"github.com/user/unbundle/pkg/ports"
)

func TestDescribe(t *testing.T) {
	if got := describe(ports.OpFrameExtraction); got != "frame extraction" {
		t.Errorf("describe = %q", got)
	}
	if got := describe(ports.OpStreamCopy); got != "stream copy" {
		t.Errorf("describe = %q", got)
	}
}

func TestDisabledSinkIsSilent(t *testing.T) {
	// Piped stderr must produce zero rendering; Report must also be safe
	// to call repeatedly without a bar.
	s := &Sink{enabled: false}
	for i := int64(1); i <= 3; i++ {
		s.Report(ports.ProgressInfo{
			Operation: ports.OpFrameExtraction,
			Done:      i,
			Total:     3,
			Percent:   float64(i) / 3 * 100,
			Elapsed:   time.Second,
		})
	}
	if s.bar != nil {
		t.Error("disabled sink must never allocate a bar")
	}
	s.Finish()
}

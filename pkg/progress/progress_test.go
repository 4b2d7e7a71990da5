package progress

import (
	"testing"

	"github.com/user/unbundle/pkg/ports"
)

type recordingSink struct {
	reports []ports.ProgressInfo
}

func (r *recordingSink) Report(info ports.ProgressInfo) {
	r.reports = append(r.reports, info)
}

func TestTrackerBatchCadence(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(ports.OpFrameExtraction, sink, 10, 3)

	for i := 0; i < 10; i++ {
		tr.Advance()
	}

	// Batch boundaries at 3, 6 and 9.
	if len(sink.reports) != 3 {
		t.Fatalf("expected 3 batched reports, got %d", len(sink.reports))
	}
	if sink.reports[0].Done != 3 || sink.reports[1].Done != 6 || sink.reports[2].Done != 9 {
		t.Errorf("unexpected report positions: %+v", sink.reports)
	}

	tr.Finish()
	if len(sink.reports) != 4 {
		t.Fatalf("expected final report after Finish, got %d reports", len(sink.reports))
	}
	last := sink.reports[3]
	if last.Done != 10 || last.Total != 10 {
		t.Errorf("final report = %d/%d, want 10/10", last.Done, last.Total)
	}
	if last.Percent != 100.0 {
		t.Errorf("final percent = %f, want 100", last.Percent)
	}
}

func TestTrackerBatchSizeClamped(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(ports.OpAudioExtraction, sink, 4, 0)

	for i := 0; i < 4; i++ {
		tr.Advance()
	}

	// Batch size below 1 reports every item.
	if len(sink.reports) != 4 {
		t.Errorf("expected a report per item, got %d", len(sink.reports))
	}
}

func TestTrackerFinishWithoutItems(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(ports.OpValidation, sink, 0, 5)

	tr.Finish()

	if len(sink.reports) != 1 {
		t.Fatalf("expected one report, got %d", len(sink.reports))
	}
	if sink.reports[0].Done != 0 {
		t.Errorf("done = %d, want 0", sink.reports[0].Done)
	}
}

func TestTrackerUnknownTotal(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(ports.OpSceneDetection, sink, 0, 1)

	tr.Advance()

	if got := sink.reports[0].Percent; got != -1.0 {
		t.Errorf("percent with unknown total = %f, want -1", got)
	}
	if got := sink.reports[0].ETA; got != 0 {
		t.Errorf("eta with unknown total = %v, want 0", got)
	}
}

func TestTrackerPercent(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(ports.OpFrameExtraction, sink, 8, 2)

	tr.Advance()
	tr.Advance()

	if got := sink.reports[0].Percent; got != 25.0 {
		t.Errorf("percent = %f, want 25", got)
	}
	if sink.reports[0].ETA <= 0 {
		t.Errorf("eta = %v, want positive with work remaining", sink.reports[0].ETA)
	}
}

func TestTrackerNilSink(t *testing.T) {
	tr := NewTracker(ports.OpFrameExtraction, nil, 3, 1)

	tr.Advance()
	tr.Finish()

	if tr.Done() != 1 {
		t.Errorf("done = %d, want 1", tr.Done())
	}
}

func TestTokenCancel(t *testing.T) {
	tok := NewToken()
	if tok.Cancelled() {
		t.Error("new token must not be cancelled")
	}

	tok.Cancel()
	if !tok.Cancelled() {
		t.Error("token must report cancelled after Cancel")
	}

	// Cancel is idempotent.
	tok.Cancel()
	if !tok.Cancelled() {
		t.Error("token must stay cancelled")
	}
}

func TestNilTokenNeverCancelled(t *testing.T) {
	var tok *Token
	if tok.Cancelled() {
		t.Error("nil token must report not cancelled")
	}
}

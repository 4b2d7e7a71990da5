package export

import "testing"

func TestCaptionTimestamp(t *testing.T) {
	for _, tt := range []struct {
		seconds float64
		want    string
	}{
		{seconds: 0, want: "00:00"},
		{seconds: 1.9, want: "00:01"},
		{seconds: 65, want: "01:05"},
		{seconds: 3599.999, want: "59:59"},
		{seconds: 3661.5, want: "1:01:01"},
		{seconds: -3, want: "00:00"},
	} {
		if got := captionTimestamp(tt.seconds); got != tt.want {
			t.Errorf("captionTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestGridOptionsNormalized(t *testing.T) {
	var nilOpts *GridOptions
	o := nilOpts.normalized()
	if o.Columns != 4 || o.Rows != 4 || o.CellWidth != 320 || !o.Captions {
		t.Errorf("nil options normalized to %+v", o)
	}

	o = (&GridOptions{Columns: -1, Rows: 0, CellWidth: 0}).normalized()
	if o.Columns != 1 || o.Rows != 1 {
		t.Errorf("degenerate layout normalized to %d×%d, want 1×1", o.Columns, o.Rows)
	}
	if o.CellWidth != 320 {
		t.Errorf("cell width normalized to %d, want 320", o.CellWidth)
	}

	o = DefaultGridOptions().WithLayout(3, 2).WithCellWidth(240).WithCaptions(false)
	if o.Columns != 3 || o.Rows != 2 || o.CellWidth != 240 || o.Captions {
		t.Errorf("chained options = %+v", o)
	}
}

package frames

import (
	"reflect"
	"testing"
)

func TestSplitRunsContiguous(t *testing.T) {
	runs := splitRuns([]int64{0, 1, 2, 3, 4}, 30)
	if len(runs) != 1 {
		t.Fatalf("contiguous targets = %d runs, want 1", len(runs))
	}
	if !reflect.DeepEqual(runs[0], []int64{0, 1, 2, 3, 4}) {
		t.Errorf("run = %v", runs[0])
	}
}

func TestSplitRunsGaps(t *testing.T) {
	runs := splitRuns([]int64{0, 1, 2, 100, 101, 300}, 30)
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3: %v", len(runs), runs)
	}
	want := [][]int64{{0, 1, 2}, {100, 101}, {300}}
	if !reflect.DeepEqual(runs, want) {
		t.Errorf("runs = %v, want %v", runs, want)
	}
}

func TestSplitRunsGapBoundary(t *testing.T) {
	// A distance of exactly the gap stays in one run; one more splits.
	runs := splitRuns([]int64{0, 30}, 30)
	if len(runs) != 1 {
		t.Errorf("distance == gap must stay one run, got %v", runs)
	}

	runs = splitRuns([]int64{0, 31}, 30)
	if len(runs) != 2 {
		t.Errorf("distance > gap must split, got %v", runs)
	}
}

func TestSplitRunsDegenerate(t *testing.T) {
	if runs := splitRuns(nil, 30); runs != nil {
		t.Errorf("no targets = %v, want nil", runs)
	}
	runs := splitRuns([]int64{7}, 30)
	if len(runs) != 1 || len(runs[0]) != 1 || runs[0][0] != 7 {
		t.Errorf("single target = %v", runs)
	}
}

func TestSplitRunsSparse(t *testing.T) {
	// Every target farther than the gap from its neighbor: one run each.
	targets := []int64{0, 100, 200, 300, 400}
	runs := splitRuns(targets, 30)
	if len(runs) != len(targets) {
		t.Fatalf("got %d runs, want %d", len(runs), len(targets))
	}
	for i, r := range runs {
		if len(r) != 1 || r[0] != targets[i] {
			t.Errorf("run %d = %v", i, r)
		}
	}
}

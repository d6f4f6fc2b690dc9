package cursor

import "testing"

func TestPositionColumnIsCountModWidth(t *testing.T) {
	for _, width := range []int{1, 2, 10, 80} {
		for count := 0; count < 200; count += 7 {
			got := Position(count, width, 24)
			if got.Col != count%width {
				t.Fatalf("Position(%d, %d, 24).Col = %d, want %d", count, width, got.Col, count%width)
			}
		}
	}
}

func TestPositionRowClampedToHalfHeight(t *testing.T) {
	got := Position(1000, 10, 24)
	if got.Row != 12 {
		t.Fatalf("expected row clamped to 12, got %d", got.Row)
	}
}

func TestPositionWrapScenario(t *testing.T) {
	// Width 10, break-free target: 10 typed chars land at (0,1), 19 at
	// (9,1), 20 wraps to (0,2).
	cases := []struct {
		count    int
		col, row int
	}{
		{10, 0, 1},
		{19, 9, 1},
		{20, 0, 2},
	}
	for _, tc := range cases {
		got := Position(tc.count, 10, 24)
		if got.Col != tc.col || got.Row != tc.row {
			t.Fatalf("Position(%d, 10, 24) = (%d,%d), want (%d,%d)", tc.count, got.Col, got.Row, tc.col, tc.row)
		}
	}
}

func TestStepForwardWrapsAtRightEdge(t *testing.T) {
	cur := Cursor{Col: 9, Row: 0, Width: 10, Height: 24}
	next, err := cur.StepForward('x')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Col != 0 || next.Row != 1 {
		t.Fatalf("expected (0,1), got (%d,%d)", next.Col, next.Row)
	}
}

func TestStepForwardLineBreak(t *testing.T) {
	cur := Cursor{Col: 4, Row: 0, Width: 10, Height: 24}
	next, err := cur.StepForward('\n')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Col != 0 || next.Row != 1 {
		t.Fatalf("expected (0,1), got (%d,%d)", next.Col, next.Row)
	}
}

func TestStepForwardBoundaryAtLastRow(t *testing.T) {
	cur := Cursor{Col: 9, Row: 12, Width: 10, Height: 24}
	if _, err := cur.StepForward('x'); err != ErrBoundary {
		t.Fatalf("expected ErrBoundary, got %v", err)
	}
	if _, err := cur.StepForward('\n'); err != ErrBoundary {
		t.Fatalf("expected ErrBoundary for line break, got %v", err)
	}
}

func TestStepBackWrapsToPreviousRow(t *testing.T) {
	cur := Cursor{Col: 0, Row: 2, Width: 10, Height: 24}
	prev, err := cur.StepBack('x')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prev.Col != 9 || prev.Row != 1 {
		t.Fatalf("expected (9,1), got (%d,%d)", prev.Col, prev.Row)
	}
}

func TestStepBackBoundaryAtOrigin(t *testing.T) {
	cur := Cursor{Col: 0, Row: 0, Width: 10, Height: 24}
	if _, err := cur.StepBack('x'); err != ErrBoundary {
		t.Fatalf("expected ErrBoundary, got %v", err)
	}
	if _, err := cur.StepBack('\n'); err != ErrBoundary {
		t.Fatalf("expected ErrBoundary for line break, got %v", err)
	}
}

func TestStepRoundTrip(t *testing.T) {
	chars := []rune("hello world this wraps around the grid edge")
	cur := Cursor{Width: 10, Height: 24}
	start := cur
	var err error
	for _, r := range chars {
		cur, err = cur.StepForward(r)
		if err != nil {
			t.Fatalf("forward step failed: %v", err)
		}
	}
	for i := len(chars) - 1; i >= 0; i-- {
		cur, err = cur.StepBack(chars[i])
		if err != nil {
			t.Fatalf("backward step failed: %v", err)
		}
	}
	if cur != start {
		t.Fatalf("round trip ended at (%d,%d), want (%d,%d)", cur.Col, cur.Row, start.Col, start.Row)
	}
}

func TestStepRoundTripStopsAtBoundary(t *testing.T) {
	cur := Cursor{Width: 10, Height: 2} // clamp row = 1
	var err error
	steps := 0
	for i := 0; i < 100; i++ {
		next, serr := cur.StepForward('x')
		if serr != nil {
			err = serr
			break
		}
		cur = next
		steps++
	}
	if err != ErrBoundary {
		t.Fatalf("expected boundary error, got %v", err)
	}
	// The cursor must stop at the last cell, not wrap.
	if cur.Col != 9 || cur.Row != 1 {
		t.Fatalf("expected cursor held at (9,1), got (%d,%d)", cur.Col, cur.Row)
	}
	if steps != 19 {
		t.Fatalf("expected 19 successful steps, got %d", steps)
	}
}

func TestLocateHonorsLineBreaks(t *testing.T) {
	chars := []rune("ab\ncd")
	got := Locate(chars, len(chars), 10, 24)
	if got.Col != 2 || got.Row != 1 {
		t.Fatalf("expected (2,1), got (%d,%d)", got.Col, got.Row)
	}
}

func TestLocateAgreesWithPositionForBreakFreeText(t *testing.T) {
	chars := []rune("the quick brown fox jumps over the lazy dog")
	for count := 0; count <= len(chars); count++ {
		want := Position(count, 10, 24)
		got := Locate(chars, count, 10, 24)
		if got.Col != want.Col || got.Row != want.Row {
			t.Fatalf("count %d: Locate = (%d,%d), Position = (%d,%d)", count, got.Col, got.Row, want.Col, want.Row)
		}
	}
}

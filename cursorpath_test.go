package termcore

import "testing"

func alwaysClean(x, y int) bool { return true }
func neverClean(x, y int) bool  { return false }

func TestPathfindCursorNoOp(t *testing.T) {
	if got := PathfindCursor(3, 3, 3, 3, neverClean); got != nil {
		t.Errorf("expected nil for equal positions, got %q", got)
	}
}

func TestPathfindCursorSameRowForward(t *testing.T) {
	got := PathfindCursor(0, 0, 5, 0, alwaysClean)
	if len(got) == 0 {
		t.Fatal("expected a non-empty move")
	}
	// With every intervening cell clean, literal spaces (5 bytes) beat
	// the CSI form ("\x1b[5C", 4 bytes is actually shorter here) only
	// when spaces are strictly fewer bytes; assert the general
	// optimality bound instead of one specific encoding.
	absolute := []byte("\x1b[1;6H")
	if len(got) > len(absolute) {
		t.Errorf("got %d bytes, expected no worse than absolute %d bytes", len(got), len(absolute))
	}
}

func TestPathfindCursorSameColumnVertical(t *testing.T) {
	got := PathfindCursor(4, 2, 4, 8, neverClean)
	want := []byte("\x1b[6B")
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPathfindCursorAbsoluteFallback(t *testing.T) {
	got := PathfindCursor(0, 0, 10, 10, neverClean)
	want := []byte("\x1b[11;11H")
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Property 6: for any (from,to) pair, the emitted byte count does not
// exceed the absolute-move sequence's length plus a small constant.
func TestPathfindCursorOptimalityBound(t *testing.T) {
	const slack = 4
	positions := []struct{ cx, cy, tx, ty int }{
		{0, 0, 0, 0}, {0, 0, 79, 0}, {0, 0, 0, 23}, {10, 10, 12, 10},
		{5, 5, 5, 1}, {0, 0, 100, 100}, {79, 23, 0, 0}, {3, 3, 3, 3},
	}
	for _, p := range positions {
		abs := []byte{}
		abs = append(abs, []byte("\x1b[")...)
		absSeq := PathfindCursor(-1000, -1000, p.tx, p.ty, neverClean) // force absolute
		_ = abs
		got := PathfindCursor(p.cx, p.cy, p.tx, p.ty, alwaysClean)
		if len(got) > len(absSeq)+slack {
			t.Errorf("(%d,%d)->(%d,%d): got %d bytes %q, absolute-bound %d bytes",
				p.cx, p.cy, p.tx, p.ty, len(got), got, len(absSeq))
		}
	}
}

package termcore

import (
	"math/rand"
	"testing"
)

func TestBufferPutCharBasic(t *testing.T) {
	b := NewBuffer(10, 3)
	b.PutChar(2, 1, "x", AttrDefault)
	back, _ := b.Row(1)
	if back[2].Text() != "x" {
		t.Errorf("got %q, want %q", back[2].Text(), "x")
	}
}

func TestBufferPutTextOverflowDropsNotWraps(t *testing.T) {
	b := NewBuffer(5, 1)
	b.PutText(3, 0, "hello", AttrDefault)
	back, _ := b.Row(0)
	if back[3].Text() != "h" || back[4].Text() != "e" {
		t.Fatalf("expected only 2 chars placed, got %q %q", back[3].Text(), back[4].Text())
	}
}

func TestBufferWideCharPlacement(t *testing.T) {
	b := NewBuffer(10, 1)
	b.PutText(0, 0, "漢", AttrDefault)
	back, _ := b.Row(0)
	if back[0].Width != 2 {
		t.Fatalf("expected leading width 2, got %d", back[0].Width)
	}
	if !back[1].IsTrailing() {
		t.Fatalf("expected column 1 to be a trailing marker")
	}
}

func TestBufferWideCharAtRowEdgeSubstitutesSpace(t *testing.T) {
	b := NewBuffer(3, 1)
	b.PutChar(2, 0, "漢", AttrDefault)
	back, _ := b.Row(0)
	if back[2].Text() != " " || back[2].Width != 1 {
		t.Fatalf("expected a blank space at the row edge, got %q width=%d", back[2].Text(), back[2].Width)
	}
}

// S3 — writing into the trailing half of a wide character blanks the
// leading half and damages it; writing into the leading half directly
// blanks the trailing half.
func TestBufferWideCharSplitReplacesOpposingHalf(t *testing.T) {
	b := NewBuffer(10, 1)
	b.PutText(0, 0, "漢", AttrDefault)
	b.PutChar(1, 0, "x", AttrDefault)

	back, _ := b.Row(0)
	if back[0].Text() != " " || back[0].Width != 1 {
		t.Fatalf("expected leading half blanked, got %q width=%d", back[0].Text(), back[0].Width)
	}
	if back[1].Text() != "x" {
		t.Fatalf("expected 'x' at column 1, got %q", back[1].Text())
	}
}

// Property 3: no reachable buffer state contains an orphan leading or
// trailing wide-char cell, across a random sequence of Put* calls.
func TestBufferNoOrphanWideHalves(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := NewBuffer(20, 5)
	clusters := []string{"a", "漢", "字", "b", "列"}

	for i := 0; i < 2000; i++ {
		x := rng.Intn(20)
		y := rng.Intn(5)
		c := clusters[rng.Intn(len(clusters))]
		b.PutChar(x, y, c, AttrDefault)
	}

	for y := 0; y < 5; y++ {
		back, _ := b.Row(y)
		assertNoOrphanHalves(t, back, y)
	}
}

func assertNoOrphanHalves(t *testing.T, row []Cell, y int) {
	t.Helper()
	for x := 0; x < len(row); x++ {
		if row[x].Width == 2 {
			if x+1 >= len(row) {
				t.Fatalf("row %d: leading half at edge column %d with no room for trailing", y, x)
			}
			if !row[x+1].IsTrailing() {
				t.Fatalf("row %d: leading half at %d not followed by a trailing marker", y, x)
			}
		}
		if row[x].IsTrailing() {
			if x == 0 || row[x-1].Width != 2 {
				t.Fatalf("row %d: orphan trailing marker at column %d", y, x)
			}
		}
	}
}

// Property 1: for every sequence of Put* calls, every cell whose value in
// back differs from front lies inside that row's damage region.
func TestBufferDamageCoversEveryDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := NewBuffer(16, 4)
	clusters := []string{"a", "b", "漢", " ", "字"}

	for iter := 0; iter < 200; iter++ {
		op := rng.Intn(4)
		switch op {
		case 0:
			b.PutChar(rng.Intn(16), rng.Intn(4), clusters[rng.Intn(len(clusters))], AttrDefault)
		case 1:
			b.PutText(rng.Intn(16), rng.Intn(4), "hi"+clusters[rng.Intn(len(clusters))], AttrDefault)
		case 2:
			b.FillRect(rng.Intn(16), rng.Intn(4), 1+rng.Intn(4), 1+rng.Intn(2), clusters[rng.Intn(len(clusters))], AttrDefault)
		case 3:
			b.Scroll(Rect{X: 0, Y: 0, W: 16, H: 4}, rng.Intn(3)-1, AttrDefault)
		}

		b.mu.Lock()
		for y := 0; y < b.h; y++ {
			d := b.damage[y]
			for x := 0; x < b.w; x++ {
				if !b.back[y][x].Equal(b.front[y][x]) {
					if x < d.Start || x >= d.End {
						b.mu.Unlock()
						t.Fatalf("iter %d: row %d col %d differs but lies outside damage [%d,%d)", iter, y, x, d.Start, d.End)
					}
				}
			}
		}
		b.mu.Unlock()
	}
}

func TestBufferResizeGrowDamagesEverything(t *testing.T) {
	b := NewBuffer(5, 5)
	b.DamageSnapshot() // clear initial full-grid damage from construction
	b.Resize(10, 10)
	snap := b.DamageSnapshot()
	for y, d := range snap {
		if d.IsEmpty() {
			t.Fatalf("row %d should be fully damaged after grow", y)
		}
	}
}

func TestBufferResizePreservesOverlap(t *testing.T) {
	b := NewBuffer(10, 5)
	b.PutChar(2, 2, "x", AttrDefault)
	b.Resize(20, 10)
	back, _ := b.Row(2)
	if back[2].Text() != "x" {
		t.Fatalf("expected overlap preserved, got %q", back[2].Text())
	}
}

func TestBufferResizeShrinkWithIdenticalFrontDamagesNothing(t *testing.T) {
	b := NewBuffer(10, 5)
	b.DamageSnapshot()
	// Commit everything so front == back before shrinking.
	for y := 0; y < 5; y++ {
		b.CommitRun(y, 0, 10)
	}
	b.Resize(5, 5)
	snap := b.DamageSnapshot()
	for y, d := range snap {
		if !d.IsEmpty() {
			t.Fatalf("row %d: expected no damage on pure shrink with identical content, got [%d,%d)", y, d.Start, d.End)
		}
	}
}

func TestBufferResizeZeroClampsToFallback(t *testing.T) {
	b := NewBuffer(10, 5)
	err := b.Resize(0, 0)
	if err == nil {
		t.Fatal("expected a ResizeOutOfRange error for a zero-sized resize")
	}
	var e *Error
	if !asError(err, &e) || e.Kind != ResizeOutOfRange {
		t.Fatalf("expected ResizeOutOfRange, got %v", err)
	}
	w, h := b.Size()
	if w != fallbackCols || h != fallbackRows {
		t.Fatalf("expected clamp to (%d,%d), got (%d,%d)", fallbackCols, fallbackRows, w, h)
	}
}

func TestBufferResizeNegativeClampsToFallback(t *testing.T) {
	b := NewBuffer(10, 5)
	if err := b.Resize(-3, -1); err == nil {
		t.Fatal("expected a ResizeOutOfRange error for a negative resize")
	}
	w, h := b.Size()
	if w != fallbackCols || h != fallbackRows {
		t.Fatalf("expected clamp to (%d,%d), got (%d,%d)", fallbackCols, fallbackRows, w, h)
	}
}

func TestBufferResizeOversizeClampsToMax(t *testing.T) {
	b := NewBuffer(10, 5)
	err := b.Resize(maxBufferDim+500, maxBufferDim+500)
	if err == nil {
		t.Fatal("expected a ResizeOutOfRange error for an oversized resize")
	}
	w, h := b.Size()
	if w != maxBufferDim || h != maxBufferDim {
		t.Fatalf("expected clamp to (%d,%d), got (%d,%d)", maxBufferDim, maxBufferDim, w, h)
	}
}

func TestBufferResizeInRangeReturnsNoError(t *testing.T) {
	b := NewBuffer(10, 5)
	if err := b.Resize(20, 10); err != nil {
		t.Fatalf("expected no error for an in-range resize, got %v", err)
	}
}

func TestBufferScrollFillsExposedBand(t *testing.T) {
	b := NewBuffer(5, 5)
	for y := 0; y < 5; y++ {
		b.PutChar(0, y, "a", AttrDefault)
	}
	b.Scroll(Rect{X: 0, Y: 0, W: 5, H: 5}, 2, AttrDefault)
	back, _ := b.Row(4)
	if back[0].Text() != " " {
		t.Fatalf("expected exposed band filled with space, got %q", back[0].Text())
	}
	back0, _ := b.Row(0)
	if back0[0].Text() != "a" {
		t.Fatalf("expected row 0 to have scrolled-in content 'a', got %q", back0[0].Text())
	}
}

func TestBufferCommitRunSyncsFrontFromBack(t *testing.T) {
	b := NewBuffer(5, 1)
	b.PutChar(1, 0, "z", AttrDefault)
	b.CommitRun(0, 0, 5)
	_, front := b.Row(0)
	if front[1].Text() != "z" {
		t.Fatalf("expected front[1]=z after CommitRun, got %q", front[1].Text())
	}
}

// Property 2: two consecutive flushes with no intervening mutation write
// zero bytes on the second. DamageSnapshot is the mechanism a Display
// relies on for this; verify it directly at the Buffer level.
func TestBufferDamageSnapshotIdempotentWithoutMutation(t *testing.T) {
	b := NewBuffer(5, 5)
	first := b.DamageSnapshot()
	anyDamage := false
	for _, d := range first {
		if !d.IsEmpty() {
			anyDamage = true
		}
	}
	if !anyDamage {
		t.Fatal("expected initial construction to damage the grid")
	}
	second := b.DamageSnapshot()
	for y, d := range second {
		if !d.IsEmpty() {
			t.Fatalf("row %d: expected no damage on second snapshot without mutation, got [%d,%d)", y, d.Start, d.End)
		}
	}
}

// Copyright 2024 The Termcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package termcore

import (
	"fmt"
	"sync"
)

// fallbackCols/fallbackRows are the dimensions Resize clamps to when asked
// for a zero or negative size, matching the 80x24 fallback Terminal.Open
// already falls back to when winsize detection fails.
const (
	fallbackCols = 80
	fallbackRows = 24

	// maxBufferDim bounds a single dimension: far beyond any real
	// terminal's reported size, but finite so a corrupt or adversarial
	// resize request can't allocate an unbounded grid.
	maxBufferDim = 10000
)

// Buffer is the 2-D grid of cells a Display backend reconciles against the
// real terminal: a front grid mirroring what the terminal is believed to
// show after the last successful flush, a back grid holding the pending
// next frame, a per-row damage region, and a frame-pacing limiter.
//
// A single put_* call is observed either entirely or not at all by a
// concurrent flush: every mutator holds Buffer's mutex for its full
// duration, and DamageSnapshot, Row and CommitRun (used by the backend to
// read damage, read a row, and commit a run) each take the same lock.
type Buffer struct {
	mu       sync.Mutex
	w, h     int
	back     [][]Cell
	front    [][]Cell
	damage   []DamageRegion
	fps      *FpsLimiter
	style    Attr
	framectr int
}

// NewBuffer allocates a Buffer of the given size with an FpsLimiter at the
// default frame ceiling.
func NewBuffer(w, h int) *Buffer {
	b := &Buffer{fps: NewFpsLimiter(defaultFPS)}
	b.Resize(w, h)
	return b
}

// Limiter returns the buffer's FpsLimiter, so a Display backend can pace
// its own Flush calls against it.
func (b *Buffer) Limiter() *FpsLimiter { return b.fps }

// Size returns the buffer's current (width, height).
func (b *Buffer) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.w, b.h
}

// SetDefaultStyle sets the attribute Clear fills with. Other operations
// use the attribute they are given, AttrDefault included.
func (b *Buffer) SetDefaultStyle(a Attr) {
	b.mu.Lock()
	b.style = a
	b.mu.Unlock()
}

func allocGrid(w, h int) [][]Cell {
	g := make([][]Cell, h)
	for y := range g {
		row := make([]Cell, w)
		for x := range row {
			row[x] = blankCell
		}
		g[y] = row
	}
	return g
}

// Resize reallocates the grids to (w,h), preserving the top-left overlap
// with the previous contents, clearing the remainder. It damages every
// surviving row fully on grow, and damages nothing on a pure shrink that
// leaves the retained front region identical (there is nothing new for a
// flush to draw).
//
// A zero, negative, or over-large (w,h) is clamped rather than honored
// (to the 80x24 fallback on the low end, to maxBufferDim on the high
// end) and Resize returns a ResizeOutOfRange error describing both the
// requested and the clamped size; the buffer is still resized to the
// clamped dimensions, never left in a stale or degenerate state.
func (b *Buffer) Resize(w, h int) error {
	reqW, reqH := w, h
	outOfRange := false
	switch {
	case w <= 0:
		w = fallbackCols
		outOfRange = true
	case w > maxBufferDim:
		w = maxBufferDim
		outOfRange = true
	}
	switch {
	case h <= 0:
		h = fallbackRows
		outOfRange = true
	case h > maxBufferDim:
		h = maxBufferDim
		outOfRange = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	grew := w > b.w || h > b.h
	oldBack, oldFront, oldDamage := b.back, b.front, b.damage
	ow, oh := b.w, b.h

	b.back = allocGrid(w, h)
	b.front = allocGrid(w, h)
	b.damage = make([]DamageRegion, h)
	for y := range b.damage {
		b.damage[y] = emptyDamageRegion()
	}

	overlapW, overlapH := w, h
	if ow < overlapW {
		overlapW = ow
	}
	if oh < overlapH {
		overlapH = oh
	}
	for y := 0; y < overlapH; y++ {
		copy(b.back[y][:overlapW], oldBack[y][:overlapW])
		copy(b.front[y][:overlapW], oldFront[y][:overlapW])
		enforceWidePairing(b.back[y])
		enforceWidePairing(b.front[y])
	}
	b.w, b.h = w, h

	if grew {
		for y := 0; y < h; y++ {
			b.damage[y].Expand(0, w)
		}
	} else {
		// Keep whatever damage was still pending in the retained region.
		for y := 0; y < h; y++ {
			b.damage[y] = oldDamage[y]
			b.damage[y].Clamp(w)
		}
	}

	if outOfRange {
		return newError(ResizeOutOfRange, "Buffer.Resize",
			fmt.Errorf("requested (%d,%d) clamped to (%d,%d)", reqW, reqH, w, h))
	}
	return nil
}

// enforceWidePairing repairs a row that was truncated or copied such that
// a leading wide cell now has no trailing half (or vice versa), replacing
// the orphan with a space.
func enforceWidePairing(row []Cell) {
	for x := 0; x < len(row); x++ {
		if row[x].Width == 2 {
			if x+1 >= len(row) || !row[x+1].IsTrailing() {
				row[x].setBlank(row[x].Attr)
			}
		} else if row[x].IsTrailing() {
			if x == 0 || row[x-1].Width != 2 {
				row[x].setBlank(row[x].Attr)
			}
		}
	}
}

// BeginFrame and EndFrame bracket a batch of mutations so a caller can
// defer whatever bookkeeping it likes around a group of writes; Buffer
// itself aggregates damage continuously, so these are a no-op scope
// marker rather than a deferred-commit mechanism. They nest: only the
// outermost EndFrame matters to callers that want a single notification
// point.
func (b *Buffer) BeginFrame() {
	b.mu.Lock()
	b.framectr++
	b.mu.Unlock()
}

// EndFrame closes a BeginFrame scope.
func (b *Buffer) EndFrame() {
	b.mu.Lock()
	if b.framectr > 0 {
		b.framectr--
	}
	b.mu.Unlock()
}

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.w && y < b.h
}

// PutChar places one grapheme cluster at (x,y) with the given attribute.
// If the cluster is width 2 and x+1 is in bounds, the following cell
// becomes its trailing marker; if x+1 is out of bounds, a space is
// substituted instead so no half-wide character is ever emitted at the
// row's edge. Any write that would split an existing wide pair replaces
// the opposite half with a space and damages it, per the wide-character
// rule: no reachable state may contain an orphan half.
func (b *Buffer) PutChar(x, y int, cluster string, attr Attr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.putChar(x, y, cluster, attr)
}

func (b *Buffer) putChar(x, y int, cluster string, attr Attr) int {
	if !b.inBounds(x, y) {
		return 0
	}
	width := clusterWidth(cluster)
	if width < 1 {
		width = 1
	}
	b.breakPairAt(y, x)
	row := b.back[y]
	if width == 2 {
		if x+1 < b.w {
			b.breakPairAt(y, x+1)
			row[x].setText(cluster, 2, attr)
			row[x+1].setTrailing(attr)
			b.damage[y].Expand(x, 2)
			return 2
		}
		row[x].setBlank(attr)
		b.damage[y].Expand(x, 1)
		return 1
	}
	row[x].setText(cluster, 1, attr)
	b.damage[y].Expand(x, 1)
	return 1
}

// breakPairAt ensures that writing to column x will not leave an orphan
// half: if x currently holds the trailing half of a wide character, the
// leading half at x-1 is blanked; if x holds a leading half, its trailing
// half at x+1 is blanked. Each blanked cell is damaged. Called before
// every direct single-cell write.
func (b *Buffer) breakPairAt(y, x int) {
	row := b.back[y]
	if row[x].IsTrailing() && x > 0 && row[x-1].Width == 2 {
		row[x-1].setBlank(row[x-1].Attr)
		b.damage[y].Expand(x-1, 1)
	}
	if row[x].Width == 2 && x+1 < len(row) {
		row[x+1].setBlank(row[x].Attr)
		b.damage[y].Expand(x+1, 1)
	}
}

// PutText segments text into grapheme clusters and writes them
// left-to-right starting at (x,y), advancing by each cluster's width.
// Clusters that would overflow the row are dropped, not wrapped.
func (b *Buffer) PutText(x, y int, text string, attr Attr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inBounds(x, y) {
		return
	}
	cx := x
	for _, cluster := range segmentGraphemes(text) {
		w := clusterWidth(cluster)
		if w < 1 {
			w = 1
		}
		if cx+w > b.w {
			break
		}
		b.putChar(cx, y, cluster, attr)
		cx += w
	}
}

// FillRect fills the w x h rectangle at (x,y) with a repeated cluster,
// damaging every affected cell.
func (b *Buffer) FillRect(x, y, w, h int, cluster string, attr Attr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cw := clusterWidth(cluster)
	if cw < 1 {
		cw = 1
	}
	for row := y; row < y+h; row++ {
		if row < 0 || row >= b.h {
			continue
		}
		for col := x; col < x+w; col += cw {
			if col < 0 || col >= b.w {
				continue
			}
			b.putChar(col, row, cluster, attr)
		}
	}
}

// ClearRect fills the w x h rectangle at (x,y) with spaces in attr.
func (b *Buffer) ClearRect(x, y, w, h int, attr Attr) {
	b.FillRect(x, y, w, h, " ", attr)
}

// Clear fills the whole buffer with spaces in the default style.
func (b *Buffer) Clear() {
	b.mu.Lock()
	style := b.style
	w, h := b.w, b.h
	b.mu.Unlock()
	b.FillRect(0, 0, w, h, " ", style)
}

// Rect is a (x,y,w,h) rectangle used by Scroll.
type Rect struct {
	X, Y, W, H int
}

// Scroll copies rows within rect by dy (positive scrolls content up,
// negative scrolls it down), filling the exposed band with spaces using
// attr and damaging the full rect plus one column on each side of it,
// where a wide pair split by the rect's edge has its orphan half blanked.
func (b *Buffer) Scroll(rect Rect, dy int, attr Attr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if dy == 0 {
		return
	}
	top, bottom := rect.Y, rect.Y+rect.H
	if top < 0 {
		top = 0
	}
	if bottom > b.h {
		bottom = b.h
	}
	left, right := rect.X, rect.X+rect.W
	if left < 0 {
		left = 0
	}
	if right > b.w {
		right = b.w
	}
	if left >= right || top >= bottom {
		return
	}

	if dy > 0 {
		for y := top; y < bottom; y++ {
			srcY := y + dy
			if srcY < bottom {
				copy(b.back[y][left:right], b.back[srcY][left:right])
			} else {
				b.blankSpan(y, left, right, attr)
			}
			enforceWidePairing(b.back[y])
		}
	} else {
		for y := bottom - 1; y >= top; y-- {
			srcY := y + dy
			if srcY >= top {
				copy(b.back[y][left:right], b.back[srcY][left:right])
			} else {
				b.blankSpan(y, left, right, attr)
			}
			enforceWidePairing(b.back[y])
		}
	}
	dl, dr := left, right
	if dl > 0 {
		dl--
	}
	if dr < b.w {
		dr++
	}
	for y := top; y < bottom; y++ {
		b.damage[y].Expand(dl, dr-dl)
	}
}

func (b *Buffer) blankSpan(y, left, right int, attr Attr) {
	for x := left; x < right; x++ {
		b.back[y][x].setBlank(attr)
	}
}

// DamageSnapshot returns each row's damage region and clears it, handing
// the caller (a Display backend's flush) ownership of exactly the damage
// accumulated since the last snapshot.
func (b *Buffer) DamageSnapshot() []DamageRegion {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]DamageRegion, b.h)
	copy(out, b.damage)
	for y := range b.damage {
		b.damage[y].Reset()
	}
	return out
}

// Row returns read-only access to the back and front cells of row y, for
// a backend's reconciliation pass. It must be called while holding no
// other Buffer call in flight on another goroutine for the same backend;
// Buffer's own lock is held only for the duration of the copy.
func (b *Buffer) Row(y int) (back, front []Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= b.h {
		return nil, nil
	}
	backCopy := make([]Cell, b.w)
	frontCopy := make([]Cell, b.w)
	copy(backCopy, b.back[y])
	copy(frontCopy, b.front[y])
	return backCopy, frontCopy
}

// CommitRun copies back[y][start:end) into front[y][start:end), marking
// those cells as reconciled. Called by a Display backend after it has
// emitted the bytes for a run.
func (b *Buffer) CommitRun(y, start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= b.h {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > b.w {
		end = b.w
	}
	for x := start; x < end; x++ {
		b.front[y][x] = b.back[y][x]
		b.front[y][x].dirty = false
		b.back[y][x].dirty = false
	}
}

// Invalidate damages every cell, forcing the next flush to be a full
// repaint (used after Sync or a resize where the terminal's actual
// contents can no longer be trusted).
func (b *Buffer) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for y := 0; y < b.h; y++ {
		b.damage[y] = emptyDamageRegion()
		b.damage[y].Expand(0, b.w)
	}
}

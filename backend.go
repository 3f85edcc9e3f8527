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
	"bufio"
	"fmt"
	"io"
	"time"
)

// CursorShape is a DECSCUSR-style cursor rendition. Support for changing
// it is not universal; a Display that can't honor a shape should just
// ignore it (caps.CursorShapes tells a caller whether to expect effect).
type CursorShape int

const (
	CursorShapeDefault CursorShape = iota
	CursorShapeBlinkingBlock
	CursorShapeSteadyBlock
	CursorShapeBlinkingUnderline
	CursorShapeSteadyUnderline
	CursorShapeBlinkingBar
	CursorShapeSteadyBar
)

// Display is the output contract a backend variant (ANSI, termios-raw,
// curses-fallback) must satisfy: enter whatever special modes its
// capabilities allow, reconcile a Buffer's pending frame onto the real
// terminal, move the cursor, and shut down idempotently.
type Display interface {
	Init(caps Capabilities) error
	Flush(buf *Buffer) error
	SetCursor(x, y int, visible bool, shape CursorShape)
	Beep() error
	Shutdown() error

	// RegisterRuneFallback, UnregisterRuneFallback, and CanDisplay mirror
	// tcell's Screen methods of the same name: a caller registers an
	// ASCII-safe substitute for a rune the current charset can't encode,
	// and can ask in advance whether a rune will survive unaided.
	RegisterRuneFallback(r rune, subst string)
	UnregisterRuneFallback(r rune)
	CanDisplay(r rune, checkFallbacks bool) bool
}

// Input is the input contract: poll the input descriptor with a
// deadline, report whether an event is already available without
// blocking, and shut down. Implementations handle EINTR transparently;
// short reads are normal and simply mean "try again".
type Input interface {
	Poll(deadline time.Time) (Event, bool)
	Peek() bool
	Shutdown() error
}

// renderState is the mutable cursor/attribute tracking a reconciliation
// pass needs across calls: where the real cursor sits, and which
// attribute was last emitted, so style changes are only written when
// they actually differ from what's already active (§4.4.b).
type renderState struct {
	cx, cy     int
	haveCursor bool
	lastAttr   Attr
	haveAttr   bool
	encoder    *CharsetEncoder
}

func (s *renderState) invalidate() {
	s.haveCursor = false
	s.haveAttr = false
}

// gapThresholdBytes (G in §4.4.1.a) is the byte cost of an absolute
// cursor move; clean gaps between dirty spans shorter than this are
// absorbed into a single run rather than paying for a second cursor
// reposition.
const gapThresholdBytes = 8

// cellRun is one maximal dirty span within a row's damage region,
// produced by splitRuns.
type cellRun struct {
	start, end int // [start, end) within the row
}

// splitRuns scans back[s:e) against front[s:e) and returns the maximal
// dirty runs, merging clean gaps no longer than gapThresholdBytes so the
// reconciler doesn't pay for an extra cursor reposition to skip a few
// already-correct cells.
func splitRuns(back, front []Cell, s, e int) []cellRun {
	var runs []cellRun
	x := s
	for x < e {
		if back[x].Equal(front[x]) {
			x++
			continue
		}
		start := x
		lastDirty := x
		x++
		for x < e {
			if !back[x].Equal(front[x]) {
				lastDirty = x
				x++
				continue
			}
			// Look ahead across the clean gap.
			gapStart := x
			for x < e && back[x].Equal(front[x]) {
				x++
			}
			if x-gapStart <= gapThresholdBytes && x < e {
				lastDirty = x
				continue
			}
			break
		}
		runs = append(runs, cellRun{start: start, end: lastDirty + 1})
	}
	return runs
}

// firstRunAttr returns the attribute of the first non-trailing cell in
// run, if any (a run can in principle be entirely wide-rune trailing
// cells only when malformed, but this guards that case anyway).
func firstRunAttr(back []Cell, run cellRun) (Attr, bool) {
	for x := run.start; x < run.end; x++ {
		if !back[x].IsTrailing() {
			return back[x].Attr, true
		}
	}
	return 0, false
}

// reconcile implements the output contract's core algorithm (§4.4): for
// every damaged row, split it into runs, move the cursor to each run's
// start via PathfindCursor, emit only the style changes that differ from
// state.lastAttr (encoded at the given color depth), write the run's
// cells, then commit the run from back to front. All output is buffered
// and flushed once at the end.
func reconcile(w io.Writer, buf *Buffer, caps Capabilities, state *renderState) error {
	bw := bufio.NewWriter(w)
	damage := buf.DamageSnapshot()
	width, _ := buf.Size()

	for y, d := range damage {
		if d.IsEmpty() {
			continue
		}
		back, front := buf.Row(y)
		if back == nil {
			continue
		}
		runs := splitRuns(back, front, d.Start, d.End)
		for _, run := range runs {
			canOverwrite := func(x, yy int) bool {
				return state.haveAttr && state.lastAttr == blankCell.Attr &&
					back[x].Equal(blankCell) && front[x].Equal(blankCell)
			}

			// Style changes are emitted before the cursor reposition, so
			// a terminal recording the byte stream sees attribute state
			// settled before the cursor moves into position (matches
			// the hello-world scenario's expected byte ordering).
			if firstAttr, ok := firstRunAttr(back, run); ok {
				if !state.haveAttr || firstAttr != state.lastAttr {
					writeSGR(bw, firstAttr, caps.ColorDepth)
					state.lastAttr, state.haveAttr = firstAttr, true
				}
			}

			if state.haveCursor {
				move := PathfindCursor(state.cx, state.cy, run.start, y, canOverwrite)
				bw.Write(move)
			} else {
				fmt.Fprintf(bw, "\x1b[%d;%dH", y+1, run.start+1)
			}
			state.cx, state.cy, state.haveCursor = run.start, y, true

			for x := run.start; x < run.end; {
				cell := back[x]
				if cell.IsTrailing() {
					x++
					continue
				}
				if !state.haveAttr || cell.Attr != state.lastAttr {
					writeSGR(bw, cell.Attr, caps.ColorDepth)
					state.lastAttr, state.haveAttr = cell.Attr, true
				}
				bw.WriteString(state.encoder.Encode(cell.Text()))
				adv := int(cell.Width)
				if adv < 1 {
					adv = 1
				}
				x += adv
				state.cx += adv
			}
			if state.cx > width {
				state.cx = width
			}
			buf.CommitRun(y, run.start, run.end)
		}
	}
	return bw.Flush()
}

// writeSGR emits the minimal SGR sequence to move from "whatever the
// terminal's current rendition is" to attr, encoded at the given color
// depth using the shortest form each depth allows.
func writeSGR(w *bufio.Writer, attr Attr, depth ColorDepth) {
	fg, bg, _ := attr.Decompose()
	w.WriteString("\x1b[0m")
	if attr.Has(StyleBold) {
		w.WriteString("\x1b[1m")
	}
	if attr.Has(StyleUnderline) {
		w.WriteString("\x1b[4m")
	}
	if attr.Has(StyleItalic) {
		w.WriteString("\x1b[3m")
	}
	if attr.Has(StyleReverse) {
		w.WriteString("\x1b[7m")
	}
	if attr.Has(StyleStrikethrough) {
		w.WriteString("\x1b[9m")
	}
	writeSGRColor(w, fg, depth, false)
	writeSGRColor(w, bg, depth, true)
}

func writeSGRColor(w *bufio.Writer, c Color, depth ColorDepth, background bool) {
	if c.Kind == ColorDefault {
		return
	}
	c = Downgrade(c, depth)
	switch c.Kind {
	case ColorIndexed16:
		idx := int(c.Value)
		base := 30
		if idx >= 8 {
			base = 90
			idx -= 8
		}
		if background {
			base += 10
		}
		fmt.Fprintf(w, "\x1b[%dm", base+idx)
	case ColorIndexed256:
		if background {
			fmt.Fprintf(w, "\x1b[48;5;%dm", c.Value)
		} else {
			fmt.Fprintf(w, "\x1b[38;5;%dm", c.Value)
		}
	case ColorRGB24:
		r, g, b := c.RGB()
		if background {
			fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm", r, g, b)
		} else {
			fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", r, g, b)
		}
	}
}

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
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/muesli/cancelreader"
)

// defaultEscTimeout is the lone-ESC disambiguation window (§5.2): no
// further byte within this span after a bare 0x1B resolves it to a
// standalone Escape key rather than waiting forever for a sequence that
// was never coming.
const defaultEscTimeout = 50 * time.Millisecond

// AnsiDisplay is the full-capability Display variant: alternate screen,
// SGR mouse reporting, bracketed paste, and DECSCUSR cursor shapes, for
// a terminal a Probe has scored as a modern xterm-derived TTY.
type AnsiDisplay struct {
	out     io.Writer
	fd      int
	cleanup *Cleanup
	raw     *rawModeState
	caps    Capabilities
	state   renderState
}

// NewAnsiDisplay returns a Display that writes to out, using fd to enter
// raw mode, and registers its teardown sequences (raw mode, alt screen,
// mouse, paste, cursor) onto cleanup so a signal or panic mid-session
// still leaves the terminal sane.
func NewAnsiDisplay(out io.Writer, fd int, cleanup *Cleanup) *AnsiDisplay {
	return &AnsiDisplay{out: out, fd: fd, cleanup: cleanup}
}

func (d *AnsiDisplay) Init(caps Capabilities) error {
	d.caps = caps
	d.state.invalidate()
	if !caps.UTF8 {
		enc, err := NewCharsetEncoder(caps.Charset)
		if err != nil {
			return err
		}
		d.state.encoder = enc
	}

	raw, err := enterRawMode(d.fd)
	if err != nil {
		return err
	}
	d.raw = raw
	d.cleanup.Register(func() { d.raw.restore() })

	var b bytes.Buffer
	b.WriteString("\x1b[?1049h")
	d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[?1049l") })

	b.WriteString("\x1b[2J\x1b[H")
	b.WriteString("\x1b[?25l")
	d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[?25h") })

	if caps.Mouse != MouseNone {
		b.WriteString("\x1b[?1000h\x1b[?1002h\x1b[?1003h\x1b[?1006h")
		d.cleanup.Register(func() {
			io.WriteString(d.out, "\x1b[?1003l\x1b[?1002l\x1b[?1000l\x1b[?1006l")
		})
	}
	if caps.BracketedPaste {
		b.WriteString("\x1b[?2004h")
		d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[?2004l") })
	}
	d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[0m") })

	if _, err := d.out.Write(b.Bytes()); err != nil {
		return newError(FatalIo, "AnsiDisplay.Init", err)
	}
	return nil
}

func (d *AnsiDisplay) Flush(buf *Buffer) error {
	if err := reconcile(d.out, buf, d.caps, &d.state); err != nil {
		return newError(FatalIo, "AnsiDisplay.Flush", err)
	}
	return nil
}

// suspend leaves every special mode Init entered, mirroring the same
// undo sequences registered on cleanup, so a shell sees a clean
// cooked-mode terminal while the process is stopped.
func (d *AnsiDisplay) suspend() error {
	if d.raw != nil {
		d.raw.restore()
	}
	var b bytes.Buffer
	if d.caps.BracketedPaste {
		b.WriteString("\x1b[?2004l")
	}
	if d.caps.Mouse != MouseNone {
		b.WriteString("\x1b[?1003l\x1b[?1002l\x1b[?1000l\x1b[?1006l")
	}
	b.WriteString("\x1b[0m\x1b[?25h\x1b[?1049l")
	_, err := d.out.Write(b.Bytes())
	return err
}

// resume re-enters raw mode and every special mode suspend left, ahead
// of the forced full repaint Terminal.Resume triggers.
func (d *AnsiDisplay) resume(caps Capabilities) error {
	d.caps = caps
	d.state.invalidate()
	raw, err := enterRawMode(d.fd)
	if err != nil {
		return err
	}
	d.raw = raw

	var b bytes.Buffer
	b.WriteString("\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l")
	if caps.Mouse != MouseNone {
		b.WriteString("\x1b[?1000h\x1b[?1002h\x1b[?1003h\x1b[?1006h")
	}
	if caps.BracketedPaste {
		b.WriteString("\x1b[?2004h")
	}
	_, err = d.out.Write(b.Bytes())
	return err
}

func (d *AnsiDisplay) SetCursor(x, y int, visible bool, shape CursorShape) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\x1b[%d;%dH", y+1, x+1)
	if seq, ok := decscusrSeq(shape); ok && d.caps.CursorShapes {
		b.WriteString(seq)
	}
	if visible {
		b.WriteString("\x1b[?25h")
	} else {
		b.WriteString("\x1b[?25l")
	}
	d.out.Write(b.Bytes())
	d.state.cx, d.state.cy, d.state.haveCursor = x, y, true
}

func (d *AnsiDisplay) Beep() error {
	_, err := io.WriteString(d.out, "\x07")
	return err
}

func (d *AnsiDisplay) RegisterRuneFallback(r rune, subst string) {
	d.state.encoder.RegisterRuneFallback(r, subst)
}

func (d *AnsiDisplay) UnregisterRuneFallback(r rune) {
	d.state.encoder.UnregisterRuneFallback(r)
}

func (d *AnsiDisplay) CanDisplay(r rune, checkFallbacks bool) bool {
	if d.caps.UTF8 {
		return true
	}
	return d.state.encoder.CanDisplay(r, checkFallbacks)
}

// Shutdown runs the undo stack registered during Init. It is safe to call
// even if a signal already ran the same stack via Cleanup.Run.
func (d *AnsiDisplay) Shutdown() error {
	d.cleanup.Run()
	return nil
}

// decscusrSeq maps a CursorShape to its DECSCUSR parameter.
func decscusrSeq(shape CursorShape) (string, bool) {
	switch shape {
	case CursorShapeBlinkingBlock:
		return "\x1b[1 q", true
	case CursorShapeSteadyBlock:
		return "\x1b[2 q", true
	case CursorShapeBlinkingUnderline:
		return "\x1b[3 q", true
	case CursorShapeSteadyUnderline:
		return "\x1b[4 q", true
	case CursorShapeBlinkingBar:
		return "\x1b[5 q", true
	case CursorShapeSteadyBar:
		return "\x1b[6 q", true
	default:
		return "", false
	}
}

// AnsiInput reads raw bytes from a cancelable reader, feeds them through
// an EscapeParser, coalesces mouse-move/resize bursts, and delivers the
// result on a buffered channel a Poll caller can wait on with a deadline.
type AnsiInput struct {
	cr             cancelreader.CancelReader
	parser         *Parser
	coalescer      *Coalescer
	coalesceWindow time.Duration
	events         chan Event
	stopResize     func()
	escTimeout     time.Duration

	mu         sync.Mutex
	escTimer   *time.Timer
	flushTimer *time.Timer
	closed     chan struct{}
}

// NewAnsiInput starts reading r (normally the terminal's stdin, fd for
// SIGWINCH/winsize plumbing) immediately; events begin accumulating
// before the first Poll call, exactly like a real terminal's input
// queue. cfg's EscTimeout and CoalesceWindow override the package
// defaults when non-zero, letting a caller tune both from Open.
func NewAnsiInput(r io.Reader, fd int, caps Capabilities, cfg Config) (*AnsiInput, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, newError(FatalIo, "NewAnsiInput", err)
	}
	escTimeout := cfg.EscTimeout
	if escTimeout <= 0 {
		escTimeout = defaultEscTimeout
	}
	coalesceWindow := cfg.CoalesceWindow
	if coalesceWindow <= 0 {
		coalesceWindow = defaultCoalesceWindow
	}
	in := &AnsiInput{
		cr:             cr,
		parser:         NewParser(),
		coalescer:      NewCoalescer(coalesceWindow),
		coalesceWindow: coalesceWindow,
		events:         make(chan Event, 256),
		escTimeout:     escTimeout,
		closed:         make(chan struct{}),
	}
	in.parser.EnableMouseReporting(caps.Mouse != MouseNone)
	in.stopResize = watchResize(fd, func(cols, rows int) {
		in.deliver(newResizeEvent(ResizeEvent{Cols: cols, Rows: rows}))
	})
	go in.readLoop()
	return in, nil
}

func (in *AnsiInput) deliver(ev Event) {
	out := in.coalescer.Push(ev)
	if coalescable(ev) {
		// ev is now the coalescer's pending hold (whether or not Push
		// also returned an older, dissimilar hold): arm a timer so a
		// trailing Move/Resize with no follow-up still reaches the
		// consumer instead of waiting forever (§4.7).
		in.armFlushTimer()
	} else {
		in.stopFlushTimer()
	}
	for _, e := range out {
		in.send(e)
	}
}

func (in *AnsiInput) send(e Event) {
	select {
	case in.events <- e:
	default:
		// Consumer has fallen far enough behind that the channel is
		// full; dropping here only ever discards a coalescable Move
		// or Resize, per the no-unbounded-growth rule (§4.7).
	}
}

func (in *AnsiInput) armFlushTimer() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.flushTimer != nil {
		in.flushTimer.Stop()
	}
	in.flushTimer = time.AfterFunc(in.coalesceWindow, func() {
		for _, e := range in.coalescer.Flush() {
			in.send(e)
		}
	})
}

func (in *AnsiInput) stopFlushTimer() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.flushTimer != nil {
		in.flushTimer.Stop()
		in.flushTimer = nil
	}
}

func (in *AnsiInput) readLoop() {
	defer close(in.closed)
	buf := make([]byte, 512)
	for {
		n, err := in.cr.Read(buf)
		for i := 0; i < n; i++ {
			for _, ev := range in.parser.Feed(buf[i]) {
				in.deliver(ev)
			}
		}
		if n > 0 {
			in.armEscTimer()
		}
		if err != nil {
			return
		}
	}
}

func (in *AnsiInput) armEscTimer() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.escTimer != nil {
		in.escTimer.Stop()
	}
	if !in.parser.PendingEscape() {
		return
	}
	in.escTimer = time.AfterFunc(in.escTimeout, func() {
		for _, ev := range in.parser.Timeout() {
			in.deliver(ev)
		}
	})
}

func (in *AnsiInput) Poll(deadline time.Time) (Event, bool) {
	var timeoutCh <-chan time.Time
	if !deadline.IsZero() {
		d := time.Until(deadline)
		if d <= 0 {
			select {
			case ev, ok := <-in.events:
				return ev, ok
			default:
				return Event{}, false
			}
		}
		t := time.NewTimer(d)
		defer t.Stop()
		timeoutCh = t.C
	}
	select {
	case ev, ok := <-in.events:
		return ev, ok
	case <-timeoutCh:
		return Event{}, false
	case <-in.closed:
		select {
		case ev, ok := <-in.events:
			return ev, ok
		default:
			return Event{}, false
		}
	}
}

// Peek reports whether an event is already queued, via the buffered
// channel's current length rather than a destructive receive.
func (in *AnsiInput) Peek() bool {
	return len(in.events) > 0
}

// inject delivers ev directly, bypassing the parser/coalescer, for a
// synthetic event (a SignalEvent) that never arrived over the wire.
func (in *AnsiInput) inject(ev Event) {
	select {
	case in.events <- ev:
	default:
	}
}

func (in *AnsiInput) Shutdown() error {
	if in.stopResize != nil {
		in.stopResize()
	}
	in.mu.Lock()
	if in.escTimer != nil {
		in.escTimer.Stop()
	}
	if in.flushTimer != nil {
		in.flushTimer.Stop()
	}
	in.mu.Unlock()
	in.cr.Cancel()
	return in.cr.Close()
}

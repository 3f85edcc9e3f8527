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
)

// CursesDisplay is the last tier before ErrorRecovery gives up and bails
// (§4.9): the conservative, curses-era CSI subset only — absolute cursor
// positioning and 16-color SGR, no alternate screen, no mouse, no
// bracketed paste, no cursor-shape requests. It exists for terminals or
// emulation layers too old or too defensive to trust with anything
// richer, so every mode byte it writes is one that has worked since the
// original xterm.
type CursesDisplay struct {
	out     io.Writer
	fd      int
	cleanup *Cleanup
	raw     *rawModeState
	caps    Capabilities
	state   renderState
}

// NewCursesDisplay returns the fallback Display. Whatever capabilities
// are passed to Init are clamped down to what this tier will actually
// use (see clampCurses), since this backend is chosen precisely when the
// caller can no longer trust a fuller capability claim.
func NewCursesDisplay(out io.Writer, fd int, cleanup *Cleanup) *CursesDisplay {
	return &CursesDisplay{out: out, fd: fd, cleanup: cleanup}
}

// clampCurses forces this tier's self-imposed ceiling regardless of what
// Probe claimed: at most 16 colors, no mouse, no paste, no alt screen, no
// cursor shapes.
func clampCurses(caps Capabilities) Capabilities {
	if caps.ColorDepth > Depth16 {
		caps.ColorDepth = Depth16
	}
	caps.Mouse = MouseNone
	caps.BracketedPaste = false
	caps.AltScreen = false
	caps.CursorShapes = false
	return caps
}

func (d *CursesDisplay) Init(caps Capabilities) error {
	d.caps = clampCurses(caps)
	d.state.invalidate()
	if !d.caps.UTF8 {
		enc, err := NewCharsetEncoder(d.caps.Charset)
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
	d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[0m") })

	_, werr := io.WriteString(d.out, "\x1b[2J\x1b[H")
	if werr != nil {
		return newError(FatalIo, "CursesDisplay.Init", werr)
	}
	return nil
}

func (d *CursesDisplay) Flush(buf *Buffer) error {
	if err := reconcile(d.out, buf, d.caps, &d.state); err != nil {
		return newError(FatalIo, "CursesDisplay.Flush", err)
	}
	return nil
}

// suspend restores canonical mode, mirroring the cleanup actions Init
// registered.
func (d *CursesDisplay) suspend() error {
	if d.raw != nil {
		d.raw.restore()
	}
	_, err := io.WriteString(d.out, "\x1b[0m")
	return err
}

// resume re-enters raw mode and repositions to the origin.
func (d *CursesDisplay) resume(caps Capabilities) error {
	d.caps = clampCurses(caps)
	d.state.invalidate()
	raw, err := enterRawMode(d.fd)
	if err != nil {
		return err
	}
	d.raw = raw
	_, err = io.WriteString(d.out, "\x1b[2J\x1b[H")
	return err
}

// SetCursor moves the cursor but never attempts to hide it: some of the
// terminals this tier targets handle DECTCEM (CSI ?25l) inconsistently,
// and a visible cursor is a far smaller defect than a stuck-invisible one
// on a terminal that never gets the show sequence back.
func (d *CursesDisplay) SetCursor(x, y int, visible bool, shape CursorShape) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\x1b[%d;%dH", y+1, x+1)
	d.out.Write(b.Bytes())
	d.state.cx, d.state.cy, d.state.haveCursor = x, y, true
}

func (d *CursesDisplay) Beep() error {
	_, err := io.WriteString(d.out, "\x07")
	return err
}

func (d *CursesDisplay) RegisterRuneFallback(r rune, subst string) {
	d.state.encoder.RegisterRuneFallback(r, subst)
}

func (d *CursesDisplay) UnregisterRuneFallback(r rune) {
	d.state.encoder.UnregisterRuneFallback(r)
}

func (d *CursesDisplay) CanDisplay(r rune, checkFallbacks bool) bool {
	if d.caps.UTF8 {
		return true
	}
	return d.state.encoder.CanDisplay(r, checkFallbacks)
}

func (d *CursesDisplay) Shutdown() error {
	d.cleanup.Run()
	return nil
}

// NewCursesInput mirrors NewAnsiInput but always reports mouse support
// as disabled to the parser, since this tier never enables any mouse
// mode and a stray CSI M-shaped byte sequence from some other source
// should not be misread as a mouse record.
func NewCursesInput(r io.Reader, fd int, cfg Config) (*AnsiInput, error) {
	return NewAnsiInput(r, fd, Capabilities{Mouse: MouseNone}, cfg)
}

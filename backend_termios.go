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

	"golang.org/x/term"
)

// TermiosDisplay is the middle escalation tier (§4.9): raw mode via
// golang.org/x/term with no alternate screen, no bracketed paste, and at
// most legacy X10 mouse reporting. It's what ErrorRecovery falls back to
// when the full ANSI backend's richer mode-setting fails but the
// terminal is still a usable TTY.
type TermiosDisplay struct {
	out     io.Writer
	fd      int
	cleanup *Cleanup
	raw     *rawModeState
	caps    Capabilities
	state   renderState
}

// NewTermiosDisplay returns a Display that writes to out, using fd only
// to enter/restore raw mode (no ioctl-based winsize or mode queries
// beyond what term.MakeRaw itself performs).
func NewTermiosDisplay(out io.Writer, fd int, cleanup *Cleanup) *TermiosDisplay {
	return &TermiosDisplay{out: out, fd: fd, cleanup: cleanup}
}

func (d *TermiosDisplay) Init(caps Capabilities) error {
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
	b.WriteString("\x1b[2J\x1b[H")
	b.WriteString("\x1b[?25l")
	d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[?25h") })

	if caps.Mouse != MouseNone {
		b.WriteString("\x1b[?1000h")
		d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[?1000l") })
	}
	d.cleanup.Register(func() { io.WriteString(d.out, "\x1b[0m") })

	if _, err := d.out.Write(b.Bytes()); err != nil {
		return newError(FatalIo, "TermiosDisplay.Init", err)
	}
	return nil
}

func (d *TermiosDisplay) Flush(buf *Buffer) error {
	if err := reconcile(d.out, buf, d.caps, &d.state); err != nil {
		return newError(FatalIo, "TermiosDisplay.Flush", err)
	}
	return nil
}

// suspend restores canonical mode and this tier's mode bytes, mirroring
// the cleanup actions Init registered.
func (d *TermiosDisplay) suspend() error {
	if d.raw != nil {
		d.raw.restore()
	}
	var b bytes.Buffer
	if d.caps.Mouse != MouseNone {
		b.WriteString("\x1b[?1000l")
	}
	b.WriteString("\x1b[0m\x1b[?25h")
	_, err := d.out.Write(b.Bytes())
	return err
}

// resume re-enters raw mode and this tier's mode bytes.
func (d *TermiosDisplay) resume(caps Capabilities) error {
	d.caps = caps
	d.state.invalidate()
	raw, err := enterRawMode(d.fd)
	if err != nil {
		return err
	}
	d.raw = raw

	var b bytes.Buffer
	b.WriteString("\x1b[2J\x1b[H\x1b[?25l")
	if caps.Mouse != MouseNone {
		b.WriteString("\x1b[?1000h")
	}
	_, err = d.out.Write(b.Bytes())
	return err
}

// SetCursor ignores shape, and caps.CursorShapes with it: DECSCUSR is
// never emitted by this tier.
func (d *TermiosDisplay) SetCursor(x, y int, visible bool, shape CursorShape) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\x1b[%d;%dH", y+1, x+1)
	if visible {
		b.WriteString("\x1b[?25h")
	} else {
		b.WriteString("\x1b[?25l")
	}
	d.out.Write(b.Bytes())
	d.state.cx, d.state.cy, d.state.haveCursor = x, y, true
}

func (d *TermiosDisplay) Beep() error {
	_, err := io.WriteString(d.out, "\x07")
	return err
}

func (d *TermiosDisplay) RegisterRuneFallback(r rune, subst string) {
	d.state.encoder.RegisterRuneFallback(r, subst)
}

func (d *TermiosDisplay) UnregisterRuneFallback(r rune) {
	d.state.encoder.UnregisterRuneFallback(r)
}

func (d *TermiosDisplay) CanDisplay(r rune, checkFallbacks bool) bool {
	if d.caps.UTF8 {
		return true
	}
	return d.state.encoder.CanDisplay(r, checkFallbacks)
}

func (d *TermiosDisplay) Shutdown() error {
	d.cleanup.Run()
	return nil
}

// NewTermiosInput builds the input side of the termios-raw tier. Parsing
// and coalescing work identically to the ANSI tier; only the mode bytes
// Init above enables differ, so this simply delegates to the same
// stream-driven implementation.
func NewTermiosInput(r io.Reader, fd int, caps Capabilities, cfg Config) (*AnsiInput, error) {
	return NewAnsiInput(r, fd, caps, cfg)
}

// termiosSize is a thin wrapper so callers outside this file don't need
// to know the termios backend leans on x/term rather than a raw ioctl.
func termiosSize(fd int) (cols, rows int, ok bool) {
	c, r, err := term.GetSize(fd)
	if err != nil {
		return 0, 0, false
	}
	return c, r, true
}

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
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"
)

// ColorDepth is how many distinct colors a terminal can render.
type ColorDepth int

const (
	DepthMono ColorDepth = iota
	Depth16
	Depth256
	DepthTrueColor
)

// MouseSupport is the mouse-reporting protocol a terminal understands.
type MouseSupport int

const (
	MouseNone MouseSupport = iota
	MouseX10
	MouseX11
	MouseSGR
)

// Capabilities summarizes what a terminal can do, computed once at
// startup by CapabilityProbe and available for re-query on request.
type Capabilities struct {
	ColorDepth      ColorDepth
	Mouse           MouseSupport
	BracketedPaste  bool
	UTF8            bool
	Charset         string
	AltScreen       bool
	Title           bool
	CursorShapes    bool
	TerminalID      string
}

// backendKind names which DisplayBackend/InputBackend pair a
// CapabilityProbe recommends.
type backendKind int

const (
	backendAnsi backendKind = iota
	backendTermiosRaw
	backendCurses
)

func (k backendKind) String() string {
	switch k {
	case backendAnsi:
		return "ansi"
	case backendTermiosRaw:
		return "termios"
	case backendCurses:
		return "curses"
	default:
		return "unknown"
	}
}

// scoreWeights tunes CapabilityProbe's backend scoring function. It is
// unexported; NewProbe sets every Probe's weights to defaultWeights.
type scoreWeights struct {
	Color  float64
	Mouse  float64
	Paste  float64
	AnsiInitCost    float64
	TermiosInitCost float64
	CursesInitCost  float64
}

var defaultWeights = scoreWeights{
	Color:           3.0,
	Mouse:           2.0,
	Paste:           1.0,
	AnsiInitCost:    0.5,
	TermiosInitCost: 0.2,
	CursesInitCost:  0.0,
}

// Probe detects OS, TTY-ness, color depth, mouse support, and UTF-8
// locale, and scores each candidate backend. It is pure: beyond writing
// and reading a bounded DA2 query (undone on timeout by simply
// discarding the response), it has no side effect on the terminal.
type Probe struct {
	Env          func(string) string
	Stdin        *os.File
	Stdout       *os.File
	QueryTimeout time.Duration
	weights      scoreWeights
}

// NewProbe builds a Probe reading from the process's real stdin/stdout
// and environment.
func NewProbe() *Probe {
	return &Probe{
		Env:          os.Getenv,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		QueryTimeout: 150 * time.Millisecond,
		weights:      defaultWeights,
	}
}

// Detect runs the priority-ordered capability checks from §4.2: explicit
// environment overrides, terminal identification via a bounded DA2 query,
// OS-level hints, and TTY-ness. TerminalID prefers the DA2 reply over TERM
// whenever the query succeeds, since a live reply from the terminal
// itself is more trustworthy than whatever TERM happens to be set to.
func (p *Probe) Detect() Capabilities {
	term := p.Env("TERM")
	caps := Capabilities{
		UTF8:           p.detectUTF8(),
		Charset:        p.detectCharset(),
		BracketedPaste: term != "" && term != "dumb",
		AltScreen:      term != "" && term != "dumb",
		Title:          term != "" && term != "dumb",
		CursorShapes:   strings.Contains(term, "xterm") || strings.Contains(term, "screen") || strings.Contains(term, "tmux"),
		TerminalID:     term,
	}

	if p.Env("NO_COLOR") != "" {
		caps.ColorDepth = DepthMono
	} else {
		caps.ColorDepth = p.detectColorDepth(term)
	}

	if p.isTTY(p.Stdin) && p.isTTY(p.Stdout) {
		caps.Mouse = p.detectMouse(term)
		if id := p.queryTerminalID(); id != "" {
			caps.TerminalID = id
		}
	} else {
		caps.Mouse = MouseNone
	}

	return caps
}

// queryTerminalID writes a secondary Device Attributes request (CSI > c)
// and reads the bounded reply, giving a live terminal fingerprint beyond
// whatever TERM claims. It touches the terminal (the one exception to
// Probe's otherwise-pure detection), so failure is always silent: no TTY,
// a zero QueryTimeout, a write error, a read timeout, or a malformed
// reply all simply yield "" and Detect falls back to TERM.
func (p *Probe) queryTerminalID() string {
	if p.QueryTimeout <= 0 {
		return ""
	}
	fd := int(p.Stdin.Fd())
	raw, err := enterRawMode(fd)
	if err != nil {
		return ""
	}
	defer raw.restore()

	if _, err := io.WriteString(p.Stdout, "\x1b[>c"); err != nil {
		return ""
	}

	_ = p.Stdin.SetReadDeadline(time.Now().Add(p.QueryTimeout))
	defer p.Stdin.SetReadDeadline(time.Time{})

	var reply []byte
	buf := make([]byte, 1)
	for len(reply) < 64 {
		n, err := p.Stdin.Read(buf)
		if n > 0 {
			reply = append(reply, buf[0])
			if buf[0] == 'c' {
				break
			}
		}
		if err != nil {
			break
		}
	}
	return parseDA2(reply)
}

// parseDA2 extracts the "Pp;Pv;Pc" payload out of a secondary Device
// Attributes reply shaped like ESC [ > Pp ; Pv ; Pc c, discarding the
// framing bytes. Returns "" for anything that isn't shaped like one.
func parseDA2(reply []byte) string {
	s := string(reply)
	if !strings.HasPrefix(s, "\x1b[>") || !strings.HasSuffix(s, "c") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, "\x1b[>"), "c")
}

func (p *Probe) detectUTF8() bool {
	for _, v := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if s := p.Env(v); s != "" {
			return strings.Contains(strings.ToUpper(s), "UTF-8") || strings.Contains(strings.ToUpper(s), "UTF8")
		}
	}
	return true // most modern environments default to UTF-8
}

// detectCharset extracts the charset token out of a POSIX locale string
// like "en_US.ISO-8859-1" (the part after the dot), which is what
// CharsetEncoder needs to look up a non-UTF-8 encoding. Returns "" when
// no locale variable names one explicitly.
func (p *Probe) detectCharset() string {
	for _, v := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		s := p.Env(v)
		if s == "" {
			continue
		}
		if i := strings.IndexByte(s, '.'); i >= 0 && i+1 < len(s) {
			return s[i+1:]
		}
	}
	return ""
}

func (p *Probe) detectColorDepth(term string) ColorDepth {
	colorterm := p.Env("COLORTERM")
	if colorterm == "truecolor" || colorterm == "24bit" {
		return DepthTrueColor
	}
	if strings.HasSuffix(term, "-256color") {
		return Depth256
	}

	// Supplement with colorprofile's own environment-based detection,
	// which additionally recognizes CI/Windows Terminal/WezTerm markers
	// this probe's own heuristics don't special-case.
	if p.Stdout != nil {
		switch colorprofile.Detect(p.Stdout, os.Environ()) {
		case colorprofile.TrueColor:
			return DepthTrueColor
		case colorprofile.ANSI256:
			return Depth256
		case colorprofile.ANSI:
			return Depth16
		case colorprofile.Ascii, colorprofile.NoTTY:
			return DepthMono
		}
	}

	if term == "" || term == "dumb" {
		return DepthMono
	}
	return Depth16
}

func (p *Probe) detectMouse(term string) MouseSupport {
	if term == "" || term == "dumb" {
		return MouseNone
	}
	// Modern xterm-derived terminals all understand SGR mouse mode
	// (1006); it's a strict superset of X10/X11 so it's always the
	// preferred encoding once any mouse support is plausible.
	return MouseSGR
}

func (p *Probe) isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Score rates how well caps (plus TTY-ness) suits each backend, per the
// weighted formula in §4.2: color_depth*w_color + mouse*w_mouse +
// paste*w_paste - init_cost. The ANSI backend is preferred on modern
// TTYs, termios-raw on Unix when it would otherwise tie, and
// curses-fallback elsewhere.
func (p *Probe) Score(caps Capabilities, isUnix bool) backendKind {
	w := p.weights
	base := float64(caps.ColorDepth)*w.Color + float64(caps.Mouse)*w.Mouse
	if caps.BracketedPaste {
		base += w.Paste
	}

	ansiScore := base - w.AnsiInitCost
	termiosScore := base*0.9 - w.TermiosInitCost
	cursesScore := base * 0.3

	if caps.TerminalID == "" || caps.TerminalID == "dumb" {
		return backendCurses
	}
	if !isUnix {
		return backendCurses
	}
	if ansiScore > termiosScore && ansiScore >= cursesScore {
		return backendAnsi
	}
	if termiosScore >= cursesScore {
		return backendTermiosRaw
	}
	return backendCurses
}

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

import "unicode/utf8"

// parseState is one state of the byte-level escape-sequence state
// machine, following ECMA-48/DEC parser conventions: plain text, CSI,
// SS3, DCS, and OSC, plus the auxiliary states CSI parsing needs
// (entry/param/intermediate/ignore).
type parseState int

const (
	stGround parseState = iota
	stEsc
	stCsiEntry
	stCsiParam
	stCsiIntermediate
	stCsiIgnore
	stSs3
	stOscString
	stDcsPassthrough
	stPasteBody
	stX10Mouse
)

const maxSeqLen = 256 // ParseOverflow threshold for a runaway sequence

// Parser is the byte-level escape-sequence state machine (EscapeParser):
// it consumes raw terminal input one byte at a time and yields parsed
// key, mouse, and paste events. Partial sequences are retained across
// Feed calls; on any ill-formed byte the parser returns to Ground and
// discards what it had accumulated (ParseOverflow), never panicking.
type Parser struct {
	state       parseState
	seq         []byte // raw bytes of the in-flight sequence, for overflow/debug
	params      []int
	curParam    int
	haveParam   bool
	private     byte // '<', '?', or 0
	intermed    []byte
	pasteBuf    []byte
	escPending  bool // Esc state entered, standalone-vs-prefix undecided
	mouseSGR    bool
	hasMouseCap bool // whether the host terminal claims X10/X11 mouse support
}

// NewParser returns a Parser ready to consume bytes from Ground state.
func NewParser() *Parser {
	return &Parser{}
}

// EnableMouseReporting tells the parser the terminal is reporting mouse
// events, so legacy X10 mouse records (which have no unambiguous
// introducer of their own) are attempted.
func (p *Parser) EnableMouseReporting(enabled bool) {
	p.hasMouseCap = enabled
}

// PendingEscape reports whether the parser is sitting in the Esc state
// with no further bytes yet: the lone-ESC disambiguation case. A caller
// (InputBackend) that sees no further input within the configured timeout
// should call Timeout to force a standalone Escape key.
func (p *Parser) PendingEscape() bool {
	return p.state == stEsc && len(p.seq) == 1
}

// Timeout forces resolution of a pending lone ESC into a standalone
// Escape key event, per the ~50ms (configurable) disambiguation window.
func (p *Parser) Timeout() []Event {
	if !p.PendingEscape() {
		return nil
	}
	p.reset()
	return []Event{newKeyEvent(KeyEvent{Code: KeyEscape})}
}

func (p *Parser) reset() {
	p.state = stGround
	p.seq = p.seq[:0]
	p.params = p.params[:0]
	p.curParam = 0
	p.haveParam = false
	p.private = 0
	p.intermed = p.intermed[:0]
}

// Feed consumes one byte, returning zero or more events dispatched as a
// result. Multi-byte UTF-8 clusters and multi-byte escape sequences
// accumulate across calls; Feed never panics regardless of input, and
// always eventually returns to Ground (ParseOverflow discards anything
// that grows unreasonably long).
func (p *Parser) Feed(b byte) []Event {
	p.seq = append(p.seq, b)
	if len(p.seq) > maxSeqLen {
		p.reset()
		return nil
	}

	switch p.state {
	case stGround:
		return p.feedGround(b)
	case stEsc:
		return p.feedEsc(b)
	case stCsiEntry, stCsiParam, stCsiIntermediate, stCsiIgnore:
		return p.feedCsi(b)
	case stSs3:
		return p.feedSs3(b)
	case stOscString:
		return p.feedOsc(b)
	case stPasteBody:
		return p.feedPasteBody(b)
	case stX10Mouse:
		return p.feedX10Mouse(b)
	case stDcsPassthrough:
		return p.feedDcs(b)
	default:
		p.reset()
		return nil
	}
}

func (p *Parser) feedGround(b byte) []Event {
	switch {
	case b == 0x1B:
		p.seq = p.seq[:1]
		p.state = stEsc
		return nil
	case b == 0x09:
		p.reset()
		return []Event{newKeyEvent(KeyEvent{Code: KeyTab})}
	case b == 0x0D:
		p.reset()
		return []Event{newKeyEvent(KeyEvent{Code: KeyEnter})}
	case b == 0x7F:
		p.reset()
		return []Event{newKeyEvent(KeyEvent{Code: KeyBackspace})}
	case b < 0x20:
		p.reset()
		return []Event{ctrlKeyEvent(b)}
	case b < 0x80:
		p.reset()
		return []Event{newKeyEvent(KeyEvent{Code: KeyPrintable, Text: string(rune(b))})}
	default:
		return p.feedUtf8Continuation(b)
	}
}

// ctrlKeyEvent maps a C0 control byte that feedGround has not already
// named (Tab, Enter) to a Ctrl+letter key: 0x01 becomes KeyCtrl+'A'.
func ctrlKeyEvent(b byte) Event {
	return newKeyEvent(KeyEvent{Code: KeyCtrl + KeyCode(b+'A'-1), Modifiers: ModCtrl, Text: string(rune(b + 'a' - 1))})
}

// feedUtf8Continuation accumulates bytes of a multi-byte UTF-8 rune. The
// leading byte of the sequence is always the first byte in p.seq because
// Feed appended it before dispatch.
func (p *Parser) feedUtf8Continuation(lead byte) []Event {
	need := utf8SeqLen(p.seq[0])
	if need == 0 {
		// Not a valid UTF-8 lead byte at all; emit a replacement and
		// recover to Ground rather than get stuck.
		p.reset()
		return []Event{newKeyEvent(KeyEvent{Code: KeyPrintable, Text: string(utf8.RuneError)})}
	}
	if len(p.seq) < need {
		return nil
	}
	r, size := utf8.DecodeRune(p.seq)
	out := string(r)
	if size != len(p.seq) || r == utf8.RuneError {
		out = string(utf8.RuneError)
	}
	p.reset()
	return []Event{newKeyEvent(KeyEvent{Code: KeyPrintable, Text: out})}
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0x80 == 0x00:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

func (p *Parser) feedEsc(b byte) []Event {
	switch b {
	case '[':
		p.state = stCsiEntry
		p.params = p.params[:0]
		p.curParam = 0
		p.haveParam = false
		p.private = 0
		p.intermed = p.intermed[:0]
		return nil
	case 'O':
		p.state = stSs3
		return nil
	case ']':
		p.state = stOscString
		p.seq = p.seq[:0]
		return nil
	case 'P':
		p.state = stDcsPassthrough
		p.seq = p.seq[:0]
		return nil
	case 0x1B:
		// ESC ESC: resolve the first as standalone Escape, stay in Esc
		// for the second.
		p.reset()
		p.seq = append(p.seq, 0x1B)
		p.state = stEsc
		return []Event{newKeyEvent(KeyEvent{Code: KeyEscape})}
	default:
		if b >= 0x20 && b < 0x7F {
			// Alt+<printable>: a bare ESC immediately followed by a
			// printable byte, the classic Meta-prefix encoding.
			p.reset()
			return []Event{newKeyEvent(KeyEvent{Code: KeyPrintable, Modifiers: ModAlt, Text: string(rune(b))})}
		}
		p.reset()
		return nil
	}
}

func (p *Parser) feedSs3(b byte) []Event {
	defer p.reset()
	switch b {
	case 'P':
		return []Event{newKeyEvent(KeyEvent{Code: KeyF1})}
	case 'Q':
		return []Event{newKeyEvent(KeyEvent{Code: KeyF2})}
	case 'R':
		return []Event{newKeyEvent(KeyEvent{Code: KeyF3})}
	case 'S':
		return []Event{newKeyEvent(KeyEvent{Code: KeyF4})}
	default:
		return nil
	}
}

func (p *Parser) feedCsi(b byte) []Event {
	switch {
	case b == 'M' && p.state == stCsiEntry && p.private == 0 && p.hasMouseCap:
		// X10 mouse: "ESC [ M b cx cy". The three bytes that follow are
		// raw payload, not CSI syntax, so they must not be run back
		// through the param/intermediate scanner.
		p.state = stX10Mouse
		p.pasteBuf = p.pasteBuf[:0]
		return nil
	case b == '<' && len(p.params) == 0 && !p.haveParam && p.private == 0:
		p.private = '<'
		return nil
	case b == '?' && len(p.params) == 0 && !p.haveParam && p.private == 0:
		p.private = '?'
		return nil
	case b >= '0' && b <= '9':
		p.curParam = p.curParam*10 + int(b-'0')
		p.haveParam = true
		p.state = stCsiParam
		return nil
	case b == ';':
		p.params = append(p.params, p.curParam)
		p.curParam = 0
		p.haveParam = false
		p.state = stCsiParam
		return nil
	case b == '-':
		// Negative values appear in some wheel/extended reports; track
		// via high bit trick is overkill here, so just ignore the sign
		// and keep parsing (coordinates are never meaningfully negative
		// once clipped downstream).
		return nil
	case b >= 0x20 && b <= 0x2F:
		p.intermed = append(p.intermed, b)
		p.state = stCsiIntermediate
		return nil
	case b >= 0x40 && b <= 0x7E:
		if p.haveParam || p.curParam != 0 {
			p.params = append(p.params, p.curParam)
		}
		evs := p.dispatchCsi(b)
		if p.state != stPasteBody { // CSI 200 ~ keeps the paste-body state
			p.reset()
		}
		return evs
	default:
		p.state = stCsiIgnore
		return nil
	}
}

func (p *Parser) dispatchCsi(final byte) []Event {
	if p.private == '<' {
		return p.dispatchSgrMouse(final)
	}
	switch final {
	case 'A':
		return arrowEvent(KeyUp, p.params)
	case 'B':
		return arrowEvent(KeyDown, p.params)
	case 'C':
		return arrowEvent(KeyRight, p.params)
	case 'D':
		return arrowEvent(KeyLeft, p.params)
	case 'H':
		return arrowEvent(KeyHome, p.params)
	case 'F':
		return arrowEvent(KeyEnd, p.params)
	case 'Z':
		return []Event{newKeyEvent(KeyEvent{Code: KeyBacktab, Modifiers: ModShift})}
	case '~':
		return p.dispatchTilde()
	default:
		return nil
	}
}

// modFromParam decodes the "CSI 1;M <letter>" modifier-encoded form,
// where M = 1 + bitmask(Shift=1, Alt=2, Ctrl=4).
func modFromParam(params []int, idx int) Modifiers {
	if len(params) <= idx || params[idx] < 1 {
		return ModNone
	}
	m := params[idx] - 1
	var mod Modifiers
	if m&1 != 0 {
		mod |= ModShift
	}
	if m&2 != 0 {
		mod |= ModAlt
	}
	if m&4 != 0 {
		mod |= ModCtrl
	}
	return mod
}

func arrowEvent(code KeyCode, params []int) []Event {
	mod := ModNone
	if len(params) >= 2 {
		mod = modFromParam(params, 1)
	}
	return []Event{newKeyEvent(KeyEvent{Code: code, Modifiers: mod})}
}

var tildeKeys = map[int]KeyCode{
	1: KeyHome, 2: KeyInsert, 3: KeyDelete, 4: KeyEnd,
	5: KeyPgUp, 6: KeyPgDn,
	11: KeyF1, 12: KeyF2, 13: KeyF3, 14: KeyF4,
	15: KeyF5, 17: KeyF6, 18: KeyF7, 19: KeyF8,
	20: KeyF9, 21: KeyF10, 23: KeyF11, 24: KeyF12,
}

func (p *Parser) dispatchTilde() []Event {
	if len(p.params) == 0 {
		return nil
	}
	n := p.params[0]
	if n == 200 {
		p.state = stPasteBody
		p.pasteBuf = p.pasteBuf[:0]
		return nil
	}
	if n == 201 {
		return nil // stray end marker with no open paste; ignore
	}
	code, ok := tildeKeys[n]
	if !ok {
		return nil
	}
	mod := ModNone
	if len(p.params) >= 2 {
		mod = modFromParam(p.params, 1)
	}
	return []Event{newKeyEvent(KeyEvent{Code: code, Modifiers: mod})}
}

// feedPasteBody accumulates bytes for a bracketed paste until it sees the
// ESC [ 201 ~ terminator, which it must parse out of the incoming stream
// itself since the main CSI path is bypassed while collecting payload.
func (p *Parser) feedPasteBody(b byte) []Event {
	const term = "\x1b[201~"
	p.seq = p.seq[:0] // a paste is bounded by the pasteBuf limit below, not maxSeqLen
	p.pasteBuf = append(p.pasteBuf, b)
	if len(p.pasteBuf) >= len(term) && string(p.pasteBuf[len(p.pasteBuf)-len(term):]) == term {
		payload := p.pasteBuf[:len(p.pasteBuf)-len(term)]
		text := string(payload)
		p.reset()
		p.state = stGround
		return []Event{newPasteEvent(PasteEvent{Text: text})}
	}
	if len(p.pasteBuf) > 1<<20 {
		// Runaway paste; bail out rather than buffer unboundedly.
		p.reset()
		return nil
	}
	return nil
}

// feedX10Mouse collects the three raw payload bytes of "ESC [ M b cx cy"
// (button, then X and Y each encoded as byte-32) and emits the resulting
// MouseEvent once all three have arrived.
func (p *Parser) feedX10Mouse(b byte) []Event {
	p.pasteBuf = append(p.pasteBuf, b)
	if len(p.pasteBuf) < 3 {
		return nil
	}
	btn := int(p.pasteBuf[0]) - 32
	x := int(p.pasteBuf[1]) - 32 - 1
	y := int(p.pasteBuf[2]) - 32 - 1
	p.reset()
	button, mod, _ := decodeMouseButton(btn)
	kind := MousePress
	if btn&0x3 == 3 {
		kind = MouseRelease
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return []Event{newMouseEvent(MouseEvent{X: x, Y: y, Button: button, Kind: kind, Modifiers: mod})}
}

func (p *Parser) dispatchSgrMouse(final byte) []Event {
	if len(p.params) < 3 {
		return nil
	}
	btn, x, y := p.params[0], p.params[1], p.params[2]
	kind := MousePress
	if final == 'm' {
		kind = MouseRelease
	}
	button, mod, isDrag := decodeMouseButton(btn)
	if isDrag && kind == MousePress {
		kind = MouseDrag
	}
	return []Event{newMouseEvent(MouseEvent{
		X: x - 1, Y: y - 1, Button: button, Kind: kind, Modifiers: mod,
	})}
}

// decodeMouseButton unpacks the SGR/X10 button byte: low 2 bits select
// the button (0=Left,1=Middle,2=Right,3=Release-in-X10), bit5 (0x20)
// flags motion, bit6 (0x40) flags a wheel impulse, and bits 2-4 carry
// Shift/Alt/Ctrl.
func decodeMouseButton(btn int) (button MouseButton, mod Modifiers, isDrag bool) {
	if btn&0x4 != 0 {
		mod |= ModShift
	}
	if btn&0x8 != 0 {
		mod |= ModAlt
	}
	if btn&0x10 != 0 {
		mod |= ModCtrl
	}
	isDrag = btn&0x20 != 0
	if btn&0x40 != 0 {
		if btn&1 != 0 {
			return WheelDown, mod, false
		}
		return WheelUp, mod, false
	}
	switch btn & 0x3 {
	case 0:
		return ButtonLeft, mod, isDrag
	case 1:
		return ButtonMiddle, mod, isDrag
	case 2:
		return ButtonRight, mod, isDrag
	default:
		return ButtonNone, mod, isDrag
	}
}

func (p *Parser) feedOsc(b byte) []Event {
	if b == 0x07 || (len(p.seq) >= 2 && p.seq[len(p.seq)-2] == 0x1B && b == '\\') {
		p.reset()
		return nil
	}
	if len(p.seq) > maxSeqLen*4 {
		p.reset()
	}
	return nil
}

func (p *Parser) feedDcs(b byte) []Event {
	if len(p.seq) >= 2 && p.seq[len(p.seq)-2] == 0x1B && b == '\\' {
		p.reset()
		return nil
	}
	if len(p.seq) > maxSeqLen*4 {
		p.reset()
	}
	return nil
}

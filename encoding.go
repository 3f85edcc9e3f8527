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
	"strings"
	"sync"

	"github.com/gdamore/encoding"
	"golang.org/x/text/transform"
)

// asciiFallback substitutes a plain-ASCII glyph for a handful of common
// box-drawing and arrow runes, used when a cell's text can't survive a
// non-Unicode locale's charset at all (CharsetEncoder.Encode returning an
// error) rather than emitting mangled bytes. It is deliberately small:
// full VT100 ACS translation needs a terminfo database this core doesn't
// carry, so this covers only the glyphs common enough to matter.
var asciiFallback = map[rune]string{
	'│': "|", '─': "-", '┌': "+", '┐': "+", '└': "+", '┘': "+",
	'├': "+", '┤': "+", '┬': "+", '┴': "+", '┼': "+",
	'▲': "^", '▼': "v", '◄': "<", '►': ">",
	'•': "o", '█': "#", '░': ":", '▒': "#", '▓': "#",
}

// CharsetEncoder transcodes UTF-8 text to and from a named legacy
// charset (e.g. "ISO-8859-1", "GBK") using gdamore/encoding's
// golang.org/x/text-compatible Encoding lookup. A nil *CharsetEncoder
// (returned for "UTF-8"/"US-ASCII") is a valid no-op passthrough.
type CharsetEncoder struct {
	charset string
	enc     transform.Transformer
	dec     transform.Transformer

	mu       sync.Mutex
	fallback map[rune]string
}

// NewCharsetEncoder resolves charset by name. It returns (nil, nil) for
// "UTF-8" and "US-ASCII", which need no transcoding, and a non-nil error
// only when charset names something gdamore/encoding's registry has
// never heard of.
func NewCharsetEncoder(charset string) (*CharsetEncoder, error) {
	up := strings.ToUpper(charset)
	if up == "" || up == "UTF-8" || up == "US-ASCII" {
		return nil, nil
	}
	enc := encoding.GetEncoding(charset)
	if enc == nil {
		return nil, newError(CapabilityMissing, "NewCharsetEncoder", nil)
	}
	return &CharsetEncoder{charset: charset, enc: enc.NewEncoder(), dec: enc.NewDecoder()}, nil
}

// Encode transcodes s (UTF-8) to the target charset's bytes-as-string
// representation. On any transform failure it re-encodes rune by rune,
// replacing each rune the charset can't encode with its registered or
// asciiFallback substitute, or "?" when it has neither, so a cell never
// silently renders mangled bytes.
func (c *CharsetEncoder) Encode(s string) string {
	if c == nil || c.enc == nil {
		return s
	}
	out, _, err := transform.String(c.enc, s)
	if err == nil {
		return out
	}
	var b strings.Builder
	for _, r := range s {
		if piece, _, err := transform.String(c.enc, string(r)); err == nil {
			b.WriteString(piece)
			continue
		}
		if sub, ok := c.lookupFallback(r); ok {
			b.WriteString(sub)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

// lookupFallback checks a caller-registered substitution before falling
// back to the built-in asciiFallback table.
func (c *CharsetEncoder) lookupFallback(r rune) (string, bool) {
	c.mu.Lock()
	sub, ok := c.fallback[r]
	c.mu.Unlock()
	if ok {
		return sub, true
	}
	sub, ok = asciiFallback[r]
	return sub, ok
}

// RegisterRuneFallback maps r to subst for any charset transcoding that
// can't otherwise represent it, in preference to asciiFallback and ahead
// of giving up and emitting "?". Mirrors tcell's Screen.RegisterRuneFallback;
// a nil receiver (a UTF-8 terminal, which never builds a CharsetEncoder)
// makes this a no-op, since a UTF-8-capable terminal has no encode-time
// substitution path to register into.
func (c *CharsetEncoder) RegisterRuneFallback(r rune, subst string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.fallback == nil {
		c.fallback = make(map[rune]string)
	}
	c.fallback[r] = subst
	c.mu.Unlock()
}

// UnregisterRuneFallback removes a mapping added by RegisterRuneFallback.
func (c *CharsetEncoder) UnregisterRuneFallback(r rune) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.fallback, r)
	c.mu.Unlock()
}

// CanDisplay reports whether r survives this charset's transcoding
// unaided, or (if checkFallbacks) via a registered or built-in fallback.
// A nil receiver (UTF-8) always returns true: there's no transcoding
// step that could fail.
func (c *CharsetEncoder) CanDisplay(r rune, checkFallbacks bool) bool {
	if c == nil || c.enc == nil {
		return true
	}
	if _, _, err := transform.String(c.enc, string(r)); err == nil {
		return true
	}
	if !checkFallbacks {
		return false
	}
	_, ok := c.lookupFallback(r)
	return ok
}

// Decode transcodes bytes-as-string s from the charset back to UTF-8,
// used on the input path for a locale where keyboard input itself
// arrives pre-encoded in something other than UTF-8.
func (c *CharsetEncoder) Decode(s string) string {
	if c == nil || c.dec == nil {
		return s
	}
	out, _, err := transform.String(c.dec, s)
	if err != nil {
		return s
	}
	return out
}

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

// KeyCode identifies a key independent of the modifiers held with it.
type KeyCode int

const (
	KeyPrintable KeyCode = iota
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyInsert
	KeyDelete
	KeyBackspace
	KeyTab
	KeyBacktab
	KeyEnter
	KeyEscape
	// KeyCtrl is the base of a contiguous range: KeyCtrl+'A'..KeyCtrl+'Z'
	// names a named control key (Ctrl+letter).
	KeyCtrl
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModNone Modifiers = 0
)

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// KeyEvent is a single recognized keypress: a code, the modifiers held
// with it, and (for KeyPrintable) the literal text — one rune per event;
// a combining mark arrives as its own event, not joined to its base.
type KeyEvent struct {
	Code      KeyCode
	Modifiers Modifiers
	Text      string
}

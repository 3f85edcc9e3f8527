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

import "time"

// MouseButton identifies which mouse button (if any) an event concerns.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	WheelUp
	WheelDown
)

// MouseEventKind says what happened to MouseButton.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMove
	MouseDrag
)

// MouseEvent is a single mouse report, 0-indexed regardless of how the
// wire protocol that produced it counts.
type MouseEvent struct {
	X, Y      int
	Button    MouseButton
	Kind      MouseEventKind
	Modifiers Modifiers
}

// ResizeEvent reports the terminal's new size in character cells.
type ResizeEvent struct {
	Cols, Rows int
}

// PasteEvent carries the text delimited by a bracketed-paste sequence.
type PasteEvent struct {
	Text string
}

// SignalKind identifies a delivered OS signal surfaced as an event.
type SignalKind int

const (
	SignalSuspend SignalKind = iota
	SignalContinue
	SignalInterrupt
)

// SignalEvent reports a job-control stop or continue. Terminal's SIGTSTP
// handler injects Suspend just before the process stops and Continue
// after it resumes, alongside its own mode teardown and restore, into an
// Input that accepts injected events (AnsiInput does). Nothing in this
// package emits SignalInterrupt; fatal signals run Cleanup instead.
type SignalEvent struct {
	Kind SignalKind
}

// EventKind tags which field of Event is populated.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouse
	EventResize
	EventPaste
	EventSignal
)

// Event is the tagged union delivered by Input.Poll: exactly one of the
// typed fields is meaningful, selected by Kind. At is the time the event
// was generated (used by EventCoalescer to bound its merge window).
type Event struct {
	Kind   EventKind
	Key    KeyEvent
	Mouse  MouseEvent
	Resize ResizeEvent
	Paste  PasteEvent
	Signal SignalEvent
	At     time.Time
}

func newKeyEvent(k KeyEvent) Event   { return Event{Kind: EventKey, Key: k, At: time.Now()} }
func newMouseEvent(m MouseEvent) Event { return Event{Kind: EventMouse, Mouse: m, At: time.Now()} }
func newResizeEvent(r ResizeEvent) Event {
	return Event{Kind: EventResize, Resize: r, At: time.Now()}
}
func newPasteEvent(p PasteEvent) Event { return Event{Kind: EventPaste, Paste: p, At: time.Now()} }
func newSignalEvent(s SignalEvent) Event {
	return Event{Kind: EventSignal, Signal: s, At: time.Now()}
}

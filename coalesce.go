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
	"sync"
	"time"
)

// defaultCoalesceWindow is T_coalesce from the spec: the span over which
// consecutive compatible mouse-move or resize events are merged into one.
const defaultCoalesceWindow = 16 * time.Millisecond

// Coalescer sits between an Input backend and its consumer, merging
// adjacent compatible events within a small window:
//
//   - consecutive Mouse{Kind: MouseMove} events with identical button and
//     modifiers collapse to the most recent;
//   - consecutive Resize events collapse to the last;
//   - nothing else is ever coalesced, and non-Move/Resize events always
//     flush whatever was pending first, preserving order.
//
// The queue this feeds never grows unbounded: mouse-move coalescing is
// the only operation allowed to drop an event when the consumer falls
// behind.
type Coalescer struct {
	mu      sync.Mutex
	window  time.Duration
	pending *Event // a held Move or Resize, not yet delivered
}

// NewCoalescer builds a Coalescer using the given merge window; window
// <= 0 uses the spec default of ~16ms.
func NewCoalescer(window time.Duration) *Coalescer {
	if window <= 0 {
		window = defaultCoalesceWindow
	}
	return &Coalescer{window: window}
}

// Push offers ev to the coalescer. It returns the event(s) that should
// now be delivered to the consumer: zero when ev was absorbed into a
// pending hold, one when ev was delivered immediately or when a Move or
// Resize ev replaced a dissimilar (or expired) pending event that is
// returned in its place, or two when delivering a non-coalescable ev
// first required flushing a pending event.
func (c *Coalescer) Push(ev Event) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !coalescable(ev) {
		out := c.flushLocked()
		return append(out, ev)
	}

	if c.pending == nil {
		p := ev
		c.pending = &p
		return nil
	}

	if sameCoalesceClass(*c.pending, ev) && ev.At.Sub(c.pending.At) < c.window {
		p := ev
		c.pending = &p
		return nil
	}

	// Different class, or the window lapsed: flush the old one and hold
	// the new one.
	out := c.flushLocked()
	p := ev
	c.pending = &p
	return out
}

// Flush forces delivery of whatever is currently held, e.g. when the
// consumer is about to block waiting for the next event and there is no
// reason to keep coalescing further.
func (c *Coalescer) Flush() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *Coalescer) flushLocked() []Event {
	if c.pending == nil {
		return nil
	}
	ev := *c.pending
	c.pending = nil
	return []Event{ev}
}

func coalescable(ev Event) bool {
	switch ev.Kind {
	case EventResize:
		return true
	case EventMouse:
		return ev.Mouse.Kind == MouseMove
	default:
		return false
	}
}

func sameCoalesceClass(a, b Event) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == EventMouse {
		return a.Mouse.Button == b.Mouse.Button && a.Mouse.Modifiers == b.Mouse.Modifiers
	}
	return true // both Resize
}

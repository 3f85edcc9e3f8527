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

// defaultFPS is the frame ceiling a new FpsLimiter uses when none is
// configured: 60Hz is comfortably above what a human eye resolves as
// distinct frames and comfortably below what floods a slow SSH link.
const defaultFPS = 60

// FpsLimiter paces Flush calls against the monotonic clock. Allow refuses
// a call earlier than the frame budget and marks the frame pending; nothing
// re-runs it, so the caller's next permitted flush carries it. Wait, which
// Terminal.Flush uses, instead sleeps out the rest of the budget.
type FpsLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	pending  bool
}

// NewFpsLimiter builds a limiter for the given frames-per-second ceiling.
// fps <= 0 disables pacing (every call is allowed through).
func NewFpsLimiter(fps int) *FpsLimiter {
	f := &FpsLimiter{}
	f.SetFPS(fps)
	return f
}

// SetFPS changes the pacing ceiling at runtime.
func (f *FpsLimiter) SetFPS(fps int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fps <= 0 {
		f.interval = 0
		return
	}
	f.interval = time.Second / time.Duration(fps)
}

// Allow is the non-blocking check: it reports whether a flush may proceed
// right now. A call that returns false marks the frame as pending so the
// next Allow (or Wait) that does fire is known to be coalescing a skipped
// frame, per §4.4's "FpsLimiter guards flush" rule.
func (f *FpsLimiter) Allow(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.interval == 0 || now.Sub(f.last) >= f.interval {
		f.last = now
		f.pending = false
		return true
	}
	f.pending = true
	return false
}

// Pending reports whether a frame was held back by the last Allow check
// and is still waiting to be coalesced into the next permitted flush.
func (f *FpsLimiter) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Wait blocks until the next flush is permitted, honoring the frame
// budget. It is the blocking counterpart to Allow, for callers that want
// to pace themselves to the limiter rather than poll it.
func (f *FpsLimiter) Wait() {
	f.mu.Lock()
	interval, last := f.interval, f.last
	f.mu.Unlock()
	if interval == 0 {
		return
	}
	elapsed := time.Since(last)
	if elapsed < interval {
		time.Sleep(interval - elapsed)
	}
	f.mu.Lock()
	f.last = time.Now()
	f.pending = false
	f.mu.Unlock()
}

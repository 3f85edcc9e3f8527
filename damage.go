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

// DamageRegion tracks the half-open [Start,End) interval of a row's cells
// that differ from the last flushed state. An empty region has Start==End.
//
// Invariant: 0 <= Start <= End <= width for whatever row width is current;
// Buffer.Resize (buffer.go) clamps each retained region when the buffer
// shrinks.
type DamageRegion struct {
	Start, End int
	empty      bool
}

// emptyDamageRegion returns a region containing nothing.
func emptyDamageRegion() DamageRegion {
	return DamageRegion{empty: true}
}

// IsEmpty reports whether the region contains no damaged cells.
func (d DamageRegion) IsEmpty() bool {
	return d.empty || d.Start >= d.End
}

// Expand grows the region to cover [x, x+n), merging with whatever was
// already damaged.
func (d *DamageRegion) Expand(x, n int) {
	if n <= 0 {
		return
	}
	end := x + n
	if d.empty {
		d.Start, d.End, d.empty = x, end, false
		return
	}
	if x < d.Start {
		d.Start = x
	}
	if end > d.End {
		d.End = end
	}
}

// Reset clears the region back to empty.
func (d *DamageRegion) Reset() {
	d.Start, d.End, d.empty = 0, 0, true
}

// Clamp restricts the region to [0,width), discarding anything outside the
// new bound. Used when a row's width shrinks.
func (d *DamageRegion) Clamp(width int) {
	if d.empty {
		return
	}
	if d.Start < 0 {
		d.Start = 0
	}
	if d.End > width {
		d.End = width
	}
	if d.Start >= d.End {
		d.Reset()
	}
}

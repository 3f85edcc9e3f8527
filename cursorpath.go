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
	"fmt"
	"strings"
)

// CursorMove is a byte sequence the CursorPathfinder has chosen to move
// the cursor from one position to another.
type CursorMove struct {
	Bytes []byte
}

// PathfindCursor returns the shortest byte sequence among the candidates
// the spec names for moving the cursor from (cx,cy) to (tx,ty):
// no-op, same-row forward (relative CSI C, or CR+forward, or literal
// spaces when safe), same-column vertical (CSI A/B), a newline walk for a
// small downward delta landing in column 0, and the CSI H absolute jump
// as the universal fallback. canOverwrite reports whether writing a
// literal space at (x,y) would be safe — true only where front==back==
// space with a matching attribute, per the spec's "must not rely on
// cells whose content would be altered by the move" rule.
func PathfindCursor(cx, cy, tx, ty int, canOverwrite func(x, y int) bool) []byte {
	if cx == tx && cy == ty {
		return nil
	}

	absolute := []byte(fmt.Sprintf("\x1b[%d;%dH", ty+1, tx+1))
	best := absolute

	if cy == ty && tx > cx {
		if c := sameRowForward(cx, cy, tx, canOverwrite); len(c) < len(best) {
			best = c
		}
	}
	if cx == tx && ty != cy {
		if c := sameColumnVertical(cy, ty); len(c) > 0 && len(c) < len(best) {
			best = c
		}
	}
	if tx == 0 && ty > cy && ty-cy <= 4 {
		if c := newlineWalk(ty - cy); len(c) < len(best) {
			best = c
		}
	}

	return best
}

func sameRowForward(cx, cy, tx int, canOverwrite func(x, y int) bool) []byte {
	n := tx - cx
	csi := []byte(fmt.Sprintf("\x1b[%dC", n))

	allClean := true
	if canOverwrite != nil {
		for x := cx; x < tx; x++ {
			if !canOverwrite(x, cy) {
				allClean = false
				break
			}
		}
	} else {
		allClean = false
	}
	if allClean {
		spaces := []byte(strings.Repeat(" ", n))
		if len(spaces) < len(csi) {
			return spaces
		}
	}

	crForward := []byte(fmt.Sprintf("\r\x1b[%dC", tx))
	if len(crForward) < len(csi) {
		return crForward
	}
	return csi
}

func sameColumnVertical(cy, ty int) []byte {
	if ty > cy {
		return []byte(fmt.Sprintf("\x1b[%dB", ty-cy))
	}
	return []byte(fmt.Sprintf("\x1b[%dA", cy-ty))
}

func newlineWalk(n int) []byte {
	return []byte(strings.Repeat("\r\n", n))
}

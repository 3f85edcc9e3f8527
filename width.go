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

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// segmentGraphemes splits text into grapheme clusters left to right, the
// unit put_text places one at a time. uniseg.FirstGraphemeClusterInString
// groups base runes with their combining marks and emoji ZWJ sequences
// into a single user-perceived character, which is what a terminal cell
// must hold whole.
func segmentGraphemes(text string) []string {
	var out []string
	state := -1
	for len(text) > 0 {
		var cluster, rest string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		out = append(out, cluster)
		text = rest
	}
	return out
}

// clusterWidth reports the display width (1 or 2) of a grapheme cluster,
// memoized since repeated puts of the same glyphs (box-drawing borders,
// spinner frames) are the common case in a redraw loop.
func clusterWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	if len(cluster) == 1 {
		// ASCII fast path: every printable ASCII byte is width 1, and this
		// covers the overwhelming majority of terminal output.
		if cluster[0] >= 0x20 && cluster[0] < 0x7F {
			return 1
		}
	}
	return widthCache.get(cluster)
}

// widthLRU is a small bounded cache mapping a grapheme cluster to its
// display width, per the "Dynamic grapheme width" design note: memoize
// cluster -> width, bounded so pathological input (a stream of unique
// emoji) can't grow it without limit.
type widthLRU struct {
	mu       sync.Mutex
	cap      int
	m        map[string]int
	order    []string
}

const widthCacheCap = 4096

var widthCache = &widthLRU{cap: widthCacheCap, m: make(map[string]int, widthCacheCap)}

func (w *widthLRU) get(cluster string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if v, ok := w.m[cluster]; ok {
		return v
	}
	width := computeClusterWidth(cluster)
	if len(w.m) >= w.cap {
		// Evict oldest third rather than one-at-a-time LRU bookkeeping;
		// cheap and good enough since clusters recur in bursts.
		evict := w.cap / 3
		for i := 0; i < evict && i < len(w.order); i++ {
			delete(w.m, w.order[i])
		}
		w.order = w.order[evict:]
	}
	w.m[cluster] = width
	w.order = append(w.order, cluster)
	return width
}

func computeClusterWidth(cluster string) int {
	width := 0
	for _, r := range cluster {
		rw := runewidth.RuneWidth(r)
		if rw > width {
			width = rw
		}
	}
	if width == 0 {
		// Combining marks and zero-width joiners alone still occupy the
		// base rune's cell; a bare ZWJ/combining cluster should not
		// collapse a column, so every cluster is floored at 1, control and
		// format characters included.
		width = 1
	}
	return width
}

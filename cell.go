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

// maxClusterBytes bounds a Cell's grapheme cluster: 15 bytes is enough for
// any base rune plus a handful of combining marks or a short ZWJ emoji
// sequence, and keeps Cell a small fixed-size value with no heap pointer.
const maxClusterBytes = 15

// Cell is one character position on the terminal grid: a grapheme cluster,
// its display width, a packed color/style attribute, and a transient dirty
// flag used during writes and cleared after flush.
//
// If a cell is the leading half of a wide character, the immediately
// following cell in the row is a distinguished trailing marker (Width==0,
// Text empty, same Attr). A trailing cell never stands alone; buffer.go
// enforces this invariant on every write.
type Cell struct {
	text    [maxClusterBytes]byte
	textLen uint8
	Width   uint8
	Attr    Attr
	dirty   bool
}

// blankCell is a single space in the default attribute, the value every
// buffer position holds before anything is written to it.
var blankCell = Cell{text: [maxClusterBytes]byte{' '}, textLen: 1, Width: 1}

// trailingCell marks the second column of a wide character. Width 0,
// empty text; it is never addressed directly by an application, only
// produced and consumed internally by DisplayBuffer.
func trailingCell(attr Attr) Cell {
	return Cell{Width: 0, Attr: attr}
}

// Text returns the cell's grapheme cluster as a string. Empty means space
// for a Width==1 cell, or "no content" for a Width==0 trailing marker.
func (c Cell) Text() string {
	if c.textLen == 0 {
		if c.Width == 1 {
			return " "
		}
		return ""
	}
	return string(c.text[:c.textLen])
}

// IsTrailing reports whether c is the trailing half of a wide character.
func (c Cell) IsTrailing() bool {
	return c.Width == 0
}

// setText stores cluster into the cell, truncating defensively if it ever
// exceeds maxClusterBytes (grapheme segmentation in width.go should never
// produce a cluster this long, but a cell must never panic on write).
func (c *Cell) setText(cluster string, width int, attr Attr) {
	n := len(cluster)
	if n > maxClusterBytes {
		n = maxClusterBytes
	}
	c.text = [maxClusterBytes]byte{}
	copy(c.text[:], cluster[:n])
	c.textLen = uint8(n)
	c.Width = uint8(width)
	c.Attr = attr
	c.dirty = true
}

func (c *Cell) setBlank(attr Attr) {
	c.text = [maxClusterBytes]byte{' '}
	c.textLen = 1
	c.Width = 1
	c.Attr = attr
	c.dirty = true
}

func (c *Cell) setTrailing(attr Attr) {
	c.text = [maxClusterBytes]byte{}
	c.textLen = 0
	c.Width = 0
	c.Attr = attr
	c.dirty = true
}

// Equal reports whether two cells would render identically, ignoring the
// dirty flag. DisplayBuffer uses this to decide whether a damaged cell
// actually differs from what is already on screen.
func (c Cell) Equal(o Cell) bool {
	return c.textLen == o.textLen && c.text == o.text && c.Width == o.Width && c.Attr == o.Attr
}

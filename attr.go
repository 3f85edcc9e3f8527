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

// StyleBits is a bitmask of the text-rendition attributes a cell can carry,
// independent of its foreground/background color.
type StyleBits uint8

const (
	StyleBold StyleBits = 1 << iota
	StyleUnderline
	StyleReverse
	StyleItalic
	StyleStrikethrough
)

// Attr packs a cell's foreground color, background color, and style bits
// into a single 64-bit value, laid out as:
//
//	bits 63-62: fg kind   bits 61-38: fg value (24 bits)
//	bits 37-36: bg kind   bits 35-12: bg value (24 bits)
//	bits  7- 0: style bits
//
// Packing keeps a ScreenCell's attribute immutable-value-sized (no pointer
// chasing per cell) and cheap to compare for the "has styling changed since
// last emit" check the reconciliation algorithm performs on every run.
type Attr uint64

const (
	attrFgKindShift   = 62
	attrFgValueShift  = 38
	attrBgKindShift   = 36
	attrBgValueShift  = 12
	attrKindMask      = 0x3
	attrValueMask     = 0xFFFFFF
	attrStyleBitsMask = 0xFF
)

// NewAttr composes an Attr from a foreground color, background color, and
// style bits.
func NewAttr(fg, bg Color, style StyleBits) Attr {
	var a Attr
	a |= Attr(fg.Kind&attrKindMask) << attrFgKindShift
	a |= Attr(fg.Value&attrValueMask) << attrFgValueShift
	a |= Attr(bg.Kind&attrKindMask) << attrBgKindShift
	a |= Attr(bg.Value&attrValueMask) << attrBgValueShift
	a |= Attr(style) & attrStyleBitsMask
	return a
}

// AttrDefault is the zero value: default colors, no style bits.
const AttrDefault Attr = 0

// Decompose unpacks an Attr back into its components.
func (a Attr) Decompose() (fg, bg Color, style StyleBits) {
	fg = Color{
		Kind:  ColorKind(a>>attrFgKindShift) & attrKindMask,
		Value: uint32(a>>attrFgValueShift) & attrValueMask,
	}
	bg = Color{
		Kind:  ColorKind(a>>attrBgKindShift) & attrKindMask,
		Value: uint32(a>>attrBgValueShift) & attrValueMask,
	}
	style = StyleBits(a) & attrStyleBitsMask
	return
}

// Foreground returns a copy of a with its foreground color replaced.
func (a Attr) Foreground(c Color) Attr {
	fg, bg, style := a.Decompose()
	_ = fg
	return NewAttr(c, bg, style)
}

// Background returns a copy of a with its background color replaced.
func (a Attr) Background(c Color) Attr {
	fg, bg, style := a.Decompose()
	_ = bg
	return NewAttr(fg, c, style)
}

// WithStyle returns a copy of a with its style bits replaced wholesale.
func (a Attr) WithStyle(style StyleBits) Attr {
	fg, bg, _ := a.Decompose()
	return NewAttr(fg, bg, style)
}

// Has reports whether all of the given style bits are set.
func (a Attr) Has(bits StyleBits) bool {
	return StyleBits(a)&bits == bits
}

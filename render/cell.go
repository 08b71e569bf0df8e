package render

import (
	"github.com/lixenwraith/sticks/terminal"
)

type paintMode uint8

const (
	paintNone paintMode = iota
	paintRGB
	paintIndex
)

// Paint is a Color resolved for one surface capability
// Comparable, so Cell equality is structural
type Paint struct {
	mode    paintMode
	r, g, b uint8 // palette index lives in r
}

var (
	whiteRGB   = Paint{mode: paintRGB, r: 255, g: 255, b: 255}
	whiteIndex = Paint{mode: paintIndex, r: 255}
)

// ResolveFg resolves a foreground; unset becomes white in either mode
func ResolveFg(c Color, hasRGB bool) Paint {
	if IsDefault(c) {
		if hasRGB {
			return whiteRGB
		}
		return whiteIndex
	}
	return resolve(c, hasRGB)
}

// ResolveBg resolves a background; unset stays unset
func ResolveBg(c Color, hasRGB bool) Paint {
	if IsDefault(c) {
		return Paint{}
	}
	return resolve(c, hasRGB)
}

func resolve(c Color, hasRGB bool) Paint {
	if hasRGB {
		r, g, b := c.RGB()
		return Paint{mode: paintRGB, r: r, g: g, b: b}
	}
	return Paint{mode: paintIndex, r: c.Index256()}
}

// IsSet reports whether the paint emits any sequence
func (p Paint) IsSet() bool {
	return p.mode != paintNone
}

func (p Paint) writeFg(w terminal.ByteWriter) {
	switch p.mode {
	case paintRGB:
		terminal.WriteFgRGB(w, p.r, p.g, p.b)
	case paintIndex:
		terminal.WriteFg256(w, p.r)
	}
}

func (p Paint) writeBg(w terminal.ByteWriter) {
	switch p.mode {
	case paintRGB:
		terminal.WriteBgRGB(w, p.r, p.g, p.b)
	case paintIndex:
		terminal.WriteBg256(w, p.r)
	}
}

// Pos is a cell coordinate, origin top-left
type Pos struct {
	X, Y int
}

// Cell is one glyph with resolved colors; position is the key it is stored under
type Cell struct {
	Glyph rune
	Fg    Paint
	Bg    Paint
}

// NewCell resolves colors for the given capability
func NewCell(glyph rune, fg, bg Color, hasRGB bool) Cell {
	return Cell{Glyph: glyph, Fg: ResolveFg(fg, hasRGB), Bg: ResolveBg(bg, hasRGB)}
}

// style is the grouping key of a refresh
type style struct {
	fg, bg Paint
}

func (c Cell) style() style {
	return style{fg: c.Fg, bg: c.Bg}
}

package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Color is any value that can report itself both as 24-bit RGB and as an xterm-256 index
// The buffer asks for whichever matches the surface capability
type Color interface {
	RGB() (r, g, b uint8)
	Index256() uint8
}

type defaultColor struct{}

func (defaultColor) RGB() (uint8, uint8, uint8) { return 255, 255, 255 }
func (defaultColor) Index256() uint8            { return 255 }

// Default is the unset sentinel: white as foreground, no background at all
// A nil Color means the same
var Default Color = defaultColor{}

// IsDefault reports whether c is the unset sentinel
func IsDefault(c Color) bool {
	return c == nil || c == Default
}

// RGB stores explicit 8-bit color channels
type RGB struct {
	R, G, B uint8
}

// Predefined colors
var (
	Black   = RGB{0, 0, 0}
	White   = RGB{255, 255, 255}
	Red     = RGB{255, 0, 0}
	Green   = RGB{0, 255, 0}
	Blue    = RGB{0, 0, 255}
	Yellow  = RGB{255, 255, 0}
	Cyan    = RGB{0, 255, 255}
	Magenta = RGB{255, 0, 255}
	Gray    = RGB{128, 128, 128}
)

// RGB implements Color
func (c RGB) RGB() (uint8, uint8, uint8) {
	return c.R, c.G, c.B
}

// Index256 returns the nearest palette entry
func (c RGB) Index256() uint8 {
	if v, ok := paletteCache.Load(c); ok {
		return v.(uint8)
	}
	found := tcell.FindColor(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)), palette256)
	idx := paletteIndexOf(found)
	paletteCache.Store(c, idx)
	return idx
}

// Index is an xterm-256 palette entry
type Index uint8

// RGB returns the xterm default value of the palette entry
func (i Index) RGB() (uint8, uint8, uint8) {
	r, g, b := tcell.PaletteColor(int(i)).RGB()
	return uint8(r), uint8(g), uint8(b)
}

// Index256 implements Color
func (i Index) Index256() uint8 {
	return uint8(i)
}

// FromTcell adapts a tcell color; invalid and default colors map to Default
func FromTcell(c tcell.Color) Color {
	if !c.Valid() {
		return Default
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		return RGB{uint8(r), uint8(g), uint8(b)}
	}
	return Index(paletteIndexOf(c))
}

// Named resolves a W3C/X11 color name or "#rrggbb"; unknown names map to Default
func Named(name string) Color {
	return FromTcell(tcell.GetColor(name))
}

var (
	palette256   = buildPalette()
	paletteCache sync.Map // RGB -> uint8
)

func buildPalette() []tcell.Color {
	p := make([]tcell.Color, 256)
	for i := range p {
		p[i] = tcell.PaletteColor(i)
	}
	return p
}

func paletteIndexOf(c tcell.Color) uint8 {
	return uint8(c - tcell.ColorValid)
}

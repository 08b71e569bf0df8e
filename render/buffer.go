// @lixen: #focus{sys[render,diff]}
package render

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"github.com/lixenwraith/sticks/terminal"
)

// Surface is the output side of a display; *terminal.Surface implements it
type Surface interface {
	io.Writer
	Size() (width, height int)
	HasRGB() bool
	// Epoch changes whenever the screen was fully cleared
	Epoch() uint64
}

// FrameStats describes the last refresh
type FrameStats struct {
	Groups  int // color-set sequences emitted
	Changed int // cells emitted
	Kept    int // cells carried over unchanged
	Stale   int // cells painted last frame and not this one
	Dropped int // pending cells outside the surface
	Bytes   int
}

// Buffer accumulates writes per frame and emits only what changed since the last refresh
type Buffer struct {
	mu      sync.Mutex
	surface Surface

	front   map[Pos]Cell // painted by the previous refresh
	pending map[Pos]Cell // requested since the previous refresh
	epoch   uint64

	out   bytes.Buffer // reused frame assembly
	stats FrameStats
}

// NewBuffer creates a buffer painting onto s
func NewBuffer(s Surface) *Buffer {
	return &Buffer{
		surface: s,
		front:   make(map[Pos]Cell),
		pending: make(map[Pos]Cell),
		epoch:   s.Epoch(),
	}
}

// Write queues text starting at (x, y), one cell per character, last write wins per cell
// Coordinates are not bounds-checked here; off-surface cells are dropped at refresh
func (b *Buffer) Write(y, x int, text string, fg, bg Color) {
	hasRGB := b.surface.HasRGB()
	fgp, bgp := ResolveFg(fg, hasRGB), ResolveBg(bg, hasRGB)
	text = norm.NFC.String(text)

	b.mu.Lock()
	defer b.mu.Unlock()

	col := x
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.pending[Pos{X: col, Y: y}] = Cell{Glyph: r, Fg: fgp, Bg: bgp}
		col += w
	}
}

// Print writes any value formatted with fmt.Sprint
func (b *Buffer) Print(y, x int, v any, fg, bg Color) {
	b.Write(y, x, fmt.Sprint(v), fg, bg)
}

// Refresh paints pending changes, grouped by color pair, and handles cells left over
// from the previous frame: with clearUnpainted they are overwritten by fill, otherwise
// left on screen. Either way they leave the bookkeeping.
func (b *Buffer) Refresh(clearUnpainted bool, fill rune) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if fill == 0 || runewidth.RuneWidth(fill) != 1 {
		fill = ' '
	}

	// Screen was cleared behind our back, nothing from the previous frame is visible
	if e := b.surface.Epoch(); e != b.epoch {
		b.epoch = e
		clear(b.front)
	}

	width, height := b.surface.Size()
	stats := FrameStats{}

	positions := make([]Pos, 0, len(b.pending))
	for pos := range b.pending {
		positions = append(positions, pos)
	}
	slices.SortFunc(positions, rowMajor)

	next := make(map[Pos]Cell, len(b.pending))
	var order []style
	groups := make(map[style][]Pos)

	for _, pos := range positions {
		if pos.X < 0 || pos.Y < 0 || pos.X >= width || pos.Y >= height {
			stats.Dropped++
			continue
		}
		cell := b.pending[pos]
		next[pos] = cell

		if prev, ok := b.front[pos]; ok && prev == cell {
			stats.Kept++
			continue
		}

		st := cell.style()
		if _, ok := groups[st]; !ok {
			order = append(order, st)
		}
		groups[st] = append(groups[st], pos)
	}

	w := &b.out
	w.Reset()

	for _, st := range order {
		if st.bg.IsSet() {
			st.fg.writeFg(w)
			st.bg.writeBg(w)
		} else {
			terminal.WriteReset(w)
			st.fg.writeFg(w)
		}
		stats.Groups++

		for _, pos := range groups[st] {
			terminal.WriteCursorPos(w, pos.X, pos.Y)
			writeGlyph(w, next[pos].Glyph)
			stats.Changed++
		}
	}

	var stale []Pos
	for pos := range b.front {
		if _, ok := next[pos]; !ok {
			stale = append(stale, pos)
		}
	}
	stats.Stale = len(stale)

	if clearUnpainted && len(stale) > 0 {
		slices.SortFunc(stale, rowMajor)
		terminal.WriteReset(w)
		for _, pos := range stale {
			if pos.X >= width || pos.Y >= height {
				continue
			}
			terminal.WriteCursorPos(w, pos.X, pos.Y)
			writeGlyph(w, fill)
		}
	}

	if w.Len() > 0 {
		terminal.WriteReset(w)
	}
	stats.Bytes = w.Len()

	b.pending = make(map[Pos]Cell)

	if w.Len() > 0 {
		if _, err := b.surface.Write(w.Bytes()); err != nil {
			// What reached the terminal is unknown, repaint everything next frame
			b.front = make(map[Pos]Cell)
			b.stats = stats
			return fmt.Errorf("refresh: %w", err)
		}
	}

	b.front = next
	b.stats = stats
	return nil
}

// Frame returns a copy of the cells painted by the last refresh
func (b *Buffer) Frame() map[Pos]Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.front)
}

// Pending returns a copy of the cells queued for the next refresh
func (b *Buffer) Pending() map[Pos]Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.pending)
}

// Stats returns the statistics of the last refresh
func (b *Buffer) Stats() FrameStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Size returns the surface geometry
func (b *Buffer) Size() (int, int) {
	return b.surface.Size()
}

// HasRGB reports the color capability colors are resolved against
func (b *Buffer) HasRGB() bool {
	return b.surface.HasRGB()
}

func rowMajor(a, b Pos) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

func writeGlyph(w *bytes.Buffer, r rune) {
	if r < utf8.RuneSelf {
		w.WriteByte(byte(r))
		return
	}
	w.WriteRune(r)
}

package engine

import (
	"strings"
	"sync"

	"github.com/lixenwraith/sticks/config"
)

// DebugLog shows the most recent log lines at the top of the screen
// Visibility toggles when the configured key is read
type DebugLog struct {
	Base

	mu      sync.Mutex
	key     int
	max     int
	lines   []string
	visible bool
}

// NewDebugLog creates a hidden overlay; pass the result to Registry.Create
func NewDebugLog(cfg config.DebugConfig) *DebugLog {
	return &DebugLog{
		key: cfg.ToggleKey,
		max: max(cfg.Lines, 0),
	}
}

// Append adds a line, dropping the oldest past the cap
func (d *DebugLog) Append(msg string) {
	msg = strings.ReplaceAll(msg, "\n", " ")

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.max == 0 {
		return
	}
	if len(d.lines) == d.max {
		copy(d.lines, d.lines[1:])
		d.lines = d.lines[:d.max-1]
	}
	d.lines = append(d.lines, msg)
}

// Lines returns a copy of the retained lines, oldest first
func (d *DebugLog) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...)
}

// Visible reports whether the overlay is drawn
func (d *DebugLog) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

// SetVisible shows or hides the overlay
func (d *DebugLog) SetVisible(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = v
}

func (d *DebugLog) Update() {
	g := d.Game()
	if g == nil || !g.KeyPressed(d.key) {
		return
	}
	d.mu.Lock()
	d.visible = !d.visible
	d.mu.Unlock()
}

func (d *DebugLog) Render() {
	g := d.Game()
	if g == nil || g.Screen() == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.visible {
		return
	}
	for row, line := range d.lines {
		g.Screen().Write(row, 0, line, nil, nil)
	}
}

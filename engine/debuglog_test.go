package engine

import (
	"testing"

	"github.com/lixenwraith/sticks/config"
	"github.com/lixenwraith/sticks/render"
)

func TestDebugLogLineCap(t *testing.T) {
	d := NewDebugLog(config.DebugConfig{ToggleKey: '`', Lines: 5})
	for _, msg := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		d.Append(msg)
	}

	lines := d.Lines()
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines, got %d", len(lines))
	}
	if lines[0] != "3" || lines[4] != "7" {
		t.Errorf("Expected lines 3..7, got %v", lines)
	}
}

func TestDebugLogZeroLines(t *testing.T) {
	d := NewDebugLog(config.DebugConfig{Lines: 0})
	d.Append("dropped")
	if len(d.Lines()) != 0 {
		t.Error("Expected nothing retained")
	}
}

func TestDebugLogFlattensNewlines(t *testing.T) {
	d := NewDebugLog(config.DebugConfig{Lines: 2})
	d.Append("a\nb")
	if got := d.Lines()[0]; got != "a b" {
		t.Errorf("Expected flattened line, got %q", got)
	}
}

func TestDebugLogToggleAndRender(t *testing.T) {
	screen := render.NewBuffer(&memSurface{})
	keys := &scriptedKeys{keys: []int{'`', 'x', '`'}}
	g := New(config.Default(), Deps{Screen: screen, Input: keys})

	g.Log("first")
	g.Log("second")

	// Toggle on, both lines drawn on rows 0 and 1
	if err := g.StepVariable(); err != nil {
		t.Fatal(err)
	}
	frame := screen.Frame()
	if c, ok := frame[render.Pos{X: 0, Y: 0}]; !ok || c.Glyph != 'f' {
		t.Errorf("Expected 'f' at row 0, got %+v", c)
	}
	if c, ok := frame[render.Pos{X: 0, Y: 1}]; !ok || c.Glyph != 's' {
		t.Errorf("Expected 's' at row 1, got %+v", c)
	}

	// Other key keeps it visible
	if err := g.StepVariable(); err != nil {
		t.Fatal(err)
	}
	if len(screen.Frame()) == 0 {
		t.Error("Expected overlay still drawn")
	}

	// Toggle off, stale cells cleared from the frame
	if err := g.StepVariable(); err != nil {
		t.Fatal(err)
	}
	if len(screen.Frame()) != 0 {
		t.Errorf("Expected empty frame after hiding, got %d cells", len(screen.Frame()))
	}
}

func TestLogReusesOverlay(t *testing.T) {
	g := New(config.Default(), Deps{})
	g.Log("a")
	g.Log("b")
	if g.Registry().Len() != 1 {
		t.Fatalf("Expected a single overlay object, got %d", g.Registry().Len())
	}

	// Destroyed overlay is recreated on the next line
	g.Registry().Snapshot().Each(func(o Object) { g.Destroy(o.ID()) })
	g.Log("c")
	if g.Registry().Len() != 1 {
		t.Errorf("Expected overlay recreated, got %d objects", g.Registry().Len())
	}
}

package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeGeometry lets tests drive what the OS reports on resize
type fakeGeometry struct {
	w, h int
	err  error
}

func (g *fakeGeometry) size() (int, int, error) {
	return g.w, g.h, g.err
}

func newTestSurface(t *testing.T, geo *fakeGeometry, opts ...Option) (*Surface, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithColorMode(ColorModeTrueColor)}, opts...)
	s := newSurface(&out, geo.size, opts...)
	s.width, s.height = geo.w, geo.h
	s.opened = true
	return s, &out
}

func TestClearBumpsEpoch(t *testing.T) {
	s, out := newTestSurface(t, &fakeGeometry{w: 80, h: 24})
	before := s.Epoch()

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if s.Epoch() != before+1 {
		t.Errorf("Expected epoch %d, got %d", before+1, s.Epoch())
	}
	if !strings.Contains(out.String(), "\x1b[2J") {
		t.Errorf("Expected clear sequence, got %q", out.String())
	}
}

func TestResizeRecomputesGeometryAndClears(t *testing.T) {
	geo := &fakeGeometry{w: 80, h: 24}
	s, out := newTestSurface(t, geo)
	before := s.Epoch()

	geo.w, geo.h = 120, 40
	s.handleResize()

	w, h := s.Size()
	if w != 120 || h != 40 {
		t.Errorf("Expected 120x40 after resize, got %dx%d", w, h)
	}
	if s.Epoch() != before+1 {
		t.Errorf("Expected epoch to advance on resize")
	}
	if !strings.Contains(out.String(), "\x1b[2J") {
		t.Errorf("Expected full clear after resize, got %q", out.String())
	}
}

func TestResizeClampsDegenerateGeometry(t *testing.T) {
	geo := &fakeGeometry{w: 80, h: 24}
	s, _ := newTestSurface(t, geo)

	geo.w, geo.h = -3, -1
	s.handleResize()

	w, h := s.Size()
	if w != 0 || h != 0 {
		t.Errorf("Expected clamped 0x0, got %dx%d", w, h)
	}
}

func TestResizeErrorKeepsGeometry(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	geo := &fakeGeometry{w: 80, h: 24}
	s, out := newTestSurface(t, geo, WithLogger(zap.New(core)))
	before := s.Epoch()

	geo.err = errors.New("ioctl failed")
	s.handleResize()

	w, h := s.Size()
	if w != 80 || h != 24 {
		t.Errorf("Expected previous geometry 80x24, got %dx%d", w, h)
	}
	if s.Epoch() != before {
		t.Errorf("Expected epoch unchanged on failed resize")
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output on failed resize, got %q", out.String())
	}
	if logs.Len() != 1 {
		t.Errorf("Expected one warning, got %d", logs.Len())
	}
}

func TestResizeIgnoredWhilePaused(t *testing.T) {
	geo := &fakeGeometry{w: 80, h: 24}
	s, _ := newTestSurface(t, geo)

	if err := s.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	epoch := s.Epoch()

	geo.w, geo.h = 10, 10
	s.handleResize()

	w, h := s.Size()
	if w != 80 || h != 24 {
		t.Errorf("Expected geometry untouched while paused, got %dx%d", w, h)
	}
	if s.Epoch() != epoch {
		t.Errorf("Expected epoch untouched while paused")
	}
}

func TestPauseDropsWritesAndLeavesAltScreen(t *testing.T) {
	s, out := newTestSurface(t, &fakeGeometry{w: 80, h: 24})

	if err := s.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if !strings.Contains(out.String(), "\x1b[?1049l") {
		t.Errorf("Expected alternate screen exit on pause, got %q", out.String())
	}

	out.Reset()
	n, err := s.Write([]byte("hidden"))
	if err != nil || n != len("hidden") {
		t.Errorf("Expected paused write to report success, got n=%d err=%v", n, err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected paused write to be dropped, got %q", out.String())
	}
}

func TestCloseRestoresAndIsIdempotent(t *testing.T) {
	s, out := newTestSurface(t, &fakeGeometry{w: 80, h: 24})

	if err := s.Close(true); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got := out.String()
	for _, seq := range []string{"\x1b[?1049l", "\x1b[?25h", "\x1b[0m", closeNotice} {
		if !strings.Contains(got, seq) {
			t.Errorf("Expected %q in close output %q", seq, got)
		}
	}

	out.Reset()
	if err := s.Close(true); err != nil {
		t.Errorf("Second Close returned error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected second Close to write nothing, got %q", out.String())
	}

	if _, err := s.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
}

func TestHasRGBFollowsColorMode(t *testing.T) {
	s, _ := newTestSurface(t, &fakeGeometry{w: 1, h: 1}, WithColorMode(ColorMode256))
	if s.HasRGB() {
		t.Error("Expected HasRGB false in 256 mode")
	}
	s, _ = newTestSurface(t, &fakeGeometry{w: 1, h: 1})
	if !s.HasRGB() {
		t.Error("Expected HasRGB true in truecolor mode")
	}
}

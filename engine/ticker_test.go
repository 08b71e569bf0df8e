package engine

import (
	"testing"
	"time"
)

func TestTickerOnSchedule(t *testing.T) {
	clock := NewMockTimeProvider(time.Unix(0, 0))
	tk := newTicker(50*time.Millisecond, clock.Now)

	clock.Advance(10 * time.Millisecond)
	if wait := tk.advance(); wait != 40*time.Millisecond {
		t.Errorf("Expected 40ms wait, got %v", wait)
	}
}

func TestTickerLateTickRunsImmediately(t *testing.T) {
	clock := NewMockTimeProvider(time.Unix(0, 0))
	tk := newTicker(50*time.Millisecond, clock.Now)

	// Tick took 80ms: next deadline (50ms) already passed
	clock.Advance(80 * time.Millisecond)
	if wait := tk.advance(); wait != 0 {
		t.Errorf("Expected no wait, got %v", wait)
	}

	// Catching up keeps the original schedule
	clock.Advance(5 * time.Millisecond)
	if wait := tk.advance(); wait != 15*time.Millisecond {
		t.Errorf("Expected 15ms wait to the 100ms deadline, got %v", wait)
	}
}

func TestTickerResetsWhenFarBehind(t *testing.T) {
	clock := NewMockTimeProvider(time.Unix(0, 0))
	tk := newTicker(50*time.Millisecond, clock.Now)

	clock.Advance(time.Second)
	if wait := tk.advance(); wait != 50*time.Millisecond {
		t.Errorf("Expected schedule restart with full interval, got %v", wait)
	}
}

func TestTickerInvalidInterval(t *testing.T) {
	tk := newTicker(0, time.Now)
	if tk.interval != time.Second {
		t.Errorf("Expected fallback interval 1s, got %v", tk.interval)
	}
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Unix(100, 0)
	m := NewMockTimeProvider(start)

	m.Advance(time.Second)
	if !m.Now().Equal(start.Add(time.Second)) {
		t.Errorf("Expected advanced time, got %v", m.Now())
	}
	m.SetTime(start)
	if !m.Now().Equal(start) {
		t.Errorf("Expected reset time, got %v", m.Now())
	}
}

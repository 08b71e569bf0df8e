//go:build unix

package terminal

import (
	"os"
	"testing"
	"time"
)

type countingClearer struct {
	clears int
}

func (c *countingClearer) Clear() error {
	c.clears++
	return nil
}

func newPipeInput(t *testing.T, c Clearer) (*Input, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return NewInput(int(r.Fd()), c), w
}

func TestPollTimeoutReturnsNoKey(t *testing.T) {
	in, _ := newPipeInput(t, nil)

	start := time.Now()
	key, err := in.Poll(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if key != NoKey {
		t.Errorf("Expected NoKey, got %d", key)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Errorf("Expected Poll to wait for the timeout")
	}
}

func TestPollReturnsByteAndFlushesRest(t *testing.T) {
	in, w := newPipeInput(t, nil)

	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}

	key, err := in.Poll(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if key != 'a' {
		t.Errorf("Expected 'a', got %d", key)
	}

	// Buffered "bc" must not leak into the next poll
	key, err = in.Poll(0)
	if err != nil {
		t.Fatalf("second Poll failed: %v", err)
	}
	if key != NoKey {
		t.Errorf("Expected NoKey after flush, got %d", key)
	}
}

func TestRedrawKeyClears(t *testing.T) {
	c := &countingClearer{}
	in, w := newPipeInput(t, c)

	w.Write([]byte{KeyRedraw})
	key, err := in.Poll(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if key != KeyRedraw {
		t.Errorf("Expected form feed, got %d", key)
	}
	if c.clears != 1 {
		t.Errorf("Expected one clear, got %d", c.clears)
	}

	w.Write([]byte("x"))
	in.Poll(100 * time.Millisecond)
	if c.clears != 1 {
		t.Errorf("Expected no clear for ordinary key, got %d", c.clears)
	}
}

func TestFlushDiscardsUnread(t *testing.T) {
	in, w := newPipeInput(t, nil)

	w.Write([]byte("zzzz"))
	if err := in.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	key, _ := in.Poll(0)
	if key != NoKey {
		t.Errorf("Expected NoKey after Flush, got %d", key)
	}
}

func TestTimeoutMillis(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{-time.Second, 0},
		{0, 0},
		{time.Microsecond, 1},
		{33 * time.Millisecond, 33},
		{time.Second, 1000},
	}
	for _, tt := range tests {
		if got := timeoutMillis(tt.d); got != tt.want {
			t.Errorf("timeoutMillis(%v): expected %d, got %d", tt.d, tt.want, got)
		}
	}
}

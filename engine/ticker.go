package engine

import "time"

// ticker paces one loop at a target interval with drift correction
// A tick that runs long makes the next one start late; ticks are never skipped
type ticker struct {
	interval time.Duration
	deadline time.Time
	now      func() time.Time
}

// newTicker creates a ticker whose first deadline is immediate
func newTicker(interval time.Duration, now func() time.Time) *ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &ticker{
		interval: interval,
		deadline: now(),
		now:      now,
	}
}

// advance moves to the next deadline and returns how long to sleep until it
func (t *ticker) advance() time.Duration {
	now := t.now()
	t.deadline = t.deadline.Add(t.interval)

	// Too far behind to catch up, restart the schedule from now
	maxBehind := t.interval * 2
	if now.Sub(t.deadline) > maxBehind {
		t.deadline = now.Add(t.interval)
	}

	wait := t.deadline.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait
}

package status

import (
	"math"
	"sync/atomic"
)

// Float is an atomic float64 stored as bits
// Zero value is ready to use (represents 0.0)
type Float struct {
	bits atomic.Uint64
}

// Store sets the value
func (f *Float) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Load returns the value
func (f *Float) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Smooth folds sample into an exponential moving average with weight alpha
// The first sample on a zero value is taken as is
func (f *Float) Smooth(sample, alpha float64) float64 {
	for {
		old := f.bits.Load()
		prev := math.Float64frombits(old)
		next := sample
		if old != 0 {
			next = prev + alpha*(sample-prev)
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

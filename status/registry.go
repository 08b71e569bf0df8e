package status

import (
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
)

// table maps metric names to stable pointers
// Lookup takes a lock; callers cache the pointer and update it lock-free
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func (t *table[T]) get(name string) *T {
	t.mu.RLock()
	ptr, ok := t.items[name]
	t.mu.RUnlock()
	if ok {
		return ptr
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if ptr, ok := t.items[name]; ok {
		return ptr
	}
	if t.items == nil {
		t.items = make(map[string]*T)
	}
	ptr = new(T)
	t.items[name] = ptr
	return ptr
}

func (t *table[T]) names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.items))
	for name := range t.items {
		names = append(names, name)
	}
	return names
}

// Registry holds named counters and gauges for the running game
type Registry struct {
	ints   table[atomic.Int64]
	floats table[Float]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Int returns the counter for name, creating it on first use
func (r *Registry) Int(name string) *atomic.Int64 {
	return r.ints.get(name)
}

// Float returns the gauge for name, creating it on first use
func (r *Registry) Float(name string) *Float {
	return r.floats.get(name)
}

// Each visits every metric in name order with its value formatted
func (r *Registry) Each(fn func(name, value string)) {
	type kv struct{ name, value string }
	var all []kv
	for _, name := range r.ints.names() {
		all = append(all, kv{name, strconv.FormatInt(r.Int(name).Load(), 10)})
	}
	for _, name := range r.floats.names() {
		all = append(all, kv{name, strconv.FormatFloat(r.Float(name).Load(), 'f', 1, 64)})
	}
	slices.SortFunc(all, func(a, b kv) int {
		if a.name < b.name {
			return -1
		}
		if a.name > b.name {
			return 1
		}
		return 0
	})
	for _, m := range all {
		fn(m.name, m.value)
	}
}

// Len returns the number of registered metrics
func (r *Registry) Len() int {
	return len(r.ints.names()) + len(r.floats.names())
}

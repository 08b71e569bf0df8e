package engine

import (
	"cmp"
	"slices"
	"sync"
)

type entry struct {
	obj Object
	seq uint64
}

// Registry owns live objects by identity
// Safe for concurrent use; iteration goes through Snapshot
type Registry struct {
	mu      sync.RWMutex
	owner   *Game
	objects map[ID]entry
	seq     uint64
}

// NewRegistry creates an empty registry whose objects report owner as their game
func NewRegistry(owner *Game) *Registry {
	return &Registry{
		owner:   owner,
		objects: make(map[ID]entry),
	}
}

// Create constructs an object, assigns its identity, inserts it and runs Start
// Start runs outside the lock so it may create or destroy other objects
func (r *Registry) Create(factory Factory) Object {
	obj := factory()
	if obj == nil {
		panic("engine: factory returned nil object")
	}
	b := obj.base()

	r.mu.Lock()
	id := NewID()
	for {
		if _, taken := r.objects[id]; !taken {
			break
		}
		id = NewID()
	}
	b.id, b.game, b.reg = id, r.owner, r
	r.seq++
	r.objects[id] = entry{obj: obj, seq: r.seq}
	r.mu.Unlock()

	obj.Start()
	return obj
}

// Spawn is the typed form of Create
func Spawn[T Object](r *Registry, factory func() T) T {
	return r.Create(func() Object { return factory() }).(T)
}

// Destroy removes the object immediately without invoking any hook
func (r *Registry) Destroy(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[id]; !ok {
		return false
	}
	delete(r.objects, id)
	return true
}

// Get looks up a live object
func (r *Registry) Get(id ID) (Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.objects[id]
	return e.obj, ok
}

// Len returns the number of live objects
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// Snapshot copies the live set in creation order
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.objects))
	for _, e := range r.objects {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	objs := make([]Object, len(entries))
	for i, e := range entries {
		objs[i] = e.obj
	}
	return Snapshot{objs: objs}
}

// Snapshot is an iteration-stable view of a registry at one point in time
// Later creation or destruction never changes it
type Snapshot struct {
	objs []Object
}

// Each calls fn for every object in creation order
func (s Snapshot) Each(fn func(Object)) {
	for _, obj := range s.objs {
		fn(obj)
	}
}

// Len returns the number of objects captured
func (s Snapshot) Len() int {
	return len(s.objs)
}

// Get looks up an object captured by the snapshot
func (s Snapshot) Get(id ID) (Object, bool) {
	for _, obj := range s.objs {
		if obj.ID() == id {
			return obj, true
		}
	}
	return nil, false
}

// IDs returns the captured identities in creation order
func (s Snapshot) IDs() []ID {
	ids := make([]ID, len(s.objs))
	for i, obj := range s.objs {
		ids[i] = obj.ID()
	}
	return ids
}

package engine

// Object is a schedulable unit owned by a Registry
// Implementations embed Base and override the hooks they need
type Object interface {
	ID() ID
	Start()
	Update()
	LateUpdate()
	FixedUpdate()
	Render()

	base() *Base
}

// Factory constructs an object for Registry.Create
type Factory func() Object

// Base carries identity and the back-reference to the owning game
// Objects never hold other objects directly; lookups go through Game.Find by ID
type Base struct {
	id   ID
	game *Game
	reg  *Registry
}

// ID returns the identity assigned at creation
func (b *Base) ID() ID { return b.id }

// Game returns the owning game, nil for a registry used standalone
func (b *Base) Game() *Game { return b.game }

// Destroy removes the object from its registry; no hook runs
func (b *Base) Destroy() bool {
	if b.reg == nil {
		return false
	}
	return b.reg.Destroy(b.id)
}

func (b *Base) Start()       {}
func (b *Base) Update()      {}
func (b *Base) LateUpdate()  {}
func (b *Base) FixedUpdate() {}
func (b *Base) Render()      {}

func (b *Base) base() *Base { return b }

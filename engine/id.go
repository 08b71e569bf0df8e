package engine

import "github.com/google/uuid"

// ID identifies an object for its whole lifetime
type ID uuid.UUID

// NewID returns a fresh random identity
func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id was never assigned
func (id ID) IsZero() bool {
	return id == ID(uuid.Nil)
}

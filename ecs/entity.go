package ecs

import "fmt"

// Entity is a stable, generational entity identifier. The low 32 bits hold
// the slot index (starting at 1) and the high 32 bits the slot generation,
// so a handle to a destroyed entity never aliases its slot's next occupant.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

// NilEntity is the zero handle. It is never alive.
const NilEntity Entity = 0

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// Index returns the slot index of the entity.
func (e Entity) Index() uint32 {
	return uint32(e.id())
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.id(), e.generation())
}

// Valid reports whether the handle is non-zero. It does not check liveness.
func (e Entity) Valid() bool {
	return e.id() > 0
}

package ecs

import (
	"github.com/milk9111/onager2d/ecs/component"
)

var (
	ErrEntityNotAlive       = component.ErrEntityNotAlive
	ErrNilComponent         = component.ErrNilComponent
	ErrInvalidComponentKind = component.ErrInvalidComponentKind
)

// ChangeOp identifies a component mutation reported to observers.
type ChangeOp uint8

const (
	ComponentAdded ChangeOp = iota + 1
	ComponentUpdated
	ComponentRemoved
)

func (op ChangeOp) String() string {
	switch op {
	case ComponentAdded:
		return "added"
	case ComponentUpdated:
		return "updated"
	case ComponentRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Observer is notified synchronously when a component of one kind changes.
type Observer func(e Entity, op ChangeOp)

// World owns entities, component stores, observers, systems and the event queue.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]*SparseSet
	observers map[component.ComponentID][]Observer
	scheduler *Scheduler
	events    EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:    make(map[component.ComponentID]*SparseSet),
		observers: make(map[component.ComponentID][]Observer),
		scheduler: NewScheduler(),
	}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e, notifying observers, and then
// frees the entity. It returns false if e is not alive.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	id := int(e.id())
	for kind, store := range w.stores {
		if store.Remove(id) {
			w.notify(kind, e, ComponentRemoved)
		}
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns all live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.scheduler.Add(s)
}

// Systems returns the registered systems in update order.
func (w *World) Systems() []System {
	if w == nil {
		return nil
	}
	return w.scheduler.Systems()
}

// Update runs all systems once and then dispatches queued events.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.scheduler.Update(w)
	w.events.flush()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	s := w.stores[id]
	if s == nil && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

func (w *World) notify(id component.ComponentID, e Entity, op ChangeOp) {
	for _, fn := range w.observers[id] {
		fn(e, op)
	}
}

// entityFromID maps a dense slot id back to its live handle.
func (w *World) entityFromID(id int) Entity {
	return w.entities.entity(id)
}

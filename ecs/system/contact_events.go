package system

import (
	"slices"

	"github.com/milk9111/onager2d/collision"
	"github.com/milk9111/onager2d/ecs"
)

// ContactTracker remembers which entity pairs were touching on the previous
// tick so that begin and end transitions are reported exactly once.
type ContactTracker struct {
	active map[collision.PairKey]collision.Contact
	seen   map[collision.PairKey]struct{}
}

func NewContactTracker() *ContactTracker {
	return &ContactTracker{
		active: make(map[collision.PairKey]collision.Contact),
		seen:   make(map[collision.PairKey]struct{}),
	}
}

// Update consumes one tick's contacts. began holds pairs that were not active
// before, in input order; ended holds pairs missing from this tick, ordered
// by key.
func (t *ContactTracker) Update(contacts []collision.Contact) (began, ended []collision.Contact) {
	clear(t.seen)
	for _, c := range contacts {
		k := c.Key()
		if _, dup := t.seen[k]; dup {
			continue
		}
		t.seen[k] = struct{}{}
		if _, ok := t.active[k]; !ok {
			began = append(began, c)
		}
		t.active[k] = c
	}

	var gone []collision.PairKey
	for k := range t.active {
		if _, ok := t.seen[k]; !ok {
			gone = append(gone, k)
		}
	}
	slices.SortFunc(gone, func(a, b collision.PairKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	for _, k := range gone {
		ended = append(ended, t.active[k])
		delete(t.active, k)
	}
	return began, ended
}

// Active reports whether the pair is currently touching.
func (t *ContactTracker) Active(a, b ecs.Entity) bool {
	_, ok := t.active[collision.MakePairKey(a, b)]
	return ok
}

func (t *ContactTracker) Len() int {
	return len(t.active)
}

func (t *ContactTracker) Reset() {
	clear(t.active)
	clear(t.seen)
}

func (ps *PhysicsSystem) generateEvents() {
	began, ended := ps.tracker.Update(ps.contacts)
	events := ps.world.Events()
	for _, c := range began {
		events.Push(ecs.Event{Type: ecs.EventCollisionBegin, Data: ecs.CollisionEvent{A: c.A, B: c.B}})
	}
	for _, c := range ended {
		events.Push(ecs.Event{Type: ecs.EventCollisionEnd, Data: ecs.CollisionEvent{A: c.A, B: c.B}})
	}
}

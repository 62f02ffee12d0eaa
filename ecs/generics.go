package ecs

import "github.com/milk9111/onager2d/ecs/component"

// Add attaches value to e, replacing any previous component of the same kind.
// Observers see ComponentAdded for a new component and ComponentUpdated for a
// replacement.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return ErrInvalidComponentKind
	}
	if value == nil {
		return ErrNilComponent
	}
	if !IsAlive(w, e) {
		return ErrEntityNotAlive
	}
	op := ComponentUpdated
	if w.store(kind.ID(), true).Set(int(e.id()), value) {
		op = ComponentAdded
	}
	w.notify(kind.ID(), e, op)
	return nil
}

// Get returns a pointer to the stored component. The pointer stays valid until
// the component is removed or replaced.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	v, ok := w.store(kind.ID(), false).Get(int(e.id())).(*T)
	return v, ok
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	return w.store(kind.ID(), false).Has(int(e.id()))
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	if !w.store(kind.ID(), false).Remove(int(e.id())) {
		return false
	}
	w.notify(kind.ID(), e, ComponentRemoved)
	return true
}

// Patch mutates a component in place and reports ComponentUpdated to observers.
func Patch[T any](w *World, e Entity, kind component.ComponentKind[T], fn func(*T)) bool {
	v, ok := Get(w, e, kind)
	if !ok {
		return false
	}
	fn(v)
	w.notify(kind.ID(), e, ComponentUpdated)
	return true
}

// OnChange registers an observer for one component kind.
func OnChange[T any](w *World, kind component.ComponentKind[T], fn Observer) {
	if w == nil || fn == nil || !kind.Valid() {
		return
	}
	w.observers[kind.ID()] = append(w.observers[kind.ID()], fn)
}

// Count returns the number of live entities holding the component.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	if w == nil {
		return 0
	}
	return w.store(kind.ID(), false).Len()
}

// ForEach visits every entity holding the component. fn must not add or
// remove components of the same kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil {
		return
	}
	s := w.store(kind.ID(), false)
	if s == nil {
		return
	}
	for i, id := range s.denseEntities {
		e := w.entityFromID(id)
		if e == NilEntity {
			continue
		}
		fn(e, s.denseValues[i].(*T))
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil {
		return
	}
	sa, sb := w.store(ka.ID(), false), w.store(kb.ID(), false)
	for _, id := range IntersectEntities(sa, sb) {
		e := w.entityFromID(id)
		if e == NilEntity {
			continue
		}
		fn(e, sa.Get(id).(*A), sb.Get(id).(*B))
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	if w == nil {
		return
	}
	sa, sb, sc := w.store(ka.ID(), false), w.store(kb.ID(), false), w.store(kc.ID(), false)
	for _, id := range IntersectEntities(sa, sb, sc) {
		e := w.entityFromID(id)
		if e == NilEntity {
			continue
		}
		fn(e, sa.Get(id).(*A), sb.Get(id).(*B), sc.Get(id).(*C))
	}
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	if w == nil {
		return
	}
	sa, sb, sc, sd := w.store(ka.ID(), false), w.store(kb.ID(), false), w.store(kc.ID(), false), w.store(kd.ID(), false)
	for _, id := range IntersectEntities(sa, sb, sc, sd) {
		e := w.entityFromID(id)
		if e == NilEntity {
			continue
		}
		fn(e, sa.Get(id).(*A), sb.Get(id).(*B), sc.Get(id).(*C), sd.Get(id).(*D))
	}
}

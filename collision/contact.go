package collision

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/ecs"
)

// PairKey identifies an unordered entity pair.
type PairKey struct {
	Lo ecs.Entity
	Hi ecs.Entity
}

func MakePairKey(a, b ecs.Entity) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// Less orders keys for deterministic iteration.
func (k PairKey) Less(o PairKey) bool {
	if k.Lo != o.Lo {
		return k.Lo < o.Lo
	}
	return k.Hi < o.Hi
}

// Pair is a broadphase candidate.
type Pair struct {
	A *Collider
	B *Collider
}

func (p Pair) Key() PairKey {
	return MakePairKey(p.A.Entity, p.B.Entity)
}

// Contact describes one overlap. Normal is unit length and points from A to B.
type Contact struct {
	A          ecs.Entity
	B          ecs.Entity
	PointOnA   cp.Vector
	PointOnB   cp.Vector
	Normal     cp.Vector
	Separation float64
}

// Key returns the order-independent identity of the contact.
func (c Contact) Key() PairKey {
	return MakePairKey(c.A, c.B)
}

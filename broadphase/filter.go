package broadphase

import "github.com/milk9111/onager2d/collision"

// pairFilter holds the rules every strategy applies before the AABB test.
type pairFilter struct {
	bodies BodyLookup
	seen   map[collision.PairKey]struct{}
}

func newPairFilter(bodies BodyLookup) pairFilter {
	return pairFilter{bodies: bodies, seen: make(map[collision.PairKey]struct{})}
}

func (f *pairFilter) reset() {
	clear(f.seen)
}

// accept rejects self pairs, pairs with a missing body or stale shape, pairs
// of two massless bodies, and pairs already emitted this call.
func (f *pairFilter) accept(a, b *collision.Collider) bool {
	if a.Entity == b.Entity {
		return false
	}
	if !a.Valid() || !b.Valid() {
		return false
	}
	if f.bodies == nil {
		return false
	}
	massA, ok := f.bodies.BodyMass(a.Entity)
	if !ok {
		return false
	}
	massB, ok := f.bodies.BodyMass(b.Entity)
	if !ok {
		return false
	}
	if massA == 0 && massB == 0 {
		return false
	}
	_, dup := f.seen[collision.MakePairKey(a.Entity, b.Entity)]
	return !dup
}

// emit appends the pair and records it so later duplicates are rejected.
func (f *pairFilter) emit(out []collision.Pair, a, b *collision.Collider) []collision.Pair {
	f.seen[collision.MakePairKey(a.Entity, b.Entity)] = struct{}{}
	return append(out, collision.Pair{A: a, B: b})
}

package broadphase

import "github.com/milk9111/onager2d/collision"

// NSquared tests every collider against every other. It is the reference
// strategy the others are checked against.
type NSquared struct {
	filter pairFilter
}

func NewNSquared(bodies BodyLookup) *NSquared {
	return &NSquared{filter: newPairFilter(bodies)}
}

func (*NSquared) Name() string { return NameNSquared }

func (n *NSquared) GeneratePairs(colliders []*collision.Collider, out []collision.Pair, _ bool) []collision.Pair {
	n.filter.reset()
	for _, a := range colliders {
		for _, b := range colliders {
			if !n.filter.accept(a, b) {
				continue
			}
			if collision.Overlaps(a.AABB(), b.AABB()) {
				out = n.filter.emit(out, a, b)
			}
		}
	}
	return out
}

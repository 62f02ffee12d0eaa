package broadphase

import (
	"cmp"
	"slices"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/collision"
)

type sapEntry struct {
	collider *collision.Collider
	bb       cp.BB
}

// SweepAndPrune keeps colliders ordered by AABB min x. A full sort only runs
// when the collider set changed; otherwise the previous order is repaired
// with an insertion sort, which is close to linear when bodies move a little
// between ticks.
type SweepAndPrune struct {
	filter    pairFilter
	entries   []sapEntry
	fullSorts int
}

func NewSweepAndPrune(bodies BodyLookup) *SweepAndPrune {
	return &SweepAndPrune{filter: newPairFilter(bodies)}
}

func (*SweepAndPrune) Name() string { return NameSweepAndPrune }

// FullSorts returns how many times the collider list was rebuilt and sorted.
func (s *SweepAndPrune) FullSorts() int {
	return s.fullSorts
}

func (s *SweepAndPrune) GeneratePairs(colliders []*collision.Collider, out []collision.Pair, changed bool) []collision.Pair {
	s.filter.reset()

	if changed || len(s.entries) != len(colliders) {
		s.rebuild(colliders)
	} else {
		s.refresh()
	}

	for i := range s.entries {
		a := &s.entries[i]
		for j := i + 1; j < len(s.entries); j++ {
			b := &s.entries[j]
			if !(b.bb.L < a.bb.R) {
				break
			}
			if !s.filter.accept(a.collider, b.collider) {
				continue
			}
			if collision.Overlaps(a.bb, b.bb) {
				out = s.filter.emit(out, a.collider, b.collider)
			}
		}
	}
	return out
}

func (s *SweepAndPrune) rebuild(colliders []*collision.Collider) {
	s.entries = s.entries[:0]
	for _, c := range colliders {
		s.entries = append(s.entries, sapEntry{collider: c, bb: c.AABB()})
	}
	slices.SortStableFunc(s.entries, func(a, b sapEntry) int {
		return cmp.Compare(a.bb.L, b.bb.L)
	})
	s.fullSorts++
}

func (s *SweepAndPrune) refresh() {
	for i := range s.entries {
		s.entries[i].bb = s.entries[i].collider.AABB()
	}
	for i := 1; i < len(s.entries); i++ {
		e := s.entries[i]
		j := i - 1
		for j >= 0 && s.entries[j].bb.L > e.bb.L {
			s.entries[j+1] = s.entries[j]
			j--
		}
		s.entries[j+1] = e
	}
}

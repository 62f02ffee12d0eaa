package ecs

// IntersectEntities returns entity ids present in every set. It returns nil
// when any set is missing.
func IntersectEntities(sets ...*SparseSet) []int {
	if len(sets) == 0 {
		return nil
	}
	smallest := 0
	for i, s := range sets {
		if s == nil {
			return nil
		}
		if s.Len() < sets[smallest].Len() {
			smallest = i
		}
	}
	out := make([]int, 0, sets[smallest].Len())
outer:
	for _, id := range sets[smallest].denseEntities {
		for i, s := range sets {
			if i != smallest && !s.Has(id) {
				continue outer
			}
		}
		out = append(out, id)
	}
	return out
}

package collision

import "fmt"

// ShapeHandle addresses a shape in a ShapeStore. The zero handle is invalid.
type ShapeHandle struct {
	index uint32
	gen   uint32
}

func (h ShapeHandle) Valid() bool {
	return h.gen != 0
}

func (h ShapeHandle) String() string {
	return fmt.Sprintf("shape(%d:%d)", h.index, h.gen)
}

type shapeSlot struct {
	shape Shape
	gen   uint32
	live  bool
}

// ShapeStore is a generational slot map. Slots are allocated in fixed pages
// so a *Shape returned by Get keeps its address while the store grows, and a
// handle to a removed shape never resolves to its slot's next occupant.
type ShapeStore struct {
	pages [][]shapeSlot
	free  []uint32
	count int
}

const shapePageSize = 256

func NewShapeStore() *ShapeStore {
	return &ShapeStore{}
}

func (s *ShapeStore) slot(index uint32) *shapeSlot {
	page, off := index/shapePageSize, index%shapePageSize
	if int(page) >= len(s.pages) {
		return nil
	}
	return &s.pages[page][off]
}

// Insert stores shape and returns its handle.
func (s *ShapeStore) Insert(shape Shape) ShapeHandle {
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.pages) * shapePageSize)
		s.pages = append(s.pages, make([]shapeSlot, shapePageSize))
		for i := uint32(shapePageSize - 1); i > 0; i-- {
			s.free = append(s.free, index+i)
		}
	}
	sl := s.slot(index)
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	sl.shape = shape
	sl.live = true
	s.count++
	return ShapeHandle{index: index, gen: sl.gen}
}

// Get resolves h. It returns false for a removed or foreign handle.
func (s *ShapeStore) Get(h ShapeHandle) (*Shape, bool) {
	if s == nil || !h.Valid() {
		return nil, false
	}
	sl := s.slot(h.index)
	if sl == nil || !sl.live || sl.gen != h.gen {
		return nil, false
	}
	return &sl.shape, true
}

// Replace overwrites the shape behind h in place.
func (s *ShapeStore) Replace(h ShapeHandle, shape Shape) bool {
	p, ok := s.Get(h)
	if !ok {
		return false
	}
	*p = shape
	return true
}

func (s *ShapeStore) Remove(h ShapeHandle) bool {
	if _, ok := s.Get(h); !ok {
		return false
	}
	sl := s.slot(h.index)
	sl.live = false
	sl.shape = Shape{}
	s.free = append(s.free, h.index)
	s.count--
	return true
}

func (s *ShapeStore) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Clear removes every shape. Outstanding handles become stale.
func (s *ShapeStore) Clear() {
	s.free = s.free[:0]
	for p := len(s.pages) - 1; p >= 0; p-- {
		for off := shapePageSize - 1; off >= 0; off-- {
			sl := &s.pages[p][off]
			sl.live = false
			sl.shape = Shape{}
			s.free = append(s.free, uint32(p*shapePageSize+off))
		}
	}
	s.count = 0
}

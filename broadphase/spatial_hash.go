package broadphase

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/collision"
)

// SpatialHash buckets colliders into a uniform grid. Each collider's cells
// are found by sampling its AABB every CellOffsetSize units, plus the far
// edges, so no cell is skipped while the offset does not exceed the cell
// size. Sampling only min + k*offset, without the far edge or the cap, can
// miss the last cell an AABB reaches; this grid instead reports the same
// pairs as NSquared. Cell coordinates are combined with XOR; hash collisions
// only add candidates, which the pair filter and AABB test then reject.
type SpatialHash struct {
	filter     pairFilter
	cellSize   float64
	cellOffset float64

	cells   map[int64][]int
	keys    [][]int64
	boxes   []cp.BB
	visited []int
}

func NewSpatialHash(bodies BodyLookup, cellSize, cellOffsetSize float64) *SpatialHash {
	h := &SpatialHash{
		filter: newPairFilter(bodies),
		cells:  make(map[int64][]int),
	}
	h.SetCellSize(cellSize, cellOffsetSize)
	return h
}

func (*SpatialHash) Name() string { return NameSpatialHash }

// SetCellSize changes the grid. Non-positive values fall back to the defaults
// and the offset is capped at the cell size.
func (h *SpatialHash) SetCellSize(cellSize, cellOffsetSize float64) {
	def := DefaultOptions()
	if !(cellSize > 0) {
		cellSize = def.CellSize
	}
	if !(cellOffsetSize > 0) {
		cellOffsetSize = def.CellOffsetSize
	}
	h.cellSize = cellSize
	h.cellOffset = math.Min(cellOffsetSize, cellSize)
}

func (h *SpatialHash) CellSize() (cellSize, cellOffsetSize float64) {
	return h.cellSize, h.cellOffset
}

func (h *SpatialHash) hash(x, y float64) int64 {
	return int64(math.Floor(x/h.cellSize)) ^ int64(math.Floor(y/h.cellSize))
}

func sampleAxis(lo, hi, step float64, fn func(float64)) {
	for i := 0; ; i++ {
		v := lo + float64(i)*step
		if !(v < hi) {
			break
		}
		fn(v)
	}
	fn(hi)
}

// cellKeys appends the distinct cell keys covered by bb, in sampling order.
func (h *SpatialHash) cellKeys(bb cp.BB, dst []int64) []int64 {
	dst = dst[:0]
	if !finite(bb) {
		return dst
	}
	sampleAxis(bb.L, bb.R, h.cellOffset, func(x float64) {
		sampleAxis(bb.B, bb.T, h.cellOffset, func(y float64) {
			k := h.hash(x, y)
			for _, seen := range dst {
				if seen == k {
					return
				}
			}
			dst = append(dst, k)
		})
	})
	return dst
}

func finite(bb cp.BB) bool {
	for _, v := range [4]float64{bb.L, bb.B, bb.R, bb.T} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (h *SpatialHash) GeneratePairs(colliders []*collision.Collider, out []collision.Pair, _ bool) []collision.Pair {
	h.filter.reset()
	clear(h.cells)

	n := len(colliders)
	for len(h.keys) < n {
		h.keys = append(h.keys, nil)
	}
	h.boxes = h.boxes[:0]
	h.visited = h.visited[:0]
	for i, c := range colliders {
		bb := c.AABB()
		h.boxes = append(h.boxes, bb)
		h.visited = append(h.visited, -1)
		h.keys[i] = h.cellKeys(bb, h.keys[i])
		for _, k := range h.keys[i] {
			h.cells[k] = append(h.cells[k], i)
		}
	}

	for i, a := range colliders {
		for _, k := range h.keys[i] {
			for _, j := range h.cells[k] {
				if h.visited[j] == i {
					continue
				}
				h.visited[j] = i
				b := colliders[j]
				if !h.filter.accept(a, b) {
					continue
				}
				if collision.Overlaps(h.boxes[i], h.boxes[j]) {
					out = h.filter.emit(out, a, b)
				}
			}
		}
	}
	return out
}

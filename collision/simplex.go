package collision

import (
	"slices"

	"github.com/jakecoffman/cp"
)

// Simplex holds up to three Minkowski-difference points for one GJK query.
// The newest point is always at index 0.
type Simplex struct {
	points [3]cp.Vector
	size   int
}

// PushFront inserts p at the front, dropping the oldest point when full.
func (s *Simplex) PushFront(p cp.Vector) {
	s.points[2] = s.points[1]
	s.points[1] = s.points[0]
	s.points[0] = p
	s.size = min(s.size+1, 3)
}

func (s *Simplex) set(pts ...cp.Vector) {
	s.size = copy(s.points[:], pts)
}

func (s *Simplex) Len() int {
	return s.size
}

func (s *Simplex) At(i int) cp.Vector {
	return s.points[i]
}

// Points returns a copy of the live points.
func (s *Simplex) Points() []cp.Vector {
	return append([]cp.Vector(nil), s.points[:s.size]...)
}

// Polygon is the growing boundary approximation used by EPA.
type Polygon struct {
	points []cp.Vector
}

func NewPolygon(s Simplex) *Polygon {
	return &Polygon{points: s.Points()}
}

func (p *Polygon) Len() int {
	return len(p.points)
}

func (p *Polygon) Insert(index int, pt cp.Vector) {
	p.points = slices.Insert(p.points, index, pt)
}

// Edge is the polygon edge nearest the origin. Index is the insertion point
// for a support point that splits it.
type Edge struct {
	Distance float64
	Normal   cp.Vector
	Index    int
}

// closestEdge returns the edge nearest the origin with its normal facing
// away from the polygon interior.
func (p *Polygon) closestEdge() Edge {
	best := Edge{Distance: -1}
	n := len(p.points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := p.points[i], p.points[j]
		normal := normalize(b.Sub(a).ReversePerp())
		dist := normal.Dot(a)
		if dist < 0 {
			dist = -dist
			normal = normal.Neg()
		}
		if best.Distance < 0 || dist < best.Distance {
			best = Edge{Distance: dist, Normal: normal, Index: j}
		}
	}
	return best
}

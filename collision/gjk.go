package collision

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	gjkMaxIterations = 32
	epaMaxIterations = 32
	epaTolerance     = 0.001
)

// support returns the Minkowski-difference point of a and b furthest along d.
func support(a, b *Collider, d cp.Vector) cp.Vector {
	return a.FurthestPoint(d).Sub(b.FurthestPoint(d.Neg()))
}

// GJK reports whether the Minkowski difference of a and b encloses the origin.
// On success the returned simplex is a triangle around the origin. A query
// that does not resolve within the iteration bound reports no collision.
func GJK(a, b *Collider) (Simplex, bool) {
	var simplex Simplex

	dir := normalize(b.Position.Sub(a.Position))
	simplex.PushFront(support(a, b, dir))
	dir = dir.Neg()

	for i := 0; i < gjkMaxIterations; i++ {
		p := support(a, b, dir)
		if p.Dot(dir) < 0 {
			return simplex, false
		}
		simplex.PushFront(p)

		var enclosed bool
		dir, enclosed = nextDirection(&simplex)
		if enclosed {
			return simplex, true
		}
	}
	return simplex, false
}

func nextDirection(s *Simplex) (cp.Vector, bool) {
	a := s.At(0)
	ao := a.Neg()
	if s.Len() == 2 {
		return perpToward(s.At(1).Sub(a), ao), false
	}

	b, c := s.At(1), s.At(2)
	ab, ac := b.Sub(a), c.Sub(a)
	abPerp := perpToward(ab, ac.Neg())
	acPerp := perpToward(ac, ab.Neg())

	if abPerp.Dot(ao) >= 0 {
		s.set(a, b)
		return abPerp, false
	}
	if acPerp.Dot(ao) >= 0 {
		s.set(a, c)
		return acPerp, false
	}
	return cp.Vector{}, true
}

// EPA expands a GJK simplex that encloses the origin and returns the
// penetration normal (pointing from a to b) and depth. When the polygon does
// not converge within the iteration bound the last closest edge is returned
// with converged set to false.
func EPA(a, b *Collider, simplex Simplex) (normal cp.Vector, separation float64, converged bool) {
	poly := NewPolygon(simplex)
	if poly.Len() < 3 {
		return fallbackDirection, 0, false
	}

	var edge Edge
	for i := 0; i < epaMaxIterations; i++ {
		edge = poly.closestEdge()
		p := support(a, b, edge.Normal)
		d := edge.Normal.Dot(p)
		if math.Abs(d-edge.Distance) <= epaTolerance {
			return edge.Normal, d, true
		}
		poly.Insert(edge.Index, p)
	}
	return edge.Normal, edge.Distance, false
}

package collision

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/ecs"
)

// Collider places a stored shape in the world for one tick. It holds a handle
// into the shape store rather than a pointer, so a removed shape is detected
// instead of dereferenced.
type Collider struct {
	Entity   ecs.Entity
	Position cp.Vector
	Rotation float64 // degrees

	Shape  ShapeHandle
	shapes *ShapeStore
}

func NewCollider(e ecs.Entity, shapes *ShapeStore, h ShapeHandle) *Collider {
	return &Collider{Entity: e, Shape: h, shapes: shapes}
}

func (c *Collider) shape() (*Shape, bool) {
	if c == nil {
		return nil, false
	}
	return c.shapes.Get(c.Shape)
}

// Valid reports whether the collider's shape handle still resolves.
func (c *Collider) Valid() bool {
	_, ok := c.shape()
	return ok
}

// Kind returns the shape kind, or 0 when the handle is stale.
func (c *Collider) Kind() ShapeKind {
	s, ok := c.shape()
	if !ok {
		return 0
	}
	return s.Kind
}

// AABB returns the world-space bounds. A box's corners are rotated about
// the collider origin and translated; a circle uses position ± radius. A
// stale collider yields a degenerate box at its position.
func (c *Collider) AABB() cp.BB {
	s, ok := c.shape()
	if !ok {
		return cp.BB{L: c.Position.X, B: c.Position.Y, R: c.Position.X, T: c.Position.Y}
	}
	switch s.Kind {
	case ShapeCircle:
		return cp.NewBBForCircle(c.Position, s.Radius)
	default:
		rot := rotation(c.Rotation)
		bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
		for _, p := range s.points {
			w := p.Rotate(rot).Add(c.Position)
			bb.L = math.Min(bb.L, w.X)
			bb.B = math.Min(bb.B, w.Y)
			bb.R = math.Max(bb.R, w.X)
			bb.T = math.Max(bb.T, w.Y)
		}
		return bb
	}
}

// FurthestPoint returns the world-space point of the shape that lies furthest
// along direction.
func (c *Collider) FurthestPoint(direction cp.Vector) cp.Vector {
	s, ok := c.shape()
	if !ok {
		return c.Position
	}
	switch s.Kind {
	case ShapeCircle:
		return c.Position.Add(normalize(direction).Mult(s.Radius))
	default:
		rot := rotation(c.Rotation)
		best := c.Position
		bestDot := math.Inf(-1)
		for _, p := range s.points {
			w := p.Rotate(rot).Add(c.Position)
			if d := w.Dot(direction); d > bestDot {
				bestDot = d
				best = w
			}
		}
		return best
	}
}

// surfacePoint approximates the contact point on the collider along n.
// Boxes offset by the half extent per axis, circles by the radius.
func (c *Collider) surfacePoint(n cp.Vector) cp.Vector {
	s, ok := c.shape()
	if !ok {
		return c.Position
	}
	if s.Kind == ShapeCircle {
		return c.Position.Add(n.Mult(s.Radius))
	}
	return c.Position.Add(mulComponents(n, s.HalfExtent))
}

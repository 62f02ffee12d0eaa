package collision

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// ShapeKind is the closed set of collider geometries.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota + 1
	ShapeCircle
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCircle:
		return "circle"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// Shape is the local-space geometry of a collider. Box corner points are a
// cached value derived from CentreOfMass and HalfExtent; callers that change
// either field must call UpdatePoints or the corners go stale.
type Shape struct {
	Kind         ShapeKind
	CentreOfMass cp.Vector
	HalfExtent   cp.Vector
	Radius       float64

	points [4]cp.Vector
}

// NewBox returns a box shape with its corner points computed.
func NewBox(centreOfMass, halfExtent cp.Vector) Shape {
	s := Shape{Kind: ShapeBox, CentreOfMass: centreOfMass, HalfExtent: halfExtent}
	s.UpdatePoints()
	return s
}

func NewCircle(centreOfMass cp.Vector, radius float64) Shape {
	return Shape{Kind: ShapeCircle, CentreOfMass: centreOfMass, Radius: radius}
}

// UpdatePoints recomputes the four axis-aligned local corners of a box,
// counter-clockwise from bottom-left. It is a no-op for circles.
func (s *Shape) UpdatePoints() {
	if s.Kind != ShapeBox {
		return
	}
	hx, hy := s.HalfExtent.X, s.HalfExtent.Y
	c := s.CentreOfMass
	s.points[0] = c.Add(cp.Vector{X: -hx, Y: -hy})
	s.points[1] = c.Add(cp.Vector{X: hx, Y: -hy})
	s.points[2] = c.Add(cp.Vector{X: hx, Y: hy})
	s.points[3] = c.Add(cp.Vector{X: -hx, Y: hy})
}

// Points returns the cached local corners of a box.
func (s *Shape) Points() [4]cp.Vector {
	return s.points
}

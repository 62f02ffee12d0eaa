package collision

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/common"
)

// fallbackDirection is used wherever a zero-length vector would have to be
// normalized, such as coincident collider positions.
var fallbackDirection = cp.Vector{X: 1, Y: 0}

// normalize returns v scaled to unit length, or fallbackDirection when v has
// no length. cp.Vector.Normalize yields NaN for the zero vector.
func normalize(v cp.Vector) cp.Vector {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallbackDirection
	}
	return v.Mult(1 / l)
}

// perpToward returns the perpendicular of v that points into the half plane
// of toward.
func perpToward(v, toward cp.Vector) cp.Vector {
	p := v.ReversePerp()
	if p.Dot(toward) >= 0 {
		return p
	}
	return v.Perp()
}

// rotation returns the unit complex number for a rotation given in degrees.
func rotation(deg float64) cp.Vector {
	return cp.ForAngle(common.DegreesToRadians(deg))
}

func mulComponents(a, b cp.Vector) cp.Vector {
	return cp.Vector{X: a.X * b.X, Y: a.Y * b.Y}
}

func absComponents(v cp.Vector) cp.Vector {
	return cp.Vector{X: math.Abs(v.X), Y: math.Abs(v.Y)}
}

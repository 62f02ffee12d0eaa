package collision

import "github.com/jakecoffman/cp"

// Collide runs the narrow phase for a and b. Circle pairs take an exact fast
// path; every other pairing goes through GJK and EPA. It returns false when
// either collider's shape is stale.
func Collide(a, b *Collider) (Contact, bool) {
	ka, kb := a.Kind(), b.Kind()
	if ka == 0 || kb == 0 {
		return Contact{}, false
	}
	switch {
	case ka == ShapeCircle && kb == ShapeCircle:
		return collideCircles(a, b)
	default:
		return CollideGJK(a, b)
	}
}

// CollideGJK tests any pairing through GJK/EPA without the circle fast path.
func CollideGJK(a, b *Collider) (Contact, bool) {
	simplex, hit := GJK(a, b)
	if !hit {
		return Contact{}, false
	}
	normal, separation, _ := EPA(a, b, simplex)
	return newContact(a, b, normal, separation), true
}

func collideCircles(a, b *Collider) (Contact, bool) {
	sa, _ := a.shape()
	sb, _ := b.shape()

	delta := b.Position.Sub(a.Position)
	radii := sa.Radius + sb.Radius
	distSq := delta.LengthSq()
	if distSq > radii*radii {
		return Contact{}, false
	}
	normal := normalize(delta)
	return newContact(a, b, normal, radii-delta.Length()), true
}

func newContact(a, b *Collider, normal cp.Vector, separation float64) Contact {
	return Contact{
		A:          a.Entity,
		B:          b.Entity,
		PointOnA:   a.surfacePoint(normal),
		PointOnB:   b.surfacePoint(normal.Neg()),
		Normal:     normal,
		Separation: separation,
	}
}

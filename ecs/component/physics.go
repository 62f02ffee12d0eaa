package component

import "github.com/jakecoffman/cp"

// BodyType selects how the physics system treats a rigid body.
type BodyType uint8

const (
	BodyStatic BodyType = iota
	BodyKinematic
	BodyDynamic
)

func (t BodyType) String() string {
	switch t {
	case BodyStatic:
		return "static"
	case BodyKinematic:
		return "kinematic"
	case BodyDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Rigidbody stores the simulated state of a body. A Mass of 0 means the body
// is immovable. AngularVelocity is in degrees per second.
type Rigidbody struct {
	Type            BodyType
	Mass            float64
	Density         float64
	Elasticity      float64
	Friction        float64
	LinearVelocity  cp.Vector
	AngularVelocity float64
}

// NewRigidbody returns a static body with the engine's default material.
func NewRigidbody() Rigidbody {
	return Rigidbody{
		Type:       BodyStatic,
		Density:    1,
		Elasticity: 1,
		Friction:   0.5,
	}
}

// NewDynamicBody returns a dynamic body of the given mass.
func NewDynamicBody(mass float64) Rigidbody {
	rb := NewRigidbody()
	rb.Type = BodyDynamic
	rb.Mass = mass
	return rb
}

// Simulated reports whether the body is integrated and receives impulses.
func (rb *Rigidbody) Simulated() bool {
	return rb != nil && rb.Type == BodyDynamic && rb.Mass > 0
}

var RigidbodyComponent = NewComponent[Rigidbody]()

// Velocity mirrors Rigidbody velocity for renderers. The physics system owns it.
type Velocity struct {
	Linear  cp.Vector
	Angular float64
}

var VelocityComponent = NewComponent[Velocity]()

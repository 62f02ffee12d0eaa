package component

import "github.com/jakecoffman/cp"

// Transform places an entity in world space. Rotation is in degrees.
type Transform struct {
	Position cp.Vector
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()

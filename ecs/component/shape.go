package component

import "github.com/jakecoffman/cp"

// Box is an oriented rectangle collider centred on its entity.
type Box struct {
	CentreOfMass cp.Vector
	HalfExtent   cp.Vector
}

var BoxComponent = NewComponent[Box]()

// Circle is a circular collider centred on its entity.
type Circle struct {
	CentreOfMass cp.Vector
	Radius       float64
}

var CircleComponent = NewComponent[Circle]()

package system

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/collision"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/component"
)

func (ps *PhysicsSystem) respond() {
	for i := range ps.contacts {
		ps.resolve(&ps.contacts[i])
	}
}

// resolve applies the contact impulse and positional correction. Masses are
// summed directly rather than as inverse masses; a body that is not dynamic
// or has no mass is never moved.
func (ps *PhysicsSystem) resolve(c *collision.Contact) {
	w := ps.world
	bodyA, okA := ecs.Get(w, c.A, component.RigidbodyComponent.Kind())
	bodyB, okB := ecs.Get(w, c.B, component.RigidbodyComponent.Kind())
	if !okA || !okB {
		return
	}
	trA, okA := ecs.Get(w, c.A, component.TransformComponent.Kind())
	trB, okB := ecs.Get(w, c.B, component.TransformComponent.Kind())
	if !okA || !okB {
		return
	}

	massSum := bodyA.Mass + bodyB.Mass
	if massSum == 0 {
		return
	}
	moveA, moveB := bodyA.Simulated(), bodyB.Simulated()

	// Relative velocity of A toward B along the normal; non-positive means
	// the bodies are already separating.
	approach := bodyA.LinearVelocity.Sub(bodyB.LinearVelocity).Dot(c.Normal)
	if approach > 0 {
		restitution := bodyA.Elasticity * bodyB.Elasticity
		j := -(1 + restitution) * approach / massSum
		impulse := c.Normal.Mult(j)
		if moveA {
			applyLinearImpulse(bodyA, impulse)
		}
		if moveB {
			applyLinearImpulse(bodyB, impulse.Neg())
		}
	}

	ds := mulVec(c.PointOnB.Sub(c.PointOnA), cp.Vector{X: abs(c.Normal.X), Y: abs(c.Normal.Y)})
	if moveA {
		trA.Position = trA.Position.Add(ds.Mult(bodyA.Mass / massSum))
	}
	if moveB {
		trB.Position = trB.Position.Sub(ds.Mult(bodyB.Mass / massSum))
	}

	if vel, ok := ecs.Get(w, c.A, component.VelocityComponent.Kind()); ok {
		mirrorVelocity(bodyA, vel)
	}
	if vel, ok := ecs.Get(w, c.B, component.VelocityComponent.Kind()); ok {
		mirrorVelocity(bodyB, vel)
	}
}

func mulVec(a, b cp.Vector) cp.Vector {
	return cp.Vector{X: a.X * b.X, Y: a.Y * b.Y}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package system

import (
	"context"
	"log"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/common"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/component"
	"github.com/milk9111/onager2d/tasks"
)

type dynamicBody struct {
	body      *component.Rigidbody
	transform *component.Transform
	velocity  *component.Velocity
}

// updateDynamics runs the gravity, integration and mirror passes. Each pass
// is split into disjoint index ranges across the worker pool and completes
// before the next one starts.
func (ps *PhysicsSystem) updateDynamics(dt float64) {
	ps.bodies = ps.bodies[:0]
	ecs.ForEach2(ps.world, component.RigidbodyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, rb *component.Rigidbody, tr *component.Transform) {
			vel, _ := ecs.Get(ps.world, e, component.VelocityComponent.Kind())
			ps.bodies = append(ps.bodies, dynamicBody{body: rb, transform: tr, velocity: vel})
		})
	if len(ps.bodies) == 0 {
		return
	}

	gravity := ps.settings.Gravity.Vector()
	subSteps := max(ps.settings.SubSteps, 1)
	bodies := ps.bodies

	passes := []struct {
		name string
		fn   func(b *dynamicBody)
	}{
		{"gravity", func(b *dynamicBody) {
			if !b.body.Simulated() {
				return
			}
			impulse := gravity.Mult(1 / b.body.Mass).Mult(dt)
			applyLinearImpulse(b.body, impulse)
		}},
		{"integrate", func(b *dynamicBody) {
			if !b.body.Simulated() {
				return
			}
			h := dt / float64(subSteps)
			for i := 0; i < subSteps; i++ {
				b.transform.Position = b.transform.Position.Add(b.body.LinearVelocity.Mult(h))
				b.transform.Rotation += b.body.AngularVelocity * h
			}
			b.transform.Rotation = common.WrapDegrees(b.transform.Rotation)
		}},
		{"mirror", func(b *dynamicBody) {
			mirrorVelocity(b.body, b.velocity)
		}},
	}

	for _, pass := range passes {
		err := ps.pool.Run(context.Background(), len(bodies), func(_ context.Context, r tasks.Range) error {
			for i := r.Start; i < r.End; i++ {
				pass.fn(&bodies[i])
			}
			return nil
		})
		if err != nil {
			log.Printf("PhysicsSystem: %s pass: %v", pass.name, err)
		}
	}
}

// applyLinearImpulse adds impulse scaled by the body's mass. Massless bodies
// are unaffected.
func applyLinearImpulse(rb *component.Rigidbody, impulse cp.Vector) {
	if rb.Mass == 0 {
		return
	}
	rb.LinearVelocity = rb.LinearVelocity.Add(impulse.Mult(rb.Mass))
}

func mirrorVelocity(rb *component.Rigidbody, vel *component.Velocity) {
	if vel == nil {
		return
	}
	vel.Linear = rb.LinearVelocity
	vel.Angular = rb.AngularVelocity
}

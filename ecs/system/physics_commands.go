package system

import (
	"log"
	"slices"

	"github.com/milk9111/onager2d/collision"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/component"
)

// CommandKind names a physics-relevant component change.
type CommandKind uint8

const (
	CommandShapeChanged CommandKind = iota + 1
	CommandShapeRemoved
	CommandBodyAdded
	CommandBodyRemoved
)

func (k CommandKind) String() string {
	switch k {
	case CommandShapeChanged:
		return "shape_changed"
	case CommandShapeRemoved:
		return "shape_removed"
	case CommandBodyAdded:
		return "body_added"
	case CommandBodyRemoved:
		return "body_removed"
	default:
		return "unknown"
	}
}

// PhysicsCommand is queued by component observers and applied at the start
// of the next tick. Applying a command reconciles the entity against the
// components it has at that moment, so the order and repetition of commands
// for an entity do not change the result.
type PhysicsCommand struct {
	Kind   CommandKind
	Entity ecs.Entity
	Shape  collision.ShapeKind
}

// observe hooks shape and body components. Observers only enqueue.
func (ps *PhysicsSystem) observe() {
	if ps.world == nil {
		return
	}
	shapeObserver := func(kind collision.ShapeKind) ecs.Observer {
		return func(e ecs.Entity, op ecs.ChangeOp) {
			cmd := CommandShapeChanged
			if op == ecs.ComponentRemoved {
				cmd = CommandShapeRemoved
			}
			ps.Enqueue(PhysicsCommand{Kind: cmd, Entity: e, Shape: kind})
		}
	}
	ecs.OnChange(ps.world, component.BoxComponent.Kind(), shapeObserver(collision.ShapeBox))
	ecs.OnChange(ps.world, component.CircleComponent.Kind(), shapeObserver(collision.ShapeCircle))
	ecs.OnChange(ps.world, component.RigidbodyComponent.Kind(), func(e ecs.Entity, op ecs.ChangeOp) {
		switch op {
		case ecs.ComponentAdded:
			ps.Enqueue(PhysicsCommand{Kind: CommandBodyAdded, Entity: e})
		case ecs.ComponentRemoved:
			ps.Enqueue(PhysicsCommand{Kind: CommandBodyRemoved, Entity: e})
		}
	})
}

// Enqueue adds a command. Commands are ignored before Startup; Startup
// seeds them from the world instead.
func (ps *PhysicsSystem) Enqueue(cmd PhysicsCommand) {
	if ps == nil || ps.state == StateUninitialized {
		return
	}
	ps.commands = append(ps.commands, cmd)
}

// PendingCommands returns the number of queued commands.
func (ps *PhysicsSystem) PendingCommands() int {
	return len(ps.commands)
}

func (ps *PhysicsSystem) seedCommands() {
	ecs.ForEach(ps.world, component.BoxComponent.Kind(), func(e ecs.Entity, _ *component.Box) {
		ps.Enqueue(PhysicsCommand{Kind: CommandShapeChanged, Entity: e, Shape: collision.ShapeBox})
	})
	ecs.ForEach(ps.world, component.CircleComponent.Kind(), func(e ecs.Entity, _ *component.Circle) {
		ps.Enqueue(PhysicsCommand{Kind: CommandShapeChanged, Entity: e, Shape: collision.ShapeCircle})
	})
	ecs.ForEach(ps.world, component.RigidbodyComponent.Kind(), func(e ecs.Entity, _ *component.Rigidbody) {
		ps.Enqueue(PhysicsCommand{Kind: CommandBodyAdded, Entity: e})
	})
}

func (ps *PhysicsSystem) processCommands() {
	for _, cmd := range ps.commands {
		ps.apply(cmd)
	}
	ps.commands = ps.commands[:0]
}

func (ps *PhysicsSystem) apply(cmd PhysicsCommand) {
	e := cmd.Entity
	if !ecs.IsAlive(ps.world, e) {
		if ps.settings.Debug {
			log.Printf("PhysicsSystem: %s for dead entity %v", cmd.Kind, e)
		}
		ps.removeShape(e)
		return
	}

	switch cmd.Kind {
	case CommandShapeChanged:
		ps.syncShape(e, cmd.Shape)
	case CommandShapeRemoved:
		ps.syncShape(e, 0)
	case CommandBodyAdded:
		if !ecs.Has(ps.world, e, component.RigidbodyComponent.Kind()) {
			break
		}
		if !ecs.Has(ps.world, e, component.VelocityComponent.Kind()) {
			rb, _ := ecs.Get(ps.world, e, component.RigidbodyComponent.Kind())
			_ = ecs.Add(ps.world, e, component.VelocityComponent.Kind(), &component.Velocity{
				Linear:  rb.LinearVelocity,
				Angular: rb.AngularVelocity,
			})
		}
	case CommandBodyRemoved:
		if !ecs.Has(ps.world, e, component.RigidbodyComponent.Kind()) {
			ecs.Remove(ps.world, e, component.VelocityComponent.Kind())
		}
	}
	ps.syncCollider(e)
}

// syncShape rebuilds the stored shape of e from its components. prefer names
// the component that just changed; otherwise the current kind is kept while
// its component exists, falling back to Box then Circle.
func (ps *PhysicsSystem) syncShape(e ecs.Entity, prefer collision.ShapeKind) {
	box, hasBox := ecs.Get(ps.world, e, component.BoxComponent.Kind())
	circle, hasCircle := ecs.Get(ps.world, e, component.CircleComponent.Kind())

	kind := prefer
	if kind == 0 {
		if s, ok := ps.Shape(e); ok {
			kind = s.Kind
		}
	}
	if (kind == collision.ShapeBox && !hasBox) || (kind == collision.ShapeCircle && !hasCircle) || kind == 0 {
		switch {
		case hasBox:
			kind = collision.ShapeBox
		case hasCircle:
			kind = collision.ShapeCircle
		default:
			ps.removeShape(e)
			return
		}
	}

	var shape collision.Shape
	if kind == collision.ShapeBox {
		shape = collision.NewBox(box.CentreOfMass, box.HalfExtent)
	} else {
		shape = collision.NewCircle(circle.CentreOfMass, circle.Radius)
	}

	if h, ok := ps.shapeOf[e]; ok && ps.shapes.Replace(h, shape) {
		return
	}
	ps.shapeOf[e] = ps.shapes.Insert(shape)
}

func (ps *PhysicsSystem) removeShape(e ecs.Entity) {
	if h, ok := ps.shapeOf[e]; ok {
		ps.shapes.Remove(h)
		delete(ps.shapeOf, e)
	}
	ps.removeCollider(e)
}

// syncCollider keeps exactly one collider for an entity holding both a shape
// and a rigid body, and none otherwise.
func (ps *PhysicsSystem) syncCollider(e ecs.Entity) {
	h, hasShape := ps.shapeOf[e]
	hasBody := ecs.Has(ps.world, e, component.RigidbodyComponent.Kind())
	if !hasShape || !hasBody {
		ps.removeCollider(e)
		return
	}
	if c, ok := ps.colliders[e]; ok {
		c.Shape = h
		return
	}
	c := collision.NewCollider(e, ps.shapes, h)
	if tr, ok := ecs.Get(ps.world, e, component.TransformComponent.Kind()); ok {
		c.Position = tr.Position
		c.Rotation = tr.Rotation
	}
	ps.colliders[e] = c
	ps.order = append(ps.order, c)
	ps.changed = true
}

func (ps *PhysicsSystem) removeCollider(e ecs.Entity) {
	c, ok := ps.colliders[e]
	if !ok {
		return
	}
	delete(ps.colliders, e)
	if i := slices.Index(ps.order, c); i >= 0 {
		ps.order = slices.Delete(ps.order, i, i+1)
	}
	ps.changed = true
}

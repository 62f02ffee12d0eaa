// Package scene describes a starting set of bodies in YAML and spawns them
// into a world.
package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/onager2d/config"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/component"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalidScene = errors.New("scene: invalid scene")

type BodySpec struct {
	Name       string      `yaml:"name"`
	Shape      string      `yaml:"shape"`
	Position   config.Vec2 `yaml:"position"`
	Rotation   float64     `yaml:"rotation"`
	HalfExtent config.Vec2 `yaml:"half_extent"`
	Radius     float64     `yaml:"radius"`
	Type       string      `yaml:"type"`
	Mass       float64     `yaml:"mass"`
	Elasticity *float64    `yaml:"elasticity"`
	Velocity   config.Vec2 `yaml:"velocity"`
	Spin       float64     `yaml:"spin"`
}

type Scene struct {
	Name   string     `yaml:"name"`
	Bodies []BodySpec `yaml:"bodies"`
}

// Default returns the embedded demo scene.
func Default() Scene {
	s, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("scene: embedded default: %v", err))
	}
	return s
}

func Parse(data []byte) (Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scene{}, fmt.Errorf("scene: unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("scene: load %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Scene{}, fmt.Errorf("scene: %s: %w", path, err)
	}
	return s, nil
}

func (s Scene) Validate() error {
	var errs []error
	for i, b := range s.Bodies {
		label := b.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		switch b.Shape {
		case "box":
			if b.HalfExtent.X <= 0 || b.HalfExtent.Y <= 0 {
				errs = append(errs, fmt.Errorf("body %s: half_extent must be positive", label))
			}
		case "circle":
			if b.Radius <= 0 {
				errs = append(errs, fmt.Errorf("body %s: radius must be positive", label))
			}
		default:
			errs = append(errs, fmt.Errorf("body %s: unknown shape %q", label, b.Shape))
		}
		if _, ok := bodyType(b.Type); !ok {
			errs = append(errs, fmt.Errorf("body %s: unknown type %q", label, b.Type))
		}
		if b.Mass < 0 {
			errs = append(errs, fmt.Errorf("body %s: mass must not be negative", label))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScene, errors.Join(errs...))
	}
	return nil
}

func bodyType(name string) (component.BodyType, bool) {
	switch name {
	case "", "static":
		return component.BodyStatic, true
	case "kinematic":
		return component.BodyKinematic, true
	case "dynamic":
		return component.BodyDynamic, true
	default:
		return 0, false
	}
}

// Rigidbody builds the body component described by b.
func (b BodySpec) Rigidbody() component.Rigidbody {
	rb := component.NewRigidbody()
	rb.Type, _ = bodyType(b.Type)
	rb.Mass = b.Mass
	if b.Elasticity != nil {
		rb.Elasticity = *b.Elasticity
	}
	rb.LinearVelocity = b.Velocity.Vector()
	rb.AngularVelocity = b.Spin
	return rb
}

// Spawn creates one entity per body and returns them in scene order.
func (s Scene) Spawn(w *ecs.World) ([]ecs.Entity, error) {
	out := make([]ecs.Entity, 0, len(s.Bodies))
	for _, b := range s.Bodies {
		e, err := SpawnBody(w, b)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

func SpawnBody(w *ecs.World, b BodySpec) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: b.Position.Vector(),
		Rotation: b.Rotation,
	}); err != nil {
		return e, fmt.Errorf("scene: transform: %w", err)
	}

	var err error
	switch b.Shape {
	case "circle":
		err = ecs.Add(w, e, component.CircleComponent.Kind(), &component.Circle{Radius: b.Radius})
	default:
		err = ecs.Add(w, e, component.BoxComponent.Kind(), &component.Box{HalfExtent: b.HalfExtent.Vector()})
	}
	if err != nil {
		return e, fmt.Errorf("scene: shape: %w", err)
	}

	rb := b.Rigidbody()
	if err := ecs.Add(w, e, component.RigidbodyComponent.Kind(), &rb); err != nil {
		return e, fmt.Errorf("scene: rigidbody: %w", err)
	}
	return e, nil
}

// Box returns a dynamic box body spec at pos.
func Box(pos, halfExtent cp.Vector, mass float64) BodySpec {
	return BodySpec{
		Shape:      "box",
		Position:   config.Vec2{X: pos.X, Y: pos.Y},
		HalfExtent: config.Vec2{X: halfExtent.X, Y: halfExtent.Y},
		Type:       "dynamic",
		Mass:       mass,
	}
}

// Circle returns a dynamic circle body spec at pos.
func Circle(pos cp.Vector, radius, mass float64) BodySpec {
	return BodySpec{
		Shape:    "circle",
		Position: config.Vec2{X: pos.X, Y: pos.Y},
		Radius:   radius,
		Type:     "dynamic",
		Mass:     mass,
	}
}

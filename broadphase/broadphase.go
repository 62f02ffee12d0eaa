// Package broadphase turns the full collider set into candidate pairs for the
// narrow phase. Every strategy applies the same pair filter and the same
// strict AABB test, so they return the same pair set for the same input.
package broadphase

import (
	"errors"
	"fmt"

	"github.com/milk9111/onager2d/collision"
	"github.com/milk9111/onager2d/ecs"
)

const (
	NameNSquared      = "n_squared"
	NameSweepAndPrune = "sweep_and_prune"
	NameSpatialHash   = "spatial_hash"
)

var ErrUnknownStrategy = errors.New("broadphase: unknown strategy")

// Broadphase produces candidate pairs. changed is true when colliders were
// added or removed since the previous call.
type Broadphase interface {
	Name() string
	GeneratePairs(colliders []*collision.Collider, out []collision.Pair, changed bool) []collision.Pair
}

// BodyLookup reports the mass of an entity's rigid body. ok is false when the
// entity is dead or has no body.
type BodyLookup interface {
	BodyMass(e ecs.Entity) (mass float64, ok bool)
}

// Options configures the built-in strategies.
type Options struct {
	CellSize       float64
	CellOffsetSize float64
}

func DefaultOptions() Options {
	return Options{CellSize: 2, CellOffsetSize: 1}
}

// Names lists the built-in strategies.
func Names() []string {
	return []string{NameNSquared, NameSweepAndPrune, NameSpatialHash}
}

// Valid reports whether name is a built-in strategy.
func Valid(name string) bool {
	switch name {
	case NameNSquared, NameSweepAndPrune, NameSpatialHash:
		return true
	}
	return false
}

// New builds a built-in strategy by name.
func New(name string, bodies BodyLookup, opts Options) (Broadphase, error) {
	switch name {
	case NameNSquared:
		return NewNSquared(bodies), nil
	case NameSweepAndPrune:
		return NewSweepAndPrune(bodies), nil
	case NameSpatialHash:
		return NewSpatialHash(bodies, opts.CellSize, opts.CellOffsetSize), nil
	default:
		return nil, fmt.Errorf("broadphase: new %q: %w", name, ErrUnknownStrategy)
	}
}

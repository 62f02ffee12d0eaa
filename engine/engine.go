// Package engine drives a world at a fixed tick rate from variable frame times.
package engine

import (
	"github.com/milk9111/onager2d/config"
	"github.com/milk9111/onager2d/ecs"
)

// Engine accumulates frame time and spends it on whole fixed ticks. The
// accumulator is clamped so a long stall cannot queue an unbounded number
// of catch-up ticks.
type Engine struct {
	world          *ecs.World
	fixedStep      float64
	maxAccumulated float64
	accumulator    float64
	ticks          uint64
}

func New(w *ecs.World, settings config.PhysicsSettings) *Engine {
	e := &Engine{world: w}
	e.ApplySettings(settings)
	return e
}

func (e *Engine) ApplySettings(settings config.PhysicsSettings) {
	e.fixedStep = settings.FixedTimeStep()
	e.maxAccumulated = settings.MaxAccumulatedTime
}

// Advance adds dt seconds of frame time and runs as many fixed ticks as fit.
// It returns the number of ticks run.
func (e *Engine) Advance(dt float64) int {
	if e == nil || e.world == nil || !(e.fixedStep > 0) {
		return 0
	}
	if dt > 0 {
		e.accumulator += dt
	}
	if e.accumulator > e.maxAccumulated {
		e.accumulator = e.maxAccumulated
	}

	n := 0
	for e.accumulator >= e.fixedStep {
		e.world.Update()
		e.accumulator -= e.fixedStep
		e.ticks++
		n++
	}
	return n
}

// Alpha is the fraction of a tick left in the accumulator, for interpolating
// rendered positions between ticks.
func (e *Engine) Alpha() float64 {
	if !(e.fixedStep > 0) {
		return 0
	}
	return e.accumulator / e.fixedStep
}

func (e *Engine) Ticks() uint64 {
	return e.ticks
}

func (e *Engine) FixedStep() float64 {
	return e.fixedStep
}

func (e *Engine) World() *ecs.World {
	return e.world
}

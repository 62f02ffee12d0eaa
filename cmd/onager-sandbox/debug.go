package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/onager2d/collision"
	"github.com/milk9111/onager2d/common"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/component"
	"github.com/milk9111/onager2d/ecs/system"
)

const (
	debugDotSize      = 4
	debugNormalLength = 0.5
	pixelsPerMeter    = 40
)

// camera maps world space (metres, y up) onto the screen (pixels, y down)
// with the world origin at the centre of the screen.
type camera struct {
	width  float64
	height float64
	zoom   float64
}

func (c camera) toScreen(v cp.Vector) (float32, float32) {
	return float32(c.width/2 + v.X*c.zoom), float32(c.height/2 - v.Y*c.zoom)
}

func (c camera) toWorld(x, y float64) cp.Vector {
	return cp.Vector{X: (x - c.width/2) / c.zoom, Y: (c.height/2 - y) / c.zoom}
}

type physicsDebugDrawer struct {
	screen  *ebiten.Image
	cam     camera
	world   *ecs.World
	physics *system.PhysicsSystem

	// lead is how far past the last tick to extrapolate positions, in seconds.
	lead     float64
	showAABB bool
}

func (d *physicsDebugDrawer) draw() {
	for _, c := range d.physics.Colliders() {
		shape, ok := d.physics.Shape(c.Entity)
		if !ok {
			continue
		}
		pos, rot := d.interpolate(c)
		clr := d.bodyColor(c.Entity)
		switch shape.Kind {
		case collision.ShapeBox:
			d.drawBox(shape, pos, rot, clr)
		case collision.ShapeCircle:
			d.drawCircle(pos, shape.Radius, rot, clr)
		}
		if d.showAABB {
			d.drawBB(c.AABB(), colornames.Yellow)
		}
	}

	for _, contact := range d.physics.Contacts() {
		d.drawDot(contact.PointOnA, colornames.Red)
		d.drawDot(contact.PointOnB, colornames.Orange)
		d.drawLine(contact.PointOnA, contact.PointOnA.Add(contact.Normal.Mult(debugNormalLength)), colornames.Red)
	}
}

// interpolate extrapolates a collider along its mirrored velocity so motion
// stays smooth between fixed ticks.
func (d *physicsDebugDrawer) interpolate(c *collision.Collider) (cp.Vector, float64) {
	vel, ok := ecs.Get(d.world, c.Entity, component.VelocityComponent.Kind())
	if !ok || d.lead <= 0 {
		return c.Position, c.Rotation
	}
	if rb, ok := ecs.Get(d.world, c.Entity, component.RigidbodyComponent.Kind()); !ok || !rb.Simulated() {
		return c.Position, c.Rotation
	}
	return c.Position.Add(vel.Linear.Mult(d.lead)), c.Rotation + vel.Angular*d.lead
}

func (d *physicsDebugDrawer) bodyColor(e ecs.Entity) color.Color {
	rb, ok := ecs.Get(d.world, e, component.RigidbodyComponent.Kind())
	if !ok {
		return colornames.Grey
	}
	switch rb.Type {
	case component.BodyDynamic:
		return colornames.Lightgreen
	case component.BodyKinematic:
		return colornames.Deepskyblue
	default:
		return colornames.Lightgrey
	}
}

func (d *physicsDebugDrawer) drawBox(shape *collision.Shape, pos cp.Vector, rot float64, clr color.Color) {
	turn := cp.ForAngle(common.DegreesToRadians(rot))
	points := shape.Points()
	verts := make([]cp.Vector, len(points))
	for i, p := range points {
		verts[i] = pos.Add(p.Rotate(turn))
	}
	d.drawPolygon(verts, clr)
	d.drawLine(pos, pos.Add(cp.Vector{X: shape.HalfExtent.X}.Rotate(turn)), clr)
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius, rot float64, clr color.Color) {
	if radius <= 0 {
		return
	}
	x, y := d.cam.toScreen(center)
	vector.StrokeCircle(d.screen, x, y, float32(radius*d.cam.zoom), 1, clr, true)
	end := center.Add(cp.ForAngle(common.DegreesToRadians(rot)).Mult(radius))
	d.drawLine(center, end, clr)
}

func (d *physicsDebugDrawer) drawBB(bb cp.BB, clr color.Color) {
	d.drawPolygon([]cp.Vector{
		{X: bb.L, Y: bb.B},
		{X: bb.R, Y: bb.B},
		{X: bb.R, Y: bb.T},
		{X: bb.L, Y: bb.T},
	}, clr)
}

func (d *physicsDebugDrawer) drawDot(pos cp.Vector, clr color.Color) {
	x, y := d.cam.toScreen(pos)
	vector.DrawFilledCircle(d.screen, x, y, debugDotSize/2, clr, true)
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr color.Color) {
	x1, y1 := d.cam.toScreen(a)
	x2, y2 := d.cam.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, clr, true)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, clr color.Color) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

// gridLines draws one line per metre so scale is readable.
func (d *physicsDebugDrawer) gridLines() {
	half := d.cam.toWorld(d.cam.width, 0)
	maxX, maxY := math.Ceil(half.X), math.Ceil(half.Y)
	faint := color.NRGBA{R: 255, G: 255, B: 255, A: 16}
	for x := -maxX; x <= maxX; x++ {
		d.drawLine(cp.Vector{X: x, Y: -maxY}, cp.Vector{X: x, Y: maxY}, faint)
	}
	for y := -maxY; y <= maxY; y++ {
		d.drawLine(cp.Vector{X: -maxX, Y: y}, cp.Vector{X: maxX, Y: y}, faint)
	}
}

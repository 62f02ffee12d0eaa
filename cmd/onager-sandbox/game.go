package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/broadphase"
	"github.com/milk9111/onager2d/config"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/system"
	"github.com/milk9111/onager2d/engine"
	"github.com/milk9111/onager2d/scene"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

var broadphaseKeys = map[ebiten.Key]string{
	ebiten.Key1: broadphase.NameNSquared,
	ebiten.Key2: broadphase.NameSweepAndPrune,
	ebiten.Key3: broadphase.NameSpatialHash,
}

type Game struct {
	frames int

	world   *ecs.World
	physics *system.PhysicsSystem
	engine  *engine.Engine
	watcher *config.Watcher
	scene   scene.Scene
	panel   *controlPanel

	showAABB bool
	begins   int
	ends     int
}

func NewGame(settings config.Settings, sc scene.Scene, watcher *config.Watcher) (*Game, error) {
	w := ecs.NewWorld()
	ps := system.NewPhysicsSystem(w, settings.Physics)
	if err := ps.Startup(); err != nil {
		return nil, err
	}
	w.AddSystem(ps)

	g := &Game{
		world:   w,
		physics: ps,
		engine:  engine.New(w, settings.Physics),
		watcher: watcher,
		scene:   sc,
	}
	g.panel = NewControlPanel(g)
	w.Events().Subscribe(ecs.EventCollisionBegin, func(ecs.Event) { g.begins++ })
	w.Events().Subscribe(ecs.EventCollisionEnd, func(ecs.Event) { g.ends++ })

	if _, err := sc.Spawn(w); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Update() error {
	g.frames++

	g.pollSettings()
	g.panel.ui.Update()
	g.handleInput()
	g.engine.Advance(1 / float64(ebiten.TPS()))

	return nil
}

func (g *Game) handleInput() {
	for key, name := range broadphaseKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.selectBroadphase(name)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.physics.SetEnabled(!g.physics.Enabled())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.showAABB = !g.showAABB
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reset()
	}

	if g.panel.Contains(ebiten.CursorPosition()) {
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.spawn(scene.Box(g.cursor(), cp.Vector{X: 0.5, Y: 0.5}, 1))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.spawn(scene.Circle(g.cursor(), 0.5, 1))
	}
}

func (g *Game) selectBroadphase(name string) {
	if err := g.physics.SetBroadphase(name); err != nil {
		log.Printf("sandbox: %v", err)
	}
}

func (g *Game) spawn(b scene.BodySpec) {
	if _, err := scene.SpawnBody(g.world, b); err != nil {
		log.Printf("sandbox: spawn %s: %v", b.Shape, err)
	}
}

// reset destroys every entity and respawns the scene. The physics system
// sees the removals through its command queue.
func (g *Game) reset() {
	for _, e := range ecs.Entities(g.world) {
		ecs.DestroyEntity(g.world, e)
	}
	if _, err := g.scene.Spawn(g.world); err != nil {
		log.Printf("sandbox: reset: %v", err)
	}
	g.begins, g.ends = 0, 0
}

func (g *Game) cursor() cp.Vector {
	x, y := ebiten.CursorPosition()
	return g.camera().toWorld(float64(x), float64(y))
}

func (g *Game) camera() camera {
	return camera{width: baseWidth, height: baseHeight, zoom: pixelsPerMeter}
}

// pollSettings applies the newest settings file, if the watcher reported one.
// An invalid file is logged and the running settings are kept.
func (g *Game) pollSettings() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path := <-g.watcher.Events:
			settings, err := config.Load(path)
			if err != nil {
				log.Printf("config: reload %s: %v", path, err)
				continue
			}
			physics := settings.Physics.WithToggles(g.physics.Settings())
			if err := g.physics.ApplySettings(physics); err != nil {
				log.Printf("config: apply %s: %v", path, err)
				continue
			}
			g.engine.ApplySettings(physics)
			log.Printf("config: reloaded %s", path)
		case err := <-g.watcher.Errors:
			log.Printf("config: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawer := &physicsDebugDrawer{
		screen:   screen,
		cam:      g.camera(),
		world:    g.world,
		physics:  g.physics,
		lead:     g.engine.Alpha() * g.engine.FixedStep(),
		showAABB: g.showAABB,
	}
	drawer.gridLines()
	drawer.draw()

	stats := g.physics.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"Frames: %d    FPS: %.2f    Tick: %d\nBroadphase: %s    Physics: %v\nColliders: %d  Pairs: %d  Contacts: %d  Active: %d\nBegin: %d  End: %d\n\n[LMB] box  [RMB] circle  [1/2/3] broadphase  [P] pause  [A] AABBs  [R] reset",
		g.frames, ebiten.ActualFPS(), g.engine.Ticks(),
		stats.Broadphase, g.physics.Enabled(),
		stats.Colliders, stats.Pairs, stats.Contacts, stats.ActiveContacts,
		g.begins, g.ends,
	))

	g.panel.ui.Draw(screen)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

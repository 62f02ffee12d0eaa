package system

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/milk9111/onager2d/broadphase"
	"github.com/milk9111/onager2d/collision"
	"github.com/milk9111/onager2d/config"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/component"
	"github.com/milk9111/onager2d/tasks"
)

var ErrDuplicateBroadphase = errors.New("physics: broadphase already registered")

// PhysicsState is the orchestrator's position in its lifecycle and, while a
// tick runs, in the pipeline.
type PhysicsState uint8

const (
	StateUninitialized PhysicsState = iota
	StateReady
	StateDynamicsUpdated
	StateBroadphaseComplete
	StateNarrowphaseComplete
	StateResponseApplied
	StateEventsGenerated
)

func (s PhysicsState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDynamicsUpdated:
		return "dynamics_updated"
	case StateBroadphaseComplete:
		return "broadphase_complete"
	case StateNarrowphaseComplete:
		return "narrowphase_complete"
	case StateResponseApplied:
		return "response_applied"
	case StateEventsGenerated:
		return "events_generated"
	default:
		return fmt.Sprintf("PhysicsState(%d)", uint8(s))
	}
}

// Stats describes the most recent tick.
type Stats struct {
	Tick           uint64
	Broadphase     string
	Colliders      int
	Pairs          int
	Contacts       int
	ActiveContacts int
}

// PhysicsSystem owns shapes, colliders, broadphases and contact state, and
// runs the fixed-tick pipeline: commands, dynamics, broadphase, narrow phase,
// response, events.
type PhysicsSystem struct {
	world    *ecs.World
	settings config.PhysicsSettings
	pool     *tasks.Pool
	state    PhysicsState

	shapes    *collision.ShapeStore
	shapeOf   map[ecs.Entity]collision.ShapeHandle
	colliders map[ecs.Entity]*collision.Collider
	order     []*collision.Collider
	active    []*collision.Collider
	changed   bool

	broadphases map[string]broadphase.Broadphase
	broadphase  broadphase.Broadphase

	pairs    []collision.Pair
	contacts []collision.Contact
	tracker  *ContactTracker
	commands []PhysicsCommand
	bodies   []dynamicBody

	onStage func(PhysicsState)
	stats   Stats
}

// NewPhysicsSystem binds the system to w and registers component observers.
// The system stays idle until Startup.
func NewPhysicsSystem(w *ecs.World, settings config.PhysicsSettings) *PhysicsSystem {
	ps := &PhysicsSystem{
		world:       w,
		settings:    settings,
		pool:        tasks.NewPool(settings.Workers),
		shapes:      collision.NewShapeStore(),
		shapeOf:     make(map[ecs.Entity]collision.ShapeHandle),
		colliders:   make(map[ecs.Entity]*collision.Collider),
		broadphases: make(map[string]broadphase.Broadphase),
		tracker:     NewContactTracker(),
	}
	ps.observe()
	return ps
}

func (ps *PhysicsSystem) State() PhysicsState {
	if ps == nil {
		return StateUninitialized
	}
	return ps.state
}

func (ps *PhysicsSystem) Settings() config.PhysicsSettings {
	return ps.settings
}

func (ps *PhysicsSystem) Stats() Stats {
	return ps.stats
}

// SetStageObserver installs fn to be called each time the pipeline changes
// state. Pass nil to remove it.
func (ps *PhysicsSystem) SetStageObserver(fn func(PhysicsState)) {
	ps.onStage = fn
}

func (ps *PhysicsSystem) setState(s PhysicsState) {
	ps.state = s
	if ps.onStage != nil {
		ps.onStage(s)
	}
}

// Startup registers the built-in broadphases, selects the configured one and
// queues commands for every physics component already in the world.
func (ps *PhysicsSystem) Startup() error {
	if ps == nil || ps.world == nil {
		return errors.New("physics: startup without a world")
	}
	if ps.state != StateUninitialized {
		return nil
	}
	for _, name := range broadphase.Names() {
		if _, ok := ps.broadphases[name]; ok {
			continue
		}
		bp, err := broadphase.New(name, bodyLookup{ps.world}, ps.settings.BroadphaseOptions())
		if err != nil {
			return err
		}
		if err := ps.RegisterBroadphase(bp); err != nil {
			return err
		}
	}
	if err := ps.SetBroadphase(ps.settings.Broadphase); err != nil {
		return err
	}

	ps.setState(StateReady)
	ps.seedCommands()
	log.Printf("PhysicsSystem: started with broadphase %s (%d registered), tick %.4fs", ps.broadphase.Name(), len(ps.broadphases), ps.settings.FixedTimeStep())
	return nil
}

// EndPlay drops all colliders, shapes, contacts and pending commands and
// returns the system to StateUninitialized. World components are untouched.
func (ps *PhysicsSystem) EndPlay() {
	if ps == nil {
		return
	}
	ps.shapes.Clear()
	clear(ps.shapeOf)
	clear(ps.colliders)
	ps.order = ps.order[:0]
	ps.active = ps.active[:0]
	ps.pairs = ps.pairs[:0]
	ps.contacts = ps.contacts[:0]
	ps.commands = ps.commands[:0]
	ps.tracker.Reset()
	ps.changed = false
	ps.stats = Stats{}
	ps.setState(StateUninitialized)
	log.Printf("PhysicsSystem: end play")
}

// RegisterBroadphase makes bp selectable by its name.
func (ps *PhysicsSystem) RegisterBroadphase(bp broadphase.Broadphase) error {
	if bp == nil {
		return errors.New("physics: nil broadphase")
	}
	if _, ok := ps.broadphases[bp.Name()]; ok {
		return fmt.Errorf("physics: register %q: %w", bp.Name(), ErrDuplicateBroadphase)
	}
	ps.broadphases[bp.Name()] = bp
	return nil
}

// SetBroadphase selects a registered strategy. The next tick treats the
// collider set as changed so ordered strategies rebuild their state.
func (ps *PhysicsSystem) SetBroadphase(name string) error {
	bp, ok := ps.broadphases[name]
	if !ok {
		return fmt.Errorf("physics: set broadphase %q: %w", name, broadphase.ErrUnknownStrategy)
	}
	if ps.broadphase != nil && ps.broadphase.Name() != name {
		log.Printf("PhysicsSystem: broadphase %s -> %s", ps.broadphase.Name(), name)
	}
	ps.broadphase = bp
	ps.settings.Broadphase = name
	ps.changed = true
	return nil
}

// Broadphases returns the registered strategy names, sorted.
func (ps *PhysicsSystem) Broadphases() []string {
	names := make([]string, 0, len(ps.broadphases))
	for name := range ps.broadphases {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (ps *PhysicsSystem) SetEnabled(enabled bool) {
	ps.settings.Enabled = enabled
}

func (ps *PhysicsSystem) Enabled() bool {
	return ps.settings.Enabled
}

// ApplySettings swaps in new settings, for example after a hot reload. The
// broadphase selection only changes once the system has started.
func (ps *PhysicsSystem) ApplySettings(settings config.PhysicsSettings) error {
	if err := (config.Settings{Physics: settings}).Validate(); err != nil {
		return err
	}
	prev := ps.settings
	ps.settings = settings
	ps.pool.SetWorkers(settings.Workers)
	for _, bp := range ps.broadphases {
		if sh, ok := bp.(*broadphase.SpatialHash); ok {
			sh.SetCellSize(settings.SpatialHash.CellSize, settings.SpatialHash.CellOffsetSize)
		}
	}
	if ps.state != StateUninitialized && settings.Broadphase != prev.Broadphase {
		if err := ps.SetBroadphase(settings.Broadphase); err != nil {
			ps.settings.Broadphase = prev.Broadphase
			return err
		}
	}
	log.Printf("PhysicsSystem: settings applied (gravity %v, sub steps %d, tick rate %v)", settings.Gravity.Vector(), settings.SubSteps, settings.TickRate)
	return nil
}

// Update runs one fixed tick. It implements ecs.System.
func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil || w != ps.world {
		return
	}
	ps.Step(ps.settings.FixedTimeStep())
}

// Step runs one fixed tick of length dt. It does nothing before Startup or
// while physics is disabled.
func (ps *PhysicsSystem) Step(dt float64) {
	if ps == nil || ps.state == StateUninitialized || !ps.settings.Enabled {
		return
	}

	ps.processCommands()

	ps.updateDynamics(dt)
	ps.setState(StateDynamicsUpdated)

	changed := ps.syncColliders() || ps.changed
	ps.pairs = ps.broadphase.GeneratePairs(ps.active, ps.pairs[:0], changed)
	ps.setState(StateBroadphaseComplete)

	ps.narrowphase()
	ps.setState(StateNarrowphaseComplete)

	ps.respond()
	ps.setState(StateResponseApplied)

	ps.generateEvents()
	ps.setState(StateEventsGenerated)

	ps.changed = false
	ps.stats = Stats{
		Tick:           ps.stats.Tick + 1,
		Broadphase:     ps.broadphase.Name(),
		Colliders:      len(ps.active),
		Pairs:          len(ps.pairs),
		Contacts:       len(ps.contacts),
		ActiveContacts: ps.tracker.Len(),
	}
	ps.setState(StateReady)
}

// syncColliders copies transforms into colliders and collects the colliders
// taking part in this tick. It reports whether that set differs from the
// registered one.
func (ps *PhysicsSystem) syncColliders() bool {
	ps.active = ps.active[:0]
	for _, c := range ps.order {
		tr, ok := ecs.Get(ps.world, c.Entity, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		c.Position = tr.Position
		c.Rotation = tr.Rotation
		ps.active = append(ps.active, c)
	}
	return len(ps.active) != len(ps.order)
}

func (ps *PhysicsSystem) narrowphase() {
	ps.contacts = ps.contacts[:0]
	for _, p := range ps.pairs {
		if contact, ok := collision.Collide(p.A, p.B); ok {
			ps.contacts = append(ps.contacts, contact)
		}
	}
	if ps.settings.Debug && len(ps.contacts) > 0 {
		log.Printf("PhysicsSystem: tick %d: %d pairs, %d contacts", ps.stats.Tick+1, len(ps.pairs), len(ps.contacts))
	}
}

// Colliders returns the colliders that took part in the last tick.
func (ps *PhysicsSystem) Colliders() []*collision.Collider {
	return ps.active
}

// Collider returns the collider registered for e.
func (ps *PhysicsSystem) Collider(e ecs.Entity) (*collision.Collider, bool) {
	c, ok := ps.colliders[e]
	return c, ok
}

// Shape resolves the collider shape registered for e.
func (ps *PhysicsSystem) Shape(e ecs.Entity) (*collision.Shape, bool) {
	h, ok := ps.shapeOf[e]
	if !ok {
		return nil, false
	}
	return ps.shapes.Get(h)
}

// Contacts returns the contacts found in the last tick.
func (ps *PhysicsSystem) Contacts() []collision.Contact {
	return ps.contacts
}

// bodyLookup adapts the world to broadphase.BodyLookup.
type bodyLookup struct {
	w *ecs.World
}

func (b bodyLookup) BodyMass(e ecs.Entity) (float64, bool) {
	rb, ok := ecs.Get(b.w, e, component.RigidbodyComponent.Kind())
	if !ok {
		return 0, false
	}
	return rb.Mass, true
}

package system

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/onager2d/broadphase"
	"github.com/milk9111/onager2d/collision"
	"github.com/milk9111/onager2d/config"
	"github.com/milk9111/onager2d/ecs"
	"github.com/milk9111/onager2d/ecs/component"
)

const tick = 1.0 / 60

func testSettings() config.PhysicsSettings {
	s := config.Default().Physics
	s.Workers = 2
	return s
}

func newPhysics(t *testing.T, settings config.PhysicsSettings) (*ecs.World, *PhysicsSystem) {
	t.Helper()
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(w, settings)
	if err := ps.Startup(); err != nil {
		t.Fatalf("startup: %v", err)
	}
	return w, ps
}

func spawnBox(t *testing.T, w *ecs.World, pos, halfExtent cp.Vector, rb component.Rigidbody) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	mustAdd(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}))
	mustAdd(t, ecs.Add(w, e, component.BoxComponent.Kind(), &component.Box{HalfExtent: halfExtent}))
	mustAdd(t, ecs.Add(w, e, component.RigidbodyComponent.Kind(), &rb))
	return e
}

func spawnCircle(t *testing.T, w *ecs.World, pos cp.Vector, radius float64, rb component.Rigidbody) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	mustAdd(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}))
	mustAdd(t, ecs.Add(w, e, component.CircleComponent.Kind(), &component.Circle{Radius: radius}))
	mustAdd(t, ecs.Add(w, e, component.RigidbodyComponent.Kind(), &rb))
	return e
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("add component: %v", err)
	}
}

func body(w *ecs.World, e ecs.Entity) *component.Rigidbody {
	rb, _ := ecs.Get(w, e, component.RigidbodyComponent.Kind())
	return rb
}

func transform(w *ecs.World, e ecs.Entity) *component.Transform {
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	return tr
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGravityAppliesForOneTick(t *testing.T) {
	w, ps := newPhysics(t, testSettings())
	rb := component.NewDynamicBody(1)
	e := spawnBox(t, w, cp.Vector{X: 0, Y: 10}, cp.Vector{X: 0.5, Y: 0.5}, rb)

	ps.Step(tick)

	got := body(w, e).LinearVelocity
	if !near(got.Y, -9.81/60, 1e-9) || got.X != 0 {
		t.Fatalf("velocity = %v, want (0, %v)", got, -9.81/60)
	}
	if !near(transform(w, e).Position.Y, 10-9.81/3600, 1e-9) {
		t.Fatalf("position = %v", transform(w, e).Position)
	}
	vel, ok := ecs.Get(w, e, component.VelocityComponent.Kind())
	if !ok || vel.Linear != got {
		t.Fatalf("velocity mirror = %+v ok=%v, want %v", vel, ok, got)
	}
}

func TestGravityIsMassIndependent(t *testing.T) {
	w, ps := newPhysics(t, testSettings())
	light := spawnCircle(t, w, cp.Vector{X: -10}, 0.5, component.NewDynamicBody(1))
	heavy := spawnCircle(t, w, cp.Vector{X: 10}, 0.5, component.NewDynamicBody(8))
	ps.Step(tick)
	if !near(body(w, light).LinearVelocity.Y, body(w, heavy).LinearVelocity.Y, 1e-12) {
		t.Fatalf("light %v heavy %v", body(w, light).LinearVelocity, body(w, heavy).LinearVelocity)
	}
}

func TestIntegration(t *testing.T) {
	settings := testSettings()
	settings.Gravity = config.Vec2{}

	cases := []struct {
		name    string
		rb      component.Rigidbody
		dt      float64
		wantPos cp.Vector
		wantRot float64
	}{
		{
			name:    "linear",
			rb:      component.Rigidbody{Type: component.BodyDynamic, Mass: 1, LinearVelocity: cp.Vector{X: 1, Y: 2}},
			dt:      tick,
			wantPos: cp.Vector{X: 1.0 / 60, Y: 2.0 / 60},
		},
		{
			name:    "angular_wraps",
			rb:      component.Rigidbody{Type: component.BodyDynamic, Mass: 1, AngularVelocity: 370},
			dt:      1,
			wantRot: 10,
		},
		{
			name:    "negative_angular_wraps",
			rb:      component.Rigidbody{Type: component.BodyDynamic, Mass: 1, AngularVelocity: -90},
			dt:      1,
			wantRot: 270,
		},
		{
			name: "kinematic_skipped",
			rb:   component.Rigidbody{Type: component.BodyKinematic, Mass: 1, LinearVelocity: cp.Vector{X: 5}},
			dt:   tick,
		},
		{
			name: "massless_dynamic_skipped",
			rb:   component.Rigidbody{Type: component.BodyDynamic, LinearVelocity: cp.Vector{X: 5}},
			dt:   tick,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, ps := newPhysics(t, settings)
			e := spawnCircle(t, w, cp.Vector{}, 0.5, c.rb)
			ps.Step(c.dt)
			tr := transform(w, e)
			if !near(tr.Position.X, c.wantPos.X, 1e-9) || !near(tr.Position.Y, c.wantPos.Y, 1e-9) {
				t.Fatalf("position = %v, want %v", tr.Position, c.wantPos)
			}
			if !near(tr.Rotation, c.wantRot, 1e-9) {
				t.Fatalf("rotation = %v, want %v", tr.Rotation, c.wantRot)
			}
		})
	}
}

func TestStaticBodyNeverMoves(t *testing.T) {
	settings := testSettings()
	settings.Gravity = config.Vec2{}
	for _, name := range broadphase.Names() {
		t.Run(name, func(t *testing.T) {
			settings.Broadphase = name
			w, ps := newPhysics(t, settings)
			ground := spawnBox(t, w, cp.Vector{}, cp.Vector{X: 0.5, Y: 0.5}, component.NewRigidbody())
			falling := component.NewDynamicBody(1)
			falling.LinearVelocity = cp.Vector{Y: -1}
			box := spawnBox(t, w, cp.Vector{Y: 0.9}, cp.Vector{X: 0.5, Y: 0.5}, falling)

			ps.Step(tick)

			if len(ps.Contacts()) != 1 {
				t.Fatalf("contacts = %d, want 1", len(ps.Contacts()))
			}
			if v := body(w, ground).LinearVelocity; v != (cp.Vector{}) {
				t.Fatalf("static velocity changed to %v", v)
			}
			if p := transform(w, ground).Position; p != (cp.Vector{}) {
				t.Fatalf("static body moved to %v", p)
			}
			if v := body(w, box).LinearVelocity; !near(v.Y, 1, 1e-6) || !near(v.X, 0, 1e-6) {
				t.Fatalf("dynamic velocity = %v, want (0,1)", v)
			}
			if p := transform(w, box).Position; !near(p.Y, 1, 1e-6) {
				t.Fatalf("dynamic body not separated: %v", p)
			}
			if vel, _ := ecs.Get(w, box, component.VelocityComponent.Kind()); vel.Linear != body(w, box).LinearVelocity {
				t.Fatalf("mirror not refreshed after response")
			}
		})
	}
}

func TestEqualMassesExchangeVelocity(t *testing.T) {
	settings := testSettings()
	settings.Gravity = config.Vec2{}
	w, ps := newPhysics(t, settings)

	ra := component.NewDynamicBody(1)
	ra.LinearVelocity = cp.Vector{X: 1}
	a := spawnCircle(t, w, cp.Vector{X: 0}, 0.5, ra)
	b := spawnCircle(t, w, cp.Vector{X: 0.95}, 0.5, component.NewDynamicBody(1))

	ps.Step(tick)

	if va, vb := body(w, a).LinearVelocity, body(w, b).LinearVelocity; !near(va.X, 0, 1e-9) || !near(vb.X, 1, 1e-9) {
		t.Fatalf("velocities after impact a=%v b=%v", va, vb)
	}
}

func TestSeparatingBodiesKeepVelocity(t *testing.T) {
	settings := testSettings()
	settings.Gravity = config.Vec2{}
	w, ps := newPhysics(t, settings)

	ra := component.NewDynamicBody(1)
	ra.LinearVelocity = cp.Vector{X: -1}
	a := spawnCircle(t, w, cp.Vector{X: 0}, 0.5, ra)
	spawnCircle(t, w, cp.Vector{X: 0.5}, 0.5, component.NewDynamicBody(1))

	ps.Step(tick)
	if v := body(w, a).LinearVelocity; v.X != -1 {
		t.Fatalf("separating body received impulse: %v", v)
	}
}

func TestCollisionEventLifecycle(t *testing.T) {
	settings := testSettings()
	settings.Gravity = config.Vec2{}
	w, ps := newPhysics(t, settings)

	// Kinematic bodies with mass are paired but never moved.
	kin := component.Rigidbody{Type: component.BodyKinematic, Mass: 1}
	a := spawnCircle(t, w, cp.Vector{}, 1, kin)
	b := spawnCircle(t, w, cp.Vector{X: 1}, 1, kin)

	setX := func(x float64) {
		ecs.Patch(w, b, component.TransformComponent.Kind(), func(tr *component.Transform) { tr.Position.X = x })
	}

	var got []string
	w.Events().Subscribe(ecs.EventCollisionBegin, func(evt ecs.Event) {
		ce := evt.Data.(ecs.CollisionEvent)
		if collision.MakePairKey(ce.A, ce.B) != collision.MakePairKey(a, b) {
			t.Fatalf("unexpected pair %+v", ce)
		}
		got = append(got, "begin")
	})
	w.Events().Subscribe(ecs.EventCollisionEnd, func(ecs.Event) { got = append(got, "end") })
	w.AddSystem(ps)

	for _, x := range []float64{1, 1, 5, 1} {
		setX(x)
		w.Update()
	}

	want := []string{"begin", "end", "begin"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if ps.Stats().ActiveContacts != 1 || ps.Stats().Tick != 4 {
		t.Fatalf("stats = %+v", ps.Stats())
	}
}

func TestPipelineStageOrder(t *testing.T) {
	w, ps := newPhysics(t, testSettings())
	spawnCircle(t, w, cp.Vector{}, 1, component.NewDynamicBody(1))

	var stages []PhysicsState
	ps.SetStageObserver(func(s PhysicsState) { stages = append(stages, s) })
	ps.Step(tick)

	want := []PhysicsState{
		StateDynamicsUpdated,
		StateBroadphaseComplete,
		StateNarrowphaseComplete,
		StateResponseApplied,
		StateEventsGenerated,
		StateReady,
	}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stages = %v, want %v", stages, want)
		}
	}
}

func TestUninitializedAndDisabledAreNoOps(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(w, testSettings())
	e := spawnCircle(t, w, cp.Vector{}, 1, component.NewDynamicBody(1))

	calls := 0
	ps.SetStageObserver(func(PhysicsState) { calls++ })
	ps.Step(tick)
	if calls != 0 || ps.PendingCommands() != 0 || body(w, e).LinearVelocity != (cp.Vector{}) {
		t.Fatalf("uninitialized system ran: calls=%d pending=%d", calls, ps.PendingCommands())
	}

	if err := ps.Startup(); err != nil {
		t.Fatal(err)
	}
	ps.SetEnabled(false)
	ps.Step(tick)
	if body(w, e).LinearVelocity != (cp.Vector{}) {
		t.Fatalf("disabled system moved a body")
	}
	ps.SetEnabled(true)
	ps.Step(tick)
	if body(w, e).LinearVelocity == (cp.Vector{}) {
		t.Fatalf("enabled system did not apply gravity")
	}
}

func TestColliderLifecycle(t *testing.T) {
	type step func(w *ecs.World, e ecs.Entity) error
	addBox := func(w *ecs.World, e ecs.Entity) error {
		return ecs.Add(w, e, component.BoxComponent.Kind(), &component.Box{HalfExtent: cp.Vector{X: 1, Y: 1}})
	}
	addBody := func(w *ecs.World, e ecs.Entity) error {
		rb := component.NewDynamicBody(1)
		return ecs.Add(w, e, component.RigidbodyComponent.Kind(), &rb)
	}

	cases := []struct {
		name  string
		steps []step
	}{
		{"shape_then_body", []step{addBox, addBody}},
		{"body_then_shape", []step{addBody, addBox}},
		{"repeated", []step{addBody, addBox, addBox, addBody}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, ps := newPhysics(t, testSettings())
			e := ecs.CreateEntity(w)
			mustAdd(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{}))
			for _, s := range c.steps {
				mustAdd(t, s(w, e))
			}
			ps.Step(tick)

			if _, ok := ps.Collider(e); !ok {
				t.Fatalf("collider missing")
			}
			if len(ps.Colliders()) != 1 {
				t.Fatalf("colliders = %d, want 1", len(ps.Colliders()))
			}
			if !ecs.Has(w, e, component.VelocityComponent.Kind()) {
				t.Fatalf("velocity component not created")
			}
		})
	}

	t.Run("shape_without_body", func(t *testing.T) {
		w, ps := newPhysics(t, testSettings())
		e := ecs.CreateEntity(w)
		mustAdd(t, addBox(w, e))
		ps.Step(tick)
		if _, ok := ps.Collider(e); ok {
			t.Fatalf("collider created without a rigid body")
		}
		if _, ok := ps.Shape(e); !ok {
			t.Fatalf("shape not stored")
		}
	})

	t.Run("removals", func(t *testing.T) {
		w, ps := newPhysics(t, testSettings())
		e := spawnBox(t, w, cp.Vector{}, cp.Vector{X: 1, Y: 1}, component.NewDynamicBody(1))
		ps.Step(tick)

		ecs.Remove(w, e, component.BoxComponent.Kind())
		ps.Step(tick)
		if _, ok := ps.Collider(e); ok {
			t.Fatalf("collider kept after shape removal")
		}
		if _, ok := ps.Shape(e); ok {
			t.Fatalf("shape kept after removal")
		}

		mustAdd(t, ecs.Add(w, e, component.CircleComponent.Kind(), &component.Circle{Radius: 2}))
		ps.Step(tick)
		if c, ok := ps.Collider(e); !ok || c.Kind() != collision.ShapeCircle {
			t.Fatalf("circle collider not created")
		}

		ecs.Remove(w, e, component.RigidbodyComponent.Kind())
		ps.Step(tick)
		if _, ok := ps.Collider(e); ok {
			t.Fatalf("collider kept after body removal")
		}
		if ecs.Has(w, e, component.VelocityComponent.Kind()) {
			t.Fatalf("velocity kept after body removal")
		}
	})

	t.Run("shape_update_refreshes_points", func(t *testing.T) {
		w, ps := newPhysics(t, testSettings())
		e := spawnBox(t, w, cp.Vector{}, cp.Vector{X: 1, Y: 1}, component.NewRigidbody())
		ps.Step(tick)
		ecs.Patch(w, e, component.BoxComponent.Kind(), func(b *component.Box) { b.HalfExtent = cp.Vector{X: 3, Y: 2} })
		ps.Step(tick)
		s, ok := ps.Shape(e)
		if !ok || s.Points()[2] != (cp.Vector{X: 3, Y: 2}) {
			t.Fatalf("shape not refreshed: %+v", s)
		}
	})

	t.Run("destroy_entity", func(t *testing.T) {
		w, ps := newPhysics(t, testSettings())
		e := spawnBox(t, w, cp.Vector{}, cp.Vector{X: 1, Y: 1}, component.NewDynamicBody(1))
		ps.Step(tick)
		ecs.DestroyEntity(w, e)
		ps.Step(tick)
		if _, ok := ps.Collider(e); ok || len(ps.Colliders()) != 0 {
			t.Fatalf("collider kept after entity destruction")
		}
	})
}

func TestStartupSeedsExistingComponents(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(w, testSettings())
	e := spawnBox(t, w, cp.Vector{}, cp.Vector{X: 1, Y: 1}, component.NewDynamicBody(1))

	if err := ps.Startup(); err != nil {
		t.Fatal(err)
	}
	ps.Step(tick)
	if _, ok := ps.Collider(e); !ok {
		t.Fatalf("startup did not create collider for existing entity")
	}
}

func TestEndPlay(t *testing.T) {
	w, ps := newPhysics(t, testSettings())
	a := spawnCircle(t, w, cp.Vector{}, 1, component.Rigidbody{Type: component.BodyKinematic, Mass: 1})
	spawnCircle(t, w, cp.Vector{X: 1}, 1, component.Rigidbody{Type: component.BodyKinematic, Mass: 1})
	ps.Step(tick)
	if ps.Stats().ActiveContacts != 1 {
		t.Fatalf("expected an active contact, got %+v", ps.Stats())
	}

	ps.EndPlay()
	if ps.State() != StateUninitialized || len(ps.Colliders()) != 0 || len(ps.Contacts()) != 0 || ps.PendingCommands() != 0 {
		t.Fatalf("EndPlay left state behind: %v", ps.State())
	}
	if _, ok := ps.Collider(a); ok {
		t.Fatalf("collider survived EndPlay")
	}
	ps.Enqueue(PhysicsCommand{Kind: CommandBodyAdded, Entity: a})
	if ps.PendingCommands() != 0 {
		t.Fatalf("commands accepted while uninitialized")
	}

	if err := ps.Startup(); err != nil {
		t.Fatal(err)
	}
	w.Events().Drain()
	ps.Step(tick)
	if len(ps.Colliders()) != 2 {
		t.Fatalf("restart did not rebuild colliders")
	}
	if evts := w.Events().Drain(); len(evts) != 1 || evts[0].Type != ecs.EventCollisionBegin {
		t.Fatalf("expected one fresh begin event after restart, got %v", evts)
	}
}

func TestBroadphaseRegistry(t *testing.T) {
	w, ps := newPhysics(t, testSettings())
	if ps.Stats().Broadphase != "" {
		t.Fatalf("stats before first tick = %+v", ps.Stats())
	}
	if got := ps.Broadphases(); len(got) != 3 {
		t.Fatalf("registered = %v", got)
	}

	err := ps.RegisterBroadphase(broadphase.NewNSquared(bodyLookup{w}))
	if !errors.Is(err, ErrDuplicateBroadphase) {
		t.Fatalf("expected ErrDuplicateBroadphase, got %v", err)
	}
	if err := ps.SetBroadphase("bvh"); !errors.Is(err, broadphase.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}

	for _, name := range broadphase.Names() {
		if err := ps.SetBroadphase(name); err != nil {
			t.Fatal(err)
		}
		ps.Step(tick)
		if ps.Stats().Broadphase != name {
			t.Fatalf("stats broadphase = %q, want %q", ps.Stats().Broadphase, name)
		}
	}
}

func TestApplySettings(t *testing.T) {
	_, ps := newPhysics(t, testSettings())

	bad := testSettings()
	bad.SubSteps = 0
	if err := ps.ApplySettings(bad); !errors.Is(err, config.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}

	next := testSettings()
	next.Broadphase = broadphase.NameSweepAndPrune
	next.Gravity = config.Vec2{X: 1}
	if err := ps.ApplySettings(next); err != nil {
		t.Fatal(err)
	}
	if ps.Settings().Broadphase != broadphase.NameSweepAndPrune || ps.Settings().Gravity.X != 1 {
		t.Fatalf("settings not applied: %+v", ps.Settings())
	}
}

package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/portal"
	"github.com/milk9111/portalcore/tilegrid"
	"github.com/stretchr/testify/require"
)

type fakeSensing struct {
	contacts    []PortalContact
	overlapping []ecs.Entity
}

func (f *fakeSensing) DrainPortalContacts() []PortalContact {
	out := f.contacts
	f.contacts = nil
	return out
}

func (f *fakeSensing) PortalsOverlapping(cp.BB) []ecs.Entity {
	return f.overlapping
}

type portalFixture struct {
	pair   *portal.Pair
	purple ecs.Entity
	teal   ecs.Entity
}

// openPair opens purple and teal at the given frames and attaches them to
// two new entities.
func openPair(t *testing.T, w *ecs.World, length float64, purple, teal geom.Frame) portalFixture {
	t.Helper()
	pair, err := portal.NewPair(length)
	require.NoError(t, err)
	pair.Get(portal.Purple).Open(portal.Placement{Position: purple.Position, Orientation: purple.Orientation, Cells: []tilegrid.Cell{{X: 0, Y: 0}}})
	pair.Get(portal.Teal).Open(portal.Placement{Position: teal.Position, Orientation: teal.Orientation, Cells: []tilegrid.Cell{{X: 1, Y: 0}}})

	fx := portalFixture{pair: pair, purple: ecs.CreateEntity(w), teal: ecs.CreateEntity(w)}
	require.NoError(t, ecs.Add(w, fx.purple, component.PortalComponent.Kind(), &component.Portal{End: pair.Get(portal.Purple)}))
	require.NoError(t, ecs.Add(w, fx.teal, component.PortalComponent.Kind(), &component.Portal{End: pair.Get(portal.Teal)}))
	return fx
}

func addTraveler(t *testing.T, w *ecs.World, pos, vel cp.Vector) (ecs.Entity, *cp.Body) {
	t.Helper()
	body := cp.NewBody(1, cp.MomentForBox(1, 16, 16))
	body.SetPosition(pos)
	body.SetVelocityVector(vel)

	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Body: body, Width: 16, Height: 16, Mass: 1}))
	require.NoError(t, ecs.Add(w, e, component.TeleportGateComponent.Kind(), &component.TeleportGate{PrevPosition: pos}))
	return e, body
}

func TestTeleportGateStateMachine(t *testing.T) {
	w := ecs.NewWorld()
	fx := openPair(t, w, 64,
		geom.Frame{Position: cp.Vector{X: 100, Y: 200}, Orientation: geom.Up},
		geom.Frame{Position: cp.Vector{X: 400, Y: 100}, Orientation: geom.Left},
	)
	body, rb := addTraveler(t, w, cp.Vector{X: 100, Y: 195}, cp.Vector{Y: 300})

	sensing := &fakeSensing{}
	ts := NewTeleportSystem(sensing, geom.ExitTuning{Margin: 2})

	var teleported []TeleportedEvent
	ecs.Subscribe(w.Events(), func(evt TeleportedEvent) { teleported = append(teleported, evt) })

	sensing.contacts = []PortalContact{{Entity: body, Portal: fx.purple}}
	ts.Update(w)

	gate, ok := ecs.Get(w, body, component.TeleportGateComponent.Kind())
	require.True(t, ok)
	require.Equal(t, component.TeleportTransiting, gate.State)
	require.Zero(t, gate.Teleports)

	pos := rb.Position()
	require.Less(t, pos.X, 400.0)
	require.InDelta(t, 100, pos.Y, 32)
	require.InDelta(t, -300, rb.Velocity().X, 1e-6)

	w.Deferred().Drain(w)
	w.Events().Flush()
	require.Equal(t, component.TeleportCoolingDown, gate.State)
	require.Equal(t, portal.Purple, gate.CooldownColor)
	require.Equal(t, 1, gate.Teleports)
	require.Len(t, teleported, 1)
	require.Equal(t, portal.Purple, teleported[0].From)
	require.Equal(t, portal.Teal, teleported[0].To)

	// A second contact while cooling down is ignored.
	sensing.overlapping = []ecs.Entity{fx.purple}
	sensing.contacts = []PortalContact{{Entity: body, Portal: fx.purple}}
	ts.Update(w)
	require.Equal(t, component.TeleportCoolingDown, gate.State)
	require.Equal(t, 1, gate.Teleports)

	sensing.overlapping = nil
	ts.Update(w)
	require.Equal(t, component.TeleportOutside, gate.State)
}

func TestTeleportCooldownEndsOnOppositeColor(t *testing.T) {
	w := ecs.NewWorld()
	fx := openPair(t, w, 64,
		geom.Frame{Position: cp.Vector{X: 100, Y: 200}, Orientation: geom.Up},
		geom.Frame{Position: cp.Vector{X: 400, Y: 100}, Orientation: geom.Left},
	)
	body, _ := addTraveler(t, w, cp.Vector{X: 100, Y: 195}, cp.Vector{Y: 300})
	gate, _ := ecs.Get(w, body, component.TeleportGateComponent.Kind())
	gate.State = component.TeleportCoolingDown
	gate.CooldownColor = portal.Purple

	sensing := &fakeSensing{overlapping: []ecs.Entity{fx.purple, fx.teal}}
	NewTeleportSystem(sensing, geom.ExitTuning{}).Update(w)
	require.Equal(t, component.TeleportOutside, gate.State)
}

func TestTeleportIgnoresClosedPair(t *testing.T) {
	w := ecs.NewWorld()
	fx := openPair(t, w, 64,
		geom.Frame{Position: cp.Vector{X: 100, Y: 200}, Orientation: geom.Up},
		geom.Frame{Position: cp.Vector{X: 400, Y: 100}, Orientation: geom.Left},
	)
	fx.pair.Get(portal.Teal).Close()
	body, rb := addTraveler(t, w, cp.Vector{X: 100, Y: 195}, cp.Vector{Y: 300})

	ts := NewTeleportSystem(nil, geom.ExitTuning{})
	ts.Enter(body, fx.purple)
	ts.Update(w)

	gate, _ := ecs.Get(w, body, component.TeleportGateComponent.Kind())
	require.Equal(t, component.TeleportOutside, gate.State)
	require.Equal(t, 0, gate.Teleports)
	require.Equal(t, cp.Vector{X: 100, Y: 195}, rb.Position())
}

func TestTeleportMinimumUpwardExit(t *testing.T) {
	w := ecs.NewWorld()
	fx := openPair(t, w, 64,
		geom.Frame{Position: cp.Vector{X: 100, Y: 200}, Orientation: geom.Up},
		geom.Frame{Position: cp.Vector{X: 400, Y: 200}, Orientation: geom.Up},
	)
	body, rb := addTraveler(t, w, cp.Vector{X: 100, Y: 195}, cp.Vector{Y: 20})

	ts := NewTeleportSystem(nil, geom.ExitTuning{Margin: 1, MinExitVelocityUp: 180})
	ts.Enter(body, fx.purple)
	ts.Update(w)

	require.InDelta(t, -180, rb.Velocity().Y, 1e-6)
	require.Less(t, rb.Position().Y, 200.0)
}

func TestTeleportThroughPhysics(t *testing.T) {
	w := ecs.NewWorld()
	openPair(t, w, 64,
		geom.Frame{Position: cp.Vector{X: 100, Y: 200}, Orientation: geom.Up},
		geom.Frame{Position: cp.Vector{X: 400, Y: 100}, Orientation: geom.Left},
	)

	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: 100, Y: 150}))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Width: 16, Height: 16, Mass: 1}))
	require.NoError(t, ecs.Add(w, e, component.TeleportGateComponent.Kind(), &component.TeleportGate{}))

	physics := NewPhysicsSystem(nil, PhysicsConfig{Gravity: cp.Vector{Y: 900}})
	teleport := NewTeleportSystem(physics, geom.ExitTuning{Margin: 2})

	sched := ecs.NewScheduler(1.0/60.0, 5)
	sched.AddFixed(teleport)
	sched.AddFixed(physics)

	var teleported []TeleportedEvent
	ecs.Subscribe(w.Events(), func(evt TeleportedEvent) { teleported = append(teleported, evt) })

	for i := 0; i < 120 && len(teleported) == 0; i++ {
		sched.Step(w)
	}
	require.Len(t, teleported, 1)
	require.Equal(t, portal.Teal, teleported[0].To)
	require.Less(t, teleported[0].Position.X, 400.0)
	require.Less(t, teleported[0].Velocity.X, 0.0)
}

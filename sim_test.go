package main

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/ecs/system"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/levels"
	"github.com/milk9111/portalcore/portal"
	"github.com/milk9111/portalcore/prefabs"
	"github.com/stretchr/testify/require"
)

func newTestSimulation(t *testing.T) *Simulation {
	t.Helper()
	tuning, err := prefabs.LoadTuning(prefabs.TuningFile)
	require.NoError(t, err)
	lvl, err := levels.LoadLevelFromFS("chamber01.json")
	require.NoError(t, err)
	sim, err := NewSimulation(tuning, lvl)
	require.NoError(t, err)
	return sim
}

func TestSimulationOpensPortalPair(t *testing.T) {
	sim := newTestSimulation(t)

	var opened []system.PortalOpenedEvent
	ecs.Subscribe(sim.World.Events(), func(evt system.PortalOpenedEvent) { opened = append(opened, evt) })

	origin := sim.Input.Origin()
	require.NoError(t, sim.Fire(portal.Purple, origin.Add(cp.Vector{Y: 100})))
	require.NoError(t, sim.Fire(portal.Teal, origin.Add(cp.Vector{X: -100})))
	sim.Scheduler.Step(sim.World)

	require.Len(t, opened, 2)
	require.True(t, sim.Pair.Open())
	require.Equal(t, geom.Up, sim.Pair.Get(portal.Purple).Orientation)
	require.Equal(t, geom.Right, sim.Pair.Get(portal.Teal).Orientation)

	// Both sensors exist once the pair is open.
	sensors := 0
	ecs.ForEach(sim.World, component.PortalComponent.Kind(), func(e ecs.Entity, _ *component.Portal) {
		if _, ok := sim.Physics.PortalSensor(e); ok {
			sensors++
		}
	})
	require.Equal(t, 2, sensors)
}

func TestSimulationRunsLasers(t *testing.T) {
	sim := newTestSimulation(t)

	beams := 0
	ecs.Subscribe(sim.World.Events(), func(system.LaserPolylineEvent) { beams++ })

	for i := 0; i < 60; i++ {
		sim.Scheduler.Step(sim.World)
	}
	require.Equal(t, 60, beams)

	turrets := sim.World.Query(component.LaserScriptComponent.Kind())
	require.Len(t, turrets, 1)
	script, _ := ecs.Get(sim.World, turrets[0], component.LaserScriptComponent.Kind())
	require.Equal(t, "fire", script.Phase)
	require.True(t, ecs.Has(sim.World, turrets[0], component.LaserBeamComponent.Kind()))
}

func TestSimulationRejectsInvalidTuning(t *testing.T) {
	tuning, err := prefabs.LoadTuning(prefabs.TuningFile)
	require.NoError(t, err)
	tuning.Laser.MaxSegments = 3
	lvl, err := levels.LoadLevelFromFS("chamber01.json")
	require.NoError(t, err)

	_, err = NewSimulation(tuning, lvl)
	require.ErrorIs(t, err, prefabs.ErrInvalidTuning)
}

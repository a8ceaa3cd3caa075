package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/stretchr/testify/require"
)

const aimThenFireScript = `
initial_phase := "aim"

update := func(engine, state, phase, frame) {
	if phase == "aim" {
		engine.aim(0, 1)
		if frame >= 2 {
			engine.transition("fire")
		}
	} else if phase == "fire" {
		engine.set_firing(true)
	}
}
`

func addScriptedEmitter(t *testing.T, w *ecs.World, path string) (ecs.Entity, *component.LaserScript, *component.LaserEmitter) {
	t.Helper()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: 0, Y: 0}))
	require.NoError(t, ecs.Add(w, e, component.LaserEmitterComponent.Kind(), &component.LaserEmitter{Direction: cp.Vector{X: 1}, MaxRange: 100}))
	require.NoError(t, ecs.Add(w, e, component.LaserScriptComponent.Kind(), &component.LaserScript{ScriptPath: path}))
	script, _ := ecs.Get(w, e, component.LaserScriptComponent.Kind())
	emitter, _ := ecs.Get(w, e, component.LaserEmitterComponent.Kind())
	return e, script, emitter
}

func TestLaserScriptPhases(t *testing.T) {
	w := ecs.NewWorld()
	e, script, emitter := addScriptedEmitter(t, w, "inline.tengo")

	rt, err := compileLaserScript("inline.tengo", []byte(aimThenFireScript))
	require.NoError(t, err)
	require.Equal(t, "aim", rt.initial)

	sys := NewLaserScriptSystem()
	sys.runtimes[e] = rt

	sys.Update(w)
	require.Equal(t, "aim", script.Phase)
	require.Equal(t, 1, script.Frame)
	require.Equal(t, cp.Vector{Y: 1}, emitter.Direction)
	require.False(t, emitter.Firing)

	sys.Update(w)
	sys.Update(w)
	require.Equal(t, "fire", script.Phase)
	require.Equal(t, 0, script.Frame)

	sys.Update(w)
	require.True(t, emitter.Firing)
	require.Equal(t, 1, script.Frame)
}

func TestLaserScriptCompileError(t *testing.T) {
	_, err := compileLaserScript("broken.tengo", []byte(`update := func(engine {`))
	require.Error(t, err)
}

func TestLaserScriptRuntimeErrorStopsScript(t *testing.T) {
	w := ecs.NewWorld()
	e, script, _ := addScriptedEmitter(t, w, "failing.tengo")

	rt, err := compileLaserScript("failing.tengo", []byte(`
update := func(engine, state, phase, frame) {
	engine.missing()
}
`))
	require.NoError(t, err)
	require.Equal(t, defaultLaserPhase, rt.initial)

	sys := NewLaserScriptSystem()
	sys.runtimes[e] = rt
	sys.Update(w)
	require.True(t, rt.failed)
	require.Equal(t, defaultLaserPhase, script.Phase)
	require.Equal(t, 0, script.Frame)

	sys.Update(w)
	require.Equal(t, 0, script.Frame)
}

func TestLaserAttackScriptChargesThenFires(t *testing.T) {
	w := ecs.NewWorld()
	_, script, emitter := addScriptedEmitter(t, w, "laser_attack.tengo")

	target := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, target, component.TransformComponent.Kind(), &component.Transform{X: 0, Y: 50}))
	require.NoError(t, ecs.Add(w, target, component.HealthComponent.Kind(), &component.Health{Current: 10, Max: 10}))
	script.Target = uint64(target)

	sys := NewLaserScriptSystem()
	sys.Update(w)
	require.Equal(t, "charge", script.Phase)
	require.Equal(t, cp.Vector{Y: 1}, emitter.Direction)

	for i := 0; i < 45; i++ {
		sys.Update(w)
	}
	require.Equal(t, "fire", script.Phase)
	require.False(t, emitter.Firing)

	sys.Update(w)
	require.True(t, emitter.Firing)

	// A dead target ends the firing phase early.
	health, _ := ecs.Get(w, target, component.HealthComponent.Kind())
	health.Current = 0
	sys.Update(w)
	require.Equal(t, "cooldown", script.Phase)
}

func TestLaserScriptInvalidate(t *testing.T) {
	w := ecs.NewWorld()
	e, _, _ := addScriptedEmitter(t, w, "laser_attack.tengo")

	sys := NewLaserScriptSystem()
	sys.Update(w)
	require.Contains(t, sys.runtimes, e)

	sys.Invalidate("other.tengo")
	require.Contains(t, sys.runtimes, e)
	sys.Invalidate("laser_attack.tengo")
	require.NotContains(t, sys.runtimes, e)
}

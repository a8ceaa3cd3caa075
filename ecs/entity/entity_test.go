package entity

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/levels"
	"github.com/milk9111/portalcore/portal"
	"github.com/stretchr/testify/require"
)

func TestBuildTargetDummy(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "target_dummy.yaml")
	require.NoError(t, err)

	health, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 100.0, health.Current)
	require.Equal(t, 100.0, health.Max)

	caps, ok := ecs.Get(w, e, component.CapabilitiesComponent.Kind())
	require.True(t, ok)
	require.True(t, caps.Set.Has(component.CapDamageable))
	require.False(t, caps.Set.Has(component.CapPortal))

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.Equal(t, cp.Vector{X: 24, Y: 48}, body.Bounds())
	require.True(t, ecs.Has(w, e, component.TeleportGateComponent.Kind()))
}

func TestBuildLaserTurret(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "laser_turret.yaml")
	require.NoError(t, err)

	emitter, ok := ecs.Get(w, e, component.LaserEmitterComponent.Kind())
	require.True(t, ok)
	require.Equal(t, cp.Vector{X: 1}, emitter.Direction)
	require.Equal(t, 1600.0, emitter.MaxRange)
	require.Equal(t, uint32(7), emitter.Mask)

	script, ok := ecs.Get(w, e, component.LaserScriptComponent.Kind())
	require.True(t, ok)
	require.Equal(t, "laser_attack.tengo", script.ScriptPath)
}

func TestBuildEntityMissingPrefab(t *testing.T) {
	w := ecs.NewWorld()
	_, err := BuildEntity(w, "nope.yaml")
	require.Error(t, err)
	require.Empty(t, ecs.Entities(w))
}

func TestNewPortalEntities(t *testing.T) {
	w := ecs.NewWorld()
	pair, err := portal.NewPair(96)
	require.NoError(t, err)

	purple, teal, err := NewPortalEntities(w, pair, 12)
	require.NoError(t, err)

	pc, ok := ecs.Get(w, purple, component.PortalComponent.Kind())
	require.True(t, ok)
	require.Same(t, pair.Get(portal.Purple), pc.End)
	require.Equal(t, 12.0, pc.SensorDepth)

	tc, ok := ecs.Get(w, teal, component.PortalComponent.Kind())
	require.True(t, ok)
	require.Same(t, pc.End.Linked(), tc.End)

	_, _, err = NewPortalEntities(w, nil, 12)
	require.ErrorIs(t, err, portal.ErrUnlinkedPortal)
}

func TestPortalRequests(t *testing.T) {
	w := ecs.NewWorld()
	fire, err := FirePortal(w, portal.Teal, cp.Vector{X: 1, Y: 2}, cp.Vector{X: 1})
	require.NoError(t, err)
	req, ok := ecs.Get(w, fire, component.PortalFireRequestComponent.Kind())
	require.True(t, ok)
	require.Equal(t, portal.Teal, req.Color)

	clearReq, err := ClearPortals(w)
	require.NoError(t, err)
	require.True(t, ecs.Has(w, clearReq, component.PortalClearRequestComponent.Kind()))
}

func TestLoadLevelToWorld(t *testing.T) {
	lvl, err := levels.LoadLevelFromFS("chamber01.json")
	require.NoError(t, err)
	grid, err := lvl.Grid(32)
	require.NoError(t, err)

	w := ecs.NewWorld()
	spawned, err := LoadLevelToWorld(w, lvl, grid)
	require.NoError(t, err)
	require.Len(t, spawned, len(lvl.Entities))

	var turret, dummy ecs.Entity
	for i, placed := range lvl.Entities {
		switch placed.Prefab {
		case "laser_turret.yaml":
			turret = spawned[i]
		case "target_dummy.yaml":
			dummy = spawned[i]
		}
	}
	require.NotZero(t, turret)
	require.NotZero(t, dummy)

	script, ok := ecs.Get(w, turret, component.LaserScriptComponent.Kind())
	require.True(t, ok)
	require.Equal(t, uint64(dummy), script.Target)

	transform, ok := ecs.Get(w, turret, component.TransformComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 2*32.0+16, transform.X)
	require.Equal(t, 6*32.0+16, transform.Y)
}

package entity

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/prefabs"
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":       addTransform,
	"physics_body":    addPhysicsBody,
	"collision_layer": addCollisionLayer,
	"capabilities":    addCapabilities,
	"health":          addHealth,
	"teleport_gate":   addTeleportGate,
	"laser_emitter":   addLaserEmitter,
	"laser_script":    addLaserScript,
	"laser_receiver":  addLaserReceiver,
}

// componentBuildOrder lists components whose builders read earlier ones.
var componentBuildOrder = []string{
	"transform",
	"collision_layer",
	"capabilities",
	"health",
	"physics_body",
	"teleport_gate",
	"laser_emitter",
	"laser_script",
	"laser_receiver",
}

var capabilityNames = map[string]component.Capability{
	"portal":         component.CapPortal,
	"damageable":     component.CapDamageable,
	"laser_receiver": component.CapLaserReceiver,
	"carryable":      component.CapCarryable,
}

// BuildEntity creates an entity from a prefab. On any error the partly
// built entity is destroyed.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	names := make([]string, 0, len(spec.Components))
	seen := make(map[string]bool, len(spec.Components))
	for _, name := range componentBuildOrder {
		if _, ok := spec.Components[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range spec.Components {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	for _, name := range names {
		builder, ok := componentRegistry[name]
		if !ok {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, spec.Components[name], ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	return e, nil
}

// SetEntityTransform moves an entity that has not been registered with
// physics yet.
func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PhysicsBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if spec.Radius <= 0 && (spec.Width <= 0 || spec.Height <= 0) {
		return fmt.Errorf("physics body needs a radius or a width and height")
	}
	if !spec.Static && spec.Mass <= 0 {
		spec.Mass = 1
	}
	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:      spec.Width,
		Height:     spec.Height,
		Radius:     spec.Radius,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Static:     spec.Static,
		Sensor:     spec.Sensor,
	})
}

func addCollisionLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CollisionLayerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collision layer spec: %w", err)
	}
	return ecs.Add(w, e, component.CollisionLayerComponent.Kind(), &component.CollisionLayer{Category: spec.Category, Mask: spec.Mask})
}

func addCapabilities(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CapabilitiesComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode capabilities spec: %w", err)
	}
	var set component.Capability
	for _, name := range spec {
		c, ok := capabilityNames[name]
		if !ok {
			return fmt.Errorf("unknown capability %q", name)
		}
		set |= c
	}
	return ecs.Add(w, e, component.CapabilitiesComponent.Kind(), &component.Capabilities{Set: set})
}

func addHealth(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.HealthComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode health spec: %w", err)
	}
	if spec.Max <= 0 {
		spec.Max = 1
	}
	if spec.Current <= 0 {
		spec.Current = spec.Max
	}
	return ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: spec.Current, Max: spec.Max})
}

func addTeleportGate(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	if _, err := prefabs.DecodeComponentSpec[prefabs.TeleportGateComponentSpec](raw); err != nil {
		return fmt.Errorf("decode teleport gate spec: %w", err)
	}
	return ecs.Add(w, e, component.TeleportGateComponent.Kind(), &component.TeleportGate{})
}

func addLaserEmitter(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.LaserEmitterComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode laser emitter spec: %w", err)
	}
	dir := cp.Vector{X: spec.DirectionX, Y: spec.DirectionY}
	if dir.LengthSq() == 0 {
		dir = cp.Vector{X: 1}
	}
	return ecs.Add(w, e, component.LaserEmitterComponent.Kind(), &component.LaserEmitter{
		Direction:       dir.Normalize(),
		MaxRange:        spec.MaxRange,
		DamagePerSecond: spec.DamagePerSecond,
		Mask:            spec.Mask,
		Firing:          spec.Firing,
	})
}

func addLaserScript(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.LaserScriptComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode laser script spec: %w", err)
	}
	if spec.Script == "" {
		return fmt.Errorf("laser script in %s needs a script path", ctx.PrefabPath)
	}
	return ecs.Add(w, e, component.LaserScriptComponent.Kind(), &component.LaserScript{ScriptPath: spec.Script, Phase: spec.Phase})
}

func addLaserReceiver(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	if _, err := prefabs.DecodeComponentSpec[prefabs.LaserReceiverComponentSpec](raw); err != nil {
		return fmt.Errorf("decode laser receiver spec: %w", err)
	}
	return ecs.Add(w, e, component.LaserReceiverComponent.Kind(), &component.LaserReceiver{})
}

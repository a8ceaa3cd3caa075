package entity

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/portal"
)

// NewPortalEntities creates one entity per end of pair. The pair is checked
// first so a broken link never reaches the physics or teleport systems.
func NewPortalEntities(w *ecs.World, pair *portal.Pair, sensorDepth float64) (purple, teal ecs.Entity, err error) {
	if pair == nil {
		return 0, 0, fmt.Errorf("portal entities: %w", portal.ErrUnlinkedPortal)
	}
	if err := pair.Validate(); err != nil {
		return 0, 0, fmt.Errorf("portal entities: %w", err)
	}

	build := func(color portal.Color) (ecs.Entity, error) {
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.PortalComponent.Kind(), &component.Portal{End: pair.Get(color), SensorDepth: sensorDepth}); err != nil {
			return 0, err
		}
		return e, nil
	}

	if purple, err = build(portal.Purple); err != nil {
		return 0, 0, fmt.Errorf("portal entities: %w", err)
	}
	if teal, err = build(portal.Teal); err != nil {
		ecs.DestroyEntity(w, purple)
		return 0, 0, fmt.Errorf("portal entities: %w", err)
	}
	return purple, teal, nil
}

// FirePortal queues a request to open color along the aim ray.
func FirePortal(w *ecs.World, color portal.Color, origin, dir cp.Vector) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.PortalFireRequestComponent.Kind(), &component.PortalFireRequest{
		Color:     color,
		Origin:    origin,
		Direction: dir,
	}); err != nil {
		return 0, err
	}
	return e, nil
}

// ClearPortals queues a request to close the pair.
func ClearPortals(w *ecs.World) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.PortalClearRequestComponent.Kind(), &component.PortalClearRequest{}); err != nil {
		return 0, err
	}
	return e, nil
}

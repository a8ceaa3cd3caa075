package entity

import (
	"fmt"

	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/levels"
	"github.com/milk9111/portalcore/tilegrid"
)

// LoadLevelToWorld spawns the level's prefab entities centered on their
// cells. A laser script's "target" prop names the prefab it aims at.
func LoadLevelToWorld(w *ecs.World, lvl *levels.Level, grid *tilegrid.Grid) ([]ecs.Entity, error) {
	if w == nil || lvl == nil || grid == nil {
		return nil, fmt.Errorf("load level: missing world, level or grid")
	}

	spawned := make([]ecs.Entity, 0, len(lvl.Entities))
	byPrefab := make(map[string]ecs.Entity, len(lvl.Entities))
	for _, placed := range lvl.Entities {
		e, err := BuildEntity(w, placed.Prefab)
		if err != nil {
			return spawned, fmt.Errorf("load level: %w", err)
		}
		center := grid.CellCenter(tilegrid.Cell{X: placed.X, Y: placed.Y})
		if err := SetEntityTransform(w, e, center.X, center.Y, 0); err != nil {
			return spawned, fmt.Errorf("load level: place %s: %w", placed.Prefab, err)
		}
		spawned = append(spawned, e)
		if _, ok := byPrefab[placed.Prefab]; !ok {
			byPrefab[placed.Prefab] = e
		}
	}

	// Laser scripts without an explicit target aim at the first damageable.
	var defaultTarget ecs.Entity
	for _, e := range spawned {
		if caps, ok := ecs.Get(w, e, component.CapabilitiesComponent.Kind()); ok && caps.Set.Has(component.CapDamageable) {
			defaultTarget = e
			break
		}
	}
	for i, placed := range lvl.Entities {
		script, ok := ecs.Get(w, spawned[i], component.LaserScriptComponent.Kind())
		if !ok {
			continue
		}
		target := defaultTarget
		if name, ok := placed.Props["target"].(string); ok {
			if e, found := byPrefab[name]; found {
				target = e
			}
		}
		script.Target = uint64(target)
	}

	return spawned, nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/ecs/entity"
	"github.com/milk9111/portalcore/ecs/system"
	"github.com/milk9111/portalcore/levels"
	"github.com/milk9111/portalcore/portal"
	"github.com/milk9111/portalcore/prefabs"
	"github.com/milk9111/portalcore/tilegrid"
	log "github.com/sirupsen/logrus"
)

// Simulation owns the world of one chamber and the systems that run it.
type Simulation struct {
	World     *ecs.World
	Scheduler *ecs.Scheduler
	Grid      *tilegrid.Grid
	Pair      *portal.Pair
	Level     *levels.Level

	tuning prefabs.Tuning

	Input       *system.InputSystem
	PortalGun   *system.PortalGunSystem
	LaserScript *system.LaserScriptSystem
	Teleport    *system.TeleportSystem
	Physics     *system.PhysicsSystem
	Laser       *system.LaserSystem
}

// NewSimulation builds a chamber from tuning and a level. Fixed systems run
// in the order gun, laser scripts, teleport, physics, laser.
func NewSimulation(tuning prefabs.Tuning, lvl *levels.Level) (*Simulation, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	grid, err := lvl.Grid(tuning.CellSize)
	if err != nil {
		return nil, fmt.Errorf("simulation: build grid: %w", err)
	}
	pair, err := portal.NewPair(tuning.Portal.Length)
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	w := ecs.NewWorld()
	if _, _, err := entity.NewPortalEntities(w, pair, tuning.Portal.SensorDepth); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	physics := system.NewPhysicsSystem(grid, system.PhysicsConfig{
		Gravity:    tuning.Gravity(),
		Iterations: tuning.Physics.Iterations,
	})

	search, err := newSearch(tuning, grid, pair)
	if err != nil {
		return nil, err
	}
	gun, err := system.NewPortalGunSystem(pair, search, portal.NewCollisionZones(grid))
	if err != nil {
		return nil, err
	}

	if _, err := entity.LoadLevelToWorld(w, lvl, grid); err != nil {
		return nil, err
	}
	applyLaserDefaults(w, tuning)

	sim := &Simulation{
		World:       w,
		Scheduler:   ecs.NewScheduler(tuning.Physics.FixedStep, tuning.Physics.MaxStepsPerFrame),
		Grid:        grid,
		Pair:        pair,
		Level:       lvl,
		tuning:      tuning,
		Input:       system.NewInputSystem(grid.CellCenter(tilegrid.Cell{X: lvl.Gun.X, Y: lvl.Gun.Y})),
		PortalGun:   gun,
		LaserScript: system.NewLaserScriptSystem(),
		Teleport:    system.NewTeleportSystem(physics, tuning.ExitTuning()),
		Physics:     physics,
		Laser:       system.NewLaserSystem(physics),
	}

	sim.Scheduler.AddFixed(sim.PortalGun)
	sim.Scheduler.AddFixed(sim.LaserScript)
	sim.Scheduler.AddFixed(sim.Teleport)
	sim.Scheduler.AddFixed(sim.Physics)
	sim.Scheduler.AddFixed(sim.Laser)

	ecs.Subscribe(w.Events(), func(evt system.TeleportedEvent) {
		log.WithFields(log.Fields{"entity": evt.Entity, "from": evt.From, "to": evt.To}).Info("teleported")
	})
	ecs.Subscribe(w.Events(), func(evt system.LaserReceiverChangedEvent) {
		log.WithFields(log.Fields{"receiver": evt.Receiver, "powered": evt.Powered}).Info("receiver changed")
	})

	return sim, nil
}

func newSearch(tuning prefabs.Tuning, grid *tilegrid.Grid, pair *portal.Pair) (portal.Searcher, error) {
	switch tuning.Portal.SearchMode {
	case prefabs.SearchModeFree:
		return portal.NewFreeSearch(grid, tuning.Portal.Length, tuning.Portal.MaxAimDistance)
	default:
		return portal.NewGridSearch(grid, tuning.Portal.Length, tuning.Portal.MaxAimDistance, pair)
	}
}

// applyLaserDefaults fills emitter range and damage left unset by prefabs.
func applyLaserDefaults(w *ecs.World, tuning prefabs.Tuning) {
	ecs.ForEach(w, component.LaserEmitterComponent.Kind(), func(_ ecs.Entity, emitter *component.LaserEmitter) {
		if emitter.MaxRange <= 0 {
			emitter.MaxRange = tuning.Laser.MaxRange
		}
		if emitter.DamagePerSecond <= 0 {
			emitter.DamagePerSecond = tuning.Laser.DamagePerSecond
		}
	})
}

// Fire queues a portal shot from the gun origin toward target.
func (s *Simulation) Fire(color portal.Color, target cp.Vector) error {
	_, err := entity.FirePortal(s.World, color, s.Input.Origin(), target.Sub(s.Input.Origin()))
	return err
}

// Reload applies changed tuning and scripts. Changes that need a rebuilt
// world, such as cell size or portal length, are logged and skipped.
func (s *Simulation) Reload(changed []string) {
	for _, name := range changed {
		switch {
		case strings.HasPrefix(name, "scripts/"):
			s.LaserScript.Invalidate(strings.TrimPrefix(name, "scripts/"))
			log.WithField("script", name).Info("reload laser script")
		case name == prefabs.TuningFile:
			s.reloadTuning()
		}
	}
}

func (s *Simulation) reloadTuning() {
	next, err := prefabs.LoadTuning(prefabs.TuningFile)
	if err != nil {
		log.WithError(err).Warn("keep previous tuning")
		return
	}
	if next.CellSize != s.tuning.CellSize || next.Portal.Length != s.tuning.Portal.Length {
		log.Warn("cell_size and portal.length apply on restart")
		next.CellSize = s.tuning.CellSize
		next.Portal.Length = s.tuning.Portal.Length
	}

	log.SetLevel(next.LogLevel())
	s.Teleport.SetTuning(next.ExitTuning())
	s.Physics.Space().SetGravity(next.Gravity())
	if search, err := newSearch(next, s.Grid, s.Pair); err == nil {
		s.PortalGun.SetSearch(search)
	}
	s.tuning = next
	log.Info("reload tuning")
}

// Step advances the simulation by frameDt seconds of wall time.
func (s *Simulation) Step(frameDt float64) int {
	return s.Scheduler.Advance(s.World, frameDt)
}

package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/portalcore/ecs/system"
	"github.com/milk9111/portalcore/prefabs"
	log "github.com/sirupsen/logrus"
)

var aimColor = color.RGBA{R: 255, G: 255, B: 255, A: 120}

type Game struct {
	frames int
	debug  bool

	sim     *Simulation
	render  *system.RenderSystem
	watcher *prefabs.Watcher
}

func NewGame(sim *Simulation, debug bool) *Game {
	g := &Game{
		debug:  debug,
		sim:    sim,
		render: system.NewRenderSystem(sim.Grid),
	}
	sim.Scheduler.AddFrame(sim.Input)

	if watcher, err := prefabs.NewWatcher(prefabs.DiskDir(), prefabs.DiskDir()+"/scripts"); err == nil {
		g.watcher = watcher
	} else {
		log.WithError(err).Debug("prefab hot reload disabled")
	}
	return g
}

func (g *Game) Update() error {
	g.frames++

	if g.watcher != nil {
		if changed := g.watcher.Poll(); len(changed) > 0 {
			g.sim.Reload(changed)
		}
	}

	g.sim.Step(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.sim.World, screen)

	origin := g.sim.Input.Origin()
	tip := origin.Add(g.sim.Input.Aim().Mult(48))
	vector.StrokeLine(screen, float32(origin.X), float32(origin.Y), float32(tip.X), float32(tip.Y), 2, aimColor, true)

	if g.debug {
		system.DrawPhysicsDebug(g.sim.Physics.Space(), screen)
		system.DrawTeleportDebug(g.sim.World, screen)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f  portals open: %v\nLMB purple  RMB teal  C clear", ebiten.ActualFPS(), g.sim.Pair.Open()))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	size := g.sim.Grid.CellSize()
	return float64(g.sim.Grid.Width()) * size, float64(g.sim.Grid.Height()) * size
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

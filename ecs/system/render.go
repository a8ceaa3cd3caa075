package system

import (
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/portal"
	"github.com/milk9111/portalcore/tilegrid"
)

var (
	panelColor    = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	groundColor   = color.RGBA{R: 90, G: 80, B: 70, A: 255}
	openCellColor = color.RGBA{R: 40, G: 40, B: 48, A: 255}
	bodyColor     = color.RGBA{R: 220, G: 140, B: 60, A: 255}
	deadColor     = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	receiverOn    = color.RGBA{R: 80, G: 240, B: 120, A: 255}
	receiverOff   = color.RGBA{R: 40, G: 100, B: 60, A: 255}
	laserColor    = color.RGBA{R: 255, G: 40, B: 40, A: 230}
	anomalyColor  = color.RGBA{R: 255, G: 160, B: 40, A: 160}
)

var portalColors = map[portal.Color]color.RGBA{
	portal.Purple: {R: 170, G: 70, B: 230, A: 255},
	portal.Teal:   {R: 40, G: 200, B: 200, A: 255},
}

const (
	portalStroke = 4
	laserStroke  = 2
)

// RenderSystem draws the chamber with flat shapes: tiles, bodies, open
// portals and the latest laser beams.
type RenderSystem struct {
	grid *tilegrid.Grid
}

func NewRenderSystem(grid *tilegrid.Grid) *RenderSystem {
	return &RenderSystem{grid: grid}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	r.drawGrid(screen)

	entities := w.Query(component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind())
	slices.Sort(entities)
	for _, e := range entities {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if body.Sensor {
			continue
		}
		size := bodyBounds(body)
		x := float32(t.X - size.X/2)
		y := float32(t.Y - size.Y/2)
		vector.DrawFilledRect(screen, x, y, float32(size.X), float32(size.Y), entityColor(w, e), false)
	}

	ecs.ForEach(w, component.PortalComponent.Kind(), func(_ ecs.Entity, p *component.Portal) {
		if p.End == nil || !p.End.Active {
			return
		}
		drawPortal(screen, p.End)
	})

	ecs.ForEach(w, component.LaserBeamComponent.Kind(), func(_ ecs.Entity, beam *component.LaserBeam) {
		drawBeam(screen, beam)
	})
}

func (r *RenderSystem) drawGrid(screen *ebiten.Image) {
	if r.grid == nil {
		return
	}
	size := float32(r.grid.CellSize())
	r.grid.Each(func(c tilegrid.Cell, panel, ground bool) {
		if !panel && !ground {
			return
		}
		clr := groundColor
		if panel {
			clr = panelColor
		}
		if !r.grid.CollisionEnabled(c) {
			clr = openCellColor
		}
		vector.DrawFilledRect(screen, float32(c.X)*size, float32(c.Y)*size, size, size, clr, false)
	})
}

func entityColor(w *ecs.World, e ecs.Entity) color.Color {
	if receiver, ok := ecs.Get(w, e, component.LaserReceiverComponent.Kind()); ok {
		if receiver.Powered {
			return receiverOn
		}
		return receiverOff
	}
	if health, ok := ecs.Get(w, e, component.HealthComponent.Kind()); ok && !health.Alive() {
		return deadColor
	}
	return bodyColor
}

func drawPortal(screen *ebiten.Image, p *portal.Portal) {
	half := geom.Tangent(p.Orientation).Mult(p.Length / 2)
	a := p.Position.Sub(half)
	b := p.Position.Add(half)
	clr := portalColors[p.Color]
	vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), portalStroke, clr, true)

	// A short tick shows which way the portal faces.
	tip := p.Position.Add(p.Orientation.Mult(8))
	vector.StrokeLine(screen, float32(p.Position.X), float32(p.Position.Y), float32(tip.X), float32(tip.Y), 2, clr, true)
}

func drawBeam(screen *ebiten.Image, beam *component.LaserBeam) {
	clr := laserColor
	if beam.Anomaly {
		clr = anomalyColor
	}
	for i := 0; i < beam.SegmentCount; i++ {
		points := beam.Segments[i].Positions()
		for j := 1; j < len(points); j++ {
			drawSegment(screen, points[j-1], points[j], clr)
		}
	}
}

func drawSegment(screen *ebiten.Image, a, b cp.Vector, clr color.Color) {
	vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), laserStroke, clr, true)
}

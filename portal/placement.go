package portal

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/tilegrid"
)

// Placement is a candidate portal location. Cells run along the portal
// tangent from one end to the other.
type Placement struct {
	Position    cp.Vector
	Orientation cp.Vector
	Cells       []tilegrid.Cell
}

// NoPlacement is returned when no legal location exists.
var NoPlacement = Placement{Position: cp.Vector{X: math.NaN(), Y: math.NaN()}}

// Ok reports whether p is a real placement rather than NoPlacement.
func (p Placement) Ok() bool {
	return len(p.Cells) > 0
}

// Searcher finds where a portal of a color may open along an aim ray.
type Searcher interface {
	OpenPortal(entry geom.Ray, color Color) Placement
}

// Occupancy answers whether a portal of a color already covers a cell.
type Occupancy interface {
	Occupied(c tilegrid.Cell, color Color) bool
}

// aim holds what both strategies share: the grid and how far a shot reaches.
type aim struct {
	grid        *tilegrid.Grid
	length      float64
	maxDistance float64
}

// entry resolves the aim ray to the first solid cell and the orientation the
// portal would face there. The orientation opposes the ray's dominant axis;
// the secondary axis is tried when the dominant side is not open. Vertical
// wins ties.
func (a aim) entry(ray geom.Ray, support tilegrid.Layer) (tilegrid.Hit, cp.Vector, bool) {
	dir := ray.Direction
	if dir.X == 0 && dir.Y == 0 {
		return tilegrid.Hit{}, cp.Vector{}, false
	}
	dir = dir.Normalize()
	hit, ok := a.grid.Raycast(ray.Origin, dir, a.maxDistance)
	if !ok || !a.grid.HasTile(hit.Cell, support) {
		return tilegrid.Hit{}, cp.Vector{}, false
	}
	for _, o := range orientationCandidates(dir) {
		if !a.grid.Solid(hit.Cell.Step(o)) {
			return hit, o, true
		}
	}
	return tilegrid.Hit{}, cp.Vector{}, false
}

func orientationCandidates(dir cp.Vector) []cp.Vector {
	vertical := cp.Vector{Y: -sign(dir.Y)}
	horizontal := cp.Vector{X: -sign(dir.X)}
	switch {
	case dir.X == 0:
		return []cp.Vector{vertical}
	case dir.Y == 0:
		return []cp.Vector{horizontal}
	case math.Abs(dir.Y) >= math.Abs(dir.X):
		return []cp.Vector{vertical, horizontal}
	}
	return []cp.Vector{horizontal, vertical}
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

func appendUnique(cells []tilegrid.Cell, c tilegrid.Cell) []tilegrid.Cell {
	for _, existing := range cells {
		if existing == c {
			return cells
		}
	}
	return append(cells, c)
}

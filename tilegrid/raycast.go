package tilegrid

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Hit is the first solid cell crossed by a grid raycast.
type Hit struct {
	Cell     Cell
	Point    cp.Vector
	Normal   cp.Vector
	Distance float64
}

// Raycast walks cells along dir (unit length) from origin using a DDA and
// returns the first cell holding a tile on any layer within maxDist. When
// origin already lies in a solid cell that cell is returned with zero
// distance and a normal opposing the dominant travel axis.
func (g *Grid) Raycast(origin, dir cp.Vector, maxDist float64) (Hit, bool) {
	if dir.X == 0 && dir.Y == 0 {
		return Hit{}, false
	}
	cell := g.WorldToCell(origin)
	if g.Solid(cell) {
		return Hit{Cell: cell, Point: origin, Normal: dominantNormal(dir)}, true
	}

	stepX, tMaxX, tDeltaX := ddaAxis(origin.X, dir.X, cell.X, g.cellSize)
	stepY, tMaxY, tDeltaY := ddaAxis(origin.Y, dir.Y, cell.Y, g.cellSize)

	for {
		var t float64
		var normal cp.Vector
		if tMaxX < tMaxY {
			t = tMaxX
			cell.X += stepX
			tMaxX += tDeltaX
			normal = cp.Vector{X: float64(-stepX)}
		} else {
			t = tMaxY
			cell.Y += stepY
			tMaxY += tDeltaY
			normal = cp.Vector{Y: float64(-stepY)}
		}
		if t > maxDist {
			return Hit{}, false
		}
		if !g.rayCanContinue(cell, stepX, stepY) {
			return Hit{}, false
		}
		if g.Solid(cell) {
			return Hit{
				Cell:     cell,
				Point:    origin.Add(dir.Mult(t)),
				Normal:   normal,
				Distance: t,
			}, true
		}
	}
}

// rayCanContinue stops the walk once it leaves the grid moving away from it.
func (g *Grid) rayCanContinue(c Cell, stepX, stepY int) bool {
	if c.X < 0 && stepX <= 0 || c.X >= g.width && stepX >= 0 {
		return false
	}
	if c.Y < 0 && stepY <= 0 || c.Y >= g.height && stepY >= 0 {
		return false
	}
	return true
}

func ddaAxis(origin, dir float64, cell int, size float64) (step int, tMax, tDelta float64) {
	switch {
	case dir > 0:
		next := float64(cell+1) * size
		return 1, (next - origin) / dir, size / dir
	case dir < 0:
		next := float64(cell) * size
		return -1, (next - origin) / dir, -size / dir
	}
	return 0, math.Inf(1), math.Inf(1)
}

func dominantNormal(dir cp.Vector) cp.Vector {
	if math.Abs(dir.X) > math.Abs(dir.Y) {
		return cp.Vector{X: -sign(dir.X)}
	}
	return cp.Vector{Y: -sign(dir.Y)}
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

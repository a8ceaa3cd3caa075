package tilegrid

import (
	"errors"
	"math"

	"github.com/jakecoffman/cp"
)

var (
	ErrInvalidGrid  = errors.New("tilegrid: invalid dimensions")
	ErrUnknownLayer = errors.New("tilegrid: unknown layer")
	ErrOutOfBounds  = errors.New("tilegrid: cell out of bounds")
)

// CollisionToggler enables or disables per-cell collision.
type CollisionToggler interface {
	SetCollision(c Cell, enabled bool)
	CollisionEnabled(c Cell) bool
}

// Grid stores two tile layers plus an independent collision flag per cell.
// World (0,0) is the top-left corner of cell (0,0).
type Grid struct {
	width    int
	height   int
	cellSize float64

	layers   [layerCount][]bool
	disabled []bool

	space  *cp.Space
	shapes map[Cell]*cp.Shape
	filter cp.ShapeFilter
	ctype  cp.CollisionType
}

func New(width, height int, cellSize float64) (*Grid, error) {
	if width <= 0 || height <= 0 || cellSize <= 0 || math.IsNaN(cellSize) {
		return nil, ErrInvalidGrid
	}
	g := &Grid{
		width:    width,
		height:   height,
		cellSize: cellSize,
		disabled: make([]bool, width*height),
	}
	for i := range g.layers {
		g.layers[i] = make([]bool, width*height)
	}
	return g, nil
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

func (g *Grid) CellSize() float64 {
	return g.cellSize
}

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

func (g *Grid) index(c Cell) int {
	return c.Y*g.width + c.X
}

// SetTile sets tile presence on one layer. When a physics space is attached
// the cell's static shape is created or removed to match.
func (g *Grid) SetTile(c Cell, layer Layer, present bool) error {
	if !g.InBounds(c) {
		return ErrOutOfBounds
	}
	if layer >= layerCount {
		return ErrUnknownLayer
	}
	g.layers[layer][g.index(c)] = present
	if g.space != nil {
		g.syncShape(c)
	}
	return nil
}

// HasTile reports tile presence on a layer. Out-of-bounds cells are empty.
func (g *Grid) HasTile(c Cell, layer Layer) bool {
	if !g.InBounds(c) || layer >= layerCount {
		return false
	}
	return g.layers[layer][g.index(c)]
}

// Solid reports whether any layer has a tile at c.
func (g *Grid) Solid(c Cell) bool {
	return g.HasTile(c, Panel) || g.HasTile(c, Ground)
}

// WorldToCell returns the cell containing p.
func (g *Grid) WorldToCell(p cp.Vector) Cell {
	return Cell{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Y / g.cellSize)),
	}
}

func (g *Grid) CellCenter(c Cell) cp.Vector {
	return cp.Vector{
		X: (float64(c.X) + 0.5) * g.cellSize,
		Y: (float64(c.Y) + 0.5) * g.cellSize,
	}
}

// FaceCenter returns the midpoint of the side of c facing dir.
func (g *Grid) FaceCenter(c Cell, dir cp.Vector) cp.Vector {
	return g.CellCenter(c).Add(dir.Mult(g.cellSize / 2))
}

// CellBB returns the world bounding box of c.
func (g *Grid) CellBB(c Cell) cp.BB {
	x0 := float64(c.X) * g.cellSize
	y0 := float64(c.Y) * g.cellSize
	return cp.BB{L: x0, B: y0, R: x0 + g.cellSize, T: y0 + g.cellSize}
}

// CollisionEnabled reports the collision flag. Cells start enabled.
func (g *Grid) CollisionEnabled(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return !g.disabled[g.index(c)]
}

// SetCollision flips the collision flag and, when attached, the filter of
// the cell's static shape so bodies and queries stop seeing it.
func (g *Grid) SetCollision(c Cell, enabled bool) {
	if !g.InBounds(c) {
		return
	}
	g.disabled[g.index(c)] = !enabled
	if shape, ok := g.shapes[c]; ok {
		if enabled {
			shape.SetFilter(g.filter)
		} else {
			shape.SetFilter(cp.SHAPE_FILTER_NONE)
		}
		shape.Body().ActivateStatic(shape)
	}
}

// Each visits every cell holding a tile on any layer in row-major order.
func (g *Grid) Each(fn func(c Cell, panel, ground bool)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Cell{X: x, Y: y}
			panel, ground := g.HasTile(c, Panel), g.HasTile(c, Ground)
			if panel || ground {
				fn(c, panel, ground)
			}
		}
	}
}

package tilegrid

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Cell is an integer grid coordinate. Y grows downward.
type Cell struct {
	X, Y int
}

func (c Cell) Add(o Cell) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y}
}

// Step moves one cell along a direction, rounding each component.
func (c Cell) Step(dir cp.Vector) Cell {
	return Cell{X: c.X + int(math.Round(dir.X)), Y: c.Y + int(math.Round(dir.Y))}
}

// Offset moves n cells along a direction.
func (c Cell) Offset(dir cp.Vector, n int) Cell {
	return Cell{X: c.X + n*int(math.Round(dir.X)), Y: c.Y + n*int(math.Round(dir.Y))}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Less orders cells row-major.
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Layer identifies one of the two overlaid tile layers.
type Layer uint8

const (
	// Panel tiles are the portal-bearing surface.
	Panel Layer = iota
	// Ground tiles are permanent backing.
	Ground
	layerCount
)

func (l Layer) String() string {
	switch l {
	case Panel:
		return "panel"
	case Ground:
		return "ground"
	}
	return fmt.Sprintf("layer(%d)", uint8(l))
}

// ParseLayer converts a layer name to a Layer.
func ParseLayer(name string) (Layer, error) {
	switch name {
	case "panel":
		return Panel, nil
	case "ground":
		return Ground, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

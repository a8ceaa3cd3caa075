package portal

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/tilegrid"
)

var ErrEvenTileCount = errors.New("portal: grid-locked length must cover an odd number of tiles")

// GridSearch locks portals to whole panel tiles. The window is centred on
// the entry cell and nudged sideways when it doesn't fit.
type GridSearch struct {
	aim
	occupancy Occupancy
	tiles     int
}

func NewGridSearch(grid *tilegrid.Grid, length, maxDistance float64, occupancy Occupancy) (*GridSearch, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	n, err := TileCount(length, grid.CellSize())
	if err != nil {
		return nil, err
	}
	return &GridSearch{
		aim:       aim{grid: grid, length: length, maxDistance: maxDistance},
		occupancy: occupancy,
		tiles:     n,
	}, nil
}

// TileCount converts a portal length to the odd number of cells it covers.
func TileCount(length, cellSize float64) (int, error) {
	n := int(math.Ceil(length/cellSize - 1e-9))
	if n%2 == 0 {
		return 0, fmt.Errorf("%w: %g/%g = %d tiles", ErrEvenTileCount, length, cellSize, n)
	}
	return n, nil
}

func (s *GridSearch) Tiles() int {
	return s.tiles
}

func (s *GridSearch) OpenPortal(entry geom.Ray, color Color) Placement {
	hit, o, ok := s.entry(entry, tilegrid.Panel)
	if !ok {
		return NoPlacement
	}

	tangent := geom.Tangent(o)
	k := (s.tiles - 1) / 2
	for _, shift := range nudgeOrder(k) {
		center := hit.Cell.Offset(tangent, shift)
		if cells, ok := s.window(center, o, k, color.Opposite()); ok {
			return Placement{
				Position:    s.grid.FaceCenter(center, o),
				Orientation: o,
				Cells:       cells,
			}
		}
	}
	return NoPlacement
}

// window returns the 2k+1 cells around center when each one carries a panel
// tile, faces open space and is not covered by a blocker-colored portal.
func (s *GridSearch) window(center tilegrid.Cell, o cp.Vector, k int, blocker Color) ([]tilegrid.Cell, bool) {
	tangent := geom.Tangent(o)
	cells := make([]tilegrid.Cell, 0, 2*k+1)
	for i := -k; i <= k; i++ {
		c := center.Offset(tangent, i)
		if !s.grid.HasTile(c, tilegrid.Panel) || s.grid.Solid(c.Step(o)) {
			return nil, false
		}
		if s.occupancy != nil && s.occupancy.Occupied(c, blocker) {
			return nil, false
		}
		cells = append(cells, c)
	}
	return cells, true
}

// nudgeOrder yields 0, +1, -1, ..., +k, -k.
func nudgeOrder(k int) []int {
	out := make([]int, 0, 2*k+1)
	out = append(out, 0)
	for i := 1; i <= k; i++ {
		out = append(out, i, -i)
	}
	return out
}

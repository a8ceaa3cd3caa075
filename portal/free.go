package portal

import (
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/tilegrid"
)

// scanInset keeps window samples strictly inside the portal span so the
// ends don't land on a neighbouring cell boundary.
const scanInset = 1e-6

// FreeSearch places portals anywhere along a surface. The position follows
// the hit point along the surface and is snapped to the entry cell's face on
// the perpendicular axis.
type FreeSearch struct {
	aim
}

func NewFreeSearch(grid *tilegrid.Grid, length, maxDistance float64) (*FreeSearch, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	return &FreeSearch{aim: aim{grid: grid, length: length, maxDistance: maxDistance}}, nil
}

// OpenPortal scans the window one cell width at a time. Every sample needs a
// ground tile under it and nothing solid on the open side.
func (s *FreeSearch) OpenPortal(entry geom.Ray, _ Color) Placement {
	hit, o, ok := s.entry(entry, tilegrid.Ground)
	if !ok {
		return NoPlacement
	}

	cs := s.grid.CellSize()
	tangent := geom.Tangent(o)
	face := s.grid.FaceCenter(hit.Cell, o)
	along := hit.Point.Sub(face).Dot(tangent)
	position := face.Add(tangent.Mult(along))

	half := s.length/2 - scanInset
	var cells []tilegrid.Cell
	for offset := -half; ; offset += cs {
		if offset > half {
			offset = half
		}
		sample := position.Add(tangent.Mult(offset)).Sub(o.Mult(cs / 2))
		c := s.grid.WorldToCell(sample)
		if !s.grid.HasTile(c, tilegrid.Ground) || s.grid.Solid(c.Step(o)) {
			return NoPlacement
		}
		cells = appendUnique(cells, c)
		if offset >= half {
			break
		}
	}

	return Placement{Position: position, Orientation: o, Cells: cells}
}

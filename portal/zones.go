package portal

import (
	"slices"

	"github.com/milk9111/portalcore/tilegrid"
)

// CollisionZones suppresses tile collision around an open portal pair so
// bodies can pass into the wall. Each color holds its affected cells plus
// the cell behind each one; the union is disabled only while both colors
// hold a zone.
type CollisionZones struct {
	toggler  tilegrid.CollisionToggler
	zones    [colorCount][]tilegrid.Cell
	disabled map[tilegrid.Cell]struct{}
}

func NewCollisionZones(toggler tilegrid.CollisionToggler) *CollisionZones {
	return &CollisionZones{
		toggler:  toggler,
		disabled: make(map[tilegrid.Cell]struct{}),
	}
}

// Place records the zone for color. It reports false when the zone is
// unchanged, in which case collision state is left untouched.
func (z *CollisionZones) Place(color Color, pl Placement) bool {
	if color >= colorCount || !pl.Ok() {
		return false
	}
	zone := zoneCells(pl)
	if slices.Equal(z.zones[color], zone) {
		return false
	}
	z.zones[color] = zone
	z.apply()
	return true
}

// Clear re-enables every suppressed cell and forgets both zones.
func (z *CollisionZones) Clear() {
	for i := range z.zones {
		z.zones[i] = nil
	}
	z.apply()
}

// Zone returns the cells recorded for color.
func (z *CollisionZones) Zone(color Color) []tilegrid.Cell {
	if color >= colorCount {
		return nil
	}
	return slices.Clone(z.zones[color])
}

// Disabled returns the suppressed cells in row-major order.
func (z *CollisionZones) Disabled() []tilegrid.Cell {
	out := make([]tilegrid.Cell, 0, len(z.disabled))
	for c := range z.disabled {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

// apply restores cells that left the wanted set before disabling new ones.
func (z *CollisionZones) apply() {
	want := make(map[tilegrid.Cell]struct{})
	if len(z.zones[Purple]) > 0 && len(z.zones[Teal]) > 0 {
		for _, zone := range z.zones {
			for _, c := range zone {
				want[c] = struct{}{}
			}
		}
	}

	for c := range z.disabled {
		if _, keep := want[c]; !keep {
			z.toggler.SetCollision(c, true)
			delete(z.disabled, c)
		}
	}
	for c := range want {
		if _, done := z.disabled[c]; !done {
			z.toggler.SetCollision(c, false)
			z.disabled[c] = struct{}{}
		}
	}
}

// zoneCells returns affected ∪ behind, sorted.
func zoneCells(pl Placement) []tilegrid.Cell {
	inward := pl.Orientation.Neg()
	out := make([]tilegrid.Cell, 0, 2*len(pl.Cells))
	for _, c := range pl.Cells {
		out = appendUnique(out, c)
		out = appendUnique(out, c.Step(inward))
	}
	sortCells(out)
	return out
}

func sortCells(cells []tilegrid.Cell) {
	slices.SortFunc(cells, func(a, b tilegrid.Cell) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
}

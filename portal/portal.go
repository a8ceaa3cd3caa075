package portal

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/tilegrid"
)

var (
	ErrUnlinkedPortal       = errors.New("portal: portal is not linked")
	ErrPortalLengthMismatch = errors.New("portal: linked portals differ in length")
	ErrSameColor            = errors.New("portal: linked portals share a color")
	ErrInvalidLength        = errors.New("portal: length must be positive")
)

// Color tags one side of a portal pair.
type Color uint8

const (
	Purple Color = iota
	Teal
	colorCount
)

func (c Color) String() string {
	switch c {
	case Purple:
		return "purple"
	case Teal:
		return "teal"
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// Opposite returns the other color of the pair.
func (c Color) Opposite() Color {
	if c == Purple {
		return Teal
	}
	return Purple
}

// Portal is one end of a pair. The link is set once by NewPair and never
// cleared; closing a portal only deactivates it.
type Portal struct {
	Color       Color
	Position    cp.Vector
	Orientation cp.Vector
	Length      float64
	Active      bool
	Cells       []tilegrid.Cell

	linked *Portal
}

func (p *Portal) Linked() *Portal {
	return p.linked
}

// Frame returns the geometric snapshot used by the transforms.
func (p *Portal) Frame() geom.Frame {
	return geom.Frame{Position: p.Position, Orientation: p.Orientation, Length: p.Length}
}

// ExitRay maps a ray entering p to the absolute ray leaving its linked portal.
func (p *Portal) ExitRay(entry geom.Ray) geom.Ray {
	return geom.ComputeAbsoluteExit(entry, p.Frame(), p.linked.Frame())
}

// Open moves the portal onto a placement and activates it.
func (p *Portal) Open(pl Placement) {
	p.Position = pl.Position
	p.Orientation = pl.Orientation
	p.Cells = append(p.Cells[:0], pl.Cells...)
	p.Active = true
}

// Close deactivates the portal and releases its cells.
func (p *Portal) Close() {
	p.Active = false
	p.Cells = nil
}

// Pair owns the two linked portals.
type Pair struct {
	portals [colorCount]*Portal
}

// NewPair builds a purple and a teal portal of the given length, linked to
// each other.
func NewPair(length float64) (*Pair, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	a := &Portal{Color: Purple, Length: length, Orientation: geom.Up}
	b := &Portal{Color: Teal, Length: length, Orientation: geom.Up}
	if err := Link(a, b); err != nil {
		return nil, err
	}
	p := &Pair{}
	p.portals[Purple] = a
	p.portals[Teal] = b
	return p, nil
}

// Link connects a and b mutually after checking the pair invariants.
func Link(a, b *Portal) error {
	if a == nil || b == nil {
		return ErrUnlinkedPortal
	}
	if a.Color == b.Color {
		return fmt.Errorf("%w: both %s", ErrSameColor, a.Color)
	}
	if a.Length != b.Length {
		return fmt.Errorf("%w: %g != %g", ErrPortalLengthMismatch, a.Length, b.Length)
	}
	a.linked = b
	b.linked = a
	return nil
}

// Validate re-checks the link and length invariants.
func (p *Pair) Validate() error {
	a, b := p.portals[Purple], p.portals[Teal]
	if a == nil || b == nil || a.linked != b || b.linked != a {
		return ErrUnlinkedPortal
	}
	if a.Length != b.Length {
		return ErrPortalLengthMismatch
	}
	return nil
}

func (p *Pair) Get(c Color) *Portal {
	if c >= colorCount {
		return nil
	}
	return p.portals[c]
}

// Open reports whether both portals are active.
func (p *Pair) Open() bool {
	return p.portals[Purple].Active && p.portals[Teal].Active
}

// Clear closes both portals.
func (p *Pair) Clear() {
	for _, portal := range p.portals {
		portal.Close()
	}
}

// Occupied reports whether an active portal of color sits on c.
func (p *Pair) Occupied(c tilegrid.Cell, color Color) bool {
	portal := p.Get(color)
	if portal == nil || !portal.Active {
		return false
	}
	for _, cell := range portal.Cells {
		if cell == c {
			return true
		}
	}
	return false
}

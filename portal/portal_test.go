package portal

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/tilegrid"
	"github.com/stretchr/testify/require"
)

func TestNewPairLinksMutually(t *testing.T) {
	pair, err := NewPair(30)
	require.NoError(t, err)
	require.NoError(t, pair.Validate())

	purple, teal := pair.Get(Purple), pair.Get(Teal)
	require.Same(t, teal, purple.Linked())
	require.Same(t, purple, teal.Linked())
	require.Equal(t, purple.Length, teal.Length)
	require.False(t, pair.Open())

	_, err = NewPair(0)
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestLinkRejectsBrokenPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b *Portal
		want error
	}{
		{"nil", &Portal{Color: Purple, Length: 3}, nil, ErrUnlinkedPortal},
		{"same_color", &Portal{Color: Teal, Length: 3}, &Portal{Color: Teal, Length: 3}, ErrSameColor},
		{"length_mismatch", &Portal{Color: Purple, Length: 3}, &Portal{Color: Teal, Length: 5}, ErrPortalLengthMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, Link(tc.a, tc.b), tc.want)
		})
	}

	var broken Pair
	require.ErrorIs(t, broken.Validate(), ErrUnlinkedPortal)
}

func TestPairOpenAndClear(t *testing.T) {
	pair, err := NewPair(30)
	require.NoError(t, err)

	cells := []tilegrid.Cell{{X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}}
	pair.Get(Purple).Open(Placement{Position: cp.Vector{X: 25, Y: 30}, Orientation: geom.Up, Cells: cells})
	require.False(t, pair.Open())
	require.True(t, pair.Occupied(tilegrid.Cell{X: 2, Y: 3}, Purple))
	require.False(t, pair.Occupied(tilegrid.Cell{X: 2, Y: 3}, Teal))

	pair.Get(Teal).Open(Placement{Position: cp.Vector{X: 75, Y: 30}, Orientation: geom.Up, Cells: []tilegrid.Cell{{X: 7, Y: 3}}})
	require.True(t, pair.Open())

	exit := pair.Get(Purple).ExitRay(geom.Ray{Origin: cp.Vector{X: 25, Y: 20}, Direction: geom.Down})
	require.Equal(t, cp.Vector{X: 75, Y: 20}, exit.Origin)
	require.Equal(t, geom.Up, exit.Direction)

	pair.Clear()
	require.False(t, pair.Open())
	require.False(t, pair.Occupied(tilegrid.Cell{X: 2, Y: 3}, Purple))
	require.NoError(t, pair.Validate(), "clearing keeps the link")
}

package levels

import (
	"testing"

	"github.com/milk9111/portalcore/tilegrid"
	"github.com/stretchr/testify/require"
)

func TestLoadChamber(t *testing.T) {
	lvl, err := LoadLevelFromFS("chamber01.json")
	require.NoError(t, err)
	require.Equal(t, 24, lvl.Width)
	require.Equal(t, 14, lvl.Height)
	require.NotEmpty(t, lvl.Entities)

	grid, err := lvl.Grid(32)
	require.NoError(t, err)
	require.True(t, grid.HasTile(tilegrid.Cell{X: 0, Y: 5}, tilegrid.Panel))
	require.True(t, grid.HasTile(tilegrid.Cell{X: 0, Y: 5}, tilegrid.Ground))
	require.False(t, grid.HasTile(tilegrid.Cell{X: 0, Y: 1}, tilegrid.Panel))
	require.True(t, grid.HasTile(tilegrid.Cell{X: 15, Y: 8}, tilegrid.Ground))
	require.False(t, grid.Solid(tilegrid.Cell{X: 5, Y: 5}))
}

func TestParseRejectsBadLevels(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "empty size", json: `{"width":0,"height":2,"layers":[],"layer_meta":[]}`},
		{name: "short layer", json: `{"width":2,"height":2,"layers":[[1,0,1]],"layer_meta":[{"layer":"panel"}]}`},
		{name: "missing meta", json: `{"width":1,"height":1,"layers":[[1]],"layer_meta":[]}`},
		{name: "unknown layer", json: `{"width":1,"height":1,"layers":[[1]],"layer_meta":[{"layer":"lava"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.ErrorIs(t, err, ErrInvalidLevel)
		})
	}

	_, err := Parse([]byte(`{"width":1,"height":1,"layers":[[1]],"layer_meta":[{"layer":"lava"}]}`))
	require.ErrorIs(t, err, tilegrid.ErrUnknownLayer)
}

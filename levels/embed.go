package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/milk9111/portalcore/tilegrid"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

// Level is a test chamber. Each entry of Layers is a row-major flat array
// of Width*Height cells; LayerMeta names the tile layer it fills.
type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta"`
	Entities  []Entity    `json:"entities,omitempty"`
	// Gun is the cell portal shots leave from.
	Gun Point `json:"gun"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type LayerMeta struct {
	// Layer is "panel" or "ground".
	Layer string `json:"layer"`
}

// Entity places a prefab at a cell.
type Entity struct {
	Prefab string         `json:"prefab"`
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Props  map[string]any `json:"props,omitempty"`
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidLevel, l.Width, l.Height)
	}
	if len(l.Layers) != len(l.LayerMeta) {
		return fmt.Errorf("%w: %d layers but %d layer_meta entries", ErrInvalidLevel, len(l.Layers), len(l.LayerMeta))
	}
	if l.Gun.X < 0 || l.Gun.Y < 0 || l.Gun.X >= l.Width || l.Gun.Y >= l.Height {
		return fmt.Errorf("%w: gun cell (%d,%d) out of bounds", ErrInvalidLevel, l.Gun.X, l.Gun.Y)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("%w: layer %d has %d cells, want %d", ErrInvalidLevel, i, len(layer), l.Width*l.Height)
		}
		if _, err := tilegrid.ParseLayer(l.LayerMeta[i].Layer); err != nil {
			return fmt.Errorf("%w: layer %d: %w", ErrInvalidLevel, i, err)
		}
	}
	return nil
}

// Grid builds the tile grid of the level.
func (l *Level) Grid(cellSize float64) (*tilegrid.Grid, error) {
	grid, err := tilegrid.New(l.Width, l.Height, cellSize)
	if err != nil {
		return nil, err
	}
	for i, layer := range l.Layers {
		kind, err := tilegrid.ParseLayer(l.LayerMeta[i].Layer)
		if err != nil {
			return nil, err
		}
		for idx, id := range layer {
			if id <= 0 {
				continue
			}
			c := tilegrid.Cell{X: idx % l.Width, Y: idx / l.Width}
			if err := grid.SetTile(c, kind, true); err != nil {
				return nil, err
			}
		}
	}
	return grid, nil
}

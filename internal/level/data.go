// Package level loads puzzle levels from JSON and builds their runtime state.
package level

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chosenoffset.com/lumen/internal/dialogue"
)

// Tile characters
const (
	TileWall       = '#'
	TileFloor      = '.'
	TileSpawn      = 'P'
	TileMirrorUp   = '/'
	TileMirrorDown = '\\'
	TileMirrorV    = '|'
	TileMirrorH    = '-'
)

// Point is a world position in a level file
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BlockData describes one block in a level file
type BlockData struct {
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	LightForm  string          `json:"light_form"`
	Movable    bool            `json:"movable"`
	SwitchMode string          `json:"switch_mode"`
	Link       string          `json:"link"`
	KeyBlocks  []string        `json:"key_blocks"`
	Dialogue   []dialogue.Line `json:"dialogue"`
	Visible    *bool           `json:"visible"` // defaults to true
}

// EnemyData describes one enemy in a level file
type EnemyData struct {
	Kind             string  `json:"kind"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Direction        string  `json:"direction"`
	InvertHorizontal bool    `json:"invert_horizontal"`
	InvertVertical   bool    `json:"invert_vertical"`
}

// Data is a parsed level file
type Data struct {
	Name        string      `json:"name"`
	CellSize    float64     `json:"cell_size"`
	Tiles       []string    `json:"tiles"` // rows, top to bottom
	PlayerSpawn *Point      `json:"player_spawn"`
	Blocks      []BlockData `json:"blocks"`
	Enemies     []EnemyData `json:"enemies"`
}

// Width returns the width of the tile grid in cells
func (d *Data) Width() int {
	w := 0
	for _, row := range d.Tiles {
		w = max(w, len(row))
	}
	return w
}

// Height returns the height of the tile grid in cells
func (d *Data) Height() int {
	return len(d.Tiles)
}

// TileAt returns the tile at (x, y); cells outside the grid read as wall
func (d *Data) TileAt(x, y int) byte {
	if y < 0 || y >= len(d.Tiles) || x < 0 || x >= len(d.Tiles[y]) {
		return TileWall
	}
	return d.Tiles[y][x]
}

// Load reads and validates a level file. cellSize is used when the file
// does not set one.
func Load(path string, cellSize float64) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file %s: %w", path, err)
	}
	data, err := Parse(raw, cellSize)
	if err != nil {
		return nil, fmt.Errorf("level file %s: %w", path, err)
	}
	if data.Name == "" {
		data.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return data, nil
}

// Parse decodes and validates level JSON
func Parse(raw []byte, cellSize float64) (*Data, error) {
	data := Data{CellSize: cellSize}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}
	if err := validateData(&data); err != nil {
		return nil, fmt.Errorf("invalid level data: %w", err)
	}
	return &data, nil
}

// LoadDir loads every *.json level in dir, ordered by file name
func LoadDir(dir string, cellSize float64) ([]*Data, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list levels in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no levels found in %s", dir)
	}
	sort.Strings(paths)

	levels := make([]*Data, 0, len(paths))
	for _, p := range paths {
		data, err := Load(p, cellSize)
		if err != nil {
			return nil, err
		}
		levels = append(levels, data)
	}
	return levels, nil
}

// validateData checks the structural parts of a level. Unknown block kinds
// and dangling links are reported when the level is built instead.
func validateData(data *Data) error {
	if data.CellSize <= 0 {
		return fmt.Errorf("invalid cell size: %v", data.CellSize)
	}
	if len(data.Tiles) == 0 {
		return fmt.Errorf("tiles are required")
	}

	spawns := 0
	for y, row := range data.Tiles {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case TileWall, TileFloor, TileMirrorUp, TileMirrorDown, TileMirrorV, TileMirrorH:
			case TileSpawn:
				spawns++
			default:
				return fmt.Errorf("unknown tile %q at (%d, %d)", row[x], x, y)
			}
		}
	}
	if spawns > 1 {
		return fmt.Errorf("tiles mark %d player spawns", spawns)
	}
	if data.PlayerSpawn == nil && spawns == 0 {
		return fmt.Errorf("player spawn is required")
	}

	names := make(map[string]bool, len(data.Blocks))
	for i, b := range data.Blocks {
		if b.Name == "" {
			continue
		}
		if names[b.Name] {
			return fmt.Errorf("duplicate block name %q at index %d", b.Name, i)
		}
		names[b.Name] = true
	}
	return nil
}

// spawnTile returns the cell of the 'P' tile, if any
func (d *Data) spawnTile() (x, y int, ok bool) {
	for y, row := range d.Tiles {
		if x := strings.IndexByte(row, TileSpawn); x >= 0 {
			return x, y, true
		}
	}
	return 0, 0, false
}

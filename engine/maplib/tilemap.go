package maplib

import (
	"encoding/json"
	"fmt"
	"os"
)

// TerrainType defines the terrain of a tile
type TerrainType uint8

const (
	TerrainGrass TerrainType = iota
	TerrainDirt
	TerrainSand
	TerrainWater
	TerrainRock
	TerrainCliff
	TerrainRoad
	TerrainForest
)

// Walkable reports whether ground units can stand on the terrain
func (t TerrainType) Walkable() bool {
	switch t {
	case TerrainWater, TerrainCliff:
		return false
	}
	return true
}

// Tile represents a single map tile
type Tile struct {
	Terrain  TerrainType `json:"terrain"`
	Occupied bool        `json:"occupied,omitempty"` // structure footprint
}

// Spawn is an authored entity placement
type Spawn struct {
	Kind   string `json:"kind"` // "food", "building", "rare" for resources; unused for stores
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Amount int    `json:"amount,omitempty"`
	Player int    `json:"player,omitempty"`
}

// StartPos defines a player start position
type StartPos struct {
	PlayerSlot int `json:"player_slot"`
	X          int `json:"x"`
	Y          int `json:"y"`
}

// TileMap is the authored map handed to the simulation before it starts
type TileMap struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`

	StartPositions []StartPos `json:"start_positions"`
	Resources      []Spawn    `json:"resources"`
	Stores         []Spawn    `json:"stores"`
}

// NewTileMap creates a new map filled with grass
func NewTileMap(name string, width, height int) *TileMap {
	return &TileMap{
		Name:   name,
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
}

// At returns a pointer to the tile at (x, y)
func (tm *TileMap) At(x, y int) *Tile {
	if !tm.InBounds(x, y) {
		return nil
	}
	return &tm.Tiles[y*tm.Width+x]
}

// InBounds checks if coordinates are within map bounds
func (tm *TileMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < tm.Width && y < tm.Height
}

// IsPassable checks if a ground unit can traverse the tile
func (tm *TileMap) IsPassable(x, y int) bool {
	t := tm.At(x, y)
	if t == nil {
		return false
	}
	return t.Terrain.Walkable() && !t.Occupied
}

// SetTerrain sets terrain for a rectangular region (inclusive)
func (tm *TileMap) SetTerrain(x1, y1, x2, y2 int, terrain TerrainType) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if t := tm.At(x, y); t != nil {
				t.Terrain = terrain
			}
		}
	}
}

// SetOccupied marks a tile as occupied/unoccupied by a structure
func (tm *TileMap) SetOccupied(x, y int, occupied bool) {
	if t := tm.At(x, y); t != nil {
		t.Occupied = occupied
	}
}

// PlaceResource authors a resource node of the given kind
func (tm *TileMap) PlaceResource(kind string, x, y, amount int) {
	tm.Resources = append(tm.Resources, Spawn{Kind: kind, X: x, Y: y, Amount: amount})
}

// PlaceStore authors a drop-off store for a player
func (tm *TileMap) PlaceStore(player, x, y int) {
	tm.Stores = append(tm.Stores, Spawn{X: x, Y: y, Player: player})
}

// Validate checks the tile array matches the declared dimensions
func (tm *TileMap) Validate() error {
	if tm.Width <= 0 || tm.Height <= 0 {
		return fmt.Errorf("map %q: invalid size %dx%d", tm.Name, tm.Width, tm.Height)
	}
	if len(tm.Tiles) != tm.Width*tm.Height {
		return fmt.Errorf("map %q: %d tiles for %dx%d", tm.Name, len(tm.Tiles), tm.Width, tm.Height)
	}
	return nil
}

// SaveJSON saves the map to a JSON file
func (tm *TileMap) SaveJSON(path string) error {
	data, err := json.MarshalIndent(tm, "", "  ")
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJSON loads a map from a JSON file
func LoadJSON(path string) (*TileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	var tm TileMap
	if err := json.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("decode map %s: %w", path, err)
	}
	if err := tm.Validate(); err != nil {
		return nil, err
	}
	return &tm, nil
}

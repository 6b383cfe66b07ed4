package sim

import (
	"fmt"
	"math"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/config"
	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/maplib"
	"github.com/1siamBot/unitcore/engine/network"
)

// DemoMapSize is the edge length of the demo map in tiles
const DemoMapSize = 64

// Demo player ids
const (
	HumanPlayer = 1
	EnemyPlayer = 2
)

// DemoMap creates the demo battlefield: two bases split by a river with a
// single bridge, forests, a cliff wall and resource fields near each base.
func DemoMap() *maplib.TileMap {
	const size = DemoMapSize
	tm := maplib.NewTileMap("Demo Battlefield", size, size)

	tm.SetTerrain(0, 0, size-1, size-1, maplib.TerrainGrass)

	// river through the middle
	for x := 0; x < size; x++ {
		y := size/2 + int(3*math.Sin(float64(x)*0.15))
		tm.SetTerrain(x, y-1, x, y+1, maplib.TerrainWater)
	}
	// bridge
	for x := size/2 - 1; x <= size/2+1; x++ {
		for y := 0; y < size; y++ {
			if t := tm.At(x, y); t.Terrain == maplib.TerrainWater {
				t.Terrain = maplib.TerrainRoad
			}
		}
	}

	forests := [][4]int{
		{5, 12, 12, 16}, {45, 8, 55, 15}, {20, 45, 30, 52},
	}
	for _, f := range forests {
		tm.SetTerrain(f[0], f[1], f[2], f[3], maplib.TerrainForest)
	}

	tm.SetTerrain(20, 10, 26, 12, maplib.TerrainCliff)
	tm.SetTerrain(40, 50, 43, 55, maplib.TerrainRock)

	for x := 0; x < size; x++ {
		tm.SetTerrain(x, size/4, x, size/4, maplib.TerrainRoad)
	}
	for y := 0; y < size; y++ {
		tm.SetTerrain(size/4, y, size/4, y, maplib.TerrainRoad)
	}
	tm.SetTerrain(50, 56, 60, 62, maplib.TerrainSand)

	// depot footprint next to each base
	tm.SetOccupied(4, 8, true)
	tm.SetOccupied(5, 8, true)
	tm.SetOccupied(58, 55, true)
	tm.SetOccupied(59, 55, true)

	tm.StartPositions = []maplib.StartPos{
		{PlayerSlot: HumanPlayer, X: 6, Y: 6},
		{PlayerSlot: EnemyPlayer, X: size - 7, Y: size - 7},
	}
	tm.PlaceStore(HumanPlayer, 6, 6)
	tm.PlaceStore(EnemyPlayer, size-7, size-7)

	fields := []struct {
		kind string
		x, y int
	}{
		{"food", 14, 4}, {"food", 15, 4}, {"food", 14, 5},
		{"building", 3, 18}, {"building", 4, 18},
		{"rare", 40, 22},
		{"food", 48, 58}, {"food", 49, 58}, {"food", 48, 59},
		{"building", 60, 44}, {"building", 60, 45},
	}
	for _, f := range fields {
		tm.PlaceResource(f.kind, f.x, f.y, 200)
	}
	return tm
}

// Scenario is the demo match with the human player's starting units
type Scenario struct {
	Sim      *Simulation
	Workers  []core.EntityID
	Soldiers []core.EntityID
}

// NewDemo builds the demo match: a scripted human player against an AI
// player, each with workers and soldiers at their start position.
func NewDemo(cfg *config.Config) (*Scenario, error) {
	players := []*core.Player{
		{ID: HumanPlayer, Name: "Player", TeamID: 1},
		{ID: EnemyPlayer, Name: "AI Enemy", TeamID: 2, IsAI: true},
	}
	s, err := New(cfg, DemoMap(), players)
	if err != nil {
		return nil, err
	}
	sc := &Scenario{Sim: s}

	for _, sp := range s.Map.StartPositions {
		for i := 0; i < 4; i++ {
			pos := s.TileCenter(sp.X+i%2, sp.Y+1+i/2)
			id, err := s.SpawnUnit("worker", sp.PlayerSlot, pos)
			if err != nil {
				return nil, fmt.Errorf("demo: %w", err)
			}
			if sp.PlayerSlot == HumanPlayer {
				sc.Workers = append(sc.Workers, id)
			}
		}
		for i := 0; i < 4; i++ {
			kind := "soldier"
			if i%2 == 1 {
				kind = "ranger"
			}
			pos := s.TileCenter(sp.X+2+i%2, sp.Y+i/2)
			id, err := s.SpawnUnit(kind, sp.PlayerSlot, pos)
			if err != nil {
				return nil, fmt.Errorf("demo: %w", err)
			}
			if sp.PlayerSlot == HumanPlayer {
				sc.Soldiers = append(sc.Soldiers, id)
			}
		}
	}
	return sc, nil
}

// ScriptedOrders returns the human player's orders for the demo: workers
// harvest from the start, soldiers gather at the bridge and later attack.
func (sc *Scenario) ScriptedOrders() []network.Order {
	var orders []network.Order
	kinds := []core.TargetType{core.TargetFoodResource, core.TargetBuildingResource}
	for i, id := range sc.Workers {
		orders = append(orders, network.Order{
			Tick:       0,
			PlayerID:   HumanPlayer,
			Entity:     id,
			Command:    command.Harvest,
			TargetType: kinds[i%len(kinds)],
		})
	}
	bridge := sc.Sim.TileCenter(DemoMapSize/2, DemoMapSize/2-6)
	for _, id := range sc.Soldiers {
		orders = append(orders,
			network.Order{
				Tick:     20,
				PlayerID: HumanPlayer,
				Entity:   id,
				Command:  command.Move,
				TargetX:  bridge.X,
				TargetY:  bridge.Y,
			},
			network.Order{
				Tick:       600,
				PlayerID:   HumanPlayer,
				Entity:     id,
				Command:    command.Attack,
				TargetType: core.TargetEnemy,
			},
		)
	}
	return orders
}

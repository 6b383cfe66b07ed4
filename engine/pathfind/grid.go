package pathfind

import (
	"math"
	"sync"

	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/maplib"
)

// Occupancy describes what blocks a cell
type Occupancy uint8

const (
	OccNothing Occupancy = iota
	OccEnvironment
	OccStructure
)

// NodeState is the per-search open/closed marker of a cell
type NodeState uint8

const (
	Untested NodeState = iota
	Open
	Closed
)

// NoNode is the null value of Parent and Child
const NoNode = -1

// MapNode is one grid cell. Pos, Cell and Occupied are map data; the rest
// is scratch that only means something inside the search that wrote it.
type MapNode struct {
	Pos      core.Vec2
	Cell     core.TilePos
	Occupied Occupancy

	G, H, F       float64
	Parent, Child int
	State         NodeState
	gen           uint32
}

// Grid is a row-major array of map cells. The canonical grid is shared by
// every unit; searches run on private copies taken with Snapshot.
type Grid struct {
	mu       sync.RWMutex
	width    int
	height   int
	cellSize float64
	nodes    []MapNode

	gen  uint32 // current search generation
	goal int    // goal of the current search, for lazy heuristics
}

// NewGrid builds a grid with one cell per map tile
func NewGrid(tm *maplib.TileMap, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &Grid{
		width:    tm.Width,
		height:   tm.Height,
		cellSize: cellSize,
		nodes:    make([]MapNode, tm.Width*tm.Height),
		goal:     NoNode,
	}
	for y := 0; y < tm.Height; y++ {
		for x := 0; x < tm.Width; x++ {
			i := g.Index(x, y)
			n := &g.nodes[i]
			n.Cell = core.TilePos{X: x, Y: y}
			n.Pos = core.Vec2{X: (float64(x) + 0.5) * cellSize, Y: (float64(y) + 0.5) * cellSize}
			n.Parent, n.Child = NoNode, NoNode
			t := tm.At(x, y)
			switch {
			case !t.Terrain.Walkable():
				n.Occupied = OccEnvironment
			case t.Occupied:
				n.Occupied = OccStructure
			}
		}
	}
	return g
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells
func (g *Grid) Len() int { return len(g.nodes) }

// CellSize returns the world size of one cell
func (g *Grid) CellSize() float64 { return g.cellSize }

// InBounds checks if cell coordinates are inside the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Index converts cell coordinates to a flat index
func (g *Grid) Index(x, y int) int {
	return y*g.width + x
}

// Node returns the cell at a flat index
func (g *Grid) Node(i int) *MapNode {
	return &g.nodes[i]
}

// At returns the cell at (x, y), or nil when out of bounds
func (g *Grid) At(x, y int) *MapNode {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.nodes[g.Index(x, y)]
}

// Passable reports whether nothing occupies the cell
func (g *Grid) Passable(x, y int) bool {
	n := g.At(x, y)
	return n != nil && n.Occupied == OccNothing
}

// Nearest returns the index of the cell whose centre is closest to pos.
// It scans every cell; on ties the first cell in row-major order wins.
func (g *Grid) Nearest(pos core.Vec2) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	best := NoNode
	bestDist := math.MaxFloat64
	for i := range g.nodes {
		d := g.nodes[i].Pos.DistSq(pos)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// SetOccupied changes the occupancy of a cell (obstacle placement). It must
// not race with a search; snapshots taken before the call are unaffected.
func (g *Grid) SetOccupied(x, y int, occ Occupancy) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := g.At(x, y); n != nil {
		n.Occupied = occ
	}
}

// Snapshot returns a private copy of the grid, scratch fields included.
func (g *Grid) Snapshot() *Grid {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cp := &Grid{
		width:    g.width,
		height:   g.height,
		cellSize: g.cellSize,
		nodes:    make([]MapNode, len(g.nodes)),
		gen:      g.gen,
		goal:     NoNode,
	}
	copy(cp.nodes, g.nodes)
	return cp
}

// begin starts a new search generation. Scratch fields of every cell become
// stale at once and are reset on first touch.
func (g *Grid) begin(goal int) {
	g.gen++
	g.goal = goal
}

// touch returns the cell with scratch fields valid for the current search,
// resetting them and computing the heuristic on first visit.
func (g *Grid) touch(i int) *MapNode {
	n := &g.nodes[i]
	if n.gen != g.gen {
		n.gen = g.gen
		n.G = math.Inf(1)
		n.H = g.heuristic(i)
		n.F = math.Inf(1)
		n.Parent, n.Child = NoNode, NoNode
		n.State = Untested
	}
	return n
}

// heuristic is the squared euclidean distance to the goal in cell units
func (g *Grid) heuristic(i int) float64 {
	if g.goal == NoNode {
		return 0
	}
	a, b := g.nodes[i].Cell, g.nodes[g.goal].Cell
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return dx*dx + dy*dy
}

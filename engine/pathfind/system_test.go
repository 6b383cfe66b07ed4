package pathfind

import (
	"testing"

	"github.com/1siamBot/unitcore/engine/core"
)

func spawnWalker(w *core.World, from, to core.Vec2, capacity int) core.EntityID {
	id := w.Spawn()
	w.Attach(id, &core.Position{X: from.X, Y: from.Y})
	w.Attach(id, &core.AI{State: core.StateMovingToPosition, Current: core.TargetData{Type: core.TargetGround, Pos: to}})
	w.Attach(id, &core.PathFinding{RequestedPath: true, Goal: to})
	w.Attach(id, core.NewPathBuffer(capacity))
	return id
}

func pathOf(w *core.World, id core.EntityID) []core.PathNode {
	return w.Get(id, core.CompPathBuffer).(*core.PathBuffer).Nodes
}

func flagsOf(w *core.World, id core.EntityID) *core.PathFinding {
	return w.Get(id, core.CompPathFinding).(*core.PathFinding)
}

var mazeRows = []string{
	"....................",
	".########.#########.",
	".#......#.#.......#.",
	".#.####.#.#.#####.#.",
	".#.#..#...#.#...#.#.",
	".#.#..#####.#.#.#.#.",
	".#.#........#.#...#.",
	".#.##########.#####.",
	".#..............#...",
	".################.#.",
	"....................",
}

func TestSystem_BatchedParallelMatchesSerial(t *testing.T) {
	type pair struct{ from, to core.Vec2 }
	var pairs []pair
	for i := 0; i < 24; i++ {
		pairs = append(pairs, pair{
			from: core.Vec2{X: float64(i%20) + 0.5, Y: 0.5},
			to:   core.Vec2{X: float64((i*7)%20) + 0.5, Y: 10.5},
		})
		pairs = append(pairs, pair{
			from: core.Vec2{X: 5.5, Y: 4.5},
			to:   core.Vec2{X: float64(i%18) + 1.5, Y: 8.5},
		})
	}

	run := func(b core.Batching) [][]core.PathNode {
		w := core.NewWorld(20)
		g := gridFrom(t, mazeRows...)
		var ids []core.EntityID
		for _, p := range pairs {
			ids = append(ids, spawnWalker(w, p.from, p.to, 0))
		}
		w.AddSystem(&System{Grid: g, Batching: b})
		w.Tick(0.05)
		out := make([][]core.PathNode, len(ids))
		for i, id := range ids {
			out[i] = append([]core.PathNode(nil), pathOf(w, id)...)
		}
		return out
	}

	serial := run(core.Batching{BatchSize: len(pairs), Workers: 1})
	parallel := run(core.Batching{BatchSize: 3, Workers: 8})

	found := 0
	for i := range serial {
		if len(serial[i]) != len(parallel[i]) {
			t.Fatalf("unit %d: serial path %d nodes, parallel %d", i, len(serial[i]), len(parallel[i]))
		}
		for j := range serial[i] {
			if serial[i][j] != parallel[i][j] {
				t.Fatalf("unit %d diverges at waypoint %d: %v vs %v", i, j, serial[i][j], parallel[i][j])
			}
		}
		if len(serial[i]) > 0 {
			found++
		}
	}
	if found == 0 {
		t.Fatal("expected at least some paths through the maze")
	}
}

func TestSystem_ServesRequestAndClearsFlag(t *testing.T) {
	w := core.NewWorld(20)
	g := gridFrom(t, ".....", ".....")
	id := spawnWalker(w, core.Vec2{X: 0.5, Y: 0.5}, core.Vec2{X: 3.5, Y: 0.5}, 0)
	w.AddSystem(&System{Grid: g})
	w.Tick(0.05)

	pf := flagsOf(w, id)
	if pf.RequestedPath {
		t.Fatal("request flag should be cleared")
	}
	if !pf.CompletedPath || !pf.PathReady {
		t.Fatalf("flags after success = %+v", *pf)
	}
	nodes := pathOf(w, id)
	if len(nodes) != 3 || nodes[2].Cell != (core.TilePos{X: 3, Y: 0}) {
		t.Fatalf("path = %v", nodes)
	}
	if pf.CurrentNode != (core.TilePos{}) || pf.TargetNode != (core.TilePos{X: 3, Y: 0}) {
		t.Fatalf("nodes = %v -> %v", pf.CurrentNode, pf.TargetNode)
	}

	// Next tick without a request: lazy teardown of the ready marker only.
	w.Tick(0.05)
	if pf.PathReady {
		t.Fatal("PathReady should be cleared on the following tick")
	}
	if !pf.CompletedPath || len(pathOf(w, id)) != 3 {
		t.Fatal("completed path must survive the teardown")
	}
}

func TestSystem_FailureLeavesEmptyPath(t *testing.T) {
	w := core.NewWorld(20)
	g := gridFrom(t, "..#..", "..#..")
	id := spawnWalker(w, core.Vec2{X: 0.5, Y: 0.5}, core.Vec2{X: 4.5, Y: 1.5}, 0)
	pf := flagsOf(w, id)
	pf.CompletedPath = true // left over from an earlier path
	w.AddSystem(&System{Grid: g})
	w.Tick(0.05)

	if pf.RequestedPath || pf.CompletedPath {
		t.Fatalf("flags after failure = %+v", *pf)
	}
	if len(pathOf(w, id)) != 0 {
		t.Fatal("path buffer should be empty after failure")
	}
}

func TestSystem_SameCellCompletesWithoutWaypoints(t *testing.T) {
	w := core.NewWorld(20)
	g := gridFrom(t, "...")
	id := spawnWalker(w, core.Vec2{X: 1.2, Y: 0.4}, core.Vec2{X: 1.7, Y: 0.6}, 0)
	w.AddSystem(&System{Grid: g})
	w.Tick(0.05)
	if pf := flagsOf(w, id); !pf.CompletedPath || len(pathOf(w, id)) != 0 {
		t.Fatalf("same cell: flags=%+v path=%v", *pf, pathOf(w, id))
	}
}

func TestSystem_LongPathIsTruncatedAtCapacity(t *testing.T) {
	w := core.NewWorld(20)
	g := gridFrom(t, "..........")
	id := spawnWalker(w, core.Vec2{X: 0.5, Y: 0.5}, core.Vec2{X: 9.5, Y: 0.5}, 4)
	w.AddSystem(&System{Grid: g})
	w.Tick(0.05)

	pf := flagsOf(w, id)
	nodes := pathOf(w, id)
	if !pf.CompletedPath || !pf.Truncated {
		t.Fatalf("flags = %+v, want completed and truncated", *pf)
	}
	if len(nodes) != 4 || nodes[3].Cell.X != 4 {
		t.Fatalf("truncated path = %v, want first 4 waypoints", nodes)
	}
}

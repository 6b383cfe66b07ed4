package pathfind

import (
	"container/heap"
	"math"
)

type neighbor struct {
	dx, dy int
	cost   float64
}

var neighborOffsets = [...]neighbor{
	{dx: 1, dy: 0, cost: 1},
	{dx: -1, dy: 0, cost: 1},
	{dx: 0, dy: 1, cost: 1},
	{dx: 0, dy: -1, cost: 1},
	{dx: 1, dy: 1, cost: math.Sqrt2},
	{dx: 1, dy: -1, cost: math.Sqrt2},
	{dx: -1, dy: 1, cost: math.Sqrt2},
	{dx: -1, dy: -1, cost: math.Sqrt2},
}

// Search finds a route from start to goal (flat cell indices) on g, writing
// the per-cell scratch fields of g. It returns the cells to walk through,
// start excluded and goal included. A search where start == goal succeeds
// with an empty route.
//
// Cells leave the open set in (f, h) order, oldest first on equal keys. A
// cell already open is re-parented when the route through the current cell
// is cheaper. The search ends as soon as the goal is generated as a
// neighbour; an occupied goal is never generated.
func Search(g *Grid, start, goal int) ([]int, bool) {
	if start < 0 || goal < 0 || start >= g.Len() || goal >= g.Len() {
		return nil, false
	}
	if start == goal {
		return nil, true
	}
	g.begin(goal)

	s := g.touch(start)
	s.G = 0
	s.F = s.H
	s.State = Open

	open := &openSet{}
	var seq uint64
	heap.Push(open, &openEntry{idx: start, f: s.F, h: s.H, seq: seq})

	for open.Len() > 0 {
		e := heap.Pop(open).(*openEntry)
		cur := g.touch(e.idx)
		if cur.State == Closed || e.f != cur.F {
			continue // stale entry superseded by a cheaper parent
		}
		cur.State = Closed

		for _, d := range neighborOffsets {
			nx, ny := cur.Cell.X+d.dx, cur.Cell.Y+d.dy
			if !g.InBounds(nx, ny) {
				continue
			}
			ni := g.Index(nx, ny)
			n := g.touch(ni)
			if n.Occupied != OccNothing || n.State == Closed {
				continue
			}
			tentative := cur.G + d.cost
			switch n.State {
			case Open:
				if tentative >= n.G {
					continue
				}
			case Untested:
				n.State = Open
			}
			n.Parent = e.idx
			n.G = tentative
			n.F = n.G + n.H
			if ni == goal {
				return reconstruct(g, start, goal), true
			}
			seq++
			heap.Push(open, &openEntry{idx: ni, f: n.F, h: n.H, seq: seq})
		}
	}
	return nil, false
}

// reconstruct walks the parent chain back from goal and links each cell to
// its successor through Child.
func reconstruct(g *Grid, start, goal int) []int {
	var route []int
	for i := goal; i != start && i != NoNode; i = g.nodes[i].Parent {
		route = append(route, i)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	prev := start
	for _, i := range route {
		g.nodes[prev].Child = i
		prev = i
	}
	return route
}

// --- Priority queue ---

type openEntry struct {
	idx  int
	f, h float64
	seq  uint64
}

type openSet []*openEntry

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int)       { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x interface{}) { *o = append(*o, x.(*openEntry)) }
func (o *openSet) Pop() interface{} {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}

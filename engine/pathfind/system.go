package pathfind

import (
	"log/slog"

	"github.com/1siamBot/unitcore/engine/core"
)

// System computes paths for every unit that requested one this tick.
//
// Requesting units are split into batches that run in parallel. Each batch
// takes one private snapshot of the shared grid before its first search and
// drops it afterwards, so searches never share scratch state.
type System struct {
	Grid     *Grid
	Batching core.Batching
	EventBus *core.EventBus
}

func (s *System) Priority() int { return 20 }

func (s *System) Update(w *core.World, dt float64) {
	var requested []core.EntityID
	for _, id := range w.Query(core.CompPosition, core.CompPathFinding, core.CompPathBuffer) {
		pf := w.Get(id, core.CompPathFinding).(*core.PathFinding)
		if !pf.RequestedPath {
			if pf.CompletedPath && pf.PathReady {
				pf.PathReady = false
			}
			continue
		}
		requested = append(requested, id)
	}
	if len(requested) == 0 {
		return
	}

	err := core.ForEachBatch(requested, s.Batching, func(batch []core.EntityID) error {
		snap := s.Grid.Snapshot()
		for _, id := range batch {
			s.findPath(w, snap, id)
		}
		return nil
	})
	if err != nil {
		slog.Error("path batch failed", "err", err)
	}
}

// findPath serves one request on the batch snapshot. Only the unit's own
// components are written.
func (s *System) findPath(w *core.World, snap *Grid, id core.EntityID) {
	pos := w.Get(id, core.CompPosition).(*core.Position)
	pf := w.Get(id, core.CompPathFinding).(*core.PathFinding)
	buf := w.Get(id, core.CompPathBuffer).(*core.PathBuffer)

	route, ok := Plan(snap, pos.Vec(), pf.Goal, pf, buf)
	if !ok {
		slog.Debug("path not found", "entity", id, "from", pf.CurrentNode, "to", pf.TargetNode)
		s.EventBus.Emit(core.Event{Type: core.EvtPathFailed, Tick: w.TickCount, Entity: id})
		return
	}
	slog.Debug("path found", "entity", id, "waypoints", len(route), "truncated", pf.Truncated)
	s.EventBus.Emit(core.Event{Type: core.EvtPathFound, Tick: w.TickCount, Entity: id, Payload: len(route)})
}

// Plan runs one path request from `from` to `to` on g and fills buf. It
// always clears RequestedPath; CompletedPath is set only on success.
func Plan(g *Grid, from, to core.Vec2, pf *core.PathFinding, buf *core.PathBuffer) ([]int, bool) {
	pf.RequestedPath = false
	pf.CompletedPath = false
	pf.PathReady = false
	pf.Truncated = false
	pf.CurrentIndex = 0
	buf.Reset()

	start := g.Nearest(from)
	goal := g.Nearest(to)
	if start == NoNode || goal == NoNode {
		return nil, false
	}
	pf.CurrentNode = g.Node(start).Cell
	pf.TargetNode = g.Node(goal).Cell

	route, ok := Search(g, start, goal)
	if !ok {
		return nil, false
	}
	for _, i := range route {
		n := g.Node(i)
		if !buf.Append(core.PathNode{Pos: n.Pos, Cell: n.Cell}) {
			pf.Truncated = true
			break
		}
	}
	pf.CompletedPath = true
	pf.PathReady = true
	return route, true
}

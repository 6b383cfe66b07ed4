package systems

import (
	"math"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/pathfind"
	"github.com/1siamBot/unitcore/engine/transition"
)

// DefaultArrivalRadius is how close a unit must get to a waypoint to advance
const DefaultArrivalRadius = 0.15

// MovementSystem moves units in a moving state along their delivered path
type MovementSystem struct {
	Transitions   *transition.Buffer
	ArrivalRadius float64
}

func (s *MovementSystem) Priority() int { return 40 }

func (s *MovementSystem) Update(w *core.World, dt float64) {
	radius := s.ArrivalRadius
	if radius <= 0 {
		radius = DefaultArrivalRadius
	}
	ids := w.Query(core.CompPosition, core.CompMover, core.CompAI, core.CompPathFinding, core.CompPathBuffer, core.CompCommandQueue)
	for _, id := range ids {
		ai := w.Get(id, core.CompAI).(*core.AI)
		if !ai.State.Moving() {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position)
		mov := w.Get(id, core.CompMover).(*core.Mover)
		pf := w.Get(id, core.CompPathFinding).(*core.PathFinding)
		buf := w.Get(id, core.CompPathBuffer).(*core.PathBuffer)
		q := w.Get(id, core.CompCommandQueue).(*command.Queue)

		// waiting for a path, or none exists; the order stays until replaced
		if pf.RequestedPath || !pf.CompletedPath {
			continue
		}

		var waypoint core.Vec2
		switch {
		case pf.CurrentIndex < len(buf.Nodes):
			waypoint = buf.Nodes[pf.CurrentIndex].Pos
		case pf.Truncated:
			pf.RequestedPath = true
			continue
		default:
			waypoint = pf.Goal
		}

		steer := pathfind.Steer(pos.Vec(), mov.Speed, dt, waypoint)
		pos.X += steer.VX * dt
		pos.Y += steer.VY * dt
		if steer.VX != 0 || steer.VY != 0 {
			pos.Facing = math.Atan2(steer.VY, steer.VX)
		}

		if pos.Vec().DistSq(waypoint) > radius*radius {
			continue
		}
		if pf.CurrentIndex < len(buf.Nodes) {
			pf.CurrentIndex++
			continue
		}
		if ai.State == core.StateMovingToPosition {
			if h := q.Head(); h != nil && h.Type == command.Move && h.Status == command.MovingPhase {
				command.CompleteCommand(q)
				s.Transitions.RequestState(id, core.StateIdle)
			}
		}
	}
}

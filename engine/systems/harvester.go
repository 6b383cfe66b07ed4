package systems

import (
	"log/slog"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
)

// HarvesterSystem runs the gather/deposit cycle of harvesting units. It only
// drives the head command; the command system turns that into states.
type HarvesterSystem struct {
	Players  *core.PlayerManager
	EventBus *core.EventBus
}

func (s *HarvesterSystem) Priority() int { return 50 }

func (s *HarvesterSystem) Update(w *core.World, dt float64) {
	ids := w.Query(core.CompPosition, core.CompHarvester, core.CompAI, core.CompOwner, core.CompCommandQueue)
	for _, id := range ids {
		ai := w.Get(id, core.CompAI).(*core.AI)
		q := w.Get(id, core.CompCommandQueue).(*command.Queue)
		head := q.Head()
		if head == nil {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position)
		harv := w.Get(id, core.CompHarvester).(*core.Harvester)

		switch ai.State {
		case core.StateMovingToHarvest:
			if head.Type != command.Harvest || head.Status != command.MovingPhase {
				continue
			}
			if !s.targetValid(w, ai.Current) {
				command.RetargetCommand(q)
				continue
			}
			if !inRange(pos, ai.Current.Pos, harv.Range) {
				continue
			}
			if ai.Current.Type == core.TargetStore {
				// nothing left to gather; unload and finish
				s.deposit(w, id, harv)
				command.CompleteCommand(q)
				continue
			}
			command.ExecuteCommand(q)

		case core.StateHarvesting:
			if head.Type != command.Harvest || head.Status != command.ExecutionPhase {
				continue
			}
			s.gather(w, id, q, harv, ai.Current, dt)

		case core.StateMovingToDeposit:
			if head.Type != command.Deposit || head.Status != command.MovingPhase {
				continue
			}
			if !s.targetValid(w, ai.Current) {
				command.RetargetCommand(q)
				continue
			}
			if inRange(pos, ai.Current.Pos, harv.Range) {
				s.deposit(w, id, harv)
				command.CompleteCommand(q)
			}
		}
	}
}

func (s *HarvesterSystem) gather(w *core.World, id core.EntityID, q *command.Queue, harv *core.Harvester, target core.TargetData, dt float64) {
	var node *core.ResourceNode
	if c := w.Get(target.Entity, core.CompResourceNode); c != nil {
		node = c.(*core.ResourceNode)
	}
	if node != nil && node.Amount > 0 {
		amount := min(harv.Accrue(dt), node.Amount, harv.Capacity-harv.Current)
		if amount > 0 {
			harv.Current += amount
			harv.Carrying = node.Kind
			node.Amount -= amount
			s.EventBus.Emit(core.Event{Type: core.EvtResourceHarvested, Tick: w.TickCount, Entity: id, Payload: amount})
		}
		if !harv.Full() && node.Amount > 0 {
			return
		}
	}

	kind := target.Type & core.TargetResource
	command.CompleteCommand(q)
	if harv.Current > 0 {
		if err := command.QueueCommand(command.Deposit, q, core.TargetData{Type: core.TargetStore}, false); err != nil {
			slog.Debug("deposit not queued", "entity", id, "err", err)
		}
	}
	if err := command.QueueCommand(command.Harvest, q, core.TargetData{Type: kind}, false); err != nil {
		slog.Debug("harvest not requeued", "entity", id, "err", err)
	}
}

func (s *HarvesterSystem) deposit(w *core.World, id core.EntityID, harv *core.Harvester) {
	if harv.Current == 0 {
		return
	}
	own := w.Get(id, core.CompOwner).(*core.Owner)
	if s.Players != nil {
		if p := s.Players.GetPlayer(own.PlayerID); p != nil {
			p.Deposit(harv.Carrying, harv.Current)
		}
	}
	slog.Debug("cargo deposited", "entity", id, "kind", harv.Carrying, "amount", harv.Current)
	s.EventBus.Emit(core.Event{Type: core.EvtResourceDeposited, Tick: w.TickCount, Entity: id, Payload: harv.Current})
	harv.Current = 0
}

// targetValid reports whether a resolved harvest or deposit target still exists
func (s *HarvesterSystem) targetValid(w *core.World, t core.TargetData) bool {
	if !w.Alive(t.Entity) {
		return false
	}
	if t.Type == core.TargetStore {
		return w.Has(t.Entity, core.CompResourceStore)
	}
	c := w.Get(t.Entity, core.CompResourceNode)
	return c != nil && c.(*core.ResourceNode).Amount > 0
}

func inRange(pos *core.Position, target core.Vec2, r float64) bool {
	return pos.Vec().DistSq(target) <= r*r
}

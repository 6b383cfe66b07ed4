package command

import (
	"fmt"
	"log/slog"

	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/targets"
	"github.com/1siamBot/unitcore/engine/transition"
)

// Catalogs supplies the target catalog for the current tick
type Catalogs interface {
	Snapshot() *targets.Catalog
}

// System advances the head command of every unit by one step. Units are
// processed in parallel batches; each unit only touches its own queue and
// path request, and state changes go through the transition buffer.
type System struct {
	Catalog     Catalogs
	Transitions *transition.Buffer
	Batching    core.Batching
	EventBus    *core.EventBus
}

func (s *System) Priority() int { return 10 }

func (s *System) Update(w *core.World, dt float64) {
	ids := w.Query(core.CompCommandQueue, core.CompAI, core.CompPathFinding, core.CompPosition)
	if len(ids) == 0 {
		return
	}
	cat := s.Catalog.Snapshot()
	err := core.ForEachBatch(ids, s.Batching, func(batch []core.EntityID) error {
		for _, id := range batch {
			s.process(w, cat, id)
		}
		return nil
	})
	if err != nil {
		slog.Error("command batch failed", "err", err)
	}
}

func (s *System) process(w *core.World, cat *targets.Catalog, id core.EntityID) {
	q := w.Get(id, core.CompCommandQueue).(*Queue)
	head := q.Head()
	if head == nil {
		return
	}

	popped := false
	for head != nil && head.Status == Complete {
		q.Pop()
		head = q.Head()
		popped = true
	}
	if head == nil {
		if popped {
			s.Transitions.RequestState(id, core.StateIdle)
		}
		return
	}

	start := head.Status
	switch {
	case head.Status == Queued:
		head = s.resolveHead(w, cat, id, q)
		if head == nil {
			s.Transitions.RequestState(id, core.StateIdle)
			return
		}
		start = head.Status
		head.Status = MovingPhase
		pf := w.Get(id, core.CompPathFinding).(*core.PathFinding)
		pf.RequestedPath = true
		pf.Goal = head.Target.Pos
		s.Transitions.Request(id, movingState(head.Type), head.Target)
	case head.Status == ExecutionPhase && head.PreviousStatus != ExecutionPhase:
		s.Transitions.Request(id, executingState(head.Type), head.Target)
	}
	head.PreviousStatus = start
}

// resolveHead resolves the head target, dropping every command that cannot
// be resolved. It returns the new head or nil once the queue is empty.
func (s *System) resolveHead(w *core.World, cat *targets.Catalog, id core.EntityID, q *Queue) *Command {
	pos := w.Get(id, core.CompPosition).(*core.Position).Vec()
	team := 0
	if c := w.Get(id, core.CompOwner); c != nil {
		team = c.(*core.Owner).TeamID
	}
	for head := q.Head(); head != nil; head = q.Head() {
		if !head.Target.NeedsResolution() {
			return head
		}
		td, err := targets.Resolve(cat, pos, team, head.wanted())
		if err == nil {
			head.Target = td
			return head
		}
		slog.Debug("command dropped", "entity", id, "command", head.Type, "want", head.wanted(), "err", err)
		s.EventBus.Emit(core.Event{
			Type:    core.EvtCommandDropped,
			Tick:    w.TickCount,
			Entity:  id,
			Payload: core.CommandDropped{Command: head.Type.String(), Reason: "unresolved"},
		})
		q.Pop()
	}
	return nil
}

func movingState(t CommandType) core.AIState {
	switch t {
	case Move:
		return core.StateMovingToPosition
	case Harvest:
		return core.StateMovingToHarvest
	case Attack:
		return core.StateMovingToAttack
	case Deposit:
		return core.StateMovingToDeposit
	}
	panic(fmt.Sprintf("command: no moving state for %v", t))
}

// executingState maps a command entering execution to its AI state. Move
// and Deposit finish on arrival and never execute.
func executingState(t CommandType) core.AIState {
	switch t {
	case Harvest:
		return core.StateHarvesting
	case Attack:
		return core.StateAttacking
	}
	panic(fmt.Sprintf("command: %v cannot enter execution", t))
}

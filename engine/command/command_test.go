package command

import (
	"errors"
	"testing"

	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/targets"
	"github.com/1siamBot/unitcore/engine/transition"
)

type fixedCatalog struct{ cat *targets.Catalog }

func (f fixedCatalog) Snapshot() *targets.Catalog { return f.cat }

type rig struct {
	w   *core.World
	sys *System
	buf *transition.Buffer
	bus *core.EventBus
}

func newRig(cat *targets.Catalog) *rig {
	if cat == nil {
		cat = &targets.Catalog{}
	}
	buf := transition.NewBuffer()
	bus := core.NewEventBus()
	return &rig{
		w:   core.NewWorld(20),
		buf: buf,
		bus: bus,
		sys: &System{Catalog: fixedCatalog{cat}, Transitions: buf, EventBus: bus},
	}
}

func (r *rig) unit() (core.EntityID, *Queue, *core.PathFinding) {
	id := r.w.Spawn()
	q := NewQueue(0)
	pf := &core.PathFinding{}
	r.w.Attach(id, &core.Position{})
	r.w.Attach(id, &core.Owner{TeamID: 1})
	r.w.Attach(id, &core.AI{})
	r.w.Attach(id, pf)
	r.w.Attach(id, q)
	return id, q, pf
}

func ground(x, y float64) core.TargetData {
	return core.TargetData{Type: core.TargetGround, Pos: core.Vec2{X: x, Y: y}}
}

func TestQueueCommand_Capacity(t *testing.T) {
	q := NewQueue(2)
	for i := 0; i < 2; i++ {
		if err := QueueCommand(Move, q, ground(1, 1), false); err != nil {
			t.Fatalf("queue %d: %v", i, err)
		}
	}
	err := QueueCommand(Move, q, ground(2, 2), false)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if q.Len() != 2 || q.At(1).Target.Pos.X != 1 {
		t.Fatal("overflowing command must not replace queued ones")
	}
}

func TestQueueCommand_OnlyIfEmpty(t *testing.T) {
	q := NewQueue(0)
	if err := QueueCommand(Move, q, ground(1, 0), true); err != nil {
		t.Fatal(err)
	}
	if err := QueueCommand(Move, q, ground(2, 0), true); err != nil {
		t.Fatalf("one queued command should not suppress: %v", err)
	}
	if err := QueueCommand(Move, q, ground(3, 0), true); !errors.Is(err, ErrSuppressed) {
		t.Fatalf("err = %v, want ErrSuppressed", err)
	}
	if q.Len() != 2 {
		t.Fatalf("len = %d, want 2", q.Len())
	}
}

func TestStatusHelpers_ShiftPrevious(t *testing.T) {
	q := NewQueue(0)
	if ExecuteCommand(q) || CompleteCommand(q) || RestartCommand(q) || RetargetCommand(q) {
		t.Fatal("helpers on empty queue should report false")
	}
	QueueCommand(Attack, q, core.TargetData{Entity: 5, Type: core.TargetEnemy}, false)
	q.Head().Status = MovingPhase

	ExecuteCommand(q)
	if h := q.Head(); h.Status != ExecutionPhase || h.PreviousStatus != MovingPhase {
		t.Fatalf("after execute: %+v", *h)
	}
	RetargetCommand(q)
	h := q.Head()
	if h.Status != Queued || h.PreviousStatus != ExecutionPhase {
		t.Fatalf("after retarget: %+v", *h)
	}
	if !h.Target.NeedsResolution() {
		t.Fatal("retarget should clear the target entity")
	}
}

func TestSystem_EmptyQueueStaysIdle(t *testing.T) {
	r := newRig(nil)
	id, _, pf := r.unit()
	r.sys.Update(r.w, 0.05)
	if _, ok := r.buf.Pending(id); ok {
		t.Fatal("empty queue must not request a state change")
	}
	if pf.RequestedPath {
		t.Fatal("empty queue must not request a path")
	}
}

func TestSystem_UnresolvableHarvestIsDropped(t *testing.T) {
	r := newRig(&targets.Catalog{})
	id, q, pf := r.unit()
	drops := 0
	r.bus.On(core.EvtCommandDropped, func(e core.Event) {
		if p := e.Payload.(core.CommandDropped); p.Reason != "unresolved" {
			t.Fatalf("reason = %q", p.Reason)
		}
		drops++
	})
	QueueCommand(Harvest, q, core.TargetData{Type: core.TargetFoodResource}, false)

	r.sys.Update(r.w, 0.05)
	r.bus.Dispatch()

	if q.Len() != 0 {
		t.Fatalf("queue len = %d, want 0", q.Len())
	}
	req, ok := r.buf.Pending(id)
	if !ok || req.State != core.StateIdle {
		t.Fatalf("pending = %+v %v, want idle", req, ok)
	}
	if pf.RequestedPath {
		t.Fatal("dropped command must not request a path")
	}
	if drops != 1 {
		t.Fatalf("drop events = %d, want 1", drops)
	}
}

func TestSystem_DropsChainUntilResolvable(t *testing.T) {
	cat := &targets.Catalog{
		Stores: []targets.Candidate{{Entity: 40, Type: core.TargetStore, Pos: core.Vec2{X: 3}, Team: 1}},
	}
	r := newRig(cat)
	id, q, pf := r.unit()
	QueueCommand(Attack, q, core.TargetData{}, false)
	QueueCommand(Attack, q, core.TargetData{}, false)
	QueueCommand(Deposit, q, core.TargetData{}, false)

	r.sys.Update(r.w, 0.05)

	if q.Len() != 1 || q.Head().Type != Deposit {
		t.Fatalf("queue = %d, head %v", q.Len(), q.Head())
	}
	h := q.Head()
	if h.Status != MovingPhase || h.PreviousStatus != Queued || h.Target.Entity != 40 {
		t.Fatalf("head = %+v", *h)
	}
	req, _ := r.buf.Pending(id)
	if req.State != core.StateMovingToDeposit || req.Target.Entity != 40 {
		t.Fatalf("request = %+v", req)
	}
	if !pf.RequestedPath {
		t.Fatal("resolved command should request a path")
	}
}

func TestSystem_MovingStates(t *testing.T) {
	cat := &targets.Catalog{
		Resources: []targets.Candidate{{Entity: 10, Type: core.TargetRareResource}},
		Stores:    []targets.Candidate{{Entity: 11, Type: core.TargetStore, Team: 1}},
		Enemies:   []targets.Candidate{{Entity: 12, Type: core.TargetEnemy, Team: 2}},
	}
	tests := []struct {
		cmd    CommandType
		target core.TargetData
		state  core.AIState
	}{
		{Move, ground(4, 4), core.StateMovingToPosition},
		{Harvest, core.TargetData{}, core.StateMovingToHarvest},
		{Attack, core.TargetData{}, core.StateMovingToAttack},
		{Deposit, core.TargetData{}, core.StateMovingToDeposit},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			r := newRig(cat)
			id, q, _ := r.unit()
			QueueCommand(tt.cmd, q, tt.target, false)
			r.sys.Update(r.w, 0.05)
			req, ok := r.buf.Pending(id)
			if !ok || req.State != tt.state {
				t.Fatalf("request = %+v, want %v", req, tt.state)
			}
		})
	}
}

func TestSystem_ExecutionEdgeFiresOnce(t *testing.T) {
	cat := &targets.Catalog{Resources: []targets.Candidate{{Entity: 10, Type: core.TargetFoodResource}}}
	r := newRig(cat)
	id, q, _ := r.unit()
	QueueCommand(Harvest, q, core.TargetData{}, false)

	r.sys.Update(r.w, 0.05)
	r.buf.Apply(r.w, nil)

	ExecuteCommand(q)
	r.sys.Update(r.w, 0.05)
	req, ok := r.buf.Pending(id)
	if !ok || req.State != core.StateHarvesting || req.Target.Entity != 10 {
		t.Fatalf("edge request = %+v %v", req, ok)
	}
	r.buf.Apply(r.w, nil)

	for i := 0; i < 3; i++ {
		r.sys.Update(r.w, 0.05)
		if _, ok := r.buf.Pending(id); ok {
			t.Fatalf("pass %d: execution re-initiated", i)
		}
	}
}

func TestSystem_PreviousStatusTracksStartOfPass(t *testing.T) {
	cat := &targets.Catalog{Enemies: []targets.Candidate{{Entity: 9, Type: core.TargetEnemy, Team: 2}}}
	r := newRig(cat)
	_, q, _ := r.unit()
	QueueCommand(Attack, q, core.TargetData{}, false)

	steps := []struct {
		before func()
		status Status
	}{
		{nil, MovingPhase},
		{nil, MovingPhase},
		{func() { ExecuteCommand(q) }, ExecutionPhase},
		{nil, ExecutionPhase},
		{func() { RestartCommand(q) }, MovingPhase},
	}
	for i, s := range steps {
		if s.before != nil {
			s.before()
		}
		start := q.Head().Status
		r.sys.Update(r.w, 0.05)
		r.buf.Apply(r.w, nil)
		h := q.Head()
		if h.PreviousStatus != start || h.Status != s.status {
			t.Fatalf("step %d: status %v previous %v, want %v previous %v", i, h.Status, h.PreviousStatus, s.status, start)
		}
	}
}

func TestSystem_CompletePopsAndIdles(t *testing.T) {
	r := newRig(nil)
	id, q, _ := r.unit()
	QueueCommand(Move, q, ground(1, 1), false)
	QueueCommand(Move, q, ground(2, 2), false)

	r.sys.Update(r.w, 0.05)
	r.buf.Apply(r.w, nil)
	CompleteCommand(q)
	r.sys.Update(r.w, 0.05)
	req, _ := r.buf.Pending(id)
	if q.Len() != 1 || req.State != core.StateMovingToPosition || req.Target.Pos.X != 2 {
		t.Fatalf("after first complete: len %d request %+v", q.Len(), req)
	}
	r.buf.Apply(r.w, nil)

	CompleteCommand(q)
	r.sys.Update(r.w, 0.05)
	req, ok := r.buf.Pending(id)
	if q.Len() != 0 || !ok || req.State != core.StateIdle {
		t.Fatalf("after last complete: len %d request %+v", q.Len(), req)
	}
}

func TestSystem_DepositExecutionPanics(t *testing.T) {
	r := newRig(nil)
	_, q, _ := r.unit()
	QueueCommand(Deposit, q, core.TargetData{Entity: 3, Type: core.TargetStore}, false)
	q.Head().Status = ExecutionPhase
	q.Head().PreviousStatus = MovingPhase

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for deposit execution")
		}
	}()
	r.sys.process(r.w, &targets.Catalog{}, r.w.Query(core.CompCommandQueue)[0])
}

func TestSystem_ParallelBatchesMatchSerial(t *testing.T) {
	cat := &targets.Catalog{
		Resources: []targets.Candidate{{Entity: 10, Type: core.TargetFoodResource, Pos: core.Vec2{X: 5}}},
	}
	run := func(b core.Batching) []core.AIState {
		r := newRig(cat)
		r.sys.Batching = b
		var ids []core.EntityID
		for i := 0; i < 40; i++ {
			id, q, _ := r.unit()
			switch i % 3 {
			case 0:
				QueueCommand(Harvest, q, core.TargetData{}, false)
			case 1:
				QueueCommand(Attack, q, core.TargetData{}, false)
			}
			ids = append(ids, id)
		}
		r.sys.Update(r.w, 0.05)
		r.buf.Apply(r.w, nil)
		out := make([]core.AIState, len(ids))
		for i, id := range ids {
			out[i] = r.w.Get(id, core.CompAI).(*core.AI).State
		}
		return out
	}
	serial := run(core.Batching{BatchSize: 1000, Workers: 1})
	parallel := run(core.Batching{BatchSize: 3, Workers: 4})
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("unit %d: serial %v parallel %v", i, serial[i], parallel[i])
		}
	}
}

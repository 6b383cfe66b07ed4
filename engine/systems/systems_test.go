package systems

import (
	"testing"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/transition"
)

const dt = 0.05

type unit struct {
	id  core.EntityID
	pos *core.Position
	ai  *core.AI
	pf  *core.PathFinding
	buf *core.PathBuffer
	q   *command.Queue
}

func spawnUnit(w *core.World, x, y float64) unit {
	u := unit{
		id:  w.Spawn(),
		pos: &core.Position{X: x, Y: y},
		ai:  &core.AI{},
		pf:  &core.PathFinding{},
		buf: core.NewPathBuffer(8),
		q:   command.NewQueue(0),
	}
	w.Attach(u.id, u.pos)
	w.Attach(u.id, u.ai)
	w.Attach(u.id, u.pf)
	w.Attach(u.id, u.buf)
	w.Attach(u.id, u.q)
	w.Attach(u.id, &core.Mover{Speed: 4})
	w.Attach(u.id, &core.Owner{PlayerID: 1, TeamID: 1})
	return u
}

// headIn puts a command at the head in the given phase and AI state, as if
// the command system had already processed it.
func headIn(u unit, t command.CommandType, status command.Status, state core.AIState, target core.TargetData) {
	command.QueueCommand(t, u.q, target, false)
	h := u.q.Head()
	h.Status = status
	h.PreviousStatus = status
	u.ai.State = state
	u.ai.Current = target
	u.pf.Goal = target.Pos
}

func TestMovement_FollowsPathAndCompletesMove(t *testing.T) {
	w := core.NewWorld(20)
	buf := transition.NewBuffer()
	sys := &MovementSystem{Transitions: buf}
	u := spawnUnit(w, 0.5, 0.5)
	goal := core.TargetData{Type: core.TargetGround, Pos: core.Vec2{X: 2.5, Y: 0.5}}
	headIn(u, command.Move, command.MovingPhase, core.StateMovingToPosition, goal)
	u.pf.CompletedPath = true
	u.buf.Append(core.PathNode{Pos: core.Vec2{X: 1.5, Y: 0.5}, Cell: core.TilePos{X: 1}})
	u.buf.Append(core.PathNode{Pos: core.Vec2{X: 2.5, Y: 0.5}, Cell: core.TilePos{X: 2}})

	for i := 0; i < 40 && u.q.Head().Status != command.Complete; i++ {
		sys.Update(w, dt)
	}
	if u.q.Head().Status != command.Complete {
		t.Fatalf("move not completed, pos=%v index=%d", u.pos.Vec(), u.pf.CurrentIndex)
	}
	if d := u.pos.Vec().DistSq(goal.Pos); d > DefaultArrivalRadius*DefaultArrivalRadius {
		t.Fatalf("stopped %v away from goal", d)
	}
	if req, ok := buf.Pending(u.id); !ok || req.State != core.StateIdle {
		t.Fatalf("pending = %+v, want idle", req)
	}
}

func TestMovement_TruncatedPathRequestsMore(t *testing.T) {
	w := core.NewWorld(20)
	sys := &MovementSystem{Transitions: transition.NewBuffer()}
	u := spawnUnit(w, 1.5, 0.5)
	headIn(u, command.Move, command.MovingPhase, core.StateMovingToPosition,
		core.TargetData{Type: core.TargetGround, Pos: core.Vec2{X: 30.5, Y: 0.5}})
	u.pf.CompletedPath = true
	u.pf.Truncated = true
	u.buf.Append(core.PathNode{Pos: core.Vec2{X: 1.5, Y: 0.5}})

	sys.Update(w, dt)
	sys.Update(w, dt)
	if !u.pf.RequestedPath {
		t.Fatal("end of a truncated path should request the rest")
	}
	if u.q.Head().Status != command.MovingPhase {
		t.Fatal("truncated move must not complete")
	}
}

func TestMovement_UnreachableOrderWaits(t *testing.T) {
	w := core.NewWorld(20)
	sys := &MovementSystem{Transitions: transition.NewBuffer()}
	u := spawnUnit(w, 0.5, 0.5)
	headIn(u, command.Move, command.MovingPhase, core.StateMovingToPosition,
		core.TargetData{Type: core.TargetGround, Pos: core.Vec2{X: 5, Y: 5}})

	for i := 0; i < 5; i++ {
		sys.Update(w, dt)
	}
	if u.q.Head().Status != command.MovingPhase {
		t.Fatalf("status = %v, want the order to stay in its moving phase", u.q.Head().Status)
	}
	if u.pos.X != 0.5 || u.pos.Y != 0.5 {
		t.Fatalf("unit without a path moved to %v", u.pos.Vec())
	}
}

func spawnNode(w *core.World, x, y float64, kind core.TargetType, amount int) (core.EntityID, *core.ResourceNode) {
	id := w.Spawn()
	node := &core.ResourceNode{Kind: kind, Amount: amount}
	w.Attach(id, &core.Position{X: x, Y: y})
	w.Attach(id, node)
	return id, node
}

func spawnStore(w *core.World, x, y float64) core.EntityID {
	id := w.Spawn()
	w.Attach(id, &core.Position{X: x, Y: y})
	w.Attach(id, &core.ResourceStore{})
	w.Attach(id, &core.Owner{PlayerID: 1, TeamID: 1})
	return id
}

func TestHarvester_ArrivalStartsExecution(t *testing.T) {
	w := core.NewWorld(20)
	sys := &HarvesterSystem{}
	u := spawnUnit(w, 2, 2)
	w.Attach(u.id, &core.Harvester{Capacity: 10, Rate: 20, Range: 1})
	nid, _ := spawnNode(w, 2.5, 2, core.TargetFoodResource, 50)
	headIn(u, command.Harvest, command.MovingPhase, core.StateMovingToHarvest,
		core.TargetData{Entity: nid, Type: core.TargetFoodResource, Pos: core.Vec2{X: 2.5, Y: 2}})

	sys.Update(w, dt)
	h := u.q.Head()
	if h.Status != command.ExecutionPhase || h.PreviousStatus != command.MovingPhase {
		t.Fatalf("head = %+v, want execution edge", *h)
	}
}

func TestHarvester_FullCargoQueuesDepositAndHarvest(t *testing.T) {
	w := core.NewWorld(20)
	bus := core.NewEventBus()
	sys := &HarvesterSystem{EventBus: bus}
	u := spawnUnit(w, 2, 2)
	harv := &core.Harvester{Capacity: 4, Rate: 20, Range: 1}
	w.Attach(u.id, harv)
	nid, node := spawnNode(w, 2.5, 2, core.TargetRareResource, 50)
	headIn(u, command.Harvest, command.ExecutionPhase, core.StateHarvesting,
		core.TargetData{Entity: nid, Type: core.TargetRareResource, Pos: core.Vec2{X: 2.5, Y: 2}})

	for i := 0; i < 20 && u.q.Head().Status != command.Complete; i++ {
		sys.Update(w, dt)
	}
	if harv.Current != 4 || node.Amount != 46 || harv.Carrying != core.TargetRareResource {
		t.Fatalf("cargo %d node %d carrying %v", harv.Current, node.Amount, harv.Carrying)
	}
	if u.q.Len() != 3 {
		t.Fatalf("queue len = %d, want complete+deposit+harvest", u.q.Len())
	}
	if d := u.q.At(1); d.Type != command.Deposit || !d.Target.NeedsResolution() {
		t.Fatalf("second command = %+v", d)
	}
	if h := u.q.At(2); h.Type != command.Harvest || h.Want != core.TargetRareResource {
		t.Fatalf("third command = %+v", h)
	}
}

func TestHarvester_DepositCreditsOwner(t *testing.T) {
	w := core.NewWorld(20)
	pm := core.NewPlayerManager()
	player := &core.Player{ID: 1, TeamID: 1}
	pm.AddPlayer(player)
	sys := &HarvesterSystem{Players: pm}
	u := spawnUnit(w, 5, 5)
	harv := &core.Harvester{Capacity: 10, Current: 7, Carrying: core.TargetFoodResource, Range: 1}
	w.Attach(u.id, harv)
	sid := spawnStore(w, 5.5, 5)
	headIn(u, command.Deposit, command.MovingPhase, core.StateMovingToDeposit,
		core.TargetData{Entity: sid, Type: core.TargetStore, Pos: core.Vec2{X: 5.5, Y: 5}})

	sys.Update(w, dt)
	if player.Stockpile[core.TargetFoodResource] != 7 || harv.Current != 0 {
		t.Fatalf("stockpile %v cargo %d", player.Stockpile, harv.Current)
	}
	if u.q.Head().Status != command.Complete {
		t.Fatal("deposit should complete on arrival")
	}
}

func TestHarvester_StoreFallbackDepositsAndCompletes(t *testing.T) {
	w := core.NewWorld(20)
	pm := core.NewPlayerManager()
	player := &core.Player{ID: 1, TeamID: 1}
	pm.AddPlayer(player)
	sys := &HarvesterSystem{Players: pm}
	u := spawnUnit(w, 5, 5)
	w.Attach(u.id, &core.Harvester{Capacity: 10, Current: 3, Carrying: core.TargetBuildingResource, Range: 1})
	sid := spawnStore(w, 5, 5.5)
	headIn(u, command.Harvest, command.MovingPhase, core.StateMovingToHarvest,
		core.TargetData{Entity: sid, Type: core.TargetStore, Pos: core.Vec2{X: 5, Y: 5.5}})

	sys.Update(w, dt)
	if player.Total() != 3 || u.q.Head().Status != command.Complete {
		t.Fatalf("total %d status %v", player.Total(), u.q.Head().Status)
	}
}

func TestHarvester_LostTargetRetargets(t *testing.T) {
	w := core.NewWorld(20)
	sys := &HarvesterSystem{}
	u := spawnUnit(w, 0, 0)
	w.Attach(u.id, &core.Harvester{Capacity: 10, Rate: 1, Range: 1})
	nid, node := spawnNode(w, 9, 9, core.TargetFoodResource, 5)
	headIn(u, command.Harvest, command.MovingPhase, core.StateMovingToHarvest,
		core.TargetData{Entity: nid, Type: core.TargetFoodResource, Pos: core.Vec2{X: 9, Y: 9}})
	node.Amount = 0

	sys.Update(w, dt)
	h := u.q.Head()
	if h.Status != command.Queued || !h.Target.NeedsResolution() {
		t.Fatalf("head = %+v, want queued for re-resolution", *h)
	}
}

func TestCombat_KillsTargetAndCompletes(t *testing.T) {
	w := core.NewWorld(20)
	bus := core.NewEventBus()
	destroyed := 0
	bus.On(core.EvtUnitDestroyed, func(core.Event) { destroyed++ })
	sys := &CombatSystem{EventBus: bus}

	u := spawnUnit(w, 0, 0)
	w.Attach(u.id, &core.Weapon{Damage: 4, Range: 2, Cooldown: 0.1})
	enemy := w.Spawn()
	w.Attach(enemy, &core.Position{X: 1})
	w.Attach(enemy, &core.Health{Current: 10, Max: 10})
	w.Attach(enemy, &core.Owner{PlayerID: 2, TeamID: 2})
	headIn(u, command.Attack, command.MovingPhase, core.StateMovingToAttack,
		core.TargetData{Entity: enemy, Type: core.TargetEnemy, Pos: core.Vec2{X: 1}})

	sys.Update(w, dt)
	if u.q.Head().Status != command.ExecutionPhase {
		t.Fatal("target in range should start execution")
	}
	u.ai.State = core.StateAttacking
	for i := 0; i < 20 && u.q.Head().Status != command.Complete; i++ {
		w.Tick(0)
		sys.Update(w, dt)
	}
	w.Tick(0)
	bus.Dispatch()
	if u.q.Head().Status != command.Complete || destroyed != 1 {
		t.Fatalf("status %v destroyed %d", u.q.Head().Status, destroyed)
	}
	if w.Get(enemy, core.CompHealth) != nil {
		t.Fatal("dead target should be removed after the tick")
	}
}

func TestCombat_TargetOutOfRangeRestarts(t *testing.T) {
	w := core.NewWorld(20)
	sys := &CombatSystem{}
	u := spawnUnit(w, 0, 0)
	w.Attach(u.id, &core.Weapon{Damage: 1, Range: 1.5})
	enemy := w.Spawn()
	w.Attach(enemy, &core.Position{X: 8, Y: 0})
	w.Attach(enemy, &core.Health{Current: 10, Max: 10})
	headIn(u, command.Attack, command.ExecutionPhase, core.StateAttacking,
		core.TargetData{Entity: enemy, Type: core.TargetEnemy, Pos: core.Vec2{X: 1}})

	sys.Update(w, dt)
	h := u.q.Head()
	if h.Status != command.Queued || h.Target.Pos.X != 8 || h.Target.Entity != enemy {
		t.Fatalf("head = %+v, want restart toward live position", *h)
	}
}

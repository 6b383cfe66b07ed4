// Package sim wires the unit core into a runnable simulation: it owns the
// world, registers the tick pipeline and feeds player orders into it.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1siamBot/unitcore/engine/ai"
	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/config"
	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/maplib"
	"github.com/1siamBot/unitcore/engine/network"
	"github.com/1siamBot/unitcore/engine/pathfind"
	"github.com/1siamBot/unitcore/engine/stats"
	"github.com/1siamBot/unitcore/engine/systems"
	"github.com/1siamBot/unitcore/engine/targets"
	"github.com/1siamBot/unitcore/engine/transition"
)

// ErrBadOrder is returned for orders that do not address a unit the
// issuing player controls.
var ErrBadOrder = errors.New("bad order")

// Simulation is one running match
type Simulation struct {
	Config      *config.Config
	World       *core.World
	Map         *maplib.TileMap
	Grid        *pathfind.Grid
	Players     *core.PlayerManager
	Events      *core.EventBus
	Catalog     *targets.System
	Transitions *transition.Buffer
	Lockstep    *network.Lockstep
	Stats       *stats.Counters
	AI          *ai.AISystem
	Units       UnitDefs

	recorder *network.Replay
}

// New builds a simulation over tm for the given players. Resource nodes and
// stores authored in the map are spawned; AI players get a controller.
func New(cfg *config.Config, tm *maplib.TileMap, players []*core.Player) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := tm.Validate(); err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}

	s := &Simulation{
		Config:      cfg,
		World:       core.NewWorld(cfg.TickRate),
		Map:         tm,
		Grid:        pathfind.NewGrid(tm, cfg.CellSize),
		Players:     core.NewPlayerManager(),
		Events:      core.NewEventBus(),
		Catalog:     &targets.System{},
		Transitions: transition.NewBuffer(),
		Lockstep:    network.NewLockstep(cfg.InputDelay),
		Stats:       &stats.Counters{},
		AI:          &ai.AISystem{},
		Units:       DefaultUnits(),
	}
	s.AI.Players = s.Players
	s.Stats.Subscribe(s.Events)

	for _, p := range players {
		s.Players.AddPlayer(p)
		if p.IsAI {
			c := ai.NewAIController(p.ID, ai.DiffMedium)
			if sp, ok := s.startPos(p.ID); ok {
				c.Home = sp
			}
			s.AI.Controllers = append(s.AI.Controllers, c)
		}
	}

	batching := core.Batching{BatchSize: cfg.BatchSize, Workers: cfg.Workers}
	s.World.AddSystem(s.Catalog)
	s.World.AddSystem(&command.System{Catalog: s.Catalog, Transitions: s.Transitions, Batching: batching, EventBus: s.Events})
	s.World.AddSystem(&pathfind.System{Grid: s.Grid, Batching: batching, EventBus: s.Events})
	s.World.AddSystem(&transition.System{Buffer: s.Transitions, EventBus: s.Events})
	s.World.AddSystem(&systems.MovementSystem{Transitions: s.Transitions, ArrivalRadius: cfg.ArrivalRadius})
	s.World.AddSystem(&systems.HarvesterSystem{Players: s.Players, EventBus: s.Events})
	s.World.AddSystem(&systems.CombatSystem{EventBus: s.Events})
	s.World.AddSystem(s.AI)

	for _, r := range tm.Resources {
		kind, err := ParseResourceKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("map resource at %d,%d: %w", r.X, r.Y, err)
		}
		s.SpawnResource(kind, s.TileCenter(r.X, r.Y), r.Amount)
	}
	for _, st := range tm.Stores {
		if _, err := s.SpawnStore(st.Player, s.TileCenter(st.X, st.Y)); err != nil {
			return nil, fmt.Errorf("map store at %d,%d: %w", st.X, st.Y, err)
		}
	}
	return s, nil
}

func (s *Simulation) startPos(player int) (core.Vec2, bool) {
	for _, sp := range s.Map.StartPositions {
		if sp.PlayerSlot == player {
			return s.TileCenter(sp.X, sp.Y), true
		}
	}
	return core.Vec2{}, false
}

// TileCenter returns the world position of a tile's centre
func (s *Simulation) TileCenter(x, y int) core.Vec2 {
	return s.Grid.At(x, y).Pos
}

// SpawnUnit creates a unit of kind for player at pos, idle with an empty queue.
func (s *Simulation) SpawnUnit(kind string, player int, pos core.Vec2) (core.EntityID, error) {
	def, err := s.Units.Get(kind)
	if err != nil {
		return 0, err
	}
	p := s.Players.GetPlayer(player)
	if p == nil {
		return 0, fmt.Errorf("spawn %s: unknown player %d", kind, player)
	}
	w := s.World
	id := w.Spawn()
	w.Attach(id, &core.Position{X: pos.X, Y: pos.Y})
	w.Attach(id, &core.Owner{PlayerID: p.ID, TeamID: p.TeamID})
	w.Attach(id, &core.AI{State: core.StateIdle})
	w.Attach(id, &core.PathFinding{})
	w.Attach(id, core.NewPathBuffer(s.Config.PathCapacity))
	w.Attach(id, command.NewQueue(s.Config.QueueCapacity))
	for _, c := range def.components() {
		w.Attach(id, c)
	}
	s.Events.Emit(core.Event{Type: core.EvtUnitCreated, Tick: w.TickCount, Entity: id, Payload: kind})
	return id, nil
}

// SpawnResource creates a resource node
func (s *Simulation) SpawnResource(kind core.TargetType, pos core.Vec2, amount int) core.EntityID {
	id := s.World.Spawn()
	s.World.Attach(id, &core.Position{X: pos.X, Y: pos.Y})
	s.World.Attach(id, &core.ResourceNode{Kind: kind, Amount: amount})
	return id
}

// SpawnStore creates a drop-off store owned by player
func (s *Simulation) SpawnStore(player int, pos core.Vec2) (core.EntityID, error) {
	p := s.Players.GetPlayer(player)
	if p == nil {
		return 0, fmt.Errorf("store: unknown player %d", player)
	}
	id := s.World.Spawn()
	s.World.Attach(id, &core.Position{X: pos.X, Y: pos.Y})
	s.World.Attach(id, &core.ResourceStore{})
	s.World.Attach(id, &core.Owner{PlayerID: p.ID, TeamID: p.TeamID})
	return id, nil
}

// Record makes every submitted order also go to r
func (s *Simulation) Record(r *network.Replay) { s.recorder = r }

// Submit schedules a player order for the tick after the input delay and
// returns it as scheduled.
func (s *Simulation) Submit(o network.Order) (network.Order, error) {
	o = s.Lockstep.Submit(s.World.TickCount, o)
	if s.recorder != nil {
		if err := s.recorder.Record(o); err != nil {
			return o, fmt.Errorf("record order: %w", err)
		}
	}
	return o, nil
}

// Issue applies an order to its unit's command queue right away. Replace
// orders clear the queue first; append orders queue behind it.
func (s *Simulation) Issue(o network.Order) error {
	w := s.World
	if !w.Alive(o.Entity) {
		return fmt.Errorf("%w: unit %d does not exist", ErrBadOrder, o.Entity)
	}
	own, _ := w.Get(o.Entity, core.CompOwner).(*core.Owner)
	q, _ := w.Get(o.Entity, core.CompCommandQueue).(*command.Queue)
	if own == nil || q == nil {
		return fmt.Errorf("%w: entity %d is not a unit", ErrBadOrder, o.Entity)
	}
	if own.PlayerID != o.PlayerID {
		return fmt.Errorf("%w: player %d does not own unit %d", ErrBadOrder, o.PlayerID, o.Entity)
	}

	target := o.Target()
	if o.Command == command.Move && target.Entity == 0 {
		target.Type = core.TargetGround
	}
	if !o.Append {
		q.Clear()
	}
	if err := command.QueueCommand(o.Command, q, target, false); err != nil {
		slog.Debug("order rejected", "entity", o.Entity, "command", o.Command, "err", err)
		s.Events.Emit(core.Event{
			Type:    core.EvtCommandDropped,
			Tick:    w.TickCount,
			Entity:  o.Entity,
			Payload: core.CommandDropped{Command: o.Command.String(), Reason: "queue_full"},
		})
		return err
	}
	s.Events.Emit(core.Event{Type: core.EvtCommandQueued, Tick: w.TickCount, Entity: o.Entity, Payload: o.Command.String()})
	return nil
}

// Step delivers the orders due this tick and advances the world by one tick.
func (s *Simulation) Step() {
	for _, o := range s.Lockstep.Due(s.World.TickCount) {
		if err := s.Issue(o); err != nil {
			slog.Warn("order not applied", "tick", s.World.TickCount, "player", o.PlayerID, "entity", o.Entity, "err", err)
		}
	}
	s.World.Tick(s.Config.Dt())
	s.Events.Dispatch()
}

// Run advances the simulation by ticks, stopping early if ctx is done.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	return nil
}

// UnitState is a read-only view of one unit
type UnitState struct {
	ID     core.EntityID
	Player int
	Pos    core.Vec2
	State  core.AIState
	Queue  int
	HP     int
}

// UnitStates returns the state of every unit in id order
func (s *Simulation) UnitStates() []UnitState {
	w := s.World
	var out []UnitState
	for _, id := range w.Query(core.CompPosition, core.CompAI, core.CompOwner, core.CompCommandQueue) {
		st := UnitState{
			ID:     id,
			Player: w.Get(id, core.CompOwner).(*core.Owner).PlayerID,
			Pos:    w.Get(id, core.CompPosition).(*core.Position).Vec(),
			State:  w.Get(id, core.CompAI).(*core.AI).State,
			Queue:  w.Get(id, core.CompCommandQueue).(*command.Queue).Len(),
		}
		if hp, ok := w.Get(id, core.CompHealth).(*core.Health); ok {
			st.HP = hp.Current
		}
		out = append(out, st)
	}
	return out
}

package systems

import (
	"log/slog"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
)

// CombatSystem drives Attack orders: closing in, firing on cooldown and
// finishing the order once the target is dead.
type CombatSystem struct {
	EventBus *core.EventBus
}

func (s *CombatSystem) Priority() int { return 60 }

func (s *CombatSystem) Update(w *core.World, dt float64) {
	for _, id := range w.Query(core.CompPosition, core.CompWeapon, core.CompAI, core.CompCommandQueue) {
		wep := w.Get(id, core.CompWeapon).(*core.Weapon)
		if wep.CooldownNow > 0 {
			wep.CooldownNow -= dt
		}

		ai := w.Get(id, core.CompAI).(*core.AI)
		q := w.Get(id, core.CompCommandQueue).(*command.Queue)
		head := q.Head()
		if head == nil || head.Type != command.Attack {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position)

		switch ai.State {
		case core.StateMovingToAttack:
			if head.Status != command.MovingPhase {
				continue
			}
			tpos, ok := livePosition(w, ai.Current.Entity)
			if !ok {
				command.RetargetCommand(q)
				continue
			}
			if inRange(pos, tpos, wep.Range) {
				command.ExecuteCommand(q)
			} else if tpos.DistSq(ai.Current.Pos) > wep.Range*wep.Range {
				// target walked away from the planned goal
				head.Target.Pos = tpos
				command.RestartCommand(q)
			}

		case core.StateAttacking:
			if head.Status != command.ExecutionPhase {
				continue
			}
			tpos, ok := livePosition(w, ai.Current.Entity)
			if !ok {
				command.CompleteCommand(q)
				continue
			}
			if !inRange(pos, tpos, wep.Range) {
				head.Target.Pos = tpos
				command.RestartCommand(q)
				continue
			}
			if wep.CooldownNow > 0 {
				continue
			}
			wep.CooldownNow = wep.Cooldown
			s.EventBus.Emit(core.Event{Type: core.EvtUnitAttack, Tick: w.TickCount, Entity: id, Payload: ai.Current.Entity})
			if ApplyDamage(w, ai.Current.Entity, wep.Damage, s.EventBus) {
				command.CompleteCommand(q)
			}
		}
	}
}

// livePosition returns the position of a target that is still alive
func livePosition(w *core.World, id core.EntityID) (core.Vec2, bool) {
	if !w.Alive(id) {
		return core.Vec2{}, false
	}
	hp := w.Get(id, core.CompHealth)
	if hp == nil || hp.(*core.Health).Current <= 0 {
		return core.Vec2{}, false
	}
	return w.Get(id, core.CompPosition).(*core.Position).Vec(), true
}

// ApplyDamage subtracts damage from an entity's health and destroys it at
// zero. It reports whether the entity died.
func ApplyDamage(w *core.World, id core.EntityID, damage int, bus *core.EventBus) bool {
	hp := w.Get(id, core.CompHealth)
	if hp == nil {
		return false
	}
	h := hp.(*core.Health)
	h.Current -= max(damage, 1)
	if h.Current > 0 {
		return false
	}
	h.Current = 0
	w.Destroy(id)
	slog.Debug("unit destroyed", "entity", id)
	bus.Emit(core.Event{Type: core.EvtUnitDestroyed, Tick: w.TickCount, Entity: id})
	return true
}

package ai

import (
	"log/slog"
	"math"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
)

// Difficulty controls AI behavior
type Difficulty int

const (
	DiffEasy Difficulty = iota
	DiffMedium
	DiffHard
)

// AIController issues orders for one computer player
type AIController struct {
	PlayerID   int
	Difficulty Difficulty
	Home       core.Vec2 // base position to defend

	tickTimer     float64
	thinkInterval float64
	attackTimer   float64
	waveCount     int
}

func NewAIController(playerID int, diff Difficulty) *AIController {
	interval := 2.0
	switch diff {
	case DiffEasy:
		interval = 4.0
	case DiffHard:
		interval = 1.0
	}
	return &AIController{
		PlayerID:      playerID,
		Difficulty:    diff,
		thinkInterval: interval,
	}
}

// Waves returns the number of attack waves launched so far
func (ai *AIController) Waves() int { return ai.waveCount }

// AISystem runs all AI controllers after the tick's unit logic
type AISystem struct {
	Controllers []*AIController
	Players     *core.PlayerManager
}

func (s *AISystem) Priority() int { return 70 }

func (s *AISystem) Update(w *core.World, dt float64) {
	for _, ai := range s.Controllers {
		ai.tickTimer += dt
		ai.attackTimer += dt
		if ai.tickTimer >= ai.thinkInterval {
			ai.tickTimer = 0
			ai.Think(w, s.Players)
		}
	}
}

const defendRadius = 8.0

// Think puts idle harvesters to work and sends idle fighters at the enemy
// once the wave timer has run out, or at once when the base is threatened.
func (ai *AIController) Think(w *core.World, pm *core.PlayerManager) {
	player := pm.GetPlayer(ai.PlayerID)
	if player == nil || player.Defeated {
		return
	}

	for _, id := range ai.idleUnits(w, core.CompHarvester) {
		q := w.Get(id, core.CompCommandQueue).(*command.Queue)
		if err := command.QueueCommand(command.Harvest, q, core.TargetData{Type: core.TargetResource}, true); err != nil {
			slog.Debug("ai harvest order rejected", "player", ai.PlayerID, "entity", id, "err", err)
		}
	}

	attackInterval := 30.0
	switch ai.Difficulty {
	case DiffMedium:
		attackInterval = 20.0
	case DiffHard:
		attackInterval = 10.0
	}
	fighters := ai.idleUnits(w, core.CompWeapon)
	underAttack := ThreatAssessment(w, pm, ai.PlayerID, ai.Home.X, ai.Home.Y, defendRadius) > 0
	if len(fighters) == 0 || (!underAttack && (ai.attackTimer < attackInterval || len(fighters) < 3)) {
		return
	}
	ai.attackTimer = 0
	ai.waveCount++
	slog.Info("ai attack wave", "player", ai.PlayerID, "wave", ai.waveCount, "units", len(fighters))
	for _, id := range fighters {
		q := w.Get(id, core.CompCommandQueue).(*command.Queue)
		if err := command.QueueCommand(command.Attack, q, core.TargetData{Type: core.TargetEnemy}, true); err != nil {
			slog.Debug("ai attack order rejected", "player", ai.PlayerID, "entity", id, "err", err)
		}
	}
}

// idleUnits lists this player's idle units with an empty queue that carry
// the given component.
func (ai *AIController) idleUnits(w *core.World, ct core.ComponentType) []core.EntityID {
	var out []core.EntityID
	for _, id := range w.Query(ct, core.CompOwner, core.CompAI, core.CompCommandQueue) {
		if w.Get(id, core.CompOwner).(*core.Owner).PlayerID != ai.PlayerID {
			continue
		}
		if w.Get(id, core.CompAI).(*core.AI).State != core.StateIdle {
			continue
		}
		if w.Get(id, core.CompCommandQueue).(*command.Queue).Len() > 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ThreatAssessment returns the total threat value of enemies near a position
func ThreatAssessment(w *core.World, pm *core.PlayerManager, playerID int, wx, wy, radius float64) float64 {
	threat := 0.0
	for _, id := range w.Query(core.CompPosition, core.CompWeapon, core.CompOwner) {
		own := w.Get(id, core.CompOwner).(*core.Owner)
		if pm.AreAllies(playerID, own.PlayerID) {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position)
		dx := pos.X - wx
		dy := pos.Y - wy
		d := math.Sqrt(dx*dx + dy*dy)
		if d <= radius {
			wep := w.Get(id, core.CompWeapon).(*core.Weapon)
			threat += float64(wep.Damage) * (1.0 - d/radius)
		}
	}
	return threat
}

package core

// Player represents a game player
type Player struct {
	ID        int
	Name      string
	TeamID    int
	Stockpile map[TargetType]int // deposited resources by kind
	IsAI      bool
	Defeated  bool
}

// Deposit credits amount of kind to the player's stockpile
func (p *Player) Deposit(kind TargetType, amount int) {
	if p.Stockpile == nil {
		p.Stockpile = make(map[TargetType]int)
	}
	p.Stockpile[kind] += amount
}

// Total returns the sum of every stockpiled resource
func (p *Player) Total() int {
	total := 0
	for _, v := range p.Stockpile {
		total += v
	}
	return total
}

// PlayerManager manages all players in a game
type PlayerManager struct {
	Players []*Player
}

func NewPlayerManager() *PlayerManager {
	return &PlayerManager{}
}

func (pm *PlayerManager) AddPlayer(p *Player) {
	pm.Players = append(pm.Players, p)
}

func (pm *PlayerManager) GetPlayer(id int) *Player {
	for _, p := range pm.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AreAllies checks if two players are allied
func (pm *PlayerManager) AreAllies(a, b int) bool {
	pa := pm.GetPlayer(a)
	pb := pm.GetPlayer(b)
	if pa == nil || pb == nil {
		return false
	}
	return pa.TeamID == pb.TeamID
}

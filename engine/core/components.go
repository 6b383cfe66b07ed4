package core

import "math"

// ---- Position & Transform ----

// Vec2 is a point in world space (tile units, fractional)
type Vec2 struct {
	X, Y float64
}

// DistSq returns the squared distance between two points
func (v Vec2) DistSq(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// Position represents a world position
type Position struct {
	X, Y   float64 // world position (tile coords, fractional)
	Z      float64 // height (for elevation, flying units)
	Facing float64 // direction in radians (0 = east)
}

func (p *Position) Type() ComponentType { return CompPosition }

// Vec returns the planar part of the position
func (p *Position) Vec() Vec2 { return Vec2{p.X, p.Y} }

// DistanceTo returns euclidean distance to another position
func (p *Position) DistanceTo(other *Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// TilePos represents integer tile coordinates
type TilePos struct {
	X, Y int
}

// ---- Health & Combat ----

// Health represents hit points
type Health struct {
	Current int
	Max     int
}

func (h *Health) Type() ComponentType { return CompHealth }

func (h *Health) Ratio() float64 {
	if h.Max <= 0 {
		return 0
	}
	return float64(h.Current) / float64(h.Max)
}

// Weapon represents attack capability
type Weapon struct {
	Damage      int
	Range       float64 // in tile units
	Cooldown    float64 // seconds between shots
	CooldownNow float64
}

func (w *Weapon) Type() ComponentType { return CompWeapon }

// ---- Movement ----

// Mover marks an entity that follows paths
type Mover struct {
	Speed float64 // tiles per second
}

func (m *Mover) Type() ComponentType { return CompMover }

// ---- Ownership ----

// Owner identifies which player owns this entity
type Owner struct {
	PlayerID int
	TeamID   int
}

func (o *Owner) Type() ComponentType { return CompOwner }

// ---- Economy ----

// Harvester represents a resource-gathering unit
type Harvester struct {
	Capacity int
	Current  int
	Rate     float64 // units per second
	Range    float64 // interaction distance to nodes and stores
	Carrying TargetType
	progress float64
}

func (h *Harvester) Type() ComponentType { return CompHarvester }

// Accrue adds rate*dt to the fractional progress and returns the whole units gained.
func (h *Harvester) Accrue(dt float64) int {
	h.progress += h.Rate * dt
	whole := int(h.progress)
	h.progress -= float64(whole)
	return whole
}

// Full reports whether the harvester cannot carry more
func (h *Harvester) Full() bool { return h.Current >= h.Capacity }

// ResourceNode is a harvestable deposit
type ResourceNode struct {
	Kind   TargetType // one of the resource bits
	Amount int
}

func (r *ResourceNode) Type() ComponentType { return CompResourceNode }

// ResourceStore marks a drop-off building for harvested resources
type ResourceStore struct{}

func (s *ResourceStore) Type() ComponentType { return CompResourceStore }

// ---- Targeting ----

// TargetType is a bitmask describing what kind of entity a target is.
type TargetType uint8

// TargetNone means the target must still be resolved.
const TargetNone TargetType = 0

const (
	TargetFoodResource TargetType = 1 << iota
	TargetBuildingResource
	TargetRareResource
	TargetStore
	TargetEnemy
	TargetGround
)

// TargetResource matches every resource kind
const TargetResource = TargetFoodResource | TargetBuildingResource | TargetRareResource

// Has reports whether any bit of mask is set in t
func (t TargetType) Has(mask TargetType) bool { return t&mask != 0 }

func (t TargetType) String() string {
	switch t {
	case TargetNone:
		return "none"
	case TargetFoodResource:
		return "food"
	case TargetBuildingResource:
		return "building"
	case TargetRareResource:
		return "rare"
	case TargetStore:
		return "store"
	case TargetEnemy:
		return "enemy"
	case TargetGround:
		return "ground"
	case TargetResource:
		return "resource"
	}
	return "mixed"
}

// TargetData describes what a unit is pursuing
type TargetData struct {
	Entity EntityID // 0 = no entity
	Type   TargetType
	Pos    Vec2
}

// NeedsResolution reports whether the target still has to be picked from the
// catalog. Ground targets carry only a position and never need resolution.
func (t TargetData) NeedsResolution() bool {
	return t.Entity == 0 && t.Type != TargetGround
}

// ---- AI state ----

// AIState is the exclusive behaviour state of a unit
type AIState uint8

const (
	StateIdle AIState = iota
	StateMovingToPosition
	StateMovingToHarvest
	StateHarvesting
	StateMovingToDeposit
	StateMovingToAttack
	StateAttacking
)

var aiStateNames = [...]string{
	StateIdle:             "idle",
	StateMovingToPosition: "moving_to_position",
	StateMovingToHarvest:  "moving_to_harvest",
	StateHarvesting:       "harvesting",
	StateMovingToDeposit:  "moving_to_deposit",
	StateMovingToAttack:   "moving_to_attack",
	StateAttacking:        "attacking",
}

func (s AIState) String() string {
	if int(s) < len(aiStateNames) {
		return aiStateNames[s]
	}
	return "unknown"
}

// Moving reports whether the state is one of the path-following states
func (s AIState) Moving() bool {
	switch s {
	case StateMovingToPosition, StateMovingToHarvest, StateMovingToDeposit, StateMovingToAttack:
		return true
	}
	return false
}

// AI holds the committed behaviour state and targets of a unit. Only the
// transition system writes it.
type AI struct {
	State    AIState
	Current  TargetData
	Previous TargetData
}

func (a *AI) Type() ComponentType { return CompAI }

// ---- Pathfinding ----

// PathFinding carries the path request/response flags of a unit
type PathFinding struct {
	RequestedPath bool
	CompletedPath bool
	PathReady     bool // set on the tick a path is delivered, cleared lazily afterwards
	Truncated     bool // path was cut at buffer capacity
	Goal          Vec2 // world position the next request plans toward
	CurrentNode   TilePos
	TargetNode    TilePos
	CurrentIndex  int
}

func (p *PathFinding) Type() ComponentType { return CompPathFinding }

// PathNode is one waypoint of a unit path
type PathNode struct {
	Pos  Vec2
	Cell TilePos
}

// DefaultPathCapacity bounds the number of waypoints a unit keeps
const DefaultPathCapacity = 256

// PathBuffer is the unit-owned waypoint list, rebuilt on every request
type PathBuffer struct {
	Nodes []PathNode
	Cap   int
}

func (b *PathBuffer) Type() ComponentType { return CompPathBuffer }

// NewPathBuffer allocates a buffer with the given capacity
func NewPathBuffer(capacity int) *PathBuffer {
	if capacity <= 0 {
		capacity = DefaultPathCapacity
	}
	return &PathBuffer{Nodes: make([]PathNode, 0, capacity), Cap: capacity}
}

// Reset empties the buffer, keeping its storage
func (b *PathBuffer) Reset() { b.Nodes = b.Nodes[:0] }

// Append adds a waypoint, returning false when the buffer is full
func (b *PathBuffer) Append(n PathNode) bool {
	if len(b.Nodes) >= b.Cap {
		return false
	}
	b.Nodes = append(b.Nodes, n)
	return true
}

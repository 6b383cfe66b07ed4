// Package targets captures the per-tick candidate catalog and resolves
// unit targets against it.
package targets

import (
	"sync/atomic"

	"github.com/1siamBot/unitcore/engine/core"
)

// Candidate is one potential target as seen at capture time
type Candidate struct {
	Entity core.EntityID
	Type   core.TargetType
	Pos    core.Vec2
	Team   int
}

// Catalog is an immutable snapshot of every candidate target for one tick.
// Slices are in entity-id order, which is the first-seen order for ties.
type Catalog struct {
	Tick      uint64
	Resources []Candidate
	Stores    []Candidate
	Enemies   []Candidate // every owned entity with health; filtered by team on use
}

// Capture builds the catalog from the current world state
func Capture(w *core.World) *Catalog {
	cat := &Catalog{Tick: w.TickCount}
	for _, id := range w.Query(core.CompPosition, core.CompResourceNode) {
		node := w.Get(id, core.CompResourceNode).(*core.ResourceNode)
		if node.Amount <= 0 {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position)
		cat.Resources = append(cat.Resources, Candidate{Entity: id, Type: node.Kind, Pos: pos.Vec()})
	}
	for _, id := range w.Query(core.CompPosition, core.CompResourceStore, core.CompOwner) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		own := w.Get(id, core.CompOwner).(*core.Owner)
		cat.Stores = append(cat.Stores, Candidate{Entity: id, Type: core.TargetStore, Pos: pos.Vec(), Team: own.TeamID})
	}
	for _, id := range w.Query(core.CompPosition, core.CompHealth, core.CompOwner) {
		if !w.Alive(id) {
			continue
		}
		if hp := w.Get(id, core.CompHealth).(*core.Health); hp.Current <= 0 {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position)
		own := w.Get(id, core.CompOwner).(*core.Owner)
		cat.Enemies = append(cat.Enemies, Candidate{Entity: id, Type: core.TargetEnemy, Pos: pos.Vec(), Team: own.TeamID})
	}
	return cat
}

// System captures a fresh catalog at the start of every tick. Later stages
// read it through Snapshot; it is never modified after publication.
type System struct {
	current atomic.Pointer[Catalog]
}

func (s *System) Priority() int { return 0 }

func (s *System) Update(w *core.World, dt float64) {
	s.current.Store(Capture(w))
}

// Snapshot returns the catalog of the current tick, or an empty catalog
// before the first capture.
func (s *System) Snapshot() *Catalog {
	if c := s.current.Load(); c != nil {
		return c
	}
	return &Catalog{}
}

package core

import "slices"

// EntityID is a unique identifier for game entities. Zero is never issued
// and stands for "no entity". IDs are issued per world in spawn order, so
// replaying the same spawns and orders yields the same IDs.
type EntityID uint64

// Component is a marker interface for all components
type Component interface {
	Type() ComponentType
}

// ComponentType identifies the type of component
type ComponentType uint32

const (
	CompPosition ComponentType = iota
	CompHealth
	CompWeapon
	CompMover
	CompOwner
	CompHarvester
	CompResourceNode
	CompResourceStore
	CompAI
	CompPathFinding
	CompPathBuffer
	CompCommandQueue
	CompMax
)

// World holds all entities and their components.
//
// Structural changes (Spawn, Attach, Detach, Destroy flush) must happen
// outside the parallel sections of a tick; component fields reached through
// Get may be written by the single system that owns them.
type World struct {
	entities  map[EntityID]map[ComponentType]Component
	systems   []System
	toRemove  []EntityID
	lastID    EntityID
	TickCount uint64
	TickRate  float64 // ticks per second (for deterministic lockstep)
}

// System processes entities each tick
type System interface {
	Update(w *World, dt float64)
	Priority() int
}

// NewWorld creates a new ECS world
func NewWorld(tickRate float64) *World {
	return &World{
		entities: make(map[EntityID]map[ComponentType]Component),
		TickRate: tickRate,
	}
}

// Spawn creates a new entity and returns its ID
func (w *World) Spawn() EntityID {
	w.lastID++
	id := w.lastID
	w.entities[id] = make(map[ComponentType]Component)
	return id
}

// Attach adds a component to an entity
func (w *World) Attach(id EntityID, c Component) {
	if comps, ok := w.entities[id]; ok {
		comps[c.Type()] = c
	}
}

// Detach removes a component from an entity
func (w *World) Detach(id EntityID, ct ComponentType) {
	if comps, ok := w.entities[id]; ok {
		delete(comps, ct)
	}
}

// Get returns a component for an entity, or nil
func (w *World) Get(id EntityID, ct ComponentType) Component {
	if comps, ok := w.entities[id]; ok {
		return comps[ct]
	}
	return nil
}

// Has checks if an entity has a component
func (w *World) Has(id EntityID, ct ComponentType) bool {
	if comps, ok := w.entities[id]; ok {
		_, exists := comps[ct]
		return exists
	}
	return false
}

// Alive reports whether the entity exists and is not pending removal.
func (w *World) Alive(id EntityID) bool {
	if _, ok := w.entities[id]; !ok {
		return false
	}
	return !slices.Contains(w.toRemove, id)
}

// Destroy marks an entity for removal at the end of the tick
func (w *World) Destroy(id EntityID) {
	if !slices.Contains(w.toRemove, id) {
		w.toRemove = append(w.toRemove, id)
	}
}

// Query returns all entity IDs that have ALL specified component types,
// in ascending ID order so that every consumer sees the same iteration order.
func (w *World) Query(types ...ComponentType) []EntityID {
	var result []EntityID
	for id, comps := range w.entities {
		match := true
		for _, t := range types {
			if _, ok := comps[t]; !ok {
				match = false
				break
			}
		}
		if match {
			result = append(result, id)
		}
	}
	slices.Sort(result)
	return result
}

// AddSystem registers a system
func (w *World) AddSystem(s System) {
	w.systems = append(w.systems, s)
	// Sort by priority (simple insertion)
	for i := len(w.systems) - 1; i > 0; i-- {
		if w.systems[i].Priority() < w.systems[i-1].Priority() {
			w.systems[i], w.systems[i-1] = w.systems[i-1], w.systems[i]
		}
	}
}

// Tick runs all systems once
func (w *World) Tick(dt float64) {
	for _, s := range w.systems {
		s.Update(w, dt)
	}
	for _, id := range w.toRemove {
		delete(w.entities, id)
	}
	w.toRemove = w.toRemove[:0]
	w.TickCount++
}

// EntityCount returns the number of alive entities
func (w *World) EntityCount() int {
	return len(w.entities)
}

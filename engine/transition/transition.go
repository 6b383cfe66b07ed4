// Package transition stages AI state changes decided during a tick and
// commits them at a single point, after every decision has been made.
package transition

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/1siamBot/unitcore/engine/core"
)

// Request is a pending state change for one unit
type Request struct {
	State  core.AIState
	Target core.TargetData
}

// Buffer collects state-change requests. It is safe for concurrent
// producers; a later request for the same unit replaces the earlier one.
type Buffer struct {
	mu      sync.Mutex
	pending map[core.EntityID]Request
}

// NewBuffer creates an empty request buffer
func NewBuffer() *Buffer {
	return &Buffer{pending: make(map[core.EntityID]Request)}
}

// Request stages a change to state with target as the new current target
func (b *Buffer) Request(id core.EntityID, state core.AIState, target core.TargetData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[id] = Request{State: state, Target: target}
}

// RequestState stages a change to state with no target
func (b *Buffer) RequestState(id core.EntityID, state core.AIState) {
	b.Request(id, state, core.TargetData{})
}

// Pending returns the staged request for a unit, if any
func (b *Buffer) Pending(id core.EntityID) (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.pending[id]
	return r, ok
}

// Len returns the number of units with a staged request
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Apply commits every staged request in entity-id order and empties the
// buffer. Each unit ends with exactly the requested state; its current
// target moves to Previous and the requested target becomes Current.
// Requests for entities without an AI component are discarded.
func (b *Buffer) Apply(w *core.World, bus *core.EventBus) int {
	b.mu.Lock()
	pending := b.pending
	b.pending = make(map[core.EntityID]Request, len(pending))
	b.mu.Unlock()

	ids := make([]core.EntityID, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	applied := 0
	for _, id := range ids {
		c := w.Get(id, core.CompAI)
		if c == nil {
			continue
		}
		ai := c.(*core.AI)
		req := pending[id]
		from := ai.State
		ai.State = req.State
		ai.Previous = ai.Current
		ai.Current = req.Target
		applied++
		if from != req.State {
			slog.Debug("state changed", "entity", id, "from", from, "to", req.State)
		}
		bus.Emit(core.Event{
			Type:    core.EvtStateChanged,
			Tick:    w.TickCount,
			Entity:  id,
			Payload: core.StateChanged{From: from, To: req.State},
		})
	}
	return applied
}

// System applies the staged requests once per tick
type System struct {
	Buffer   *Buffer
	EventBus *core.EventBus
}

func (s *System) Priority() int { return 30 }

func (s *System) Update(w *core.World, dt float64) {
	s.Buffer.Apply(w, s.EventBus)
}

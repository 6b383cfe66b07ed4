package network

import (
	"slices"
	"sync"
)

// DefaultInputDelay is the number of ticks between issuing and applying an order
const DefaultInputDelay = 2

// Lockstep schedules orders onto future ticks. Local orders are delayed by
// the input delay; orders that already carry a tick (replays, remote peers)
// are delivered as is. Due returns orders in a fixed order so every peer
// applies them identically.
type Lockstep struct {
	mu         sync.Mutex
	pending    map[uint64][]Order // tick -> orders
	inputDelay int
}

func NewLockstep(inputDelay int) *Lockstep {
	if inputDelay < 0 {
		inputDelay = DefaultInputDelay
	}
	return &Lockstep{
		pending:    make(map[uint64][]Order),
		inputDelay: inputDelay,
	}
}

// InputDelay returns the scheduling delay in ticks
func (lm *Lockstep) InputDelay() int { return lm.inputDelay }

// Submit schedules a local order issued at currentTick and returns it with
// its scheduled tick filled in.
func (lm *Lockstep) Submit(currentTick uint64, o Order) Order {
	o.Tick = currentTick + uint64(lm.inputDelay)
	lm.Deliver(o)
	return o
}

// Deliver schedules an order on the tick it already carries
func (lm *Lockstep) Deliver(o Order) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.pending[o.Tick] = append(lm.pending[o.Tick], o)
}

// Due removes and returns all orders for a tick, grouped by player in
// submission order. Orders for ticks already passed are returned too.
func (lm *Lockstep) Due(tick uint64) []Order {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	var due []Order
	var ticks []uint64
	for t := range lm.pending {
		if t <= tick {
			ticks = append(ticks, t)
		}
	}
	slices.Sort(ticks)
	for _, t := range ticks {
		due = append(due, lm.pending[t]...)
		delete(lm.pending, t)
	}
	slices.SortStableFunc(due, func(a, b Order) int { return a.PlayerID - b.PlayerID })
	return due
}

// Pending returns the number of scheduled orders not yet due
func (lm *Lockstep) Pending() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	n := 0
	for _, orders := range lm.pending {
		n += len(orders)
	}
	return n
}

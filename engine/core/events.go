package core

import "sync"

// Event represents a game event
type Event struct {
	Type    EventType
	Tick    uint64
	Entity  EntityID
	Payload interface{}
}

type EventType uint16

const (
	EvtUnitCreated EventType = iota
	EvtUnitDestroyed
	EvtCommandQueued
	EvtCommandDropped
	EvtStateChanged
	EvtPathFound
	EvtPathFailed
	EvtResourceHarvested
	EvtResourceDeposited
	EvtUnitAttack
)

// CommandDropped is the payload of EvtCommandDropped
type CommandDropped struct {
	Command string
	Reason  string
}

// StateChanged is the payload of EvtStateChanged
type StateChanged struct {
	From, To AIState
}

// EventBus dispatches events to listeners. Emit may be called from
// parallel workers; handlers run on the goroutine calling Dispatch.
type EventBus struct {
	mu        sync.Mutex
	listeners map[EventType][]EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.listeners[t] = append(eb.listeners[t], h)
}

// Emit queues an event for dispatch. A nil bus drops the event.
func (eb *EventBus) Emit(e Event) {
	if eb == nil {
		return
	}
	eb.mu.Lock()
	eb.queue = append(eb.queue, e)
	eb.mu.Unlock()
}

// Dispatch processes all queued events
func (eb *EventBus) Dispatch() {
	if eb == nil {
		return
	}
	eb.mu.Lock()
	queue := eb.queue
	eb.queue = nil
	eb.mu.Unlock()

	for _, e := range queue {
		eb.mu.Lock()
		handlers := eb.listeners[e.Type]
		eb.mu.Unlock()
		for _, h := range handlers {
			h(e)
		}
	}
}

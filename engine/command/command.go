// Package command implements the per-unit order queue and the phase state
// machine that turns the head order into path requests and AI states.
package command

import (
	"errors"
	"fmt"

	"github.com/1siamBot/unitcore/engine/core"
)

// CommandType is the kind of order
type CommandType uint8

const (
	Move CommandType = iota
	Harvest
	Attack
	Deposit
)

func (t CommandType) String() string {
	switch t {
	case Move:
		return "move"
	case Harvest:
		return "harvest"
	case Attack:
		return "attack"
	case Deposit:
		return "deposit"
	}
	return fmt.Sprintf("command(%d)", uint8(t))
}

// ParseCommandType maps a name to a command type
func ParseCommandType(s string) (CommandType, error) {
	for t := Move; t <= Deposit; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown command type %q", s)
}

// Status is the phase of a command
type Status uint8

const (
	Queued Status = iota
	MovingPhase
	ExecutionPhase
	Complete
)

func (s Status) String() string {
	switch s {
	case Queued:
		return "queued"
	case MovingPhase:
		return "moving"
	case ExecutionPhase:
		return "executing"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Command is one queued order
type Command struct {
	Type           CommandType
	Status         Status
	PreviousStatus Status // status as of the previous processing pass
	Target         core.TargetData
	Want           core.TargetType // type asked for when the order was issued
}

// wanted returns the target type to resolve against the catalog
func (c *Command) wanted() core.TargetType {
	switch c.Type {
	case Harvest:
		if c.Want.Has(core.TargetResource) {
			return c.Want & core.TargetResource
		}
		return core.TargetResource
	case Attack:
		return core.TargetEnemy
	case Deposit:
		return core.TargetStore
	}
	return c.Want
}

// DefaultCapacity is the number of commands a unit can hold
const DefaultCapacity = 10

var (
	// ErrQueueFull is returned when a command does not fit in the queue
	ErrQueueFull = errors.New("command queue full")
	// ErrSuppressed is returned when an only-if-empty order finds the queue busy
	ErrSuppressed = errors.New("command suppressed: queue busy")
)

// Queue is the bounded, ordered list of a unit's commands. The head is the
// only active command. Only the owning unit's tick mutates it.
type Queue struct {
	items []Command
	cap   int
}

func (q *Queue) Type() core.ComponentType { return core.CompCommandQueue }

// NewQueue creates a queue holding at most capacity commands
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{items: make([]Command, 0, capacity), cap: capacity}
}

// Len returns the number of queued commands
func (q *Queue) Len() int { return len(q.items) }

// Cap returns the queue capacity
func (q *Queue) Cap() int { return q.cap }

// Head returns the active command, or nil when the queue is empty
func (q *Queue) Head() *Command {
	if len(q.items) == 0 {
		return nil
	}
	return &q.items[0]
}

// At returns the i-th command
func (q *Queue) At(i int) Command { return q.items[i] }

// Pop removes the head command
func (q *Queue) Pop() {
	if len(q.items) == 0 {
		return
	}
	copy(q.items, q.items[1:])
	q.items = q.items[:len(q.items)-1]
}

// Clear drops every command
func (q *Queue) Clear() { q.items = q.items[:0] }

// QueueCommand appends a command of type t toward target. With
// onlyQueueIfEmpty the order is suppressed when more than one command is
// already queued.
func QueueCommand(t CommandType, q *Queue, target core.TargetData, onlyQueueIfEmpty bool) error {
	if onlyQueueIfEmpty && q.Len() > 1 {
		return ErrSuppressed
	}
	if q.Len() >= q.cap {
		return fmt.Errorf("queue %v: %w", t, ErrQueueFull)
	}
	q.items = append(q.items, Command{Type: t, Target: target, Want: target.Type})
	return nil
}

// ExecuteCommand moves the head command into its execution phase
func ExecuteCommand(q *Queue) bool { return q.shift(ExecutionPhase) }

// CompleteCommand marks the head command done; it is popped on the next pass
func CompleteCommand(q *Queue) bool { return q.shift(Complete) }

// RestartCommand sends the head command back to Queued, re-requesting a path
func RestartCommand(q *Queue) bool { return q.shift(Queued) }

// RetargetCommand restarts the head command and forgets its target entity
// so it is resolved again, for targets that no longer exist.
func RetargetCommand(q *Queue) bool {
	h := q.Head()
	if h == nil {
		return false
	}
	if h.Target.Type != core.TargetGround {
		h.Target = core.TargetData{Type: h.Want}
	}
	return q.shift(Queued)
}

func (q *Queue) shift(s Status) bool {
	h := q.Head()
	if h == nil {
		return false
	}
	h.PreviousStatus = h.Status
	h.Status = s
	return true
}

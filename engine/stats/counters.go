// Package stats counts simulation events and keeps run reports.
package stats

import (
	"sort"

	"github.com/1siamBot/unitcore/engine/core"
)

// Counters tallies simulation events. Handlers run on the goroutine that
// dispatches the bus, so read the counters between ticks.
type Counters struct {
	CommandsQueued  int
	CommandsDropped int
	StateChanges    int
	PathsFound      int
	PathsFailed     int
	Harvested       int
	Deposited       int
	Attacks         int
	Kills           int
	DropReasons     map[string]int
}

// Subscribe registers the counters on bus
func (c *Counters) Subscribe(bus *core.EventBus) {
	bus.On(core.EvtCommandQueued, func(core.Event) { c.CommandsQueued++ })
	bus.On(core.EvtCommandDropped, func(e core.Event) {
		c.CommandsDropped++
		if p, ok := e.Payload.(core.CommandDropped); ok {
			if c.DropReasons == nil {
				c.DropReasons = make(map[string]int)
			}
			c.DropReasons[p.Reason]++
		}
	})
	bus.On(core.EvtStateChanged, func(core.Event) { c.StateChanges++ })
	bus.On(core.EvtPathFound, func(core.Event) { c.PathsFound++ })
	bus.On(core.EvtPathFailed, func(core.Event) { c.PathsFailed++ })
	bus.On(core.EvtResourceHarvested, func(e core.Event) { c.Harvested += amount(e) })
	bus.On(core.EvtResourceDeposited, func(e core.Event) { c.Deposited += amount(e) })
	bus.On(core.EvtUnitAttack, func(core.Event) { c.Attacks++ })
	bus.On(core.EvtUnitDestroyed, func(core.Event) { c.Kills++ })
}

func amount(e core.Event) int {
	if n, ok := e.Payload.(int); ok {
		return n
	}
	return 1
}

// Metric is one named counter value
type Metric struct {
	Name  string
	Value int
}

// Metrics flattens the counters into name/value pairs in a stable order
func (c *Counters) Metrics() []Metric {
	out := []Metric{
		{"commands_queued", c.CommandsQueued},
		{"commands_dropped", c.CommandsDropped},
		{"state_changes", c.StateChanges},
		{"paths_found", c.PathsFound},
		{"paths_failed", c.PathsFailed},
		{"harvested", c.Harvested},
		{"deposited", c.Deposited},
		{"attacks", c.Attacks},
		{"kills", c.Kills},
	}
	reasons := make([]string, 0, len(c.DropReasons))
	for r := range c.DropReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		out = append(out, Metric{"dropped_" + r, c.DropReasons[r]})
	}
	return out
}

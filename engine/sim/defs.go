package sim

import (
	"fmt"

	"github.com/1siamBot/unitcore/engine/core"
)

// UnitDef defines a unit kind that can be spawned
type UnitDef struct {
	Name  string
	HP    int
	Speed float64

	// combat; zero Damage means unarmed
	Damage   int
	Range    float64
	Cooldown float64

	// economy; zero Capacity means the unit cannot harvest
	Capacity int
	Rate     float64
	Reach    float64
}

// UnitDefs is the set of spawnable unit kinds by key
type UnitDefs map[string]*UnitDef

// DefaultUnits returns the built-in unit kinds
func DefaultUnits() UnitDefs {
	return UnitDefs{
		"worker":  {Name: "Worker", HP: 40, Speed: 2.5, Capacity: 10, Rate: 5, Reach: 0.8},
		"soldier": {Name: "Soldier", HP: 100, Speed: 2.0, Damage: 12, Range: 1.5, Cooldown: 1.0},
		"ranger":  {Name: "Ranger", HP: 70, Speed: 2.2, Damage: 8, Range: 4.0, Cooldown: 0.8},
		"scout":   {Name: "Scout", HP: 30, Speed: 4.0},
	}
}

// Get returns the definition for kind
func (d UnitDefs) Get(kind string) (*UnitDef, error) {
	def, ok := d[kind]
	if !ok {
		return nil, fmt.Errorf("unknown unit kind %q", kind)
	}
	return def, nil
}

// components returns the kind-specific components of a new unit
func (def *UnitDef) components() []core.Component {
	comps := []core.Component{
		&core.Health{Current: def.HP, Max: def.HP},
		&core.Mover{Speed: def.Speed},
	}
	if def.Damage > 0 {
		comps = append(comps, &core.Weapon{Damage: def.Damage, Range: def.Range, Cooldown: def.Cooldown})
	}
	if def.Capacity > 0 {
		comps = append(comps, &core.Harvester{Capacity: def.Capacity, Rate: def.Rate, Range: def.Reach})
	}
	return comps
}

// ParseResourceKind maps an authored resource name to its target type
func ParseResourceKind(kind string) (core.TargetType, error) {
	switch kind {
	case "food":
		return core.TargetFoodResource, nil
	case "building":
		return core.TargetBuildingResource, nil
	case "rare":
		return core.TargetRareResource, nil
	}
	return core.TargetNone, fmt.Errorf("unknown resource kind %q", kind)
}

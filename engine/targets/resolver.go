package targets

import (
	"errors"
	"math"

	"github.com/1siamBot/unitcore/engine/core"
)

// ErrNoTarget is returned when no candidate of the requested type exists
var ErrNoTarget = errors.New("no target candidate")

// Nearest returns the index of the candidate closest to pos whose type
// intersects mask and which accept allows (nil accepts all), or -1. Ties
// keep the earliest candidate.
func Nearest(cands []Candidate, pos core.Vec2, mask core.TargetType, accept func(Candidate) bool) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, c := range cands {
		if !c.Type.Has(mask) {
			continue
		}
		if accept != nil && !accept(c) {
			continue
		}
		if d := c.Pos.DistSq(pos); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Resolve picks a concrete target of type want for a unit of team at pos.
//
// Resource requests fall back to the nearest friendly store when no node of
// the requested kind is left, sending the unit home, and to the nearest store
// of any team when the unit's team has none. Store requests only
// consider friendly stores and enemy requests only other teams.
func Resolve(cat *Catalog, pos core.Vec2, team int, want core.TargetType) (core.TargetData, error) {
	friendly := func(c Candidate) bool { return c.Team == team }
	hostile := func(c Candidate) bool { return c.Team != team }

	switch {
	case want.Has(core.TargetResource):
		if i := Nearest(cat.Resources, pos, want&core.TargetResource, nil); i >= 0 {
			return toTarget(cat.Resources[i]), nil
		}
		if i := Nearest(cat.Stores, pos, core.TargetStore, friendly); i >= 0 {
			return toTarget(cat.Stores[i]), nil
		}
		if i := Nearest(cat.Stores, pos, core.TargetStore, nil); i >= 0 {
			return toTarget(cat.Stores[i]), nil
		}
	case want.Has(core.TargetStore):
		if i := Nearest(cat.Stores, pos, core.TargetStore, friendly); i >= 0 {
			return toTarget(cat.Stores[i]), nil
		}
	case want.Has(core.TargetEnemy):
		if i := Nearest(cat.Enemies, pos, core.TargetEnemy, hostile); i >= 0 {
			return toTarget(cat.Enemies[i]), nil
		}
	}
	return core.TargetData{}, ErrNoTarget
}

func toTarget(c Candidate) core.TargetData {
	return core.TargetData{Entity: c.Entity, Type: c.Type, Pos: c.Pos}
}

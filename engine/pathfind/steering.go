package pathfind

import (
	"math"

	"github.com/1siamBot/unitcore/engine/core"
)

// SteerResult contains the computed steering velocity
type SteerResult struct {
	VX, VY float64
}

// Steer computes the velocity that moves a unit at pos toward waypoint at up
// to speed, without overshooting the waypoint within one step of length dt.
func Steer(pos core.Vec2, speed, dt float64, waypoint core.Vec2) SteerResult {
	dx, dy := waypoint.X-pos.X, waypoint.Y-pos.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1e-6 || speed <= 0 {
		return SteerResult{}
	}
	v := speed
	if dt > 0 && dist < speed*dt {
		v = dist / dt
	}
	return SteerResult{VX: dx / dist * v, VY: dy / dist * v}
}

package core

import "time"

// GameState represents the overall run state
type GameState uint8

const (
	StatePaused GameState = iota
	StatePlaying
)

// GameLoop drives a fixed-timestep simulation from a variable frame clock
type GameLoop struct {
	Step        func(dt float64) // advances the simulation by one tick
	State       GameState
	TickRate    float64 // fixed ticks per second
	accumulator float64
	lastTime    time.Time
	now         func() time.Time
}

// NewGameLoop creates a game loop with fixed tick rate
func NewGameLoop(tickRate float64, step func(dt float64)) *GameLoop {
	return &GameLoop{
		Step:     step,
		TickRate: tickRate,
		now:      time.Now,
		lastTime: time.Now(),
	}
}

// Update should be called every render frame. It runs the simulation
// at fixed timestep and returns the interpolation alpha for rendering.
func (gl *GameLoop) Update() float64 {
	now := gl.now()
	frameTime := now.Sub(gl.lastTime).Seconds()
	gl.lastTime = now

	// Cap frame time to avoid spiral of death
	if frameTime > 0.25 {
		frameTime = 0.25
	}

	dt := 1.0 / gl.TickRate
	gl.accumulator += frameTime

	for gl.accumulator >= dt {
		if gl.State == StatePlaying {
			gl.Step(dt)
		}
		gl.accumulator -= dt
	}
	return gl.accumulator / dt
}

// Play starts or resumes the loop
func (gl *GameLoop) Play() {
	gl.State = StatePlaying
	gl.lastTime = gl.now()
}

// Pause pauses the loop
func (gl *GameLoop) Pause() {
	gl.State = StatePaused
}

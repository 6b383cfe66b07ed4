// Command viewer runs the demo match in a window with a top-down debug view.
// Left drag selects, right click orders, H harvests, A attacks, S stops.
package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/config"
	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/input"
	"github.com/1siamBot/unitcore/engine/network"
	"github.com/1siamBot/unitcore/engine/render"
	"github.com/1siamBot/unitcore/engine/sim"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	MinimapSize  = 160
)

// Viewer implements ebiten.Game
type Viewer struct {
	sim      *sim.Simulation
	renderer *render.Renderer
	loop     *core.GameLoop
	input    *input.InputState
	selected map[core.EntityID]bool
	fog      *render.Fog
}

func NewViewer(cfg *config.Config, replayPath string) (*Viewer, error) {
	sc, err := sim.NewDemo(cfg)
	if err != nil {
		return nil, err
	}
	s := sc.Sim
	if replayPath != "" {
		r, err := network.LoadReplay(replayPath)
		if err != nil {
			return nil, err
		}
		r.Schedule(s.Lockstep)
	}

	v := &Viewer{
		sim:      s,
		renderer: render.NewRenderer(ScreenWidth, ScreenHeight),
		input:    input.NewInputState(),
		selected: make(map[core.EntityID]bool),
	}
	team := s.Players.GetPlayer(sim.HumanPlayer).TeamID
	v.fog = render.NewFog(s.Map.Width, s.Map.Height, team)
	v.renderer.Fog = v.fog
	v.loop = core.NewGameLoop(cfg.TickRate, func(float64) {
		s.Step()
		v.fog.Update(s.World)
	})
	v.fog.Update(s.World)
	v.renderer.Camera.SetMapBounds(float64(s.Map.Width), float64(s.Map.Height))
	home := s.Map.StartPositions[0]
	c := s.TileCenter(home.X, home.Y)
	v.renderer.Camera.CenterOn(c.X, c.Y)
	v.loop.Play()
	return v, nil
}

func (v *Viewer) Update() error {
	v.input.Update()
	v.handleCamera()

	if v.input.Triggered(input.ActPause) {
		if v.loop.State == core.StatePlaying {
			v.loop.Pause()
		} else {
			v.loop.Play()
		}
	}
	if v.input.Triggered(input.ActStep) && v.loop.State == core.StatePaused {
		v.sim.Step()
		v.fog.Update(v.sim.World)
	}
	if v.input.Triggered(input.ActToggleGrid) {
		v.renderer.ShowGrid = !v.renderer.ShowGrid
	}
	if v.input.Triggered(input.ActTogglePaths) {
		v.renderer.ShowPaths = !v.renderer.ShowPaths
	}

	v.handleSelection()
	v.handleOrders()

	v.loop.Update()
	return nil
}

func (v *Viewer) handleCamera() {
	cam := v.renderer.Camera
	speed := cam.Speed / 60.0
	if v.input.Held(input.ActPanUp) {
		cam.Pan(0, -speed)
	}
	if v.input.Held(input.ActPanDown) {
		cam.Pan(0, speed)
	}
	if v.input.Held(input.ActPanLeft) {
		cam.Pan(-speed, 0)
	}
	if v.input.Held(input.ActPanRight) {
		cam.Pan(speed, 0)
	}
	if cam.EdgeScroll {
		edge := cam.EdgeSize
		switch {
		case v.input.MouseX < edge:
			cam.Pan(-speed, 0)
		case v.input.MouseX > ScreenWidth-edge:
			cam.Pan(speed, 0)
		}
		switch {
		case v.input.MouseY < edge:
			cam.Pan(0, -speed)
		case v.input.MouseY > ScreenHeight-edge:
			cam.Pan(0, speed)
		}
	}
	if v.input.ScrollY != 0 {
		cam.ZoomAt(v.input.ScrollY*0.1, v.input.MouseX, v.input.MouseY)
	}
}

func (v *Viewer) handleSelection() {
	if !v.input.LeftJustReleased {
		return
	}
	if !v.input.Appending() {
		clear(v.selected)
	}
	w := v.sim.World
	cam := v.renderer.Camera

	if x1, y1, x2, y2, ok := v.input.DragRect(); ok {
		ax, ay := cam.ScreenToWorld(min(x1, x2), min(y1, y2))
		bx, by := cam.ScreenToWorld(max(x1, x2), max(y1, y2))
		for _, id := range v.ownUnits() {
			p := w.Get(id, core.CompPosition).(*core.Position)
			if p.X >= ax && p.X <= bx && p.Y >= ay && p.Y <= by {
				v.selected[id] = true
			}
		}
		return
	}
	wx, wy := cam.ScreenToWorld(v.input.MouseX, v.input.MouseY)
	if id, ok := v.nearest(v.ownUnits(), core.Vec2{X: wx, Y: wy}); ok {
		v.selected[id] = !v.selected[id]
	}
}

func (v *Viewer) ownUnits() []core.EntityID {
	w := v.sim.World
	var out []core.EntityID
	for _, id := range w.Query(core.CompPosition, core.CompOwner, core.CompCommandQueue) {
		if w.Get(id, core.CompOwner).(*core.Owner).PlayerID == sim.HumanPlayer {
			out = append(out, id)
		}
	}
	return out
}

// nearest returns the candidate within half a tile of p
func (v *Viewer) nearest(ids []core.EntityID, p core.Vec2) (core.EntityID, bool) {
	best, bestD := core.EntityID(0), 0.5*0.5
	for _, id := range ids {
		pos := v.sim.World.Get(id, core.CompPosition).(*core.Position)
		if d := pos.Vec().DistSq(p); d < bestD {
			best, bestD = id, d
		}
	}
	return best, best != 0
}

func (v *Viewer) handleOrders() {
	if len(v.selected) == 0 {
		return
	}
	switch {
	case v.input.Triggered(input.ActStop):
		v.orderAll(network.Order{Command: command.Move, TargetType: core.TargetGround}, true)
	case v.input.Triggered(input.ActHarvest):
		v.orderAll(network.Order{Command: command.Harvest, TargetType: core.TargetResource}, false)
	case v.input.Triggered(input.ActAttack):
		v.orderAll(network.Order{Command: command.Attack, TargetType: core.TargetEnemy}, false)
	case v.input.RightJustPressed:
		v.orderAll(v.clickOrder(), false)
	}
}

// clickOrder builds the order for a right click: attack an enemy, harvest
// a node or move to the ground under the cursor.
func (v *Viewer) clickOrder() network.Order {
	w := v.sim.World
	wx, wy := v.renderer.Camera.ScreenToWorld(v.input.MouseX, v.input.MouseY)
	at := core.Vec2{X: wx, Y: wy}

	var enemies []core.EntityID
	for _, id := range w.Query(core.CompPosition, core.CompOwner, core.CompHealth) {
		if w.Get(id, core.CompOwner).(*core.Owner).PlayerID != sim.HumanPlayer {
			enemies = append(enemies, id)
		}
	}
	if id, ok := v.nearest(enemies, at); ok {
		return network.Order{Command: command.Attack, TargetType: core.TargetEnemy, TargetEntity: id, TargetX: wx, TargetY: wy}
	}
	if id, ok := v.nearest(w.Query(core.CompPosition, core.CompResourceNode), at); ok {
		node := w.Get(id, core.CompResourceNode).(*core.ResourceNode)
		return network.Order{Command: command.Harvest, TargetType: node.Kind, TargetEntity: id, TargetX: wx, TargetY: wy}
	}
	return network.Order{Command: command.Move, TargetType: core.TargetGround, TargetX: wx, TargetY: wy}
}

// orderAll submits o for every selected unit. Stop orders target each
// unit's own position.
func (v *Viewer) orderAll(o network.Order, stop bool) {
	w := v.sim.World
	ids := make([]core.EntityID, 0, len(v.selected))
	for id := range v.selected {
		if w.Alive(id) {
			ids = append(ids, id)
		} else {
			delete(v.selected, id)
		}
	}
	slices.Sort(ids)

	for _, id := range ids {
		u := o
		u.PlayerID = sim.HumanPlayer
		u.Entity = id
		u.Append = v.input.Appending()
		if stop {
			p := w.Get(id, core.CompPosition).(*core.Position)
			u.TargetX, u.TargetY = p.X, p.Y
			u.Append = false
		}
		if _, err := v.sim.Submit(u); err != nil {
			slog.Warn("submit order", "entity", id, "err", err)
		}
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	s := v.sim
	v.renderer.DrawMap(screen, s.Map)
	v.renderer.DrawWorld(screen, s.World, v.selected)
	v.renderer.DrawFog(screen, v.fog)

	if x1, y1, x2, y2, ok := v.input.DragRect(); ok {
		v.renderer.DrawSelectionBox(screen, x1, y1, x2, y2)
	}
	v.renderer.DrawMinimap(screen, s.Map, s.World, ScreenWidth-MinimapSize-10, ScreenHeight-MinimapSize-10, MinimapSize)

	var sel []core.EntityID
	for id := range v.selected {
		sel = append(sel, id)
	}
	slices.Sort(sel)
	v.renderer.DrawHUD(screen, s.World, s.Players, sel)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

func main() {
	cfgPath := flag.String("config", "", "config file (yaml)")
	replayPath := flag.String("replay", "", "replay file to play back")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	level, err := cfg.Level()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	v, err := NewViewer(cfg, *replayPath)
	if err != nil {
		slog.Error("start viewer", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("unitcore viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(math.Max(60, cfg.TickRate)))

	if err := ebiten.RunGame(v); err != nil {
		slog.Error("viewer", "err", err)
		os.Exit(1)
	}
}

package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/maplib"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	xdraw "golang.org/x/image/draw"
)

// TerrainColors maps terrain types to flat tile colors
var TerrainColors = map[maplib.TerrainType]color.RGBA{
	maplib.TerrainGrass:  {34, 139, 34, 255},
	maplib.TerrainDirt:   {139, 119, 101, 255},
	maplib.TerrainSand:   {238, 214, 175, 255},
	maplib.TerrainWater:  {30, 144, 255, 255},
	maplib.TerrainRock:   {128, 128, 128, 255},
	maplib.TerrainCliff:  {105, 105, 105, 255},
	maplib.TerrainRoad:   {169, 169, 169, 255},
	maplib.TerrainForest: {0, 100, 0, 255},
}

// StateColors tints the ring drawn around a unit by its behaviour state
var StateColors = map[core.AIState]color.RGBA{
	core.StateIdle:             {200, 200, 200, 255},
	core.StateMovingToPosition: {255, 255, 255, 255},
	core.StateMovingToHarvest:  {255, 230, 120, 255},
	core.StateHarvesting:       {255, 200, 0, 255},
	core.StateMovingToDeposit:  {120, 220, 255, 255},
	core.StateMovingToAttack:   {255, 140, 140, 255},
	core.StateAttacking:        {255, 0, 0, 255},
}

var playerColors = []color.RGBA{
	{0, 102, 255, 255},
	{255, 40, 40, 255},
	{255, 200, 0, 255},
	{160, 0, 255, 255},
}

// PlayerColor returns the display color of a player slot
func PlayerColor(id int) color.RGBA {
	if id < 0 {
		id = -id
	}
	return playerColors[id%len(playerColors)]
}

var resourceColors = map[core.TargetType]color.RGBA{
	core.TargetFoodResource:     {120, 200, 60, 255},
	core.TargetBuildingResource: {150, 100, 50, 255},
	core.TargetRareResource:     {0, 255, 255, 255},
}

// Renderer draws a top-down debug view of the simulation
type Renderer struct {
	Camera    *Camera
	ShowGrid  bool
	ShowPaths bool
	Fog       *Fog // hides other teams' units out of sight when set

	minimap     *ebiten.Image
	minimapSize int
}

// NewRenderer creates a renderer for a screen of the given size
func NewRenderer(screenW, screenH int) *Renderer {
	return &Renderer{Camera: NewCamera(screenW, screenH), ShowPaths: true}
}

// DrawMap renders the visible tiles
func (r *Renderer) DrawMap(screen *ebiten.Image, tm *maplib.TileMap) {
	r.Camera.SetMapBounds(float64(tm.Width), float64(tm.Height))
	minX, minY, maxX, maxY := r.Camera.VisibleTileRange(tm.Width, tm.Height)
	ts := float32(r.Camera.scale())

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			tile := tm.At(x, y)
			if tile == nil {
				continue
			}
			clr, ok := TerrainColors[tile.Terrain]
			if !ok {
				clr = color.RGBA{128, 128, 128, 255}
			}
			if tile.Occupied {
				clr = color.RGBA{80, 60, 40, 255}
			}
			sx, sy := r.Camera.WorldToScreen(float64(x), float64(y))
			vector.DrawFilledRect(screen, float32(sx), float32(sy), ts+1, ts+1, clr, false)
		}
	}
	if r.ShowGrid {
		r.drawGrid(screen, minX, minY, maxX, maxY)
	}
}

func (r *Renderer) drawGrid(screen *ebiten.Image, minX, minY, maxX, maxY int) {
	gridColor := color.RGBA{255, 255, 255, 30}
	x0, y0 := r.Camera.WorldToScreen(float64(minX), float64(minY))
	x1, y1 := r.Camera.WorldToScreen(float64(maxX+1), float64(maxY+1))
	for x := minX; x <= maxX+1; x++ {
		sx, _ := r.Camera.WorldToScreen(float64(x), 0)
		vector.StrokeLine(screen, float32(sx), float32(y0), float32(sx), float32(y1), 1, gridColor, false)
	}
	for y := minY; y <= maxY+1; y++ {
		_, sy := r.Camera.WorldToScreen(0, float64(y))
		vector.StrokeLine(screen, float32(x0), float32(sy), float32(x1), float32(sy), 1, gridColor, false)
	}
}

// DrawWorld draws resource nodes, stores and units with their paths
func (r *Renderer) DrawWorld(screen *ebiten.Image, w *core.World, selected map[core.EntityID]bool) {
	ts := r.Camera.scale()

	for _, id := range w.Query(core.CompPosition, core.CompResourceNode) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		node := w.Get(id, core.CompResourceNode).(*core.ResourceNode)
		sx, sy := r.Camera.WorldToScreen(pos.X, pos.Y)
		half := float32(ts * 0.3)
		vector.DrawFilledRect(screen, float32(sx)-half, float32(sy)-half, 2*half, 2*half, resourceColors[node.Kind], false)
	}

	for _, id := range w.Query(core.CompPosition, core.CompResourceStore, core.CompOwner) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		own := w.Get(id, core.CompOwner).(*core.Owner)
		sx, sy := r.Camera.WorldToScreen(pos.X, pos.Y)
		half := float32(ts * 0.45)
		vector.StrokeRect(screen, float32(sx)-half, float32(sy)-half, 2*half, 2*half, 3, PlayerColor(own.PlayerID), false)
	}

	for _, id := range w.Query(core.CompPosition, core.CompAI, core.CompOwner) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		ai := w.Get(id, core.CompAI).(*core.AI)
		own := w.Get(id, core.CompOwner).(*core.Owner)
		if r.Fog != nil && own.TeamID != r.Fog.Team && !r.Fog.Visible(pos.Vec()) {
			continue
		}
		sx, sy := r.Camera.WorldToScreen(pos.X, pos.Y)

		if r.ShowPaths && ai.State.Moving() {
			r.drawPath(screen, w, id, sx, sy)
		}

		rad := float32(ts * 0.3)
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), rad, PlayerColor(own.PlayerID), true)
		vector.StrokeCircle(screen, float32(sx), float32(sy), rad+2, 2, StateColors[ai.State], true)
		if selected[id] {
			vector.StrokeCircle(screen, float32(sx), float32(sy), rad+5, 1, color.RGBA{0, 255, 0, 255}, true)
		}
		if hp, ok := w.Get(id, core.CompHealth).(*core.Health); ok && hp.Current < hp.Max {
			drawHealthBar(screen, float32(sx), float32(sy)-rad-6, rad*2, hp)
		}
	}
}

func (r *Renderer) drawPath(screen *ebiten.Image, w *core.World, id core.EntityID, sx, sy float64) {
	pf, _ := w.Get(id, core.CompPathFinding).(*core.PathFinding)
	buf, _ := w.Get(id, core.CompPathBuffer).(*core.PathBuffer)
	if pf == nil || buf == nil || !pf.CompletedPath {
		return
	}
	pathColor := color.RGBA{255, 255, 255, 90}
	px, py := sx, sy
	for i := pf.CurrentIndex; i < len(buf.Nodes); i++ {
		nx, ny := r.Camera.WorldToScreen(buf.Nodes[i].Pos.X, buf.Nodes[i].Pos.Y)
		vector.StrokeLine(screen, float32(px), float32(py), float32(nx), float32(ny), 1, pathColor, true)
		px, py = nx, ny
	}
	if !pf.Truncated {
		gx, gy := r.Camera.WorldToScreen(pf.Goal.X, pf.Goal.Y)
		vector.StrokeLine(screen, float32(px), float32(py), float32(gx), float32(gy), 1, pathColor, true)
	}
}

func drawHealthBar(screen *ebiten.Image, cx, y, width float32, hp *core.Health) {
	frac := float32(hp.Current) / float32(hp.Max)
	x := cx - width/2
	vector.DrawFilledRect(screen, x, y, width, 3, color.RGBA{60, 0, 0, 255}, false)
	clr := color.RGBA{0, 220, 0, 255}
	if frac < 0.35 {
		clr = color.RGBA{230, 60, 0, 255}
	}
	vector.DrawFilledRect(screen, x, y, width*frac, 3, clr, false)
}

// DrawSelectionBox draws a selection rectangle on screen
func (r *Renderer) DrawSelectionBox(screen *ebiten.Image, x1, y1, x2, y2 int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	w, h := float32(x2-x1), float32(y2-y1)
	vector.DrawFilledRect(screen, float32(x1), float32(y1), w, h, color.RGBA{0, 255, 0, 30}, false)
	vector.StrokeRect(screen, float32(x1), float32(y1), w, h, 1, color.RGBA{0, 255, 0, 128}, false)
}

// MinimapImage renders the terrain at one pixel per tile and scales it to
// a size by size image.
func MinimapImage(tm *maplib.TileMap, size int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, tm.Width, tm.Height))
	for y := 0; y < tm.Height; y++ {
		for x := 0; x < tm.Width; x++ {
			clr, ok := TerrainColors[tm.At(x, y).Terrain]
			if !ok {
				clr = color.RGBA{128, 128, 128, 255}
			}
			src.SetRGBA(x, y, clr)
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// DrawMinimap draws the minimap with unit dots and the camera viewport
func (r *Renderer) DrawMinimap(screen *ebiten.Image, tm *maplib.TileMap, w *core.World, posX, posY, size int) {
	if r.minimap == nil || r.minimapSize != size {
		r.minimap = ebiten.NewImageFromImage(MinimapImage(tm, size))
		r.minimapSize = size
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(posX), float64(posY))
	screen.DrawImage(r.minimap, op)

	scaleX := float32(size) / float32(tm.Width)
	scaleY := float32(size) / float32(tm.Height)
	ox, oy := float32(posX), float32(posY)

	for _, id := range w.Query(core.CompPosition, core.CompAI, core.CompOwner) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		own := w.Get(id, core.CompOwner).(*core.Owner)
		vector.DrawFilledRect(screen, ox+float32(pos.X)*scaleX-1, oy+float32(pos.Y)*scaleY-1, 2, 2, PlayerColor(own.PlayerID), false)
	}

	wx0, wy0 := r.Camera.ScreenToWorld(0, 0)
	wx1, wy1 := r.Camera.ScreenToWorld(r.Camera.ScreenW, r.Camera.ScreenH)
	vector.StrokeRect(screen,
		ox+float32(wx0)*scaleX, oy+float32(wy0)*scaleY,
		float32(wx1-wx0)*scaleX, float32(wy1-wy0)*scaleY,
		1, color.RGBA{255, 255, 255, 200}, false)
}

// DrawHUD prints tick, stockpiles and the command queue of the first
// selected unit.
func (r *Renderer) DrawHUD(screen *ebiten.Image, w *core.World, players *core.PlayerManager, selected []core.EntityID) {
	line := fmt.Sprintf("tick %d  entities %d  FPS %.0f", w.TickCount, w.EntityCount(), ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, line, 10, 8)

	y := 24
	for _, p := range players.Players {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  food %d  building %d  rare %d", p.Name,
			p.Stockpile[core.TargetFoodResource], p.Stockpile[core.TargetBuildingResource], p.Stockpile[core.TargetRareResource]), 10, y)
		y += 16
	}

	if len(selected) == 0 {
		return
	}
	id := selected[0]
	ai, _ := w.Get(id, core.CompAI).(*core.AI)
	q, _ := w.Get(id, core.CompCommandQueue).(*command.Queue)
	if ai == nil || q == nil {
		return
	}
	y += 8
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("unit %d  %s  (%d selected)", id, ai.State, len(selected)), 10, y)
	for i := 0; i < q.Len(); i++ {
		c := q.At(i)
		y += 16
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  %d. %s %s", i+1, c.Type, c.Status), 10, y)
	}
}

package render

import (
	"image/color"

	"github.com/1siamBot/unitcore/engine/core"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// FogState is the visibility of a tile to the viewing team
type FogState uint8

const (
	FogShroud   FogState = iota // never seen
	FogExplored                 // seen before but not now
	FogVisible                  // currently visible
)

// DefaultSight is the reveal radius of a unit in tiles
const DefaultSight = 6

// Fog tracks what one team has seen. It is a view concern and never feeds
// back into the simulation.
type Fog struct {
	Width, Height int
	Team          int
	Sight         int
	grid          []FogState
}

// NewFog creates a fully shrouded fog for team
func NewFog(w, h, team int) *Fog {
	return &Fog{Width: w, Height: h, Team: team, Sight: DefaultSight, grid: make([]FogState, w*h)}
}

// At returns the fog state at (x, y)
func (f *Fog) At(x, y int) FogState {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return FogShroud
	}
	return f.grid[y*f.Width+x]
}

// Visible reports whether the tile under a world position is in sight
func (f *Fog) Visible(p core.Vec2) bool {
	return f.At(int(p.X), int(p.Y)) == FogVisible
}

// Update demotes visible tiles to explored and reveals the tiles around
// every unit and store of the team.
func (f *Fog) Update(w *core.World) {
	for i, s := range f.grid {
		if s == FogVisible {
			f.grid[i] = FogExplored
		}
	}
	for _, id := range w.Query(core.CompPosition, core.CompOwner) {
		own := w.Get(id, core.CompOwner).(*core.Owner)
		if own.TeamID != f.Team {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position)
		f.reveal(int(pos.X), int(pos.Y), f.Sight)
	}
}

func (f *Fog) reveal(cx, cy, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			x, y := cx+dx, cy+dy
			if x >= 0 && y >= 0 && x < f.Width && y < f.Height {
				f.grid[y*f.Width+x] = FogVisible
			}
		}
	}
}

// DrawFog darkens tiles the team cannot currently see
func (r *Renderer) DrawFog(screen *ebiten.Image, f *Fog) {
	minX, minY, maxX, maxY := r.Camera.VisibleTileRange(f.Width, f.Height)
	ts := float32(r.Camera.scale())
	shroud := color.RGBA{0, 0, 0, 255}
	explored := color.RGBA{0, 0, 0, 140}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			var clr color.RGBA
			switch f.At(x, y) {
			case FogVisible:
				continue
			case FogExplored:
				clr = explored
			default:
				clr = shroud
			}
			sx, sy := r.Camera.WorldToScreen(float64(x), float64(y))
			vector.DrawFilledRect(screen, float32(sx), float32(sy), ts+1, ts+1, clr, false)
		}
	}
}

package render

import "math"

// Camera is a top-down viewport onto the world. World units are tiles.
type Camera struct {
	X, Y       float64 // camera center position (world coords)
	Zoom       float64 // zoom level (1.0 = default)
	MinZoom    float64
	MaxZoom    float64
	ScreenW    int     // viewport width in pixels
	ScreenH    int     // viewport height in pixels
	Speed      float64 // pan speed (pixels per second)
	EdgeScroll bool    // enable edge scrolling
	EdgeSize   int     // edge scroll trigger zone in pixels
	TileSize   int     // pixels per world unit at zoom 1

	// map bounds for clamping, in world units
	MapWidth  float64
	MapHeight float64
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:       1.0,
		MinZoom:    0.25,
		MaxZoom:    4.0,
		ScreenW:    screenW,
		ScreenH:    screenH,
		Speed:      500,
		EdgeScroll: true,
		EdgeSize:   20,
		TileSize:   16,
	}
}

// SetMapBounds sets the map size for camera clamping
func (c *Camera) SetMapBounds(w, h float64) {
	c.MapWidth = w
	c.MapHeight = h
	c.clamp()
}

func (c *Camera) scale() float64 { return float64(c.TileSize) * c.Zoom }

// Pan moves the camera by a pixel delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.scale()
	c.Y += dy / c.scale()
	c.clamp()
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms keeping the world point under the cursor fixed
func (c *Camera) ZoomAt(delta float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom + delta)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	c.X += wx - wx2
	c.Y += wy - wy2
	c.clamp()
}

// CenterOn centers the camera on a world position
func (c *Camera) CenterOn(wx, wy float64) {
	c.X, c.Y = wx, wy
	c.clamp()
}

// WorldToScreen converts a world position to screen pixels
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	s := c.scale()
	sx := (wx-c.X)*s + float64(c.ScreenW)/2
	sy := (wy-c.Y)*s + float64(c.ScreenH)/2
	return sx, sy
}

// ScreenToWorld converts screen pixels to a world position
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	s := c.scale()
	wx := (float64(sx)-float64(c.ScreenW)/2)/s + c.X
	wy := (float64(sy)-float64(c.ScreenH)/2)/s + c.Y
	return wx, wy
}

// VisibleTileRange returns the inclusive range of tiles on screen
func (c *Camera) VisibleTileRange(mapW, mapH int) (minX, minY, maxX, maxY int) {
	wx0, wy0 := c.ScreenToWorld(0, 0)
	wx1, wy1 := c.ScreenToWorld(c.ScreenW, c.ScreenH)

	minX = max(int(math.Floor(wx0))-1, 0)
	minY = max(int(math.Floor(wy0))-1, 0)
	maxX = min(int(math.Ceil(wx1))+1, mapW-1)
	maxY = min(int(math.Ceil(wy1))+1, mapH-1)
	return
}

// clamp keeps the camera center inside the map
func (c *Camera) clamp() {
	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		return
	}
	c.X = math.Max(0, math.Min(c.MapWidth, c.X))
	c.Y = math.Max(0, math.Min(c.MapHeight, c.Y))
}

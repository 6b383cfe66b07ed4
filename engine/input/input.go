package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a viewer command bound to a key
type Action uint8

const (
	ActPause Action = iota
	ActStep
	ActToggleGrid
	ActTogglePaths
	ActStop
	ActHarvest
	ActAttack
	ActPanUp
	ActPanDown
	ActPanLeft
	ActPanRight
)

// DefaultBindings maps each action to its keys
func DefaultBindings() map[Action][]ebiten.Key {
	return map[Action][]ebiten.Key{
		ActPause:       {ebiten.KeySpace},
		ActStep:        {ebiten.KeyPeriod},
		ActToggleGrid:  {ebiten.KeyG},
		ActTogglePaths: {ebiten.KeyP},
		ActStop:        {ebiten.KeyS},
		ActHarvest:     {ebiten.KeyH},
		ActAttack:      {ebiten.KeyA},
		ActPanUp:       {ebiten.KeyUp},
		ActPanDown:     {ebiten.KeyDown},
		ActPanLeft:     {ebiten.KeyLeft},
		ActPanRight:    {ebiten.KeyRight},
	}
}

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	MouseX, MouseY   int
	LeftJustPressed  bool
	RightJustPressed bool
	LeftJustReleased bool
	ScrollY          float64

	// Drag
	DragStartX, DragStartY int
	Dragging               bool
	DragThreshold          int

	Bindings map[Action][]ebiten.Key
}

func NewInputState() *InputState {
	return &InputState{
		DragThreshold: 5,
		Bindings:      DefaultBindings(),
	}
}

// Update should be called every frame
func (s *InputState) Update() {
	s.MouseX, s.MouseY = ebiten.CursorPosition()

	leftDown := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.LeftJustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)

	_, s.ScrollY = ebiten.Wheel()

	if s.LeftJustPressed {
		s.DragStartX = s.MouseX
		s.DragStartY = s.MouseY
		s.Dragging = false
	}
	if leftDown && !s.Dragging {
		s.Dragging = dragged(s.DragStartX, s.DragStartY, s.MouseX, s.MouseY, s.DragThreshold)
	}
	if !leftDown && !s.LeftJustReleased {
		s.Dragging = false
	}
}

func dragged(x0, y0, x1, y1, threshold int) bool {
	dx, dy := x1-x0, y1-y0
	return dx*dx+dy*dy > threshold*threshold
}

// Triggered reports whether a key bound to a was pressed this frame
func (s *InputState) Triggered(a Action) bool {
	for _, k := range s.Bindings[a] {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

// Held reports whether a key bound to a is down
func (s *InputState) Held(a Action) bool {
	for _, k := range s.Bindings[a] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

// Appending reports whether orders should queue behind current ones
func (s *InputState) Appending() bool {
	return ebiten.IsKeyPressed(ebiten.KeyShift)
}

// DragRect returns the selection rectangle if dragging
func (s *InputState) DragRect() (x1, y1, x2, y2 int, active bool) {
	if !s.Dragging {
		return 0, 0, 0, 0, false
	}
	return s.DragStartX, s.DragStartY, s.MouseX, s.MouseY, true
}

package gaze

// Position is a pointer centre in screen coordinates.
type Position struct {
	X, Y float64
}

// Bounds is the region the pointer centre may occupy.
type Bounds struct {
	ScreenWidth  float64
	ScreenHeight float64
	HalfWidth    float64 // half of the pointer width
	HalfHeight   float64 // half of the pointer height
	TopInset     float64 // status bar plus navigation bar
}

// NewBounds builds bounds for a square pointer of the given size.
func NewBounds(screenWidth, screenHeight, pointerSize, topInset float64) Bounds {
	return Bounds{
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		HalfWidth:    pointerSize / 2,
		HalfHeight:   pointerSize / 2,
		TopInset:     topInset,
	}
}

// Center is the middle of the screen, where the pointer starts.
func (b Bounds) Center() Position {
	return Position{X: b.ScreenWidth / 2, Y: b.ScreenHeight / 2}
}

// Clamp pulls p back inside the bounds. The checks run in a fixed order:
// right, bottom, left, top. The left margin is the pointer half-height.
func (b Bounds) Clamp(p Position) Position {
	if p.X > b.ScreenWidth-b.HalfWidth {
		p.X = b.ScreenWidth - b.HalfWidth
	}
	if p.Y > b.ScreenHeight-b.HalfHeight {
		p.Y = b.ScreenHeight - b.HalfHeight
	}
	if p.X < b.HalfHeight {
		p.X = b.HalfHeight
	}
	if p.Y < b.TopInset+b.HalfHeight {
		p.Y = b.TopInset + b.HalfHeight
	}
	return p
}

// Pointer integrates head angles into a clamped screen position, one frame
// at a time. There is no smoothing and no scaling: an angle of N degrees
// moves the pointer N points.
type Pointer struct {
	bounds Bounds
	pos    Position
}

// NewPointer places a pointer at start, clamped to bounds.
func NewPointer(bounds Bounds, start Position) *Pointer {
	return &Pointer{bounds: bounds, pos: bounds.Clamp(start)}
}

// Position returns the current pointer centre.
func (p *Pointer) Position() Position { return p.pos }

// Bounds returns the bounds the pointer is kept in.
func (p *Pointer) Bounds() Bounds { return p.bounds }

// Move applies one frame of head angles. Pitch up moves the pointer up,
// so Y is subtracted.
func (p *Pointer) Move(angleX, angleY float64) Position {
	p.pos.X += angleX
	p.pos.Y -= angleY
	p.pos = p.bounds.Clamp(p.pos)
	return p.pos
}

// SetBounds replaces the bounds, e.g. after a window resize, and re-clamps.
func (p *Pointer) SetBounds(b Bounds) {
	p.bounds = b
	p.pos = b.Clamp(p.pos)
}

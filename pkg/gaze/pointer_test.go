package gaze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointerMoveScenario(t *testing.T) {
	p := NewPointer(NewBounds(1000, 1000, 50, 0), Position{X: 100, Y: 100})

	for i := 0; i < 3; i++ {
		p.Move(5, 3)
	}
	assert.Equal(t, Position{X: 115, Y: 91}, p.Position())
}

func TestPointerClampsRightEdgeInOneJump(t *testing.T) {
	b := NewBounds(390, 844, 50, 0)
	p := NewPointer(b, b.Center())

	p.Move(b.ScreenWidth, 0)
	assert.Equal(t, b.ScreenWidth-b.HalfWidth, p.Position().X)
}

func TestPointerConstantDeltas(t *testing.T) {
	b := NewBounds(400, 300, 40, 20)
	start := Position{X: 200, Y: 150}

	deltas := []Position{{5, 3}, {-7, 2}, {12, -9}, {0, 0}, {-1, -1}}
	for _, d := range deltas {
		p := NewPointer(b, start)
		for n := 1; n <= 60; n++ {
			p.Move(d.X, d.Y)
			want := b.Clamp(Position{
				X: start.X + float64(n)*d.X,
				Y: start.Y - float64(n)*d.Y,
			})
			if !assert.Equal(t, want, p.Position(), "delta %v after %d frames", d, n) {
				break
			}
		}
	}
}

func TestClampIdempotent(t *testing.T) {
	bounds := []Bounds{
		NewBounds(390, 844, 50, 91),
		NewBounds(1280, 800, 50, 0),
		{ScreenWidth: 300, ScreenHeight: 200, HalfWidth: 10, HalfHeight: 30, TopInset: 15},
	}
	for _, b := range bounds {
		for x := -500.0; x <= 1500; x += 37 {
			for y := -500.0; y <= 1500; y += 41 {
				once := b.Clamp(Position{X: x, Y: y})
				assert.Equal(t, once, b.Clamp(once))
			}
		}
	}
}

func TestClampEdges(t *testing.T) {
	// non-square pointer so the half-height left margin is visible
	b := Bounds{ScreenWidth: 300, ScreenHeight: 200, HalfWidth: 10, HalfHeight: 30, TopInset: 15}

	tests := []struct {
		name string
		in   Position
		want Position
	}{
		{"inside", Position{150, 100}, Position{150, 100}},
		{"right", Position{500, 100}, Position{290, 100}},
		{"bottom", Position{150, 500}, Position{150, 170}},
		{"left uses half height", Position{-5, 100}, Position{30, 100}},
		{"left boundary", Position{20, 100}, Position{30, 100}},
		{"top includes inset", Position{150, 0}, Position{150, 45}},
		{"top left corner", Position{-100, -100}, Position{30, 45}},
		{"bottom right corner", Position{1000, 1000}, Position{290, 170}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Clamp(tt.in))
		})
	}
}

func TestPointerSetBoundsReclamps(t *testing.T) {
	p := NewPointer(NewBounds(1000, 1000, 50, 0), Position{X: 900, Y: 900})

	p.SetBounds(NewBounds(500, 400, 50, 0))
	assert.Equal(t, Position{X: 475, Y: 375}, p.Position())
}

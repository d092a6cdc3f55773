package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intothevoid/gazeremote/pkg/config"
	"github.com/intothevoid/gazeremote/pkg/gaze"
)

func testConfig(mode config.Mode) *config.Config {
	return &config.Config{
		Mode:         mode,
		WindowWidth:  400,
		WindowHeight: 300,
		PointerSize:  50,
		TopInset:     8,
	}
}

func TestPointerBounds(t *testing.T) {
	b := PointerBounds(fyne.NewSize(400, 300), 32, 50, 8)
	assert.Equal(t, gaze.Bounds{
		ScreenWidth:  400,
		ScreenHeight: 300,
		HalfWidth:    25,
		HalfHeight:   25,
		TopInset:     40,
	}, b)
}

func TestNewWindowPointerMode(t *testing.T) {
	a := test.NewApp()
	w := NewWindow(a, testConfig(config.ModePointer))

	require.NotNil(t, w.Pointer)
	assert.Nil(t, w.Diagnostics)
	assert.Equal(t, config.ModePointer, w.Mode())
	assert.Equal(t, fyne.NewPos(200, 150), w.Pointer.Center())
	assert.Equal(t, 40.0, w.InitialBounds().TopInset)
}

func TestNewWindowDiagnosticsMode(t *testing.T) {
	a := test.NewApp()
	w := NewWindow(a, testConfig(config.ModeDiagnostics))

	require.NotNil(t, w.Diagnostics)
	assert.Nil(t, w.Pointer)

	// no pointer, nothing to report
	called := false
	w.OnPointerArea(func(gaze.Bounds) { called = true })
	assert.False(t, called)
}

func TestPointerAreaReportedOnResize(t *testing.T) {
	a := test.NewApp()
	w := NewWindow(a, testConfig(config.ModePointer))

	var got []gaze.Bounds
	w.OnPointerArea(func(b gaze.Bounds) { got = append(got, b) })

	r := test.WidgetRenderer(w.Pointer)
	r.Layout(fyne.NewSize(640, 480))
	r.Layout(fyne.NewSize(640, 480))
	r.Layout(fyne.NewSize(800, 600))

	require.Len(t, got, 2)
	assert.Equal(t, 640.0, got[0].ScreenWidth)
	assert.Equal(t, 40.0, got[0].TopInset)
	assert.Equal(t, 600.0, got[1].ScreenHeight)
}

func TestPointerWidgetPlacement(t *testing.T) {
	test.NewApp()
	p := NewPointerWidget(40, fyne.NewPos(0, 0))
	test.WidgetRenderer(p).Layout(fyne.NewSize(300, 200))

	p.Update(gaze.Update{Pointer: gaze.Position{X: 100, Y: 80}, Clicked: true})

	assert.Equal(t, fyne.NewPos(80, 60), p.dot.Position())
	assert.Equal(t, fyne.NewPos(82, 62), p.shadow.Position())
	assert.Equal(t, fyne.NewSquareSize(40), p.dot.Size())
	assert.Equal(t, pointerClicked, p.dot.FillColor)

	p.Update(gaze.Update{Pointer: gaze.Position{X: 100, Y: 80}})
	assert.Equal(t, pointerIdle, p.dot.FillColor)
}

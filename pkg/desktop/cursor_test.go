package desktop

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/intothevoid/gazeremote/pkg/gaze"
)

type fakeMouse struct {
	w, h   int
	moves  [][2]int
	clicks int
}

func (m *fakeMouse) ScreenSize() (int, int) { return m.w, m.h }
func (m *fakeMouse) Move(x, y int)          { m.moves = append(m.moves, [2]int{x, y}) }
func (m *fakeMouse) Click()                 { m.clicks++ }

func newCursor(m *fakeMouse) (*Cursor, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewCursor(m, gaze.NewBounds(400, 300, 50, 0), log), hook
}

func TestCursorScalesToScreen(t *testing.T) {
	m := &fakeMouse{w: 1600, h: 900}
	c, _ := newCursor(m)

	c.Present(gaze.Update{Status: gaze.StatusFace, Pointer: gaze.Position{X: 200, Y: 150}})
	c.Present(gaze.Update{Status: gaze.StatusFace, Pointer: gaze.Position{X: 400, Y: 300}})

	assert.Equal(t, [][2]int{{800, 450}, {1599, 899}}, m.moves)
	assert.Zero(t, m.clicks)
}

func TestCursorClicksOnceOnConfirm(t *testing.T) {
	m := &fakeMouse{w: 800, h: 600}
	c, hook := newCursor(m)

	c.Present(gaze.Update{Status: gaze.StatusFace, Clicked: true, Click: true, Pointer: gaze.Position{X: 100, Y: 100}})
	c.Present(gaze.Update{Status: gaze.StatusFace, Clicked: true, Pointer: gaze.Position{X: 100, Y: 100}})

	assert.Equal(t, 1, m.clicks)
	assert.EqualValues(t, 1, c.Clicks())
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, "system click", hook.LastEntry().Message)
	}
}

func TestCursorIgnoresNonFaceUpdates(t *testing.T) {
	m := &fakeMouse{w: 800, h: 600}
	c, _ := newCursor(m)

	c.Present(gaze.Update{Status: gaze.StatusNoFace})
	c.Present(gaze.Update{Status: gaze.StatusDetectorFailure})
	c.Present(gaze.Update{Status: gaze.StatusFace, FromTimer: true})

	assert.Empty(t, m.moves)
}

func TestCursorSetArea(t *testing.T) {
	m := &fakeMouse{w: 1000, h: 1000}
	c, _ := newCursor(m)
	c.SetArea(gaze.NewBounds(500, 250, 50, 0))

	c.Present(gaze.Update{Status: gaze.StatusFace, Pointer: gaze.Position{X: 250, Y: 125}})
	assert.Equal(t, [][2]int{{500, 500}}, m.moves)
}

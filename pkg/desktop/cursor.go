// Package desktop mirrors the virtual pointer onto the system cursor.
package desktop

import (
	"sync"

	"github.com/go-vgo/robotgo"
	"github.com/sirupsen/logrus"

	"github.com/intothevoid/gazeremote/pkg/gaze"
)

// Mouse is the slice of the OS input API the cursor needs.
type Mouse interface {
	ScreenSize() (width, height int)
	Move(x, y int)
	Click()
}

// SystemMouse drives the real cursor through robotgo.
type SystemMouse struct{}

func (SystemMouse) ScreenSize() (int, int) { return robotgo.GetScreenSize() }
func (SystemMouse) Move(x, y int)          { robotgo.Move(x, y) }
func (SystemMouse) Click()                 { robotgo.Click("left") }

// Cursor is a gaze.Presenter that scales pointer positions from the app's
// pointer area to the whole screen and clicks on a confirmed double blink.
type Cursor struct {
	mouse Mouse
	log   logrus.FieldLogger

	mu     sync.Mutex
	area   gaze.Bounds
	screen [2]int
	clicks uint64
}

// NewCursor reads the screen size once; call SetArea when the pointer area
// is laid out again.
func NewCursor(mouse Mouse, area gaze.Bounds, log logrus.FieldLogger) *Cursor {
	w, h := mouse.ScreenSize()
	return &Cursor{
		mouse:  mouse,
		log:    log.WithField("component", "cursor"),
		area:   area,
		screen: [2]int{w, h},
	}
}

// SetArea replaces the region pointer positions are measured in.
func (c *Cursor) SetArea(b gaze.Bounds) {
	c.mu.Lock()
	c.area = b
	c.mu.Unlock()
}

// Present implements gaze.Presenter. Only fresh face updates move the cursor.
func (c *Cursor) Present(u gaze.Update) {
	if !u.HasFace() {
		return
	}
	x, y := c.project(u.Pointer)
	c.mouse.Move(x, y)
	if u.Click {
		c.mouse.Click()
		c.mu.Lock()
		c.clicks++
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"x": x, "y": y}).Debug("system click")
	}
}

// Clicks is the number of clicks sent so far.
func (c *Cursor) Clicks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clicks
}

func (c *Cursor) project(p gaze.Position) (int, int) {
	c.mu.Lock()
	area, screen := c.area, c.screen
	c.mu.Unlock()

	if area.ScreenWidth <= 0 || area.ScreenHeight <= 0 {
		return int(p.X), int(p.Y)
	}
	x := int(p.X * float64(screen[0]) / area.ScreenWidth)
	y := int(p.Y * float64(screen[1]) / area.ScreenHeight)
	return min(max(x, 0), screen[0]-1), min(max(y, 0), screen[1]-1)
}

package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/intothevoid/gazeremote/pkg/gaze"
)

var (
	pointerIdle    = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff} // gray
	pointerClicked = color.NRGBA{R: 0xff, G: 0x95, B: 0x00, A: 0xff} // orange
	pointerShadow  = color.NRGBA{A: 0x99}
	headerFill     = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xee}
)

const (
	shadowOffset = 2
	headerHeight = 32
)

// PointerWidget is the virtual pointer: a round dot with a drop shadow,
// below a header bar. Pointer coordinates are the centre of the dot in the
// widget's own space; the header is the top inset the dot stays under.
type PointerWidget struct {
	widget.BaseWidget

	mu       sync.Mutex
	diameter float32
	center   fyne.Position
	clicked  bool
	size     fyne.Size

	// OnResize is told the new area and top inset after a layout change.
	OnResize func(size fyne.Size, topInset float32)

	header     *canvas.Rectangle
	headerText *canvas.Text
	shadow     *canvas.Circle
	dot        *canvas.Circle
	root       *fyne.Container
}

// NewPointerWidget creates a pointer of the given diameter at centre.
func NewPointerWidget(diameter float32, center fyne.Position) *PointerWidget {
	p := &PointerWidget{diameter: diameter, center: center}
	p.ExtendBaseWidget(p)

	p.header = canvas.NewRectangle(headerFill)
	p.headerText = canvas.NewText(PointerHint, theme.Color(theme.ColorNameForeground))
	p.headerText.Alignment = fyne.TextAlignCenter
	p.headerText.TextSize = 13

	p.shadow = canvas.NewCircle(pointerShadow)
	p.dot = canvas.NewCircle(pointerIdle)

	p.root = container.NewWithoutLayout(p.header, p.headerText, p.shadow, p.dot)
	return p
}

// TopInset is the height of the header bar.
func (p *PointerWidget) TopInset() float32 { return headerHeight }

// Update moves the dot and sets its clicked colour. Call it from the UI goroutine.
func (p *PointerWidget) Update(u gaze.Update) {
	p.mu.Lock()
	p.center = fyne.NewPos(float32(u.Pointer.X), float32(u.Pointer.Y))
	p.clicked = u.Clicked
	p.mu.Unlock()

	p.place()
}

// SetStatus replaces the header text.
func (p *PointerWidget) SetStatus(msg string) {
	p.headerText.Text = msg
	p.headerText.Refresh()
}

// Status returns the header text.
func (p *PointerWidget) Status() string { return p.headerText.Text }

// Center returns the dot centre.
func (p *PointerWidget) Center() fyne.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.center
}

// Clicked reports whether the dot is showing the clicked colour.
func (p *PointerWidget) Clicked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clicked
}

func (p *PointerWidget) place() {
	p.mu.Lock()
	c, d, clicked := p.center, p.diameter, p.clicked
	p.mu.Unlock()

	topLeft := fyne.NewPos(c.X-d/2, c.Y-d/2)
	p.dot.Move(topLeft)
	p.dot.Resize(fyne.NewSquareSize(d))
	p.shadow.Move(topLeft.AddXY(shadowOffset, shadowOffset))
	p.shadow.Resize(fyne.NewSquareSize(d))

	if clicked {
		p.dot.FillColor = pointerClicked
	} else {
		p.dot.FillColor = pointerIdle
	}
	p.dot.Refresh()
	p.shadow.Refresh()
}

func (p *PointerWidget) CreateRenderer() fyne.WidgetRenderer {
	return &pointerRenderer{p: p}
}

type pointerRenderer struct {
	p *PointerWidget
}

func (r *pointerRenderer) Destroy() {}

func (r *pointerRenderer) MinSize() fyne.Size {
	d := r.p.diameter
	return fyne.NewSize(d*2, headerHeight+d*2)
}

func (r *pointerRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.p.root}
}

func (r *pointerRenderer) Refresh() {
	r.p.place()
	r.p.root.Refresh()
}

func (r *pointerRenderer) Layout(size fyne.Size) {
	p := r.p
	p.root.Resize(size)
	p.header.Move(fyne.NewPos(0, 0))
	p.header.Resize(fyne.NewSize(size.Width, headerHeight))
	p.headerText.Move(fyne.NewPos(0, (headerHeight-p.headerText.MinSize().Height)/2))
	p.headerText.Resize(fyne.NewSize(size.Width, p.headerText.MinSize().Height))
	p.place()

	p.mu.Lock()
	changed := size != p.size
	p.size = size
	p.mu.Unlock()
	if changed && p.OnResize != nil {
		p.OnResize(size, headerHeight)
	}
}

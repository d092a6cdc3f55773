package ui

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// VideoDisplay shows the camera preview the detector last ran on.
type VideoDisplay struct {
	widget.BaseWidget

	// mu ensures we don't read / write the image at the same time
	mu     sync.Mutex
	image  *canvas.Image
	frames uint64
}

// NewVideoDisplay is used to create widget instance
func NewVideoDisplay(minSize fyne.Size) *VideoDisplay {
	v := &VideoDisplay{}
	v.ExtendBaseWidget(v)

	// aspect fill, like a camera preview layer
	v.image = canvas.NewImageFromImage(nil)
	v.image.FillMode = canvas.ImageFillContain
	v.image.ScaleMode = canvas.ImageScaleFastest
	v.image.SetMinSize(minSize)
	return v
}

// UpdateFrame swaps in a new preview image. Call it from the UI goroutine.
func (v *VideoDisplay) UpdateFrame(img image.Image) {
	if img == nil {
		return
	}
	v.mu.Lock()
	v.image.Image = img
	v.frames++
	v.mu.Unlock()

	v.Refresh()
}

// Frames is the number of preview images shown so far.
func (v *VideoDisplay) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

// CreateRenderer is used to create a video renderer
func (v *VideoDisplay) CreateRenderer() fyne.WidgetRenderer {
	return &videoRenderer{v}
}

type videoRenderer struct {
	v *VideoDisplay
}

// Destroy implements [fyne.WidgetRenderer].
func (r *videoRenderer) Destroy() {}

// MinSize implements [fyne.WidgetRenderer].
func (r *videoRenderer) MinSize() fyne.Size {
	return r.v.image.MinSize()
}

// Objects implements [fyne.WidgetRenderer].
func (r *videoRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.v.image}
}

// Refresh implements [fyne.WidgetRenderer].
func (r *videoRenderer) Refresh() {
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	r.v.image.Refresh()
}

func (r *videoRenderer) Layout(s fyne.Size) {
	r.v.image.Resize(s)
}

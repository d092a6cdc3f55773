package ui

import (
	"fyne.io/fyne/v2"

	"github.com/intothevoid/gazeremote/pkg/config"
	"github.com/intothevoid/gazeremote/pkg/gaze"
)

// Title is the main window title.
const Title = "Gaze Remote"

// Window is the single app window with the widget its mode shows.
type Window struct {
	win  fyne.Window
	cfg  *config.Config
	mode config.Mode

	Pointer     *PointerWidget
	Diagnostics *DiagnosticsPanel
	Presenter   *Presenter
}

// NewWindow builds the window for cfg.Mode on app a.
func NewWindow(a fyne.App, cfg *config.Config) *Window {
	w := &Window{
		win:  a.NewWindow(Title),
		cfg:  cfg,
		mode: cfg.Mode,
	}

	size := fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight))
	switch cfg.Mode {
	case config.ModeDiagnostics:
		w.Diagnostics = NewDiagnosticsPanel()
		w.win.SetContent(w.Diagnostics)
	default:
		start := w.InitialBounds().Center()
		w.Pointer = NewPointerWidget(float32(cfg.PointerSize), fyne.NewPos(float32(start.X), float32(start.Y)))
		w.win.SetContent(w.Pointer)
	}
	w.Presenter = NewPresenter(cfg.Mode, w.Diagnostics, w.Pointer)

	w.win.Resize(size)
	return w
}

// InitialBounds are the pointer bounds before the first layout pass.
func (w *Window) InitialBounds() gaze.Bounds {
	return PointerBounds(
		fyne.NewSize(float32(w.cfg.WindowWidth), float32(w.cfg.WindowHeight)),
		headerHeight, w.cfg.PointerSize, w.cfg.TopInset,
	)
}

// OnPointerArea calls fn with new pointer bounds each time the pointer area
// is laid out at a new size. fn runs on the UI goroutine.
func (w *Window) OnPointerArea(fn func(gaze.Bounds)) {
	if w.Pointer == nil {
		return
	}
	w.Pointer.OnResize = func(size fyne.Size, inset float32) {
		fn(PointerBounds(size, inset, w.cfg.PointerSize, w.cfg.TopInset))
	}
}

// OnClosed registers fn to run when the user closes the window. Drawing
// stops before fn runs.
func (w *Window) OnClosed(fn func()) {
	w.win.SetOnClosed(func() {
		w.Presenter.MarkClosed()
		if fn != nil {
			fn()
		}
	})
}

// Mode is the screen this window shows.
func (w *Window) Mode() config.Mode { return w.mode }

// ShowAndRun shows the window and runs the app event loop.
func (w *Window) ShowAndRun() { w.win.ShowAndRun() }

// PointerBounds converts a laid-out pointer area into clamp bounds. The
// header and any configured safe area both count towards the top inset.
func PointerBounds(area fyne.Size, header float32, pointerSize, topInset int) gaze.Bounds {
	return gaze.NewBounds(
		float64(area.Width),
		float64(area.Height),
		float64(pointerSize),
		float64(header)+float64(topInset),
	)
}

package ui

import (
	"fmt"
	"sync/atomic"

	"fyne.io/fyne/v2"

	"github.com/intothevoid/gazeremote/pkg/config"
	"github.com/intothevoid/gazeremote/pkg/gaze"
)

// PointerHint is the header text while a face is tracked.
const PointerHint = "Double blink to click"

// Presenter applies controller updates to the window. Present blocks until
// the UI goroutine has drawn the update.
type Presenter struct {
	mode    config.Mode
	diag    *DiagnosticsPanel
	pointer *PointerWidget

	closed atomic.Bool

	// do runs fn on the UI goroutine and waits for it.
	do func(fn func())
}

// NewPresenter wires a presenter to whichever widget the mode shows.
// The other widget may be nil.
func NewPresenter(mode config.Mode, diag *DiagnosticsPanel, pointer *PointerWidget) *Presenter {
	return &Presenter{
		mode:    mode,
		diag:    diag,
		pointer: pointer,
		do:      fyne.DoAndWait,
	}
}

// Present implements gaze.Presenter.
func (p *Presenter) Present(u gaze.Update) {
	if p.closed.Load() {
		return
	}
	p.do(func() { p.draw(u) })
}

func (p *Presenter) draw(u gaze.Update) {
	switch p.mode {
	case config.ModeDiagnostics:
		if p.diag != nil {
			p.diag.Show(u)
		}
	default:
		if p.pointer == nil {
			return
		}
		p.pointer.Update(u)
		if u.FromTimer {
			return
		}
		switch u.Status {
		case gaze.StatusFace:
			p.pointer.SetStatus(PointerHint)
		default:
			p.pointer.SetStatus(u.Message)
		}
	}
}

// ShowSessionError reports a camera session failure in place of the
// normal output.
func (p *Presenter) ShowSessionError(err error) {
	if err == nil || p.closed.Load() {
		return
	}
	msg := fmt.Sprintf("Camera unavailable: %v", err)
	p.do(func() {
		if p.diag != nil {
			p.diag.ShowMessage(msg)
		}
		if p.pointer != nil {
			p.pointer.SetStatus(msg)
		}
	})
}

// MarkClosed stops drawing. Call it once the window is going away so a
// late update does not wait on a UI goroutine that has quit.
func (p *Presenter) MarkClosed() { p.closed.Store(true) }

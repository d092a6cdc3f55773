package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/intothevoid/gazeremote/pkg/gaze"
)

// metricCount is the number of face metrics the panel lists.
const metricCount = 6

// DiagnosticsPanel is the camera preview with the detected face metrics
// underneath, or a single message when there is no face to describe.
type DiagnosticsPanel struct {
	widget.BaseWidget

	preview *VideoDisplay
	metrics [metricCount]*widget.Label
	info    *fyne.Container
	noFace  *widget.Label
	root    *fyne.Container
}

// NewDiagnosticsPanel builds the panel with an empty preview.
func NewDiagnosticsPanel() *DiagnosticsPanel {
	d := &DiagnosticsPanel{
		preview: NewVideoDisplay(fyne.NewSize(320, 240)),
		noFace:  widget.NewLabel(gaze.NoFaceMessage),
	}
	d.ExtendBaseWidget(d)

	rows := make([]fyne.CanvasObject, 0, metricCount)
	for i, m := range (gaze.FaceObservation{}).Metrics() {
		d.metrics[i] = widget.NewLabel(m.String())
		rows = append(rows, d.metrics[i])
	}
	d.info = container.NewVBox(rows...)
	d.noFace.Wrapping = fyne.TextWrapWord
	d.noFace.Hide()

	d.root = container.NewBorder(nil, container.NewStack(d.info, d.noFace), nil, nil, d.preview)
	return d
}

// Show renders one controller update. Call it from the UI goroutine.
func (d *DiagnosticsPanel) Show(u gaze.Update) {
	if u.FromTimer {
		// blink expiry changes nothing the panel shows
		return
	}
	if u.Preview != nil {
		d.preview.UpdateFrame(u.Preview)
	}

	if !u.HasFace() {
		d.ShowMessage(u.Message)
		return
	}

	for i, m := range u.Metrics() {
		d.metrics[i].SetText(m.String())
	}
	d.noFace.Hide()
	d.info.Show()
}

// ShowMessage replaces the metrics with a single line of text.
func (d *DiagnosticsPanel) ShowMessage(msg string) {
	if msg == "" {
		msg = gaze.NoFaceMessage
	}
	d.noFace.SetText(msg)
	d.info.Hide()
	d.noFace.Show()
}

// MetricTexts returns what the metric labels currently read.
func (d *DiagnosticsPanel) MetricTexts() []string {
	out := make([]string, 0, metricCount)
	for _, l := range d.metrics {
		out = append(out, l.Text)
	}
	return out
}

// Message returns the fallback text and whether it is showing.
func (d *DiagnosticsPanel) Message() (string, bool) {
	return d.noFace.Text, d.noFace.Visible()
}

// Preview exposes the preview widget.
func (d *DiagnosticsPanel) Preview() *VideoDisplay { return d.preview }

func (d *DiagnosticsPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.root)
}

package ui

import (
	"errors"
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intothevoid/gazeremote/pkg/config"
	"github.com/intothevoid/gazeremote/pkg/gaze"
)

// inline runs UI work on the calling goroutine.
func inline(fn func()) { fn() }

func faceUpdate() gaze.Update {
	return gaze.Update{
		Seq:    1,
		Status: gaze.StatusFace,
		Observation: gaze.FaceObservation{
			HeadAngleX:              1.5,
			HeadAngleY:              -2,
			HeadAngleZ:              0.25,
			RightEyeOpenProbability: 0.9,
			LeftEyeOpenProbability:  0.8,
		},
		Pointer: gaze.Position{X: 120, Y: 90},
		Preview: image.NewRGBA(image.Rect(0, 0, 4, 3)),
	}
}

func TestDiagnosticsShowsMetrics(t *testing.T) {
	test.NewApp()
	d := NewDiagnosticsPanel()
	p := NewPresenter(config.ModeDiagnostics, d, nil)
	p.do = inline

	p.Present(faceUpdate())

	assert.Equal(t, []string{
		"FaceAngleX: 1.50",
		"FaceAngleY: -2.00",
		"FaceAngleZ: 0.25",
		"Right Eye Opening Probability: 0.90",
		"Left Eye Opening Probability: 0.80",
		"Blinking?: 0.02",
	}, d.MetricTexts())
	_, showing := d.Message()
	assert.False(t, showing)
	assert.EqualValues(t, 1, d.Preview().Frames())
}

func TestDiagnosticsFallbackMessages(t *testing.T) {
	test.NewApp()
	d := NewDiagnosticsPanel()
	p := NewPresenter(config.ModeDiagnostics, d, nil)
	p.do = inline

	p.Present(gaze.Update{Status: gaze.StatusNoFace, Message: gaze.NoFaceMessage})
	msg, showing := d.Message()
	assert.True(t, showing)
	assert.Equal(t, "No Face", msg)

	failure := &gaze.DetectorError{Err: errors.New("model gone")}
	p.Present(gaze.Update{Status: gaze.StatusDetectorFailure, Message: failure.Message()})
	msg, _ = d.Message()
	assert.Equal(t, "Failed to detect faces with error: model gone.", msg)

	// a face brings the metrics back
	p.Present(faceUpdate())
	_, showing = d.Message()
	assert.False(t, showing)
}

func TestDiagnosticsIgnoresTimerUpdates(t *testing.T) {
	test.NewApp()
	d := NewDiagnosticsPanel()
	p := NewPresenter(config.ModeDiagnostics, d, nil)
	p.do = inline

	p.Present(faceUpdate())
	before := d.MetricTexts()
	p.Present(gaze.Update{Status: gaze.StatusFace, FromTimer: true})

	assert.Equal(t, before, d.MetricTexts())
	assert.EqualValues(t, 1, d.Preview().Frames())
}

func TestPointerModeMovesDot(t *testing.T) {
	test.NewApp()
	w := NewPointerWidget(50, fyne.NewPos(10, 10))
	p := NewPresenter(config.ModePointer, nil, w)
	p.do = inline

	u := faceUpdate()
	u.Clicked = true
	p.Present(u)
	assert.Equal(t, fyne.NewPos(120, 90), w.Center())
	assert.True(t, w.Clicked())
	assert.Equal(t, PointerHint, w.Status())

	p.Present(gaze.Update{Status: gaze.StatusNoFace, Message: gaze.NoFaceMessage, Pointer: gaze.Position{X: 120, Y: 90}})
	assert.Equal(t, "No Face", w.Status())
	assert.False(t, w.Clicked())
}

func TestPointerModeTimerKeepsStatus(t *testing.T) {
	test.NewApp()
	w := NewPointerWidget(50, fyne.NewPos(0, 0))
	p := NewPresenter(config.ModePointer, nil, w)
	p.do = inline

	p.Present(gaze.Update{Status: gaze.StatusNoFace, Message: gaze.NoFaceMessage})
	p.Present(gaze.Update{Status: gaze.StatusNoFace, FromTimer: true})
	assert.Equal(t, "No Face", w.Status())
}

func TestPresenterSessionError(t *testing.T) {
	test.NewApp()
	d := NewDiagnosticsPanel()
	w := NewPointerWidget(50, fyne.NewPos(0, 0))
	p := NewPresenter(config.ModePointer, d, w)
	p.do = inline

	p.ShowSessionError(errors.New("no camera"))
	assert.Equal(t, "Camera unavailable: no camera", w.Status())
	msg, showing := d.Message()
	assert.True(t, showing)
	assert.Equal(t, "Camera unavailable: no camera", msg)

	p.ShowSessionError(nil)
	assert.Equal(t, "Camera unavailable: no camera", w.Status())
}

func TestPresenterClosed(t *testing.T) {
	test.NewApp()
	w := NewPointerWidget(50, fyne.NewPos(0, 0))
	p := NewPresenter(config.ModePointer, nil, w)
	calls := 0
	p.do = func(fn func()) { calls++; fn() }

	p.MarkClosed()
	p.Present(faceUpdate())
	p.ShowSessionError(errors.New("late"))
	require.Zero(t, calls)
	assert.Equal(t, fyne.NewPos(0, 0), w.Center())
}

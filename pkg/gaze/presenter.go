package gaze

import (
	"fmt"
	"image"
)

// Status is the outcome of processing one frame.
type Status int

const (
	StatusFace Status = iota
	StatusNoFace
	StatusDetectorFailure
)

func (s Status) String() string {
	switch s {
	case StatusFace:
		return "face"
	case StatusNoFace:
		return "no-face"
	case StatusDetectorFailure:
		return "detector-failure"
	default:
		return "unknown"
	}
}

// NoFaceMessage is shown when the detector returns no faces.
const NoFaceMessage = "No Face"

// Update is everything the presentation layer needs after one frame, or
// after a blink window expired between frames.
type Update struct {
	Seq    uint64
	Status Status

	// Observation is only meaningful when Status is StatusFace.
	Observation FaceObservation
	Message     string

	Pointer Position
	Blink   BlinkState
	Clicked bool // true while a double blink is confirmed
	Click   bool // true only on the update that confirmed it

	// Preview is the frame the detector ran on, when detection succeeded.
	Preview image.Image

	// FromTimer marks updates produced by a blink window expiring.
	FromTimer bool
}

// HasFace reports whether the update carries a fresh observation.
func (u Update) HasFace() bool { return u.Status == StatusFace && !u.FromTimer }

// Metrics returns the overlay values, or nil when there is no face.
func (u Update) Metrics() []Metric {
	if !u.HasFace() {
		return nil
	}
	return u.Observation.Metrics()
}

// Presenter consumes controller output. Present is called from the
// controller goroutine, once per frame, and must finish applying the
// update before returning.
type Presenter interface {
	Present(u Update)
}

// PresenterFunc adapts a function to a Presenter.
type PresenterFunc func(u Update)

func (f PresenterFunc) Present(u Update) { f(u) }

// Presenters fans one update out to several presenters in order.
type Presenters []Presenter

func (ps Presenters) Present(u Update) {
	for _, p := range ps {
		if p != nil {
			p.Present(u)
		}
	}
}

// DetectorError wraps a failure reported by the face detector.
type DetectorError struct {
	Err error
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("detect faces: %v", e.Err)
}

func (e *DetectorError) Unwrap() error { return e.Err }

// Message is the human readable text for the diagnostics overlay.
func (e *DetectorError) Message() string {
	return fmt.Sprintf("Failed to detect faces with error: %v.", e.Err)
}

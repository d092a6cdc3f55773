// Package gaze turns per-frame face observations into pointer motion and
// blink gestures.
package gaze

import "fmt"

// ClosedEyesThreshold is the blink probability at or above which a frame
// counts as "eyes closed".
const ClosedEyesThreshold = 0.85

// FaceObservation is what the detector reports for the primary face in a frame.
// Angles are in degrees, probabilities in [0,1].
type FaceObservation struct {
	HeadAngleX float64
	HeadAngleY float64
	HeadAngleZ float64

	RightEyeOpenProbability float64
	LeftEyeOpenProbability  float64
}

// BlinkProbability is the joint probability that both eyes are closed.
func (o FaceObservation) BlinkProbability() float64 {
	return (1 - o.RightEyeOpenProbability) * (1 - o.LeftEyeOpenProbability)
}

// EyesClosed reports whether the observation crosses the closed-eyes threshold.
func (o FaceObservation) EyesClosed() bool {
	return o.BlinkProbability() >= ClosedEyesThreshold
}

// Metric is one labelled value of the diagnostics overlay.
type Metric struct {
	Label string
	Value float64
}

// String renders the metric the way the overlay shows it, two decimals.
func (m Metric) String() string {
	return fmt.Sprintf("%s: %.2f", m.Label, m.Value)
}

// Metrics returns the six overlay values in display order.
func (o FaceObservation) Metrics() []Metric {
	return []Metric{
		{Label: "FaceAngleX", Value: o.HeadAngleX},
		{Label: "FaceAngleY", Value: o.HeadAngleY},
		{Label: "FaceAngleZ", Value: o.HeadAngleZ},
		{Label: "Right Eye Opening Probability", Value: o.RightEyeOpenProbability},
		{Label: "Left Eye Opening Probability", Value: o.LeftEyeOpenProbability},
		{Label: "Blinking?", Value: o.BlinkProbability()},
	}
}

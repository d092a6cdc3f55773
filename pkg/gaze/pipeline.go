package gaze

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/intothevoid/gazeremote/pkg/capture"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Detector finds faces in a frame. Only the first returned face is used.
// Detect is called serially, never on overlapping frames, and is not
// cancelled once started.
type Detector interface {
	Detect(frame capture.Frame) ([]FaceObservation, error)
}

// DetectorFunc adapts a function to a Detector.
type DetectorFunc func(frame capture.Frame) ([]FaceObservation, error)

func (f DetectorFunc) Detect(frame capture.Frame) ([]FaceObservation, error) { return f(frame) }

// Pipeline is the frame lane: it takes frames one at a time, runs the
// detector and hands each result to the controller, waiting until the
// controller has applied and presented it before taking the next frame.
type Pipeline struct {
	detector   Detector
	controller *Controller
	log        logrus.FieldLogger
	failureLog *rate.Limiter

	processed atomic.Uint64
	noFace    atomic.Uint64
	failures  atomic.Uint64
}

// Stats counts what the pipeline has seen so far.
type Stats struct {
	Processed uint64
	NoFace    uint64
	Failures  uint64
}

// NewPipeline connects a detector to a controller.
func NewPipeline(detector Detector, controller *Controller, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		detector:   detector,
		controller: controller,
		log:        log.WithField("component", "pipeline"),
		failureLog: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// Stats returns the running counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		NoFace:    p.noFace.Load(),
		Failures:  p.failures.Load(),
	}
}

// Run consumes frames until the channel closes, ctx is cancelled or the
// controller stops. Detector failures never end the loop.
func (p *Pipeline) Run(ctx context.Context, frames <-chan capture.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if err := p.Process(ctx, f); err != nil {
				if errors.Is(err, ErrControllerStopped) || errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}

// Process runs one frame through the detector and the controller.
func (p *Pipeline) Process(ctx context.Context, f capture.Frame) error {
	res := p.detect(f)
	p.processed.Add(1)

	if _, err := p.controller.Apply(ctx, res); err != nil {
		// the result of an in-flight detection has nowhere to go
		p.log.WithField("seq", f.Seq).WithError(err).Debug("dropping detection result")
		return err
	}
	return nil
}

func (p *Pipeline) detect(f capture.Frame) (res Result) {
	res.Seq = f.Seq

	defer func() {
		if r := recover(); r != nil {
			res.Faces = nil
			res.Preview = nil
			res.Err = &DetectorError{Err: panicError{r}}
			p.failed(f, res.Err)
		}
	}()

	faces, err := p.detector.Detect(f)
	if err != nil {
		var derr *DetectorError
		if !errors.As(err, &derr) {
			err = &DetectorError{Err: err}
		}
		res.Err = err
		p.failed(f, err)
		return res
	}

	res.Faces = faces
	res.Preview = f.Image
	if len(faces) == 0 {
		p.noFace.Add(1)
	}
	return res
}

func (p *Pipeline) failed(f capture.Frame, err error) {
	p.failures.Add(1)
	if p.failureLog.Allow() {
		p.log.WithFields(logrus.Fields{
			"seq":      f.Seq,
			"failures": p.failures.Load(),
		}).WithError(err).Warn("face detection failed, frame dropped")
	}
}

type panicError struct{ v any }

func (e panicError) Error() string { return fmt.Sprintf("detector panic: %v", e.v) }

package gaze

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/intothevoid/gazeremote/pkg/capture"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureDetector replays a fixed sequence of detector answers, one per call.
type fixtureDetector struct {
	steps    []fixtureStep
	calls    atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
}

type fixtureStep struct {
	faces []FaceObservation
	err   error
	panic bool
}

func (d *fixtureDetector) Detect(f capture.Frame) ([]FaceObservation, error) {
	if d.inFlight.Add(1) > 1 {
		d.overlap.Store(true)
	}
	defer d.inFlight.Add(-1)

	i := int(d.calls.Add(1)) - 1
	if i >= len(d.steps) {
		return nil, nil
	}
	s := d.steps[i]
	if s.panic {
		panic("boom")
	}
	return s.faces, s.err
}

func frames(n int) <-chan capture.Frame {
	ch := make(chan capture.Frame, n)
	for i := 1; i <= n; i++ {
		ch <- capture.Frame{
			Seq:   uint64(i),
			Image: image.NewRGBA(image.Rect(0, 0, 4, 4)),
		}
	}
	close(ch)
	return ch
}

func TestPipelineProcessesFramesInOrder(t *testing.T) {
	det := &fixtureDetector{steps: []fixtureStep{
		{faces: face(openEyes, 5, 3)},
		{},
		{err: errors.New("vision busy")},
		{faces: face(openEyes, 5, 3)},
		{panic: true},
		{faces: face(openEyes, 5, 3)},
	}}
	rec := &recorder{}
	ctl, _ := startController(t, NewBounds(1000, 1000, 50, 0), rec, WithStart(Position{X: 100, Y: 100}))
	p := NewPipeline(det, ctl, quietLogger())

	require.NoError(t, p.Run(context.Background(), frames(len(det.steps))))

	updates := rec.all()
	require.Len(t, updates, len(det.steps))
	for i, u := range updates {
		assert.Equal(t, uint64(i+1), u.Seq)
	}

	wantStatus := []Status{StatusFace, StatusNoFace, StatusDetectorFailure, StatusFace, StatusDetectorFailure, StatusFace}
	for i, u := range updates {
		assert.Equal(t, wantStatus[i], u.Status, "frame %d", i+1)
	}

	assert.Equal(t, Position{X: 115, Y: 91}, rec.last().Pointer)
	assert.Contains(t, updates[4].Message, "detector panic: boom")
	assert.Nil(t, updates[2].Preview)
	assert.NotNil(t, updates[1].Preview, "preview refreshes on a no-face frame")
	assert.False(t, det.overlap.Load())

	assert.Equal(t, Stats{Processed: 6, NoFace: 1, Failures: 2}, p.Stats())
}

func TestPipelineBlinkScenario(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	rec := &recorder{}
	ctl, _ := startController(t, NewBounds(1000, 1000, 50, 0), rec, WithClock(clock))

	// blink probabilities 0.9, 0.2, 0.9
	obs := []FaceObservation{
		{RightEyeOpenProbability: 0.05, LeftEyeOpenProbability: 0.0526},
		{RightEyeOpenProbability: 0.6, LeftEyeOpenProbability: 0.5},
		{RightEyeOpenProbability: 0.05, LeftEyeOpenProbability: 0.0526},
	}
	det := &fixtureDetector{}
	for _, o := range obs {
		det.steps = append(det.steps, fixtureStep{faces: []FaceObservation{o}})
	}
	p := NewPipeline(det, ctl, quietLogger())

	ctx := context.Background()
	for i := range obs {
		if i > 0 {
			clock.Advance(300 * time.Millisecond)
		}
		require.NoError(t, p.Process(ctx, capture.Frame{Seq: uint64(i + 1)}))
	}
	assert.Equal(t, DoubleBlinkConfirmed, rec.last().Blink)

	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool {
		return rec.last().Blink == BlinkNone
	}, time.Second, 5*time.Millisecond)
}

func TestPipelineStopsWhenControllerStops(t *testing.T) {
	ctl, cancel := startController(t, NewBounds(100, 100, 10, 0), &recorder{})
	cancel()
	<-ctl.Done()

	det := &fixtureDetector{steps: []fixtureStep{{faces: face(openEyes, 1, 1)}}}
	p := NewPipeline(det, ctl, quietLogger())

	ch := make(chan capture.Frame, 1)
	ch <- capture.Frame{Seq: 1}

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background(), ch) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pipeline kept running after the controller stopped")
	}
	assert.Equal(t, int32(1), det.calls.Load(), "in-flight detection still completes")
}

package gaze

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// ErrControllerStopped is returned when a result arrives after the
// controller has shut down.
var ErrControllerStopped = errors.New("gaze: controller stopped")

// Result is the detector output for one frame.
type Result struct {
	Seq     uint64
	Faces   []FaceObservation
	Err     error
	Preview image.Image // the frame the detector saw; nil when detection failed
}

// Controller owns the blink debouncer and the pointer. All mutation happens
// on the goroutine running Run; other goroutines talk to it through Apply
// and SetBounds, which block until the change and its presentation are done.
type Controller struct {
	clock     clockwork.Clock
	log       logrus.FieldLogger
	presenter Presenter
	debouncer *Debouncer
	pointer   *Pointer

	inbox chan request
	done  chan struct{}

	timer clockwork.Timer
	last  Update
}

type request struct {
	result *Result
	bounds *Bounds
	reply  chan Update
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clockwork.Clock) ControllerOption {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the logger used for transitions and clicks.
func WithLogger(l logrus.FieldLogger) ControllerOption {
	return func(ctl *Controller) { ctl.log = l }
}

// WithDebouncer replaces the default blink debouncer.
func WithDebouncer(d *Debouncer) ControllerOption {
	return func(ctl *Controller) { ctl.debouncer = d }
}

// WithStart sets the initial pointer position. Defaults to the screen centre.
func WithStart(p Position) ControllerOption {
	return func(ctl *Controller) { ctl.pointer = NewPointer(ctl.pointer.Bounds(), p) }
}

// NewController creates a controller. Call Run to start it.
func NewController(bounds Bounds, presenter Presenter, opts ...ControllerOption) *Controller {
	c := &Controller{
		clock:     clockwork.NewRealClock(),
		log:       logrus.StandardLogger(),
		presenter: presenter,
		debouncer: NewDebouncer(),
		pointer:   NewPointer(bounds, bounds.Center()),
		inbox:     make(chan request),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.presenter == nil {
		c.presenter = Presenters(nil)
	}
	c.last = Update{Status: StatusNoFace, Pointer: c.pointer.Position()}
	return c
}

// Run processes requests until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.stopTimer()

	for {
		var expired <-chan time.Time
		if c.timer != nil {
			expired = c.timer.Chan()
		}

		select {
		case <-ctx.Done():
			return nil
		case req := <-c.inbox:
			var u Update
			switch {
			case req.result != nil:
				u = c.apply(*req.result)
			case req.bounds != nil:
				c.pointer.SetBounds(*req.bounds)
				u = c.last
				u.Pointer = c.pointer.Position()
				u.Click = false
				c.last = u
			}
			req.reply <- u
		case <-expired:
			c.timer = nil
			c.expire()
		}
	}
}

// Apply hands one frame's detector result to the controller and waits until
// the state update and the presenter refresh for it are complete.
func (c *Controller) Apply(ctx context.Context, r Result) (Update, error) {
	return c.send(ctx, request{result: &r, reply: make(chan Update, 1)})
}

// SetBounds changes the region the pointer is kept in.
func (c *Controller) SetBounds(ctx context.Context, b Bounds) (Update, error) {
	return c.send(ctx, request{bounds: &b, reply: make(chan Update, 1)})
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) send(ctx context.Context, req request) (Update, error) {
	select {
	case c.inbox <- req:
	case <-c.done:
		return Update{}, ErrControllerStopped
	case <-ctx.Done():
		return Update{}, ctx.Err()
	}
	// once accepted the request is always answered
	return <-req.reply, nil
}

func (c *Controller) apply(r Result) Update {
	u := Update{
		Seq:     r.Seq,
		Pointer: c.pointer.Position(),
		Blink:   c.debouncer.Current(),
	}

	switch {
	case r.Err != nil:
		u.Status = StatusDetectorFailure
		var derr *DetectorError
		if errors.As(r.Err, &derr) {
			u.Message = derr.Message()
		} else {
			u.Message = (&DetectorError{Err: r.Err}).Message()
		}
	case len(r.Faces) == 0:
		u.Status = StatusNoFace
		u.Message = NoFaceMessage
	default:
		now := c.clock.Now()
		obs := r.Faces[0]
		u.Status = StatusFace
		u.Observation = obs
		u.Pointer = c.pointer.Move(obs.HeadAngleX, obs.HeadAngleY)

		tr := c.debouncer.Observe(obs.BlinkProbability(), now)
		u.Blink = tr.To
		u.Click = tr.Click()
		if tr.Changed() {
			c.log.WithFields(logrus.Fields{
				"seq":  r.Seq,
				"from": tr.From.String(),
				"to":   tr.To.String(),
			}).Debug("blink state changed")
			c.rearm(now)
		}
		if u.Click {
			c.log.WithFields(logrus.Fields{
				"seq": r.Seq,
				"x":   u.Pointer.X,
				"y":   u.Pointer.Y,
			}).Info("double blink click")
		}
	}

	if r.Err == nil {
		u.Preview = r.Preview
	}
	u.Clicked = u.Blink == DoubleBlinkConfirmed
	c.last = u
	c.presenter.Present(u)
	return u
}

func (c *Controller) expire() {
	now := c.clock.Now()
	if c.debouncer.Expire(now) {
		u := c.last
		u.Blink = c.debouncer.Current()
		u.Clicked = u.Blink == DoubleBlinkConfirmed
		u.Click = false
		u.Preview = nil
		u.FromTimer = true
		c.last = u
		c.log.WithField("to", u.Blink.String()).Debug("blink window expired")
		c.presenter.Present(u)
	}
	c.rearm(now)
}

// rearm points the expiry timer at the debouncer's next deadline.
func (c *Controller) rearm(now time.Time) {
	c.stopTimer()
	deadline, ok := c.debouncer.NextDeadline()
	if !ok {
		return
	}
	wait := deadline.Sub(now)
	if wait < 0 {
		wait = 0
	}
	c.timer = c.clock.NewTimer(wait)
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

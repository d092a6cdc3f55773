package capture

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Session drives a Device. Configuration, start and stop are commands
// executed one at a time on the session goroutine, so the device is never
// reconfigured concurrently. While running, a reader goroutine pulls frames
// and offers them on a one-slot channel; a frame that arrives while the slot
// is still full is dropped, never queued.
type Session struct {
	id  string
	dev Device
	log logrus.FieldLogger

	orientation func() ImageOrientation
	now         func() time.Time

	cmds   chan command
	done   chan struct{}
	frames chan Frame

	// owned by the session goroutine
	configured bool
	cfg        Config
	stopRead   chan struct{}
	readerDone chan struct{}

	seq     atomic.Uint64
	dropped atomic.Uint64

	closeOnce sync.Once
}

type command struct {
	op    string
	cfg   Config
	reply chan error
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger.
func WithSessionLogger(l logrus.FieldLogger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithOrientation sets how each frame's orientation tag is derived.
func WithOrientation(f func() ImageOrientation) SessionOption {
	return func(s *Session) { s.orientation = f }
}

// NewSession creates a session for dev and starts its command goroutine.
// Close must be called to release the device.
func NewSession(dev Device, opts ...SessionOption) *Session {
	s := &Session{
		id:          uuid.NewString(),
		dev:         dev,
		log:         logrus.StandardLogger(),
		orientation: func() ImageOrientation { return ImageUp },
		now:         time.Now,
		cmds:        make(chan command),
		done:        make(chan struct{}),
		frames:      make(chan Frame, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "capture", "session_id": s.id})
	go s.loop()
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Frames delivers captured frames. It is closed when the session is closed.
func (s *Session) Frames() <-chan Frame { return s.frames }

// Dropped is the number of frames discarded because the consumer was busy.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

// Configure opens the device with cfg, replacing any previous configuration.
func (s *Session) Configure(ctx context.Context, cfg Config) error {
	return s.do(ctx, command{op: "configure", cfg: cfg})
}

// Start begins delivering frames. Starting a running session is a no-op.
func (s *Session) Start(ctx context.Context) error {
	return s.do(ctx, command{op: "start"})
}

// Stop halts frame delivery. A frame already handed to the consumer is not
// recalled.
func (s *Session) Stop(ctx context.Context) error {
	return s.do(ctx, command{op: "stop"})
}

// Close stops the session, releases the device and closes Frames. It is
// safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		reply := make(chan error, 1)
		s.cmds <- command{op: "close", reply: reply}
		err = <-reply
		<-s.done
	})
	return err
}

func (s *Session) do(ctx context.Context, c command) error {
	c.reply = make(chan error, 1)
	select {
	case s.cmds <- c:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-c.reply
}

func (s *Session) loop() {
	defer close(s.done)
	for c := range s.cmds {
		switch c.op {
		case "configure":
			c.reply <- s.configure(c.cfg)
		case "start":
			c.reply <- s.start()
		case "stop":
			s.stop()
			c.reply <- nil
		case "close":
			s.stop()
			var err error
			if s.configured {
				if cerr := s.dev.Close(); cerr != nil {
					err = &ConfigError{Op: "close", Err: cerr}
				}
			}
			close(s.frames)
			s.log.WithField("dropped", s.dropped.Load()).Info("capture session closed")
			c.reply <- err
			return
		}
	}
}

func (s *Session) configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		s.log.WithError(err).Error("invalid capture configuration")
		return &ConfigError{Op: "configure", Err: err}
	}

	running := s.stopRead != nil
	s.stop()
	if s.configured {
		if err := s.dev.Close(); err != nil {
			s.log.WithError(err).Warn("failed to release previous capture input")
		}
		s.configured = false
	}

	if err := s.dev.Open(cfg); err != nil {
		s.log.WithError(err).WithField("device_id", cfg.DeviceID).Error("failed to configure capture device")
		return &ConfigError{Op: "configure", Err: err}
	}
	s.cfg = cfg
	s.configured = true

	w, h := cfg.Preset.Dimensions()
	s.log.WithFields(logrus.Fields{
		"device_id": cfg.DeviceID,
		"position":  cfg.Position.String(),
		"preset":    cfg.Preset.String(),
		"width":     w,
		"height":    h,
		"fps":       cfg.FrameRate,
	}).Info("capture session configured")

	if running {
		return s.start()
	}
	return nil
}

func (s *Session) start() error {
	if !s.configured {
		return &ConfigError{Op: "start", Err: ErrNotConfigured}
	}
	if s.stopRead != nil {
		return nil
	}
	s.stopRead = make(chan struct{})
	s.readerDone = make(chan struct{})
	go s.read(s.cfg, s.stopRead, s.readerDone)
	s.log.Info("capture session started")
	return nil
}

func (s *Session) stop() {
	if s.stopRead == nil {
		return
	}
	close(s.stopRead)
	<-s.readerDone
	s.stopRead = nil
	s.readerDone = nil
	s.log.Info("capture session stopped")
}

// read is the frame lane. It runs until stop is closed.
func (s *Session) read(cfg Config, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var tick <-chan time.Time
	if interval := cfg.FrameInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	errLog := rate.NewLimiter(rate.Every(5*time.Second), 1)

	for {
		if tick != nil {
			select {
			case <-stop:
				return
			case <-tick:
			}
		} else {
			select {
			case <-stop:
				return
			default:
			}
		}

		img, err := s.dev.Read()
		if err != nil {
			if errLog.Allow() {
				s.log.WithError(err).Warn("failed to read frame")
			}
			continue
		}

		f := Frame{
			Seq:         s.seq.Add(1),
			CapturedAt:  s.now(),
			Orientation: s.orientation(),
			Image:       img,
		}
		select {
		case s.frames <- f:
		default:
			s.dropped.Add(1)
		}
	}
}

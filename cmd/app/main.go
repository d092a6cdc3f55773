package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/intothevoid/gazeremote/pkg/camera"
	"github.com/intothevoid/gazeremote/pkg/capture"
	"github.com/intothevoid/gazeremote/pkg/config"
	"github.com/intothevoid/gazeremote/pkg/desktop"
	"github.com/intothevoid/gazeremote/pkg/gaze"
	"github.com/intothevoid/gazeremote/pkg/logging"
	"github.com/intothevoid/gazeremote/pkg/ui"
	"github.com/intothevoid/gazeremote/pkg/vision"
)

// shutdownTimeout bounds each cleanup step after the window closes.
const shutdownTimeout = 2 * time.Second

func main() {
	mode := flag.String("mode", "", "screen to show: pointer or diagnostics (overrides GAZE_MODE)")
	envFile := flag.String("env", ".env", "optional env file")
	flag.Parse()

	if *mode != "" {
		// godotenv never overrides a set variable, so the flag wins
		os.Setenv("GAZE_MODE", *mode)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(logging.Options{Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		logger.WithError(err).Warn("using info level")
	}
	log := logger.WithField("run_id", uuid.NewString())
	log.WithFields(logrus.Fields{
		"mode":   cfg.Mode,
		"device": cfg.Camera.DeviceID,
		"preset": cfg.Camera.Preset,
	}).Info("starting")

	// 1. Window and presenters
	fyneApp := app.New()
	win := ui.NewWindow(fyneApp, cfg)
	bounds := win.InitialBounds()

	presenters := gaze.Presenters{win.Presenter}
	var cursor *desktop.Cursor
	if cfg.SystemCursor && cfg.Mode == config.ModePointer {
		cursor = desktop.NewCursor(desktop.SystemMouse{}, bounds, log)
		presenters = append(presenters, cursor)
	}

	// 2. Controller
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctl := gaze.NewController(bounds, presenters, gaze.WithLogger(log))
	go ctl.Run(ctx)

	// layout runs on the UI goroutine, which the controller may be
	// waiting on, so new bounds are handed over asynchronously
	resized := make(chan gaze.Bounds, 1)
	win.OnPointerArea(func(b gaze.Bounds) {
		select {
		case <-resized:
		default:
		}
		resized <- b
	})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-resized:
				if cursor != nil {
					cursor.SetArea(b)
				}
				if _, err := ctl.SetBounds(ctx, b); err != nil {
					return
				}
			}
		}
	}()

	// 3. Detector, degraded to a failing one if the models are missing
	var detector gaze.Detector
	faces, err := vision.NewFaceDetector(detectorConfig(cfg.Detector))
	if err != nil {
		log.WithError(err).Error("face detector unavailable")
		loadErr := err
		detector = gaze.DetectorFunc(func(capture.Frame) ([]gaze.FaceObservation, error) {
			return nil, loadErr
		})
	} else {
		defer faces.Close()
		detector = faces
	}

	// 4. Camera session and pipeline
	session := capture.NewSession(
		camera.NewVideoStream(),
		capture.WithSessionLogger(log),
		capture.WithOrientation(func() capture.ImageOrientation {
			return capture.ResolveImageOrientation(cfg.DeviceOrientation, capture.InterfaceUnknown)
		}),
	)

	pipeline := gaze.NewPipeline(detector, ctl, log)
	go func() {
		if err := pipeline.Run(ctx, session.Frames()); err != nil {
			log.WithError(err).Error("pipeline stopped")
		}
	}()

	go func() {
		if err := startCapture(ctx, session, cfg.Camera); err != nil {
			log.WithError(err).Error("camera session failed")
			win.Presenter.ShowSessionError(err)
		}
	}()

	// 5. Run until the window closes
	win.OnClosed(cancel)
	win.ShowAndRun()

	shutdown(log, session, ctl, pipeline)
}

func startCapture(ctx context.Context, s *capture.Session, cfg capture.Config) error {
	if err := s.Configure(ctx, cfg); err != nil {
		return err
	}
	return s.Start(ctx)
}

func shutdown(log logrus.FieldLogger, s *capture.Session, ctl *gaze.Controller, p *gaze.Pipeline) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		log.WithError(err).Warn("stop camera session")
	}
	if err := s.Close(); err != nil {
		log.WithError(err).Warn("close camera session")
	}

	select {
	case <-ctl.Done():
	case <-ctx.Done():
		log.Warn("controller did not stop in time")
	}

	stats := p.Stats()
	log.WithFields(logrus.Fields{
		"frames":   stats.Processed,
		"no_face":  stats.NoFace,
		"failures": stats.Failures,
		"dropped":  s.Dropped(),
	}).Info("stopped")
}

func detectorConfig(d config.Detector) vision.Config {
	c := vision.DefaultConfig()
	c.ModelPath = d.ModelPath
	c.EyeCascadePath = d.EyeCascadePath
	c.ScoreThreshold = d.ScoreThreshold
	return c
}

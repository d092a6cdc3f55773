package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/intothevoid/gazeremote/pkg/capture"
)

// Mode selects which screen the app shows.
type Mode string

const (
	ModePointer     Mode = "pointer"
	ModeDiagnostics Mode = "diagnostics"
)

// ParseMode accepts "pointer" or "diagnostics".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePointer, ModeDiagnostics:
		return m, nil
	case "":
		return ModePointer, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModePointer, ModeDiagnostics)
}

// Config is everything the app reads from the environment.
type Config struct {
	AppEnv   string
	LogLevel string
	Mode     Mode

	Camera            capture.Config
	DeviceOrientation capture.DeviceOrientation
	Detector          Detector

	WindowWidth  int
	WindowHeight int
	PointerSize  int
	TopInset     int
	SystemCursor bool
}

// Detector points at the face and eye models.
type Detector struct {
	ModelPath      string
	EyeCascadePath string
	ScoreThreshold float64
}

// Load reads an optional .env file and then the environment. Missing
// variables take their defaults; malformed ones are reported together.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	r := &reader{}
	cfg := &Config{
		AppEnv:   r.str("APP_ENV", "development"),
		LogLevel: r.str("LOG_LEVEL", "info"),

		Camera: capture.DefaultConfig(),

		WindowWidth:  r.int("WINDOW_WIDTH", 1280),
		WindowHeight: r.int("WINDOW_HEIGHT", 800),
		PointerSize:  r.int("POINTER_SIZE", 50),
		TopInset:     r.int("TOP_INSET", 0),
		SystemCursor: r.bool("SYSTEM_CURSOR", false),
	}

	mode, err := ParseMode(r.str("GAZE_MODE", string(ModePointer)))
	r.add(err)
	cfg.Mode = mode

	cfg.Camera.DeviceID = r.int("CAMERA_DEVICE_ID", 0)
	cfg.Camera.FrameRate = r.int("CAMERA_FPS", cfg.Camera.FrameRate)
	preset, err := capture.ParsePreset(r.str("CAMERA_PRESET", "medium"))
	r.add(err)
	cfg.Camera.Preset = preset

	orientation, err := capture.ParseDeviceOrientation(r.str("CAMERA_ORIENTATION", "unknown"))
	r.add(err)
	cfg.DeviceOrientation = orientation

	cfg.Detector = Detector{
		ModelPath:      r.str("FACE_MODEL_PATH", "models/face_detection_yunet_2023mar.onnx"),
		EyeCascadePath: r.str("EYE_CASCADE_PATH", "models/haarcascade_eye_tree_eyeglasses.xml"),
		ScoreThreshold: r.float("FACE_SCORE_THRESHOLD", 0.6),
	}

	if err := cfg.Validate(); err != nil {
		r.add(err)
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.WindowWidth, c.WindowHeight))
	}
	if c.PointerSize <= 0 {
		errs = append(errs, fmt.Errorf("POINTER_SIZE %d must be positive", c.PointerSize))
	}
	if c.TopInset < 0 {
		errs = append(errs, fmt.Errorf("TOP_INSET %d must not be negative", c.TopInset))
	}
	if c.Detector.ScoreThreshold < 0 || c.Detector.ScoreThreshold > 1 {
		errs = append(errs, fmt.Errorf("FACE_SCORE_THRESHOLD %.2f must be within [0,1]", c.Detector.ScoreThreshold))
	}
	if err := c.Camera.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsTest reports whether the app runs under tests.
func (c *Config) IsTest() bool { return c.AppEnv == "test" }

// reader collects parse errors so Load can report all of them at once.
type reader struct {
	errs []error
}

func (r *reader) add(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.add(fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.add(fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (r *reader) bool(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.add(fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

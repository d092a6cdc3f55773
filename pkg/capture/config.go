package capture

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
)

// Position is which camera to use.
type Position int

const (
	PositionFront Position = iota
	PositionBack
)

func (p Position) String() string {
	if p == PositionBack {
		return "back"
	}
	return "front"
}

// Preset is a named capture resolution.
type Preset int

const (
	PresetLow Preset = iota
	PresetMedium
	PresetHigh
)

// Dimensions returns the frame size the preset asks the device for.
func (p Preset) Dimensions() (width, height int) {
	switch p {
	case PresetLow:
		return 320, 240
	case PresetHigh:
		return 1280, 720
	default:
		return 640, 480
	}
}

func (p Preset) String() string {
	switch p {
	case PresetLow:
		return "low"
	case PresetHigh:
		return "high"
	default:
		return "medium"
	}
}

// ParsePreset reads "low", "medium" or "high".
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PresetLow, nil
	case "", "medium":
		return PresetMedium, nil
	case "high":
		return PresetHigh, nil
	}
	return PresetMedium, fmt.Errorf("unknown capture preset %q", s)
}

// PixelFormat is the layout of the delivered frame pixels.
type PixelFormat int

const (
	PixelFormatBGR24 PixelFormat = iota
	PixelFormatBGRA32
)

// Config describes how the capture device is set up.
type Config struct {
	DeviceID    int
	Position    Position
	Preset      Preset
	PixelFormat PixelFormat
	FrameRate   int
}

// DefaultConfig is the front camera at medium resolution, 32-bit BGRA, 30 fps.
func DefaultConfig() Config {
	return Config{
		Position:    PositionFront,
		Preset:      PresetMedium,
		PixelFormat: PixelFormatBGRA32,
		FrameRate:   30,
	}
}

// FrameInterval is the pacing between reads.
func (c Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Validate checks the config before it reaches a device.
func (c Config) Validate() error {
	if c.DeviceID < 0 {
		return fmt.Errorf("device id %d is negative", c.DeviceID)
	}
	if c.FrameRate < 0 {
		return fmt.Errorf("frame rate %d is negative", c.FrameRate)
	}
	if c.Position != PositionFront && c.Position != PositionBack {
		return fmt.Errorf("unknown camera position %d", c.Position)
	}
	return nil
}

// Frame is one captured image.
type Frame struct {
	Seq         uint64
	CapturedAt  time.Time
	Orientation ImageOrientation
	Image       image.Image
}

// Device is a camera the session drives. Open, Read and Close are only ever
// called from the session's own goroutines, never concurrently.
type Device interface {
	Open(cfg Config) error
	Read() (image.Image, error)
	Close() error
}

var (
	// ErrSessionClosed is returned by calls on a closed session.
	ErrSessionClosed = errors.New("capture: session closed")
	// ErrNotConfigured is returned by Start before a successful Configure.
	ErrNotConfigured = errors.New("capture: session not configured")
)

// ConfigError is a failure to set up or start the capture session.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

package camera

import (
	"fmt"
	"image"
	"sync"

	"github.com/intothevoid/gazeremote/pkg/capture"
	"gocv.io/x/gocv"
)

// VideoStream manages the webcam connection. It implements capture.Device.
type VideoStream struct {
	mu     sync.Mutex
	cfg    capture.Config
	webcam *gocv.VideoCapture
	frame  gocv.Mat // reused between reads
	pixels gocv.Mat // BGRA conversion target
}

// NewVideoStream returns an unopened stream; the capture session opens it.
func NewVideoStream() *VideoStream {
	return &VideoStream{}
}

// Open connects to the configured webcam and asks for the preset resolution.
func (vs *VideoStream) Open(cfg capture.Config) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.webcam != nil {
		vs.release()
	}

	cam, err := gocv.VideoCaptureDevice(cfg.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to open device %d: %w", cfg.DeviceID, err)
	}
	if !cam.IsOpened() {
		cam.Close()
		return fmt.Errorf("failed to get capture device %d for camera position %s", cfg.DeviceID, cfg.Position)
	}

	w, h := cfg.Preset.Dimensions()
	cam.Set(gocv.VideoCaptureFrameWidth, float64(w))
	cam.Set(gocv.VideoCaptureFrameHeight, float64(h))
	if cfg.FrameRate > 0 {
		cam.Set(gocv.VideoCaptureFPS, float64(cfg.FrameRate))
	}

	vs.cfg = cfg
	vs.webcam = cam
	vs.frame = gocv.NewMat()
	vs.pixels = gocv.NewMat()
	return nil
}

// Read grabs the next frame as a standard Go image so it can go straight
// to a fyne canvas or to the detector.
func (vs *VideoStream) Read() (image.Image, error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.webcam == nil {
		return nil, fmt.Errorf("camera not open")
	}
	if !vs.webcam.Read(&vs.frame) {
		return nil, fmt.Errorf("cannot read frame")
	}
	if vs.frame.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	src := vs.frame
	if vs.cfg.PixelFormat == capture.PixelFormatBGRA32 && vs.frame.Channels() == 3 {
		gocv.CvtColor(vs.frame, &vs.pixels, gocv.ColorBGRToBGRA)
		src = vs.pixels
	}

	// GoCV Mat -> Go Image conversion; the result owns its own pixels
	img, err := src.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

// Close releases the webcam.
func (vs *VideoStream) Close() error {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.release()
	return nil
}

func (vs *VideoStream) release() {
	if vs.webcam == nil {
		return
	}
	vs.webcam.Close()
	vs.frame.Close()
	vs.pixels.Close()
	vs.webcam = nil
}

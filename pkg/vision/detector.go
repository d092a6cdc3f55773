package vision

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/intothevoid/gazeremote/pkg/capture"
	"github.com/intothevoid/gazeremote/pkg/gaze"
	"gocv.io/x/gocv"
)

// Eye-open probabilities reported for the three cascade outcomes.
const (
	eyeOpenConfident = 0.95
	eyeOpenWeak      = 0.6
	eyeClosed        = 0.05
)

// Config holds detector configuration
type Config struct {
	ModelPath      string  // YuNet ONNX model
	EyeCascadePath string  // Haar cascade for open eyes
	ScoreThreshold float64 // minimum face score
	NMSThreshold   float64
	TopK           int
}

// DefaultConfig returns the fast, classification-only setup.
func DefaultConfig() Config {
	return Config{
		ModelPath:      "models/face_detection_yunet_2023mar.onnx",
		EyeCascadePath: "models/haarcascade_eye_tree_eyeglasses.xml",
		ScoreThreshold: 0.6,
		NMSThreshold:   0.3,
		TopK:           50,
	}
}

// FaceDetector finds faces with OpenCV's YuNet and classifies each eye as
// open or closed with a Haar cascade. Head angles come from EstimatePose.
type FaceDetector struct {
	mu    sync.Mutex // protects inference
	faces gocv.FaceDetectorYN
	eyes  gocv.CascadeClassifier
	cfg   Config
	size  image.Point
}

// eyeCascadeFallbacks are the usual install locations of the OpenCV cascades.
var eyeCascadeFallbacks = []string{
	"/usr/local/share/opencv4/haarcascades",
	"/usr/share/opencv4/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
}

// NewFaceDetector loads both models. Close releases them.
func NewFaceDetector(cfg Config) (*FaceDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("face model not found: %w", err)
	}

	eyes := gocv.NewCascadeClassifier()
	if !loadCascade(&eyes, cfg.EyeCascadePath) {
		eyes.Close()
		return nil, fmt.Errorf("failed to load eye cascade classifier from %s or alternative paths", cfg.EyeCascadePath)
	}

	size := image.Pt(320, 320)
	faces := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // no config file for ONNX
		size,
		float32(cfg.ScoreThreshold),
		float32(cfg.NMSThreshold),
		cfg.TopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &FaceDetector{faces: faces, eyes: eyes, cfg: cfg, size: size}, nil
}

func loadCascade(c *gocv.CascadeClassifier, path string) bool {
	if c.Load(path) {
		return true
	}
	name := filepath.Base(path)
	for _, dir := range eyeCascadeFallbacks {
		if c.Load(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

// Detect implements gaze.Detector. Faces are returned largest first.
func (d *FaceDetector) Detect(frame capture.Frame) ([]gaze.FaceObservation, error) {
	if frame.Image == nil {
		return nil, fmt.Errorf("frame %d has no image", frame.Seq)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer raw.Close()
	if raw.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	img := Upright(raw, frame.Orientation)
	defer img.Close()

	grey, err := Preprocess(img)
	defer grey.Close()
	if err != nil {
		return nil, err
	}

	if sz := image.Pt(img.Cols(), img.Rows()); sz != d.size {
		d.faces.SetInputSize(sz)
		d.size = sz
	}

	out := gocv.NewMat()
	defer out.Close()
	d.faces.Detect(img, &out)

	type found struct {
		area float64
		obs  gaze.FaceObservation
	}
	var all []found
	bounds := image.Rect(0, 0, grey.Cols(), grey.Rows())

	for r := 0; r < out.Rows(); r++ {
		// YuNet rows: x, y, w, h, five (x, y) landmarks, score
		w := float64(out.GetFloatAt(r, 2))
		h := float64(out.GetFloatAt(r, 3))
		lm := Landmarks{
			RightEye:   Point{float64(out.GetFloatAt(r, 4)), float64(out.GetFloatAt(r, 5))},
			LeftEye:    Point{float64(out.GetFloatAt(r, 6)), float64(out.GetFloatAt(r, 7))},
			Nose:       Point{float64(out.GetFloatAt(r, 8)), float64(out.GetFloatAt(r, 9))},
			RightMouth: Point{float64(out.GetFloatAt(r, 10)), float64(out.GetFloatAt(r, 11))},
			LeftMouth:  Point{float64(out.GetFloatAt(r, 12)), float64(out.GetFloatAt(r, 13))},
		}

		pose := EstimatePose(lm)
		iod := Distance(lm.RightEye, lm.LeftEye)
		all = append(all, found{
			area: w * h,
			obs: gaze.FaceObservation{
				HeadAngleX:              pose.X,
				HeadAngleY:              pose.Y,
				HeadAngleZ:              pose.Z,
				RightEyeOpenProbability: d.eyeOpen(grey, EyeRegion(lm.RightEye, iod, bounds)),
				LeftEyeOpenProbability:  d.eyeOpen(grey, EyeRegion(lm.LeftEye, iod, bounds)),
			},
		})
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].area > all[j].area })
	faces := make([]gaze.FaceObservation, len(all))
	for i, f := range all {
		faces[i] = f.obs
	}
	return faces, nil
}

// eyeOpen grades an eye region by how readily the open-eye cascade fires.
func (d *FaceDetector) eyeOpen(grey gocv.Mat, roi image.Rectangle) float64 {
	if roi.Empty() {
		return eyeClosed
	}
	region := grey.Region(roi)
	defer region.Close()

	minSize := image.Pt(roi.Dx()/4, roi.Dy()/4)
	if len(d.eyes.DetectMultiScaleWithParams(region, 1.1, 3, 0, minSize, image.Pt(0, 0))) > 0 {
		return eyeOpenConfident
	}
	if len(d.eyes.DetectMultiScaleWithParams(region, 1.05, 1, 0, minSize, image.Pt(0, 0))) > 0 {
		return eyeOpenWeak
	}
	return eyeClosed
}

// Close releases the models.
func (d *FaceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faces.Close()
	d.eyes.Close()
	return nil
}

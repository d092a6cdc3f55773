package vision

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// Preprocess converts an upright colour frame into the equalised greyscale
// the eye cascade runs on. The caller closes the result.
func Preprocess(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), errors.New("preprocess: input is empty")
	}

	// convert to greyscale
	// 1-channel input is already grey
	grey := gocv.NewMat()
	switch input.Channels() {
	case 3:
		gocv.CvtColor(input, &grey, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(input, &grey, gocv.ColorBGRAToGray)
	default:
		input.CopyTo(&grey)
	}

	if grey.Empty() {
		return grey, errors.New("preprocess: grey conversion produced nothing")
	}

	// 3x3 gaussian blur against sensor noise
	gocv.GaussianBlur(grey, &grey, image.Pt(3, 3), 0, 0, gocv.BorderDefault)

	// equalise lighting
	gocv.EqualizeHist(grey, &grey)

	return grey, nil
}

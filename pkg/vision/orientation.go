package vision

import (
	"github.com/intothevoid/gazeremote/pkg/capture"
	"gocv.io/x/gocv"
)

// Upright turns a captured frame upright according to its orientation tag,
// so the detector always sees a face the right way up. The returned Mat
// must be closed by the caller.
func Upright(src gocv.Mat, o capture.ImageOrientation) gocv.Mat {
	dst := gocv.NewMat()
	switch o {
	case capture.ImageUp:
		src.CopyTo(&dst)
	case capture.ImageDown:
		gocv.Flip(src, &dst, -1)
	case capture.ImageUpMirrored:
		gocv.Flip(src, &dst, 1)
	case capture.ImageDownMirrored:
		gocv.Flip(src, &dst, 0)
	case capture.ImageLeft:
		gocv.Rotate(src, &dst, gocv.Rotate90Clockwise)
	case capture.ImageRight:
		gocv.Rotate(src, &dst, gocv.Rotate90CounterClockwise)
	case capture.ImageLeftMirrored, capture.ImageRightMirrored:
		rotated := gocv.NewMat()
		defer rotated.Close()
		if o == capture.ImageLeftMirrored {
			gocv.Rotate(src, &rotated, gocv.Rotate90Clockwise)
		} else {
			gocv.Rotate(src, &rotated, gocv.Rotate90CounterClockwise)
		}
		gocv.Flip(rotated, &dst, 1)
	default:
		src.CopyTo(&dst)
	}
	return dst
}

package vision

import (
	"image"
	"math"
)

// Point is a sub-pixel image coordinate.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance between two points
func Distance(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between p1 and p2
func Midpoint(p1, p2 Point) Point {
	return Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
}

// Landmarks are the five YuNet face keypoints, in image pixels. Right and
// left are the subject's, so the right eye is on the image's left side.
type Landmarks struct {
	RightEye   Point
	LeftEye    Point
	Nose       Point
	RightMouth Point
	LeftMouth  Point
}

// Pose is a head orientation in degrees. X is pitch (positive looking up),
// Y is yaw (positive turning to the subject's left), Z is roll.
type Pose struct {
	X, Y, Z float64
}

const (
	// noseDepthRatio is how far the nose tip sits in front of the eye plane,
	// relative to the distance between the eyes.
	noseDepthRatio = 0.6

	// neutralNoseHeight is where the nose tip falls between the eye line (0)
	// and the mouth line (1) on a face looking straight at the camera.
	neutralNoseHeight = 0.55
)

// EstimatePose derives head angles from the five landmarks. It is a weak
// perspective approximation, good to a few degrees near frontal faces.
func EstimatePose(l Landmarks) Pose {
	eyes := Midpoint(l.RightEye, l.LeftEye)
	mouth := Midpoint(l.RightMouth, l.LeftMouth)
	interocular := Distance(l.RightEye, l.LeftEye)
	if interocular == 0 {
		return Pose{}
	}

	// roll: tilt of the line through both eyes
	roll := degrees(math.Atan2(l.LeftEye.Y-l.RightEye.Y, l.LeftEye.X-l.RightEye.X))

	// undo the roll so yaw and pitch are measured along the face axes
	sin, cos := math.Sincos(-radians(roll))
	rotate := func(p Point) Point {
		dx, dy := p.X-eyes.X, p.Y-eyes.Y
		return Point{X: dx*cos - dy*sin, Y: dx*sin + dy*cos}
	}
	nose := rotate(l.Nose)
	mouthAxis := rotate(mouth)

	// yaw: sideways shift of the nose tip against the eye midpoint
	yaw := degrees(math.Asin(clamp(nose.X/(noseDepthRatio*interocular), -1, 1)))

	// pitch: nose tip rising towards the eye line means the head tilts up
	var pitch float64
	if mouthAxis.Y > 0 {
		height := nose.Y / mouthAxis.Y
		pitch = degrees(math.Asin(clamp((neutralNoseHeight-height)*2, -1, 1)))
	}

	return Pose{X: pitch, Y: yaw, Z: roll}
}

// EyeRegion is the square around an eye centre that is searched for an open
// eye, sized from the distance between the eyes and clipped to bounds.
func EyeRegion(eye Point, interocular float64, bounds image.Rectangle) image.Rectangle {
	half := int(math.Round(interocular * 0.35))
	if half < 4 {
		half = 4
	}
	cx, cy := int(math.Round(eye.X)), int(math.Round(eye.Y))
	return image.Rect(cx-half, cy-half, cx+half, cy+half).Intersect(bounds)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func radians(deg float64) float64 { return deg * math.Pi / 180 }

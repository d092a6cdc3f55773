package capture

import (
	"fmt"
	"strings"
)

// DeviceOrientation is the physical orientation of the device holding the camera.
type DeviceOrientation int

const (
	DeviceUnknown DeviceOrientation = iota
	DevicePortrait
	DevicePortraitUpsideDown
	DeviceLandscapeLeft
	DeviceLandscapeRight
	DeviceFaceUp
	DeviceFaceDown
)

var deviceOrientationNames = map[DeviceOrientation]string{
	DeviceUnknown:            "unknown",
	DevicePortrait:           "portrait",
	DevicePortraitUpsideDown: "portrait-upside-down",
	DeviceLandscapeLeft:      "landscape-left",
	DeviceLandscapeRight:     "landscape-right",
	DeviceFaceUp:             "face-up",
	DeviceFaceDown:           "face-down",
}

func (o DeviceOrientation) String() string {
	if n, ok := deviceOrientationNames[o]; ok {
		return n
	}
	return "unknown"
}

// ParseDeviceOrientation reads names like "landscape-left" (case insensitive,
// underscores allowed).
func ParseDeviceOrientation(s string) (DeviceOrientation, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if s == "" {
		return DeviceUnknown, nil
	}
	for o, n := range deviceOrientationNames {
		if n == s {
			return o, nil
		}
	}
	return DeviceUnknown, fmt.Errorf("unknown device orientation %q", s)
}

// InterfaceOrientation is the orientation the window is laid out in.
type InterfaceOrientation int

const (
	InterfaceUnknown InterfaceOrientation = iota
	InterfacePortrait
	InterfacePortraitUpsideDown
	InterfaceLandscapeLeft
	InterfaceLandscapeRight
)

// ImageOrientation tells the detector how the captured pixels are rotated
// and mirrored relative to upright.
type ImageOrientation int

const (
	ImageUp ImageOrientation = iota
	ImageDown
	ImageLeft
	ImageRight
	ImageUpMirrored
	ImageDownMirrored
	ImageLeftMirrored
	ImageRightMirrored
)

func (o ImageOrientation) String() string {
	switch o {
	case ImageUp:
		return "up"
	case ImageDown:
		return "down"
	case ImageLeft:
		return "left"
	case ImageRight:
		return "right"
	case ImageUpMirrored:
		return "up-mirrored"
	case ImageDownMirrored:
		return "down-mirrored"
	case ImageLeftMirrored:
		return "left-mirrored"
	case ImageRightMirrored:
		return "right-mirrored"
	}
	return "unknown"
}

// FallbackOrientation is used for any device orientation without an entry
// in the resolution table.
const FallbackOrientation = ImageDownMirrored

// deviceFromInterface maps the window orientation to the device orientation
// it implies. Landscape is swapped: a window laid out landscape-left means
// the device is held landscape-right.
func deviceFromInterface(o InterfaceOrientation) DeviceOrientation {
	switch o {
	case InterfaceLandscapeLeft:
		return DeviceLandscapeRight
	case InterfaceLandscapeRight:
		return DeviceLandscapeLeft
	default:
		return DeviceUnknown
	}
}

// ResolveImageOrientation picks the image orientation for a front camera.
// Flat or unknown device orientations defer to the interface orientation;
// anything still unresolved after that is treated as upright, and
// unrecognised orientations fall back to FallbackOrientation rather than
// failing.
func ResolveImageOrientation(device DeviceOrientation, ui InterfaceOrientation) ImageOrientation {
	if device == DeviceFaceUp || device == DeviceFaceDown || device == DeviceUnknown {
		device = deviceFromInterface(ui)
	}
	switch device {
	case DeviceLandscapeLeft:
		return ImageDownMirrored
	case DeviceLandscapeRight:
		return ImageUpMirrored
	case DeviceFaceUp, DeviceFaceDown, DeviceUnknown:
		return ImageUp
	default:
		return FallbackOrientation
	}
}

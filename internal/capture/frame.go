package capture

import "gocv.io/x/gocv"

// Mirror flips frame horizontally in place, turning the camera image into a
// selfie view so that moving right moves the body right on screen.
func Mirror(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.Flip(*frame, frame, 1)
}

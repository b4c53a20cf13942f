// Package cursor turns per-frame body landmarks into smoothed, bounded
// horizontal pointer positions.
package cursor

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/posecursor/internal/detector"
)

// VisibilityThreshold is the visibility a landmark must exceed to count
// towards the body position.
const VisibilityThreshold = 0.1

// Observation is the body position signal for one frame.
// BodyCenterX is only meaningful when Detected is true.
type Observation struct {
	Detected    bool
	BodyCenterX float64 // frame-pixel space, in [0, FrameWidth]
	FrameWidth  int     // width of the frame the landmarks were measured in
}

// Extract reduces a landmark set to a single horizontal body position.
//
// Landmarks with visibility at or below VisibilityThreshold are ignored. If
// none remain, or frameWidth is not positive, the observation is not detected.
// Otherwise BodyCenterX is the mean X of the remaining landmarks.
func Extract(landmarks []detector.Landmark, frameWidth int) Observation {
	obs := Observation{FrameWidth: frameWidth}
	if frameWidth <= 0 {
		return obs
	}

	xs := make([]float64, 0, len(landmarks))
	for _, lm := range landmarks {
		if lm.Visibility > VisibilityThreshold {
			xs = append(xs, lm.X)
		}
	}
	if len(xs) == 0 {
		return obs
	}

	obs.Detected = true
	obs.BodyCenterX = stat.Mean(xs, nil)
	return obs
}

// ExtractPose is Extract for a detector result; a nil pose is not detected.
func ExtractPose(pose *detector.Pose, frameWidth int) Observation {
	if pose == nil {
		return Observation{FrameWidth: frameWidth}
	}
	return Extract(pose.Landmarks[:], frameWidth)
}

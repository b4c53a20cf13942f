package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for body pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected pose.
	// Returns a nil pose if no body is found.
	Detect(frame *gocv.Mat) (*Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// ModelComplexity selects the MediaPipe pose model (0 = lite, 1 = full, 2 = heavy).
	ModelComplexity int

	// MinDetectionConf is the minimum detection confidence threshold (0.0-1.0).
	MinDetectionConf float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// StartTimeout bounds how long the inference service may take to load
	// its model and report ready.
	StartTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
// The lite model keeps inference fast enough for per-frame cursor updates.
func DefaultConfig() Config {
	return Config{
		ModelComplexity:  0,
		MinDetectionConf: 0.5,
		MinTrackingConf:  0.5,
		StartTimeout:     30 * time.Second,
	}
}

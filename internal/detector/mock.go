package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	pose   *Pose
	queue  []*Pose
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose that will be returned by Detect once the queue is drained.
// A nil pose reports "no body found".
func (m *MockDetector) SetPose(pose *Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = pose
}

// QueuePoses appends poses that Detect returns one per call, in order,
// before falling back to the pose set with SetPose.
func (m *MockDetector) QueuePoses(poses ...*Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, poses...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next queued pose, the configured pose, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.pose, nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// StandingPose returns a preset Pose of a person standing upright with the
// body centered on centerX (frame-pixel space). Every landmark is well visible
// and placed symmetrically so the mean X of all landmarks equals centerX.
func StandingPose(centerX float64) *Pose {
	pose := &Pose{}

	// Offsets from the body center, mirrored left/right.
	type pair struct {
		left, right int
		dx, y       float64
	}
	pairs := []pair{
		{LeftEyeInner, RightEyeInner, 6, 96},
		{LeftEye, RightEye, 10, 95},
		{LeftEyeOuter, RightEyeOuter, 14, 95},
		{LeftEar, RightEar, 22, 100},
		{MouthLeft, MouthRight, 8, 120},
		{LeftShoulder, RightShoulder, 60, 170},
		{LeftElbow, RightElbow, 75, 250},
		{LeftWrist, RightWrist, 80, 320},
		{LeftPinky, RightPinky, 84, 335},
		{LeftIndex, RightIndex, 82, 338},
		{LeftThumb, RightThumb, 76, 330},
		{LeftHip, RightHip, 40, 330},
		{LeftKnee, RightKnee, 42, 400},
		{LeftAnkle, RightAnkle, 44, 460},
		{LeftHeel, RightHeel, 46, 468},
		{LeftFootIndex, RightFootIndex, 52, 472},
	}

	pose.Landmarks[Nose] = Landmark{X: centerX, Y: 105, Visibility: 0.99}
	for _, p := range pairs {
		// In a mirrored selfie view the subject's left side appears on the right.
		pose.Landmarks[p.left] = Landmark{X: centerX + p.dx, Y: p.y, Visibility: 0.95}
		pose.Landmarks[p.right] = Landmark{X: centerX - p.dx, Y: p.y, Visibility: 0.95}
	}

	return pose
}

// OccludedPose returns a preset Pose in which a body was found but every
// landmark has visibility at or below the extraction threshold.
func OccludedPose() *Pose {
	pose := StandingPose(320)
	for i := range pose.Landmarks {
		pose.Landmarks[i].Visibility = 0.05
	}
	pose.Landmarks[Nose].Visibility = 0.1
	return pose
}

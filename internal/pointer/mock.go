package pointer

import (
	"sync"
)

// Point is a recorded pointer position.
type Point struct {
	X, Y int
}

// MockDevice is a test implementation of the Device interface.
// It records every successful move.
type MockDevice struct {
	mu     sync.Mutex
	pos    Point
	width  int
	height int
	moves  []Point
	fail   bool
}

// NewMockDevice creates a MockDevice with the pointer at (x, y) on a
// width x height screen.
func NewMockDevice(x, y, width, height int) *MockDevice {
	return &MockDevice{
		pos:    Point{X: x, Y: y},
		width:  width,
		height: height,
	}
}

// SetFail makes subsequent moves fail with ErrActuationFailed.
func (m *MockDevice) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Position returns the last position the pointer was moved to.
func (m *MockDevice) Position() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos.X, m.pos.Y
}

// ScreenSize returns the configured screen size.
func (m *MockDevice) ScreenSize() (int, int) {
	return m.width, m.height
}

// Move records the move, or fails if SetFail(true) was called.
func (m *MockDevice) Move(x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return actuationError("mock device rejected (%d, %d)", x, y)
	}
	m.pos = Point{X: x, Y: y}
	m.moves = append(m.moves, m.pos)
	return nil
}

// Moves returns a copy of the recorded moves.
func (m *MockDevice) Moves() []Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Point(nil), m.moves...)
}

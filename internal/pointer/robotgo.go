package pointer

import (
	"github.com/go-vgo/robotgo"
)

// Robotgo drives the real mouse pointer through robotgo.
//
// Targets are not checked against the main screen size: the pointer may live
// on a secondary display, or the configured screen width may span several.
// Moves are instead verified by reading the location back, which also catches
// macOS silently ignoring synthetic moves without accessibility permission.
type Robotgo struct {
	// Tolerance is the read-back distance in pixels still accepted as a
	// successful move.
	Tolerance int

	move       func(x, y int)
	location   func() (int, int)
	screenSize func() (int, int)
}

// NewRobotgo creates a pointer device backed by the OS pointer.
func NewRobotgo() *Robotgo {
	return &Robotgo{
		Tolerance:  1,
		move:       func(x, y int) { robotgo.Move(x, y) },
		location:   robotgo.Location,
		screenSize: robotgo.GetScreenSize,
	}
}

// Position returns the current pointer position.
func (r *Robotgo) Position() (int, int) {
	return r.location()
}

// ScreenSize returns the main screen size.
func (r *Robotgo) ScreenSize() (int, int) {
	return r.screenSize()
}

// Move places the pointer at (x, y) and verifies that it arrived.
func (r *Robotgo) Move(x, y int) error {
	r.move(x, y)

	gotX, gotY := r.location()
	if abs(gotX-x) > r.Tolerance || abs(gotY-y) > r.Tolerance {
		return actuationError("pointer at (%d, %d) after move to (%d, %d)", gotX, gotY, x, y)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

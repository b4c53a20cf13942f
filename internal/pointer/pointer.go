// Package pointer moves the system mouse pointer.
package pointer

import (
	"errors"
	"fmt"
)

// ErrActuationFailed is returned when the pointer could not be moved to the
// requested position.
var ErrActuationFailed = errors.New("pointer actuation failed")

// Device defines the interface for pointer device implementations.
type Device interface {
	// Position returns the current pointer position in screen pixels.
	Position() (x, y int)

	// Move places the pointer at (x, y). A returned error wraps
	// ErrActuationFailed.
	Move(x, y int) error

	// ScreenSize returns the size of the main screen in pixels.
	ScreenSize() (width, height int)
}

// actuationError wraps a reason as an ErrActuationFailed error.
func actuationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrActuationFailed, fmt.Sprintf(format, args...))
}

package overlay

import "gocv.io/x/gocv"

// quitKey is the key that ends the session from the window.
const quitKey = 'q'

// Display shows frames and reports when the user asks to quit.
type Display interface {
	// Show displays frame and returns true if the quit key was pressed.
	Show(frame *gocv.Mat) (quit bool)
	Close() error
}

// Window is a Display backed by a HighGUI window. It must be used from the
// main OS thread.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard for one millisecond.
func (w *Window) Show(frame *gocv.Mat) bool {
	if frame != nil && !frame.Empty() {
		w.win.IMShow(*frame)
	}
	return w.win.WaitKey(1)&0xff == quitKey
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// MockDisplay is a Display for tests. It counts shown frames and reports quit
// once QuitAfter frames have been shown (zero never quits).
type MockDisplay struct {
	QuitAfter int
	shown     int
	closed    bool
}

func (m *MockDisplay) Show(frame *gocv.Mat) bool {
	m.shown++
	return m.QuitAfter > 0 && m.shown >= m.QuitAfter
}

func (m *MockDisplay) Close() error {
	m.closed = true
	return nil
}

// Shown returns how many frames were shown.
func (m *MockDisplay) Shown() int { return m.shown }

// Closed reports whether Close was called.
func (m *MockDisplay) Closed() bool { return m.closed }

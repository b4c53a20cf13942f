// Package app runs a posecursor tracking session: it wires the camera, pose
// detector, cursor controller and pointer device into one synchronous pipeline.
package app

import (
	"errors"
	"sync"

	"github.com/ayusman/posecursor/internal/capture"
	"github.com/ayusman/posecursor/internal/config"
	"github.com/ayusman/posecursor/internal/detector"
	"github.com/ayusman/posecursor/internal/overlay"
	"github.com/ayusman/posecursor/internal/pointer"
	"github.com/ayusman/posecursor/internal/server"
	"github.com/ayusman/posecursor/internal/store"
)

// Reasons a session ended, as recorded in the session history.
const (
	EndInterrupted = "interrupted"
	EndQuit        = "quit"
	EndCamera      = "camera"
)

// ErrNoScreen is returned when neither the pointer device nor the
// configuration provide a usable screen width.
var ErrNoScreen = errors.New("screen width unknown")

// Config holds the collaborators and options for one session.
// Camera, Detector and Pointer are required; the rest are optional.
type Config struct {
	Session  config.Config
	Camera   capture.Camera
	Detector detector.Detector
	Pointer  pointer.Device

	// Store records session history when set.
	Store *store.Store

	// Monitor receives a snapshot and the annotated frame after every
	// processed frame when set.
	Monitor *server.Monitor

	// Display shows annotated frames and reports the quit key when set.
	Display overlay.Display

	// OnCursor is called with the cursor X after every processed frame.
	OnCursor func(x int)
}

// Stats counts what happened during a session.
type Stats struct {
	FramesRead        int
	FramesProcessed   int
	FramesDetected    int
	ActuationFailures int
	EndReason         string
}

// App is a single tracking session.
type App struct {
	config  Config
	enabled bool
	stats   Stats
	mu      sync.RWMutex
}

// New creates a new App with tracking enabled.
func New(config Config) *App {
	return &App{
		config:  config,
		enabled: true,
	}
}

// SetEnabled pauses or resumes tracking. While paused, frames are still read
// and displayed but the cursor is neither advanced nor moved.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Stats returns a copy of the session counters.
func (a *App) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

func (a *App) updateStats(fn func(*Stats)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.stats)
}

package app

import (
	"context"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecursor/internal/capture"
	"github.com/ayusman/posecursor/internal/cursor"
	"github.com/ayusman/posecursor/internal/detector"
	"github.com/ayusman/posecursor/internal/overlay"
	"github.com/ayusman/posecursor/internal/server"
	"github.com/ayusman/posecursor/internal/store"
)

// Run opens the camera and processes frames until ctx is cancelled, the quit
// key is pressed or the camera stops delivering frames. The camera, detector
// and display are closed on every exit path. Only startup failures are
// returned as errors; the end of a running session is reported in Stats.
//
// Pipeline per sampled frame:
// 1. Mirror the frame (optional)
// 2. Detect the body pose
// 3. Reduce the landmarks to a body center X
// 4. Compute the next cursor X
// 5. If a body was found, move the pointer and commit the new X only if
//    the move succeeded
// 6. Annotate, display and publish
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}

	// The pointer position is read exactly once: it seeds the cursor X and
	// fixes Y for the whole session.
	startX, fixedY := a.config.Pointer.Position()
	screenWidth, _ := a.config.Pointer.ScreenSize()
	settings := a.config.Session.Controller(screenWidth)
	if settings.ScreenWidth <= 0 {
		return ErrNoScreen
	}
	ctrl := cursor.NewController(settings, float64(startX))

	session := a.startSession()
	log.Printf("Tracking started: screen width %d, cursor at (%d, %d), gain %.2f, %s edges",
		settings.ScreenWidth, startX, fixedY, ctrl.Gain(), settings.EdgeMode)

	reason := a.loop(ctx, ctrl, fixedY, session)

	a.updateStats(func(s *Stats) { s.EndReason = reason })
	a.finishSession(session)
	return nil
}

// loop runs the frame loop and returns why it ended.
func (a *App) loop(ctx context.Context, ctrl *cursor.Controller, fixedY int, session *store.Session) string {
	skip := a.config.Session.FrameSkip
	if skip < 1 {
		skip = 1
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return EndInterrupted
		default:
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			log.Printf("Failed to read frame: %v", err)
			return EndCamera
		}

		count++
		a.updateStats(func(s *Stats) { s.FramesRead++ })
		if count%skip != 0 {
			frame.Close()
			continue
		}

		quit := a.processFrame(frame, ctrl, fixedY, session)
		frame.Close()
		if quit {
			return EndQuit
		}
	}
}

// processFrame runs one sampled frame through the pipeline and reports
// whether the quit key was pressed.
func (a *App) processFrame(frame *gocv.Mat, ctrl *cursor.Controller, fixedY int, session *store.Session) bool {
	if a.config.Session.Mirror {
		capture.Mirror(frame)
	}

	enabled := a.IsEnabled()
	var obs cursor.Observation
	pose := a.detect(frame, enabled)

	if enabled {
		obs = cursor.ExtractPose(pose, frame.Cols())
	}

	// Without a body the cursor holds and the pointer is left alone, so the
	// user can move it by hand.
	if obs.Detected {
		x := ctrl.Next(obs)

		if err := a.config.Pointer.Move(int(x), fixedY); err != nil {
			log.Printf("Failed to move pointer: %v", err)
			a.updateStats(func(s *Stats) { s.ActuationFailures++ })
		} else {
			ctrl.Commit(x)
		}
	}

	a.updateStats(func(s *Stats) {
		s.FramesProcessed++
		if obs.Detected {
			s.FramesDetected++
		}
	})

	status := overlay.Status{Detected: obs.Detected, CursorX: ctrl.X()}
	if a.config.Display != nil || a.config.Monitor != nil {
		overlay.Annotate(frame, pose, status, a.config.Session.DebugOverlay)
	}

	if a.config.Monitor != nil {
		snap := server.Snapshot{
			Enabled:     enabled,
			Detected:    obs.Detected,
			BodyCenterX: obs.BodyCenterX,
			CursorX:     ctrl.X(),
			ScreenWidth: ctrl.Settings().ScreenWidth,
			Frames:      a.Stats().FramesProcessed,
		}
		if session != nil {
			snap.SessionID = session.ID
		}
		a.config.Monitor.Publish(snap, frame)
	}

	if a.config.OnCursor != nil {
		a.config.OnCursor(int(ctrl.X()))
	}

	if a.config.Display != nil {
		return a.config.Display.Show(frame)
	}
	return false
}

// detect runs the detector while tracking is enabled. An inference error is
// logged and treated as no body found.
func (a *App) detect(frame *gocv.Mat, enabled bool) *detector.Pose {
	if !enabled {
		return nil
	}
	pose, err := a.config.Detector.Detect(frame)
	if err != nil {
		log.Printf("Pose detection failed: %v", err)
		return nil
	}
	return pose
}

// startSession records a new session if a store is configured.
func (a *App) startSession() *store.Session {
	if a.config.Store == nil {
		return nil
	}
	session, err := a.config.Store.Sessions().Start()
	if err != nil {
		log.Printf("Failed to record session start: %v", err)
		return nil
	}
	return session
}

// finishSession stores the final counters of session.
func (a *App) finishSession(session *store.Session) {
	if session == nil {
		return
	}
	stats := a.Stats()
	session.FramesRead = stats.FramesRead
	session.FramesProcessed = stats.FramesProcessed
	session.FramesDetected = stats.FramesDetected
	session.ActuationFailures = stats.ActuationFailures
	session.EndReason = stats.EndReason
	if err := a.config.Store.Sessions().Finish(session); err != nil {
		log.Printf("Failed to record session end: %v", err)
	}
}

// shutdown releases the camera, detector and display.
func (a *App) shutdown() {
	if err := a.config.Camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.config.Detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
	if a.config.Display != nil {
		if err := a.config.Display.Close(); err != nil {
			log.Printf("Error closing display: %v", err)
		}
	}

	stats := a.Stats()
	if stats.EndReason == "" {
		return
	}
	log.Printf("Session ended (%s): %d frames read, %d processed, %d with a body, %d failed moves",
		stats.EndReason, stats.FramesRead, stats.FramesProcessed, stats.FramesDetected, stats.ActuationFailures)
}

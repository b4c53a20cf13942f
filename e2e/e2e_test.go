package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/posecursor/internal/app"
	"github.com/ayusman/posecursor/internal/capture"
	"github.com/ayusman/posecursor/internal/config"
	"github.com/ayusman/posecursor/internal/detector"
	"github.com/ayusman/posecursor/internal/pointer"
	"github.com/ayusman/posecursor/internal/server"
	"github.com/ayusman/posecursor/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	monitor := server.NewMonitor()
	srv := server.New(server.Config{Store: s, Monitor: monitor})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("UpdateSettings", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings",
			strings.NewReader(`{"sensitivity": "2", "frame_skip": "2"}`))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("update settings error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	// Next session picks up the stored settings.
	stored, err := s.Settings().All()
	if err != nil {
		t.Fatalf("Settings().All() error = %v", err)
	}
	cfg, err := config.DefaultConfig().Apply(stored)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	frames := capture.BlankFrames(6, 640, 480)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()

	mockDetector := detector.NewMockDetector()
	mockDetector.SetPose(detector.StandingPose(320))
	device := pointer.NewMockDevice(0, 300, 1000, 800)

	application := app.New(app.Config{
		Session:  cfg,
		Camera:   capture.NewMockCamera(frames, false),
		Detector: mockDetector,
		Pointer:  device,
		Store:    s,
		Monitor:  monitor,
	})

	t.Run("RunSession", func(t *testing.T) {
		if err := application.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		// Three processed frames with gain 0.2 towards 500: 100, 180, 244.
		moves := device.Moves()
		if len(moves) != 3 {
			t.Fatalf("moves = %v, want 3", moves)
		}
		if moves[2].X != 244 || moves[2].Y != 300 {
			t.Errorf("last move = %+v, want (244, 300)", moves[2])
		}
	})

	t.Run("Status", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/status")
		if err != nil {
			t.Fatalf("get status error = %v", err)
		}
		defer resp.Body.Close()

		var snap server.Snapshot
		json.NewDecoder(resp.Body).Decode(&snap)
		if !snap.Detected || int(snap.CursorX) != 244 {
			t.Errorf("snapshot = %+v", snap)
		}
	})

	t.Run("SessionHistory", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions")
		if err != nil {
			t.Fatalf("list sessions error = %v", err)
		}
		defer resp.Body.Close()

		var listed struct {
			Sessions []store.Session `json:"sessions"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)

		if len(listed.Sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(listed.Sessions))
		}
		got := listed.Sessions[0]
		if got.FramesRead != 6 || got.FramesProcessed != 3 || got.EndReason != app.EndCamera {
			t.Errorf("session = %+v", got)
		}
	})
}

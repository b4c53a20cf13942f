package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ayusman/posecursor/internal/app"
	"github.com/ayusman/posecursor/internal/capture"
	"github.com/ayusman/posecursor/internal/config"
	"github.com/ayusman/posecursor/internal/detector"
	"github.com/ayusman/posecursor/internal/overlay"
	"github.com/ayusman/posecursor/internal/pointer"
	"github.com/ayusman/posecursor/internal/server"
	"github.com/ayusman/posecursor/internal/store"
	"github.com/ayusman/posecursor/internal/tray"
)

func init() {
	// HighGUI windows and the tray must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	log.Println("posecursor stopped")
}

// run sets up the session from args and tracks until the camera ends, the
// user quits or the process is interrupted.
func run(args []string) error {
	fs := flag.NewFlagSet("posecursor", flag.ExitOnError)
	config.RegisterFlags(fs)
	dataDir := fs.String("data", defaultDataDir(), "directory for the settings and session database")
	save := fs.Bool("save", false, "store the effective settings as defaults for later runs")
	fs.Parse(args)

	log.Println("posecursor - body position cursor control")

	// Initialize the store
	st, err := store.New(filepath.Join(*dataDir, "posecursor.db"))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	cfg, err := loadConfig(st, fs)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if *save {
		if err := st.Settings().SetAll(cfg.Settings()); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		log.Printf("Saved settings to %s", st.Path())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	det, err := detector.NewMediaPipeDetector(cfg.Detector())
	if err != nil {
		return fmt.Errorf("failed to start pose detection: %w", err)
	}

	appCfg := app.Config{
		Session:  cfg,
		Detector: det,
		Pointer:  pointer.NewRobotgo(),
		Store:    st,
		Camera: capture.NewCamera(capture.Config{
			DeviceID: cfg.CameraID,
			Width:    cfg.Width,
			Height:   cfg.Height,
			FPS:      cfg.FPS,
		}),
	}

	if cfg.HTTPAddr != "" {
		monitor := server.NewMonitor()
		appCfg.Monitor = monitor

		srv := server.New(server.Config{
			Store:   st,
			Monitor: monitor,
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
				log.Printf("Monitor server failed: %v", err)
			}
		}()
	}

	if cfg.Window {
		appCfg.Display = overlay.NewWindow("posecursor")
	}

	var t *tray.Tray
	if cfg.Tray {
		t = tray.New()
		appCfg.OnCursor = t.SetCursor
	}

	application := app.New(appCfg)

	if t == nil {
		err = application.Run(ctx)
	} else {
		t.OnToggle(application.SetEnabled)
		t.OnQuit(stop)

		done := make(chan error, 1)
		go func() {
			done <- application.Run(ctx)
			t.Stop()
		}()
		t.Run()
		stop()
		err = <-done
	}

	if err != nil {
		return fmt.Errorf("failed to start tracking: %w", err)
	}
	return nil
}

// loadConfig builds the session configuration: defaults, then stored
// settings, then explicitly set flags.
func loadConfig(st *store.Store, fs *flag.FlagSet) (config.Config, error) {
	stored, err := st.Settings().All()
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.DefaultConfig().Apply(stored)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err = cfg.Apply(config.FlagSettings(fs))
	if err != nil {
		return config.Config{}, err
	}

	// The tray and the window both need the main thread.
	if cfg.Tray {
		cfg.Window = false
	}

	return cfg, cfg.Validate()
}

// defaultDataDir returns ~/.posecursor, or .posecursor if the home directory
// is unknown.
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".posecursor"
	}
	return filepath.Join(homeDir, ".posecursor")
}

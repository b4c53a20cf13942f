// Package config holds the session configuration for posecursor.
//
// A Config is built once at startup from defaults, stored settings and
// command-line flags, validated, and then passed by value to the components
// that need it. Nothing mutates it while a session runs.
package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ayusman/posecursor/internal/cursor"
	"github.com/ayusman/posecursor/internal/detector"
)

// Setting keys, shared by the store, the settings API and the flag set.
const (
	KeySensitivity         = "sensitivity"
	KeyWidth               = "width"
	KeyHeight              = "height"
	KeyFPS                 = "fps"
	KeyCamera              = "camera"
	KeyFrameSkip           = "frame_skip"
	KeyDetectionConfidence = "detection_confidence"
	KeyTrackingConfidence  = "tracking_confidence"
	KeyScreenWidth         = "screen_width"
	KeyEdgeMode            = "edge_mode"
	KeyDebugOverlay        = "debug_overlay"
	KeyMirror              = "mirror"
	KeyWindow              = "window"
	KeyHTTPAddr            = "http_addr"
	KeyTray                = "tray"
)

// ErrUnknownSetting is returned for a setting key that Config does not recognize.
var ErrUnknownSetting = errors.New("unknown setting")

// Config holds every recognized option for one session.
type Config struct {
	// Sensitivity multiplies the smoothing gain (gain = Sensitivity * 0.1).
	Sensitivity float64

	// Width and Height are the capture resolution requested from the camera.
	Width  int
	Height int

	// FPS is the capture frame rate requested from the camera.
	FPS int

	// CameraID is the video capture device index.
	CameraID int

	// FrameSkip processes one of every FrameSkip captured frames. The gain is
	// applied per processed frame, so a larger skip gives fewer updates per
	// second and a slower cursor in wall-clock terms at equal sensitivity.
	FrameSkip int

	// DetectionConfidence and TrackingConfidence are passed to the pose model.
	DetectionConfidence float64
	TrackingConfidence  float64

	// ScreenWidth overrides the detected screen width when non-zero.
	ScreenWidth int

	EdgeMode cursor.EdgeMode

	// DebugOverlay draws the skeleton on displayed frames.
	DebugOverlay bool

	// Mirror flips frames horizontally for a selfie view before inference.
	Mirror bool

	// Window shows the annotated frames in a window and polls the quit key.
	Window bool

	// HTTPAddr starts the read-only monitor server when non-empty.
	HTTPAddr string

	// Tray shows a menu bar icon with pause and quit. It disables Window.
	Tray bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Sensitivity:         1.0,
		Width:               640,
		Height:              480,
		FPS:                 30,
		CameraID:            0,
		FrameSkip:           1,
		DetectionConfidence: 0.5,
		TrackingConfidence:  0.5,
		ScreenWidth:         0,
		EdgeMode:            cursor.EdgeClamp,
		DebugOverlay:        false,
		Mirror:              true,
		Window:              true,
		HTTPAddr:            "",
		Tray:                false,
	}
}

// Validate reports every invalid option, joined into one error.
func (c Config) Validate() error {
	var errs []error

	if !(c.Sensitivity > 0) || math.IsInf(c.Sensitivity, 0) {
		errs = append(errs, fmt.Errorf("%s must be a finite number > 0, got %v", KeySensitivity, c.Sensitivity))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("%s must be > 0, got %d", KeyFPS, c.FPS))
	}
	if c.CameraID < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0, got %d", KeyCamera, c.CameraID))
	}
	if c.FrameSkip < 1 {
		errs = append(errs, fmt.Errorf("%s must be >= 1, got %d", KeyFrameSkip, c.FrameSkip))
	}
	if !inUnitRange(c.DetectionConfidence) {
		errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", KeyDetectionConfidence, c.DetectionConfidence))
	}
	if !inUnitRange(c.TrackingConfidence) {
		errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", KeyTrackingConfidence, c.TrackingConfidence))
	}
	if c.ScreenWidth < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0, got %d", KeyScreenWidth, c.ScreenWidth))
	}
	if _, err := cursor.ParseEdgeMode(string(c.EdgeMode)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// inUnitRange reports whether v is in [0,1]. NaN is not.
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// Detector returns the pose detector configuration.
func (c Config) Detector() detector.Config {
	cfg := detector.DefaultConfig()
	cfg.MinDetectionConf = c.DetectionConfidence
	cfg.MinTrackingConf = c.TrackingConfidence
	return cfg
}

// Controller returns the cursor controller settings for a screen of
// screenWidth pixels. ScreenWidth, when set, takes precedence.
func (c Config) Controller(screenWidth int) cursor.Settings {
	if c.ScreenWidth > 0 {
		screenWidth = c.ScreenWidth
	}
	return cursor.Settings{
		Sensitivity: c.Sensitivity,
		ScreenWidth: screenWidth,
		EdgeMode:    c.EdgeMode,
	}
}

// Settings renders the config as string key/value pairs for storage.
func (c Config) Settings() map[string]string {
	return map[string]string{
		KeySensitivity:         formatFloat(c.Sensitivity),
		KeyWidth:               strconv.Itoa(c.Width),
		KeyHeight:              strconv.Itoa(c.Height),
		KeyFPS:                 strconv.Itoa(c.FPS),
		KeyCamera:              strconv.Itoa(c.CameraID),
		KeyFrameSkip:           strconv.Itoa(c.FrameSkip),
		KeyDetectionConfidence: formatFloat(c.DetectionConfidence),
		KeyTrackingConfidence:  formatFloat(c.TrackingConfidence),
		KeyScreenWidth:         strconv.Itoa(c.ScreenWidth),
		KeyEdgeMode:            string(c.EdgeMode),
		KeyDebugOverlay:        strconv.FormatBool(c.DebugOverlay),
		KeyMirror:              strconv.FormatBool(c.Mirror),
		KeyWindow:              strconv.FormatBool(c.Window),
		KeyHTTPAddr:            c.HTTPAddr,
		KeyTray:                strconv.FormatBool(c.Tray),
	}
}

// Keys returns every recognized setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, 16)
	for k := range DefaultConfig().Settings() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply returns a copy of c with the given settings applied. Keys are applied
// in sorted order so the result does not depend on map iteration.
func (c Config) Apply(settings map[string]string) (Config, error) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := c.set(k, settings[k]); err != nil {
			return c, err
		}
	}
	return c, nil
}

// set parses value into the option named by key.
func (c *Config) set(key, value string) error {
	var err error
	switch key {
	case KeySensitivity:
		c.Sensitivity, err = strconv.ParseFloat(value, 64)
	case KeyWidth:
		c.Width, err = strconv.Atoi(value)
	case KeyHeight:
		c.Height, err = strconv.Atoi(value)
	case KeyFPS:
		c.FPS, err = strconv.Atoi(value)
	case KeyCamera:
		c.CameraID, err = strconv.Atoi(value)
	case KeyFrameSkip:
		c.FrameSkip, err = strconv.Atoi(value)
	case KeyDetectionConfidence:
		c.DetectionConfidence, err = strconv.ParseFloat(value, 64)
	case KeyTrackingConfidence:
		c.TrackingConfidence, err = strconv.ParseFloat(value, 64)
	case KeyScreenWidth:
		c.ScreenWidth, err = strconv.Atoi(value)
	case KeyEdgeMode:
		c.EdgeMode, err = cursor.ParseEdgeMode(value)
	case KeyDebugOverlay:
		c.DebugOverlay, err = strconv.ParseBool(value)
	case KeyMirror:
		c.Mirror, err = strconv.ParseBool(value)
	case KeyWindow:
		c.Window, err = strconv.ParseBool(value)
	case KeyHTTPAddr:
		c.HTTPAddr = value
	case KeyTray:
		c.Tray, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package config

import (
	"flag"
)

// flagKeys maps command-line flag names to setting keys.
var flagKeys = map[string]string{
	"sensitivity":          KeySensitivity,
	"width":                KeyWidth,
	"height":               KeyHeight,
	"fps":                  KeyFPS,
	"camera":               KeyCamera,
	"frame-skip":           KeyFrameSkip,
	"detection-confidence": KeyDetectionConfidence,
	"tracking-confidence":  KeyTrackingConfidence,
	"screen-width":         KeyScreenWidth,
	"edge-mode":            KeyEdgeMode,
	"debug":                KeyDebugOverlay,
	"mirror":               KeyMirror,
	"window":               KeyWindow,
	"http":                 KeyHTTPAddr,
	"tray":                 KeyTray,
}

// RegisterFlags defines one flag per option on fs, with DefaultConfig values
// as the documented defaults.
func RegisterFlags(fs *flag.FlagSet) {
	d := DefaultConfig()
	fs.Float64("sensitivity", d.Sensitivity, "cursor smoothing gain multiplier (gain = sensitivity * 0.1)")
	fs.Int("width", d.Width, "capture width in pixels")
	fs.Int("height", d.Height, "capture height in pixels")
	fs.Int("fps", d.FPS, "capture frame rate")
	fs.Int("camera", d.CameraID, "video capture device index")
	fs.Int("frame-skip", d.FrameSkip, "process one of every N frames")
	fs.Float64("detection-confidence", d.DetectionConfidence, "minimum pose detection confidence (0-1)")
	fs.Float64("tracking-confidence", d.TrackingConfidence, "minimum pose tracking confidence (0-1)")
	fs.Int("screen-width", d.ScreenWidth, "screen width override in pixels (0 = detect)")
	fs.String("edge-mode", string(d.EdgeMode), "screen edge policy: clamp or wrap")
	fs.Bool("debug", d.DebugOverlay, "draw the pose skeleton on displayed frames")
	fs.Bool("mirror", d.Mirror, "flip frames horizontally for a selfie view")
	fs.Bool("window", d.Window, "show frames in a window (press q to quit)")
	fs.String("http", d.HTTPAddr, "address for the read-only monitor server, e.g. :8080")
	fs.Bool("tray", d.Tray, "show a menu bar icon with pause and quit (disables the window)")
}

// FlagSettings returns the settings for flags that were set explicitly on a
// parsed fs. Flags left at their defaults are not included, so they do not
// override stored settings.
func FlagSettings(fs *flag.FlagSet) map[string]string {
	settings := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			settings[key] = f.Value.String()
		}
	})
	return settings
}

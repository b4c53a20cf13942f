package cursor

// GainPerSensitivity converts sensitivity into the smoothing gain.
const GainPerSensitivity = 0.1

// Settings configures a Controller. It is fixed for the life of the controller.
type Settings struct {
	Sensitivity float64  // gain multiplier, > 0
	ScreenWidth int      // screen-pixel columns, > 0
	EdgeMode    EdgeMode // clamp or wrap
}

// Controller holds the horizontal cursor position and advances it one
// observation at a time with first-order exponential smoothing.
//
// A Controller is not safe for concurrent use. Calls must be made from a
// single goroutine in frame order: smoothing history cannot be reordered.
type Controller struct {
	settings Settings
	x        float64
}

// NewController returns a controller starting at initialX. The starting
// position is passed through the edge policy so it is always on screen.
func NewController(settings Settings, initialX float64) *Controller {
	if settings.EdgeMode == "" {
		settings.EdgeMode = EdgeClamp
	}
	return &Controller{
		settings: settings,
		x:        settings.EdgeMode.bound(initialX, settings.ScreenWidth),
	}
}

// X returns the current cursor position in screen pixels.
func (c *Controller) X() float64 {
	return c.x
}

// Settings returns the controller settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Gain returns the smoothing gain g = sensitivity * 0.1.
// It is not limited to (0, 1]; above 1 the cursor overshoots and oscillates.
func (c *Controller) Gain() float64 {
	return c.settings.Sensitivity * GainPerSensitivity
}

// Next computes the position the cursor would move to for obs without
// storing it. Without a detection the current position is returned.
func (c *Controller) Next(obs Observation) float64 {
	if !obs.Detected || obs.FrameWidth <= 0 {
		return c.x
	}

	width := float64(c.settings.ScreenWidth)
	mapped := obs.BodyCenterX / float64(obs.FrameWidth) * width
	next := c.x + (mapped-c.x)*c.Gain()

	return c.settings.EdgeMode.bound(next, c.settings.ScreenWidth)
}

// Commit stores x as the current position.
func (c *Controller) Commit(x float64) {
	c.x = c.settings.EdgeMode.bound(x, c.settings.ScreenWidth)
}

// Advance computes and stores the next position for obs and returns it.
func (c *Controller) Advance(obs Observation) float64 {
	next := c.Next(obs)
	c.Commit(next)
	return next
}

package server

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Snapshot is the tracking state published after each processed frame.
type Snapshot struct {
	SessionID   string    `json:"session_id,omitempty"`
	Enabled     bool      `json:"enabled"`
	Detected    bool      `json:"detected"`
	BodyCenterX float64   `json:"body_center_x"`
	CursorX     float64   `json:"cursor_x"`
	ScreenWidth int       `json:"screen_width"`
	Frames      int       `json:"frames"`
	Timestamp   time.Time `json:"timestamp"`
}

// Monitor holds the latest snapshot and annotated frame for HTTP consumers.
// The pipeline publishes, handlers only read.
type Monitor struct {
	mu       sync.RWMutex
	snapshot Snapshot
	jpeg     []byte
	seq      uint64
	frameSeq uint64
}

// NewMonitor creates an empty Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Publish stores snap and, if frame is non-nil and non-empty, a JPEG copy of it.
func (m *Monitor) Publish(snap Snapshot, frame *gocv.Mat) {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}

	var jpeg []byte
	if frame != nil && !frame.Empty() {
		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
		if err == nil {
			jpeg = append([]byte(nil), buf.GetBytes()...)
			buf.Close()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snap
	if jpeg != nil {
		m.jpeg = jpeg
		m.frameSeq++
	}
	m.seq++
}

// Snapshot returns the latest snapshot and its sequence number. The sequence
// is zero until the first publish.
func (m *Monitor) Snapshot() (Snapshot, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot, m.seq
}

// Frame returns the latest JPEG-encoded frame and its sequence number, or
// nil and zero before the first frame.
func (m *Monitor) Frame() ([]byte, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jpeg, m.frameSeq
}

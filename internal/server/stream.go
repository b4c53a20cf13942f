package server

import (
	"fmt"
	"net/http"
	"time"
)

// streamInterval paces the MJPEG stream (~15 FPS).
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the latest annotated frames as MJPEG.
type StreamHandler struct {
	monitor *Monitor
}

// NewStreamHandler creates a new StreamHandler reading from monitor.
func NewStreamHandler(monitor *Monitor) *StreamHandler {
	return &StreamHandler{monitor: monitor}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		buf, seq := h.monitor.Frame()
		if seq == 0 || seq == lastSeq {
			continue
		}
		lastSeq = seq

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

package detector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Errors returned while starting the pose service.
var (
	ErrServiceNotFound = errors.New("pose_service.py not found")
	ErrServiceNotReady = errors.New("pose service did not become ready")
)

// MediaPipeDetector implements Detector using a Python MediaPipe Pose subprocess.
//
// Protocol: each request is a 4-byte big-endian length followed by a JPEG
// encoded frame on the service's stdin. The service answers with one JSON line
// on stdout holding normalized landmark coordinates, or null landmarks when no
// body was found.
//
// After starting, the service loads its model and writes {"ready":true}. No
// frame is sent before that line arrives.
type MediaPipeDetector struct {
	config     Config
	python     string
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
}

// NewMediaPipeDetector creates a new MediaPipe pose detector and starts the
// inference service. An error means the inference context is unavailable.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := findPoseScript()
	if scriptPath == "" {
		return nil, ErrServiceNotFound
	}

	// Use virtual environment Python if available
	python := findVenvPython()
	if python == "" {
		python = "python3"
	}

	return startDetector(config, python, scriptPath)
}

// startDetector runs scriptPath with the python interpreter and waits for it
// to report ready.
func startDetector(config Config, python, scriptPath string) (*MediaPipeDetector, error) {
	d := &MediaPipeDetector{
		config:     config,
		python:     python,
		scriptPath: scriptPath,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	return d, nil
}

// Detect analyzes a frame and returns the detected pose in frame-pixel space.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (*Pose, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := writeFrame(d.stdin, buf.GetBytes()); err != nil {
		d.shutdown()
		return nil, err
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		d.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	return decodeResponse(line, frame.Cols(), frame.Rows())
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	d.cmd = exec.Command(d.python, d.scriptPath,
		"--model-complexity", strconv.Itoa(d.config.ModelComplexity),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinDetectionConf, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	if err := d.awaitReady(); err != nil {
		d.cmd.Process.Kill()
		d.shutdown()
		return err
	}

	return nil
}

// awaitReady reads the service's ready line, failing if the process exits
// first or StartTimeout passes.
func (d *MediaPipeDetector) awaitReady() error {
	timeout := d.config.StartTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().StartTimeout
	}

	type result struct {
		line []byte
		err  error
	}
	stdout := d.stdout
	done := make(chan result, 1)
	go func() {
		line, err := stdout.ReadBytes('\n')
		done <- result{line, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("%w: %v", ErrServiceNotReady, r.err)
		}
		var status struct {
			Ready bool   `json:"ready"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(r.line, &status); err != nil {
			return fmt.Errorf("%w: unexpected output %q", ErrServiceNotReady, bytes.TrimSpace(r.line))
		}
		if !status.Ready {
			return fmt.Errorf("%w: %s", ErrServiceNotReady, status.Error)
		}
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w: no answer within %s", ErrServiceNotReady, timeout)
	}
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

// writeFrame writes one length-prefixed frame to w.
func writeFrame(w io.Writer, data []byte) error {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := w.Write(length); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

func findPoseScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/pose_service.py",
		"../scripts/pose_service.py",
		filepath.Join(execDir, "scripts/pose_service.py"),
		filepath.Join(os.Getenv("HOME"), ".posecursor/scripts/pose_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".posecursor/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonResponse represents the JSON structure from the Python service.
type jsonResponse struct {
	Landmarks []jsonLandmark `json:"landmarks"`
}

type jsonLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// decodeResponse parses one service response line and scales the normalized
// coordinates into a width x height frame. Null or empty landmarks mean no body.
func decodeResponse(line []byte, width, height int) (*Pose, error) {
	var response jsonResponse
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if len(response.Landmarks) == 0 {
		return nil, nil
	}

	pose := &Pose{}
	for i := 0; i < NumLandmarks && i < len(response.Landmarks); i++ {
		lm := response.Landmarks[i]
		pose.Landmarks[i] = Landmark{
			X:          lm.X * float64(width),
			Y:          lm.Y * float64(height),
			Z:          lm.Z,
			Visibility: lm.Visibility,
		}
	}

	return pose, nil
}

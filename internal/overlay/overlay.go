// Package overlay draws tracking status onto camera frames and shows them in
// a desktop window.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecursor/internal/cursor"
	"github.com/ayusman/posecursor/internal/detector"
)

const (
	LabelDetected    = "Person Detected"
	LabelNotDetected = "No Person Detected"
)

var (
	colorDetected = color.RGBA{0, 255, 0, 0}
	colorMissing  = color.RGBA{0, 0, 255, 0}
	colorText     = color.RGBA{255, 255, 255, 0}
	colorJoint    = color.RGBA{0, 255, 255, 0}
	colorBone     = color.RGBA{255, 128, 0, 0}
)

// Status is the per-frame tracking state shown on the overlay.
type Status struct {
	Detected bool
	CursorX  float64
}

// Lines returns the text lines drawn for s.
func (s Status) Lines() []string {
	label := LabelNotDetected
	if s.Detected {
		label = LabelDetected
	}
	return []string{label, fmt.Sprintf("Cursor X: %d", int(s.CursorX))}
}

// Annotate draws the status text onto frame and, when skeleton is true and a
// pose is available, the landmarks above the visibility threshold and the
// bones connecting them.
func Annotate(frame *gocv.Mat, pose *detector.Pose, status Status, skeleton bool) {
	if frame == nil || frame.Empty() {
		return
	}

	if skeleton && pose != nil {
		drawSkeleton(frame, pose)
	}

	lines := status.Lines()
	labelColor := colorMissing
	if status.Detected {
		labelColor = colorDetected
	}
	gocv.PutText(frame, lines[0], image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, labelColor, 2)
	gocv.PutText(frame, lines[1], image.Pt(10, 60), gocv.FontHersheySimplex, 0.8, colorText, 2)
}

func drawSkeleton(frame *gocv.Mat, pose *detector.Pose) {
	visible := func(i int) bool {
		return pose.Landmarks[i].Visibility > cursor.VisibilityThreshold
	}
	point := func(i int) image.Point {
		lm := pose.Landmarks[i]
		return image.Pt(int(lm.X), int(lm.Y))
	}

	for _, c := range detector.Connections {
		if visible(c[0]) && visible(c[1]) {
			gocv.Line(frame, point(c[0]), point(c[1]), colorBone, 2)
		}
	}

	for i := range pose.Landmarks {
		if visible(i) {
			gocv.Circle(frame, point(i), 4, colorJoint, -1)
		}
	}
}

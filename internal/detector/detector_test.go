package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestPose_Visible(t *testing.T) {
	t.Run("nil pose has no visible landmarks", func(t *testing.T) {
		var pose *Pose
		if got := pose.Visible(0.1); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("threshold is exclusive", func(t *testing.T) {
		pose := &Pose{}
		pose.Landmarks[Nose] = Landmark{X: 10, Visibility: 0.1}
		pose.Landmarks[LeftShoulder] = Landmark{X: 20, Visibility: 0.11}
		pose.Landmarks[RightShoulder] = Landmark{X: 30, Visibility: 1.0}

		visible := pose.Visible(0.1)
		if len(visible) != 2 {
			t.Fatalf("expected 2 visible landmarks, got %d", len(visible))
		}
		if visible[0].X != 20 || visible[1].X != 30 {
			t.Errorf("unexpected landmarks: %v", visible)
		}
	})
}

func TestDecodeResponse(t *testing.T) {
	t.Run("scales normalized coordinates into pixels", func(t *testing.T) {
		line := []byte(`{"landmarks":[{"x":0.5,"y":0.25,"z":-0.1,"visibility":0.9},{"x":1.0,"y":1.0,"z":0,"visibility":0.2}]}` + "\n")

		pose, err := decodeResponse(line, 640, 480)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pose == nil {
			t.Fatal("expected a pose")
		}

		nose := pose.Landmarks[Nose]
		if math.Abs(nose.X-320) > epsilon || math.Abs(nose.Y-120) > epsilon {
			t.Errorf("nose = (%f, %f), want (320, 120)", nose.X, nose.Y)
		}
		if nose.Visibility != 0.9 {
			t.Errorf("visibility = %f, want 0.9", nose.Visibility)
		}
		if pose.Landmarks[LeftEyeInner].X != 640 {
			t.Errorf("second landmark X = %f, want 640", pose.Landmarks[LeftEyeInner].X)
		}
	})

	t.Run("null landmarks means no body", func(t *testing.T) {
		pose, err := decodeResponse([]byte(`{"landmarks":null}`), 640, 480)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pose != nil {
			t.Errorf("expected nil pose, got %v", pose)
		}
	})

	t.Run("extra landmarks are ignored", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(`{"landmarks":[`)
		for i := 0; i < NumLandmarks+5; i++ {
			if i > 0 {
				buf.WriteString(",")
			}
			buf.WriteString(`{"x":0.1,"y":0.1,"z":0,"visibility":1}`)
		}
		buf.WriteString(`]}`)

		pose, err := decodeResponse(buf.Bytes(), 100, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pose.Landmarks[RightFootIndex].X != 10 {
			t.Errorf("last landmark X = %f, want 10", pose.Landmarks[RightFootIndex].X)
		}
	})

	t.Run("malformed JSON is an error", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"landmarks":`), 640, 480); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0xff, 0xd8, 0x01, 0x02, 0xff, 0xd9}

	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.Bytes()
	if len(out) != 4+len(payload) {
		t.Fatalf("wrote %d bytes, want %d", len(out), 4+len(payload))
	}
	if n := binary.BigEndian.Uint32(out[:4]); n != uint32(len(payload)) {
		t.Errorf("length prefix = %d, want %d", n, len(payload))
	}
	if !bytes.Equal(out[4:], payload) {
		t.Errorf("payload = %v, want %v", out[4:], payload)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns no body by default", func(t *testing.T) {
		mock := NewMockDetector()

		pose, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if pose != nil {
			t.Errorf("expected nil pose, got %v", pose)
		}
	})

	t.Run("returns queued poses before the configured pose", func(t *testing.T) {
		mock := NewMockDetector()
		first := StandingPose(100)
		fallback := StandingPose(500)
		mock.QueuePoses(first, nil)
		mock.SetPose(fallback)

		got := make([]*Pose, 0, 3)
		for i := 0; i < 3; i++ {
			pose, err := mock.Detect(nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got = append(got, pose)
		}

		if got[0] != first || got[1] != nil || got[2] != fallback {
			t.Errorf("unexpected pose order: %v", got)
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("inference failed")
		mock.SetError(expectedErr)

		pose, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if pose != nil {
			t.Errorf("expected nil pose when error is set, got %v", pose)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() to be true")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestStandingPose(t *testing.T) {
	pose := StandingPose(250)

	t.Run("mean X equals center", func(t *testing.T) {
		var sum float64
		for _, lm := range pose.Landmarks {
			sum += lm.X
		}
		mean := sum / NumLandmarks
		if math.Abs(mean-250) > epsilon {
			t.Errorf("mean X = %f, want 250", mean)
		}
	})

	t.Run("all landmarks visible", func(t *testing.T) {
		if n := len(pose.Visible(0.1)); n != NumLandmarks {
			t.Errorf("visible = %d, want %d", n, NumLandmarks)
		}
	})

	t.Run("shoulders above hips", func(t *testing.T) {
		if pose.Landmarks[LeftShoulder].Y >= pose.Landmarks[LeftHip].Y {
			t.Error("shoulder should be above hip (lower Y value)")
		}
	})
}

func TestOccludedPose(t *testing.T) {
	pose := OccludedPose()
	if n := len(pose.Visible(0.1)); n != 0 {
		t.Errorf("visible = %d, want 0", n)
	}
}

func TestConnections_InRange(t *testing.T) {
	for _, c := range Connections {
		if c[0] < 0 || c[0] >= NumLandmarks || c[1] < 0 || c[1] >= NumLandmarks {
			t.Errorf("connection %v out of range", c)
		}
	}
}

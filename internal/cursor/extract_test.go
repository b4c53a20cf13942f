package cursor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/posecursor/internal/detector"
)

func TestExtract_NoVisibleLandmarks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		landmarks []detector.Landmark
	}{
		{name: "nil", landmarks: nil},
		{name: "empty", landmarks: []detector.Landmark{}},
		{name: "all at threshold", landmarks: []detector.Landmark{
			{X: 100, Visibility: 0.1},
			{X: 200, Visibility: 0.1},
		}},
		{name: "all below threshold", landmarks: []detector.Landmark{
			{X: 100, Visibility: 0.0},
			{X: 200, Visibility: 0.05},
			{X: 300, Visibility: 0.099},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			obs := Extract(tt.landmarks, 640)
			assert.False(t, obs.Detected)
			assert.Equal(t, 640, obs.FrameWidth)
		})
	}
}

func TestExtract_MeanOfVisible(t *testing.T) {
	t.Parallel()

	landmarks := []detector.Landmark{
		{X: 100, Visibility: 0.9},
		{X: 600, Visibility: 0.1}, // excluded: not strictly above threshold
		{X: 200, Visibility: 0.11},
		{X: 10, Visibility: 0.02},
		{X: 360, Visibility: 1.0},
	}

	obs := Extract(landmarks, 640)
	require.True(t, obs.Detected)
	assert.InDelta(t, 220.0, obs.BodyCenterX, 1e-9)
}

func TestExtract_OrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	landmarks := make([]detector.Landmark, 33)
	var sum float64
	var n int
	for i := range landmarks {
		landmarks[i] = detector.Landmark{X: rng.Float64() * 640, Visibility: rng.Float64()}
		if landmarks[i].Visibility > VisibilityThreshold {
			sum += landmarks[i].X
			n++
		}
	}
	require.Positive(t, n)
	want := sum / float64(n)

	for i := 0; i < 10; i++ {
		rng.Shuffle(len(landmarks), func(a, b int) {
			landmarks[a], landmarks[b] = landmarks[b], landmarks[a]
		})
		obs := Extract(landmarks, 640)
		require.True(t, obs.Detected)
		assert.InDelta(t, want, obs.BodyCenterX, 1e-9)
	}
}

func TestExtract_NonPositiveFrameWidth(t *testing.T) {
	t.Parallel()

	landmarks := []detector.Landmark{{X: 100, Visibility: 0.9}}
	assert.False(t, Extract(landmarks, 0).Detected)
	assert.False(t, Extract(landmarks, -640).Detected)
}

func TestExtractPose(t *testing.T) {
	t.Parallel()

	t.Run("no body found", func(t *testing.T) {
		t.Parallel()
		obs := ExtractPose(nil, 640)
		assert.False(t, obs.Detected)
	})

	t.Run("body found but occluded", func(t *testing.T) {
		t.Parallel()
		obs := ExtractPose(detector.OccludedPose(), 640)
		assert.False(t, obs.Detected)
	})

	t.Run("standing body", func(t *testing.T) {
		t.Parallel()
		obs := ExtractPose(detector.StandingPose(480), 640)
		require.True(t, obs.Detected)
		assert.InDelta(t, 480.0, obs.BodyCenterX, 1e-9)
	})
}

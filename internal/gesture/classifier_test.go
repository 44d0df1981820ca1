package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
)

func sample(pitch, roll, azimuth float64) orientation.Sample {
	return orientation.Sample{PitchDeg: pitch, RollDeg: roll, AzimuthDeg: azimuth}
}

func TestClassifyLeftWristGestures(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	tests := []struct {
		name         string
		o            orientation.Sample
		accel        float64
		want         DisplayState
		wantDetected bool
	}{
		{"arm out left", sample(10, 75, 180), 2.0, ArrowLeft, true},
		{"elbow up", sample(-50, 10, 180), 2.0, ArrowRight, true},
		{"hand down still", sample(65, 5, 180), 0.2, RedFace, true},
		{"arm at rest level", sample(5, 5, 90), 0.1, Neutral, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, detected := Classify(tt.o, motion.Sample{AccelMagnitude: tt.accel}, LeftWrist, Neutral, th)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDetected, detected)
		})
	}
}

func TestClassifyRequiresWristBehindRider(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	// Same pose as a left-turn signal, but pointing forward.
	got, detected := Classify(sample(10, 75, 0), motion.Sample{AccelMagnitude: 2.0}, LeftWrist, Neutral, th)
	assert.Equal(t, Neutral, got)
	assert.False(t, detected)

	// Azimuth band edges are inclusive.
	for _, az := range []float64{135, 225} {
		got, detected = Classify(sample(10, 75, az), motion.Sample{AccelMagnitude: 2.0}, LeftWrist, Neutral, th)
		assert.Equal(t, ArrowLeft, got, "azimuth %.0f", az)
		assert.True(t, detected)
	}
}

func TestClassifyRequiresActiveArmForArrows(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	// Left-turn pose but arm not moving: roll is way past the neutral
	// band too, so the classifier proposes no change.
	got, detected := Classify(sample(10, 75, 180), motion.Sample{AccelMagnitude: 0.5}, LeftWrist, ArrowRight, th)
	assert.Equal(t, ArrowRight, got)
	assert.False(t, detected)
}

func TestClassifyRightWristMirroredGesture(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	got, detected := Classify(sample(10, -75, 180), motion.Sample{AccelMagnitude: 2.0}, RightWrist, Neutral, th)
	assert.Equal(t, ArrowRight, got)
	assert.True(t, detected)
}

func TestClassifyRightWristAsymmetry(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	// The right-wrist rule set has no elbow-up or hand-down rows. Sweep
	// a dense grid of inputs: nothing may produce ArrowLeft or RedFace.
	for pitch := -90.0; pitch <= 90.0; pitch += 7.5 {
		for roll := -90.0; roll <= 90.0; roll += 7.5 {
			for _, az := range []float64{0, 135, 180, 225, 300} {
				for _, accel := range []float64{0.0, 0.5, 1.0, 2.0, 5.0} {
					got, _ := Classify(sample(pitch, roll, az), motion.Sample{AccelMagnitude: accel}, RightWrist, Neutral, th)
					if got == ArrowLeft || got == RedFace {
						t.Fatalf("right wrist produced %v for pitch=%.1f roll=%.1f az=%.0f accel=%.1f",
							got, pitch, roll, az, accel)
					}
				}
			}
		}
	}
}

func TestClassifyFallbackHoldsCurrentState(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	// Neither a gesture nor the at-rest pose: tilted and coasting.
	got, detected := Classify(sample(40, 40, 90), motion.Sample{AccelMagnitude: 1.0}, LeftWrist, RedFace, th)
	assert.Equal(t, RedFace, got)
	assert.False(t, detected)
}

func TestClassifyRuleOrderFirstMatchWins(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	// roll=75 satisfies the arm-out-left row; pitch=-40 would also fit
	// the elbow-up pitch band but |roll| < 30 excludes it. The first
	// row must win on its own condition.
	got, detected := Classify(sample(25, 75, 180), motion.Sample{AccelMagnitude: 2.0}, LeftWrist, Neutral, th)
	assert.Equal(t, ArrowLeft, got)
	assert.True(t, detected)
}

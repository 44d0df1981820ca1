package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
)

// fakeClock is a manually advanced millisecond clock.
type fakeClock struct {
	ms int64
}

func (c *fakeClock) now() int64 { return c.ms }

func newTestController(side WristSide, clk *fakeClock, observer func(DisplayState)) *Controller {
	return NewController(side, DefaultThresholds(), clk.now, observer)
}

func feedGesture(c *Controller, o orientation.Sample, accel float64) DisplayState {
	c.OnMotion(motion.Sample{AccelMagnitude: accel})
	return c.OnOrientation(o)
}

func TestControllerStartsNeutral(t *testing.T) {
	t.Parallel()

	c := newTestController(LeftWrist, &fakeClock{}, nil)
	assert.Equal(t, Neutral, c.State())
}

func TestControllerAcceptsGestures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		o     orientation.Sample
		accel float64
		want  DisplayState
	}{
		{"left turn", sample(10, 75, 180), 2.0, ArrowLeft},
		{"right turn via elbow up", sample(-50, 10, 180), 2.0, ArrowRight},
		{"stop hazard", sample(65, 5, 180), 0.2, RedFace},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clk := &fakeClock{ms: 5000}
			c := newTestController(LeftWrist, clk, nil)
			got := feedGesture(c, tt.o, tt.accel)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestControllerNoFlickerOnRepeatedGesture(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	var transitions []DisplayState
	c := newTestController(LeftWrist, clk, func(s DisplayState) {
		transitions = append(transitions, s)
	})

	feedGesture(c, sample(10, 75, 180), 2.0)
	clk.ms += 20
	feedGesture(c, sample(10, 75, 180), 2.0)

	// Two identical qualifying samples: exactly one transition.
	require.Equal(t, []DisplayState{ArrowLeft}, transitions)
}

func TestControllerTimeoutReversion(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{ms: 1000}
	c := newTestController(LeftWrist, clk, nil)

	// Enter RedFace at T=1000.
	feedGesture(c, sample(65, 5, 180), 0.2)
	require.Equal(t, RedFace, c.State())

	// Quiet arm, but hold duration not yet elapsed: state sticks.
	for _, ms := range []int64{1200, 1500, 1999, 2000} {
		clk.ms = ms
		got := feedGesture(c, sample(5, 65, 90), 0.0)
		assert.Equal(t, RedFace, got, "at t=%d", ms)
	}

	// First tick past T+1000 reverts to neutral.
	clk.ms = 2001
	got := feedGesture(c, sample(5, 65, 90), 0.0)
	assert.Equal(t, Neutral, got)
}

func TestControllerTimeoutWinsOverStaleHold(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{ms: 1000}
	c := newTestController(LeftWrist, clk, nil)

	feedGesture(c, sample(10, 75, 180), 2.0)
	require.Equal(t, ArrowLeft, c.State())

	// Pose that matches neither a gesture nor the neutral row (tilted),
	// arm quiet, hold elapsed: the classifier proposes "no change" but
	// the timeout check still reverts.
	clk.ms = 2500
	got := feedGesture(c, sample(40, 40, 90), 0.1)
	assert.Equal(t, Neutral, got)
}

func TestControllerHoldsWhileArmActive(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{ms: 1000}
	c := newTestController(LeftWrist, clk, nil)

	feedGesture(c, sample(10, 75, 180), 2.0)
	require.Equal(t, ArrowLeft, c.State())

	// Long past the hold duration, but the arm is still moving hard:
	// no reversion while accel stays above the neutral threshold.
	clk.ms = 10000
	got := feedGesture(c, sample(40, 40, 90), 1.2)
	assert.Equal(t, ArrowLeft, got)
}

func TestControllerSwitchesBetweenGestures(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{ms: 1000}
	c := newTestController(LeftWrist, clk, nil)

	feedGesture(c, sample(10, 75, 180), 2.0)
	require.Equal(t, ArrowLeft, c.State())

	// A new genuine gesture replaces the current one immediately, no
	// timeout needed.
	clk.ms = 1100
	got := feedGesture(c, sample(-50, 10, 180), 2.0)
	assert.Equal(t, ArrowRight, got)
}

func TestControllerNeutralStaysNeutral(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	var transitions []DisplayState
	c := newTestController(LeftWrist, clk, func(s DisplayState) {
		transitions = append(transitions, s)
	})

	for i := 0; i < 20; i++ {
		clk.ms += 100
		got := feedGesture(c, sample(5, 5, float64(i*20)), 0.1)
		assert.Equal(t, Neutral, got)
	}
	assert.Empty(t, transitions)
}

func TestControllerDiscardsNonFiniteSamples(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{ms: 1000}
	c := newTestController(LeftWrist, clk, nil)

	feedGesture(c, sample(10, 75, 180), 2.0)
	require.Equal(t, ArrowLeft, c.State())

	// Glitched samples must not move the state machine.
	c.OnOrientation(sample(math.NaN(), 0, 0))
	c.OnMotion(motion.Sample{AccelMagnitude: math.Inf(1)})
	assert.Equal(t, ArrowLeft, c.State())

	// And must not have replaced the kept latest samples either: a
	// follow-up good motion sample still sees the old orientation.
	clk.ms = 1100
	c.OnMotion(motion.Sample{AccelMagnitude: 2.0})
	assert.Equal(t, ArrowLeft, c.State())
}

func TestControllerRightWristOnlySignalsRight(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{ms: 1000}
	c := newTestController(RightWrist, clk, nil)

	// Left-wrist poses do nothing on the right wrist.
	feedGesture(c, sample(10, 75, 180), 2.0)
	assert.Equal(t, Neutral, c.State())
	feedGesture(c, sample(65, 5, 180), 0.2)
	assert.Equal(t, Neutral, c.State())

	// The mirrored arm-out gesture works.
	got := feedGesture(c, sample(10, -75, 180), 2.0)
	assert.Equal(t, ArrowRight, got)
}

func TestControllerSetWristSideResets(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{ms: 1000}
	var transitions []DisplayState
	c := newTestController(LeftWrist, clk, func(s DisplayState) {
		transitions = append(transitions, s)
	})

	feedGesture(c, sample(10, 75, 180), 2.0)
	require.Equal(t, ArrowLeft, c.State())

	c.SetWristSide(RightWrist)
	assert.Equal(t, Neutral, c.State())
	assert.Equal(t, RightWrist, c.WristSide())
	assert.Equal(t, []DisplayState{ArrowLeft, Neutral}, transitions)

	// Setting the same side again is a no-op.
	c.SetWristSide(RightWrist)
	assert.Equal(t, []DisplayState{ArrowLeft, Neutral}, transitions)
}

func TestControllerHeading(t *testing.T) {
	t.Parallel()

	c := newTestController(LeftWrist, &fakeClock{}, nil)
	assert.Equal(t, "N", c.Heading())

	c.OnOrientation(sample(5, 5, 180))
	assert.Equal(t, "S", c.Heading())
}

func TestControllerInterleavedStreams(t *testing.T) {
	t.Parallel()

	// Orientation ticks every 20ms, motion every 80ms, out of phase.
	// The controller must classify off the latest pair regardless of
	// arrival order.
	clk := &fakeClock{}
	c := newTestController(LeftWrist, clk, nil)

	c.OnMotion(motion.Sample{AccelMagnitude: 2.0})
	for i := 0; i < 3; i++ {
		clk.ms += 20
		c.OnOrientation(sample(5, 5, 90))
	}
	assert.Equal(t, Neutral, c.State())

	// Orientation moves into the left-turn pose before the next motion
	// sample arrives; the stale high-accel motion sample still counts.
	clk.ms += 20
	got := c.OnOrientation(sample(10, 75, 180))
	assert.Equal(t, ArrowLeft, got)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package gesture

import (
	"sync"
	"time"

	"github.com/relabs-tech/cycle_signal/internal/compass"
	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
)

// Controller owns the displayed state and applies hysteresis on top of
// the classifier: a genuine gesture switches the display immediately,
// and the display only falls back to neutral after the arm has been
// quiet for the hold duration.
//
// Orientation and motion samples arrive on independent clocks with no
// ordering guarantee; the controller keeps the latest of each and runs
// one update step per sample, serialized by a mutex. Samples with
// NaN/Inf values are discarded and the tick becomes a no-op.
type Controller struct {
	mu sync.Mutex

	side WristSide
	th   Thresholds
	now  func() int64

	current       DisplayState
	lastGestureAt int64

	lastOrientation orientation.Sample
	lastMotion      motion.Sample

	onTransition func(DisplayState)
}

// NewController creates a controller in the Neutral state. now returns
// wall-clock or monotonic milliseconds; nil uses time.Now. The
// observer, if non-nil, is called with the mutex held on every state
// transition, so it must not block; hand the value to a channel if needed.
func NewController(side WristSide, th Thresholds, now func() int64, onTransition func(DisplayState)) *Controller {
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Controller{
		side:         side,
		th:           th,
		now:          now,
		current:      Neutral,
		onTransition: onTransition,
	}
}

// OnOrientation feeds one orientation sample and returns the (possibly
// unchanged) display state.
func (c *Controller) OnOrientation(s orientation.Sample) DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.IsFinite() {
		return c.current
	}
	c.lastOrientation = s
	return c.step()
}

// OnMotion feeds one motion sample and returns the (possibly
// unchanged) display state.
func (c *Controller) OnMotion(s motion.Sample) DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.IsFinite() {
		return c.current
	}
	c.lastMotion = s
	return c.step()
}

// step runs one transition of the state machine. Caller holds c.mu.
func (c *Controller) step() DisplayState {
	candidate, detected := Classify(c.lastOrientation, c.lastMotion, c.side, c.current, c.th)

	nowMs := c.now()

	if detected && candidate != Neutral && candidate != c.current {
		c.lastGestureAt = nowMs
		c.transition(candidate)
		return c.current
	}

	// Timeout reversion. Checked whenever no new gesture was accepted,
	// so it wins over holding a stale state.
	if c.current != Neutral &&
		c.lastMotion.AccelMagnitude < c.th.NeutralAccel &&
		nowMs-c.lastGestureAt > c.th.HoldDuration.Milliseconds() {
		c.transition(Neutral)
		return c.current
	}

	return c.current
}

func (c *Controller) transition(next DisplayState) {
	if next == c.current {
		return
	}
	c.current = next
	if c.onTransition != nil {
		c.onTransition(next)
	}
}

// State returns the currently displayed state.
func (c *Controller) State() DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Heading returns the cardinal label of the latest azimuth for the
// neutral info screen.
func (c *Controller) Heading() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return compass.FromAzimuth(c.lastOrientation.AzimuthDeg)
}

// WristSide returns the configured side.
func (c *Controller) WristSide() WristSide {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.side
}

// SetWristSide applies a settings change. The state machine is reset
// to Neutral so rules for the new side start from a clean slate.
func (c *Controller) SetWristSide(side WristSide) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if side == c.side {
		return
	}
	c.side = side
	c.lastGestureAt = 0
	c.transition(Neutral)
}
